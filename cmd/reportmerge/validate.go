package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // cobra commands are global
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Merge the exports and print the validation warnings",
	Long: `Runs the same load and merge as "merge" without publishing, then prints
one warning per line. Warnings never fail the command.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addInputFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	_, res, err := a.runInputs(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	msgs := res.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(out, "All validations passed")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintln(out, m)
	}
	return nil
}
