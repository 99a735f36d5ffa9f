package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reportmerge/internal/mapping"
)

//nolint:gochecknoglobals // cobra commands are global
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the mapping profiles and their report columns",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range a.profiles.Names() {
		cfg, err := a.profiles.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d columns\tprimary %s\n", cfg.Name(), cfg.Width(), cfg.Primary().Label())
		for _, j := range cfg.Joins() {
			fmt.Fprintf(w, "  join\t%s = %s.%s\t\n", j.PrimaryKey, j.Secondary.Label(), j.SecondaryKey)
		}
		for i, oc := range cfg.Outputs() {
			fmt.Fprintf(w, "  %2d\t%s\t%s\n", i+1, oc.Name, describe(oc.Spec))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func describe(spec mapping.ColumnSpec) string {
	switch s := spec.(type) {
	case mapping.Constant:
		if s.Value == nil {
			return "static (empty)"
		}
		return fmt.Sprintf("static %v", s.Value)
	case mapping.DirectRef:
		if s.Source == "" {
			return fmt.Sprintf("direct %q", s.Column)
		}
		return fmt.Sprintf("direct %s.%q", s.Source.Label(), s.Column)
	case mapping.DerivedSum:
		return "formula SUM(" + strings.Join(s.Columns, ", ") + ")"
	}
	return spec.Kind()
}
