package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reportmerge/internal/mapping"
	"reportmerge/internal/merge"
	"reportmerge/internal/publish"
	"reportmerge/internal/session"
)

//nolint:gochecknoglobals // cobra flags are global
var mergeFlags struct {
	xtm, tos, edit string
	profile        string
	publish        string
	out            string
	title          string
}

//nolint:gochecknoglobals // cobra commands are global
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the three exports and publish the report",
	Long: `Loads the XTM, TOS and edit distance exports (local paths or URLs),
merges them with the selected profile and publishes the report. Inputs fall
back to the config file. --out writes an xlsx workbook and implies
--publish xlsx.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	addInputFlags(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeFlags.publish, "publish", "", "sink to publish to (sheets, xlsx, sql); overrides the config")
	mergeCmd.Flags().StringVar(&mergeFlags.out, "out", "", "xlsx output path")
	mergeCmd.Flags().StringVar(&mergeFlags.title, "title", "", "report title (default <profile>_Report_<timestamp>)")
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mergeFlags.xtm, "xtm", "", "XTM project export")
	cmd.Flags().StringVar(&mergeFlags.tos, "tos", "", "TOS order export")
	cmd.Flags().StringVar(&mergeFlags.edit, "edit", "", "edit distance export")
	cmd.Flags().StringVar(&mergeFlags.profile, "profile", "", "mapping profile; overrides the config")
}

// runInputs loads the exports and merges them in a fresh session.
func (a *app) runInputs(ctx context.Context) (*session.Session, merge.Result, error) {
	locations := a.cfg.Inputs.Sources()
	for src, loc := range map[mapping.SourceID]string{
		mapping.XTM:  mergeFlags.xtm,
		mapping.TOS:  mergeFlags.tos,
		mapping.EDIT: mergeFlags.edit,
	} {
		if loc != "" {
			locations[src] = loc
		}
	}

	name := a.cfg.Profile
	if mergeFlags.profile != "" {
		name = mergeFlags.profile
	}
	profile, err := a.profiles.Get(name)
	if err != nil {
		return nil, merge.Result{}, err
	}

	in, err := a.loader.LoadAll(ctx, locations)
	if err != nil {
		return nil, merge.Result{}, err
	}

	sess := session.New(profile)
	for src, t := range in.Sources() {
		sess.SetSource(src, t)
	}
	res, err := sess.Run(a.cfg.Metrics.Job)
	if err != nil {
		return nil, merge.Result{}, err
	}
	a.log.WithFields(logrus.Fields{
		"profile":  profile.Name(),
		"rows":     res.Output.Len(),
		"columns":  res.Output.Width(),
		"warnings": len(res.Warnings),
	}).Info("Merged exports")
	return sess, res, nil
}

func runMerge(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	flush := setupMetrics(a.cfg.Metrics, a.log)
	defer flush()

	ctx := cmd.Context()
	sess, res, err := a.runInputs(ctx)
	if err != nil {
		return err
	}
	for _, w := range res.Messages() {
		a.log.Warn(w)
	}

	pc := a.cfg.Publish
	if mergeFlags.publish != "" {
		pc.Kind = mergeFlags.publish
	}
	if mergeFlags.out != "" {
		pc.Kind = "xlsx"
		pc.XLSX.Path = mergeFlags.out
	}
	if mergeFlags.title != "" {
		pc.Title = mergeFlags.title
	}
	if pc.Kind == "" {
		a.log.Info("No publish kind configured; skipping publish")
		return nil
	}

	report, err := sess.Report(pc.Title, time.Now())
	if err != nil {
		return err
	}
	p, err := publish.New(ctx, pc.Publisher(a.log))
	if err != nil {
		return err
	}
	defer p.Close()

	rec, err := publish.Run(ctx, p, report, a.cfg.Metrics.Job, a.log)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	sess.SetPublished(rec)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
