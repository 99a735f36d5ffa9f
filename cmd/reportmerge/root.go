package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reportmerge/internal/config"
	"reportmerge/internal/ingest"
	"reportmerge/internal/mapping"
)

//nolint:gochecknoglobals // cobra flags are global
var (
	cfgFile  string
	logLevel string
	logger   *logrus.Logger
)

//nolint:gochecknoglobals // cobra commands are global
var rootCmd = &cobra.Command{
	Use:   "reportmerge",
	Short: "Merge localization exports into a fixed-schema report",
	Long: `reportmerge joins the XTM project export, the TOS order export and the
edit distance export on their keys and projects the result into the columns
of a mapping profile. The report can be written to Google Sheets, an xlsx
workbook or a SQL database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides the config")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// app is the state shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	profiles *mapping.Registry
	loader   *ingest.Loader
}

// setup loads and validates the config, applies the log level and loads the
// profile directory.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging = logLevel
	}

	issues := config.ValidateConfig(*cfg)
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if errs := config.Errors(issues); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs[0])
	}

	level, err := logrus.ParseLevel(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	logger.SetOutput(cmd.ErrOrStderr())

	profiles := mapping.NewRegistry()
	if cfg.ProfilesDir != "" {
		if err := profiles.LoadDir(cfg.ProfilesDir); err != nil {
			return nil, err
		}
	}

	loader := ingest.New(logger, ingest.Options{
		CSV:  cfg.CSV.Options(),
		HTTP: cfg.HTTP.Client(),
		Job:  cfg.Metrics.Job,
	})
	return &app{cfg: cfg, log: logger, profiles: profiles, loader: loader}, nil
}
