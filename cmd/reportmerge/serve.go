package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reportmerge/internal/publish"
	"reportmerge/internal/session"
	"reportmerge/internal/webui"
)

//nolint:gochecknoglobals // cobra flags are global
var serveAddr string

//nolint:gochecknoglobals // cobra commands are global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload and preview web UI",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address; overrides server.addr")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	flush := setupMetrics(a.cfg.Metrics, a.log)
	defer flush()

	cfg := webui.Config{
		Addr:          a.cfg.Server.Addr,
		MaxUploadSize: a.cfg.Server.MaxUploadSize,
		SessionTTL:    a.cfg.Server.SessionTTL,
		Job:           a.cfg.Metrics.Job,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	deps := webui.Deps{
		Log:      a.log,
		Loader:   a.loader,
		Profiles: a.profiles,
		Sessions: session.NewStore(),
	}
	if a.cfg.Publish.Kind != "" {
		pc := a.cfg.Publish.Publisher(a.log)
		deps.Publisher = func(ctx context.Context) (publish.Publisher, error) {
			return publish.New(ctx, pc)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return webui.NewServer(cfg, deps).ListenAndServe(ctx)
}
