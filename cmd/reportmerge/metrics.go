package main

import (
	"github.com/sirupsen/logrus"

	"reportmerge/internal/config"
	"reportmerge/internal/metrics"
	"reportmerge/internal/metrics/datadog"
	"reportmerge/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the function that
// flushes it. A backend that fails to start leaves metrics disabled.
func setupMetrics(cfg config.MetricsConfig, log logrus.FieldLogger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Backend {
	case "prometheus":
		b, err = prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		log.WithField("backend", cfg.Backend).Debug("Metrics disabled")
		return func() {}
	}
	if err != nil {
		log.WithError(err).Warn("Metrics backend unavailable; continuing without metrics")
		return func() {}
	}

	log.WithFields(logrus.Fields{"backend": cfg.Backend, "job": cfg.Job}).Debug("Metrics enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("Metrics flush failed")
		}
	}
}
