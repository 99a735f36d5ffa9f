// Package webui exposes the upload form: three exports and a profile go in,
// a merged preview with its warnings comes out, and the result can be
// published with the configured sink.
//
// Routes:
//
//	GET  /                        → upload form
//	POST /merge                   → decodes uploads, merges, renders preview
//	GET  /sessions/{id}           → renders a session
//	POST /sessions/{id}/publish   → publishes the session result
//	GET  /api/sessions/{id}       → JSON summary of a session
package webui

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"reportmerge/internal/ingest"
	"reportmerge/internal/mapping"
	"reportmerge/internal/publish"
	"reportmerge/internal/session"
)

// previewRows is the number of merged rows shown on a session page.
const previewRows = 10

// Config controls server startup.
type Config struct {
	Addr          string
	MaxUploadSize int64
	SessionTTL    time.Duration
	Job           string
}

// PublisherFactory opens the sink used by the publish route.
type PublisherFactory func(ctx context.Context) (publish.Publisher, error)

// Deps are the collaborators of a Server. A nil Publisher disables
// publishing.
type Deps struct {
	Log       logrus.FieldLogger
	Loader    *ingest.Loader
	Profiles  *mapping.Registry
	Sessions  *session.Store
	Publisher PublisherFactory
}

// Server serves the upload UI.
type Server struct {
	cfg  Config
	deps Deps
	log  logrus.FieldLogger
	mux  *http.ServeMux
	tmpl *template.Template
	now  func() time.Time
}

// NewServer constructs a Server with routes and embedded template.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 64 << 20
	}
	if cfg.Job == "" {
		cfg.Job = "reportmerge"
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewStore()
	}
	if deps.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Log = l
	}
	if deps.Profiles == nil {
		deps.Profiles = mapping.NewRegistry()
	}
	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  deps.Log.WithField("component", "webui"),
		mux:  http.NewServeMux(),
		tmpl: template.Must(template.New("index").Funcs(funcs).Parse(indexHTML)),
		now:  time.Now,
	}
	s.routes()
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is done, then shuts down gracefully. Idle
// sessions are pruned once a minute when a TTL is configured.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.SessionTTL > 0 {
		go s.prune(ctx)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.WithField("addr", s.cfg.Addr).Info("Listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) prune(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.deps.Sessions.Prune(s.cfg.SessionTTL); n > 0 {
				s.log.WithField("sessions", n).Debug("Pruned idle sessions")
			}
		}
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /merge", s.handleMerge)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleSession)
	s.mux.HandleFunc("POST /sessions/{id}/publish", s.handlePublish)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleAPISession)
}

// indexHTML is the embedded page used for the form and session views.
//
//go:embed index.tmpl.html
var indexHTML string
