package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"reportmerge/internal/mapping"
	"reportmerge/internal/merge"
	"reportmerge/internal/publish"
	"reportmerge/internal/session"
	"reportmerge/internal/table"
)

var funcs = template.FuncMap{"text": table.Text}

type pageData struct {
	Profiles   []string
	Profile    string
	Error      string
	CanPublish bool
	Session    *sessionView
}

type sessionView struct {
	ID        string
	Profile   string
	Summary   merge.Summary
	Warnings  []string
	Published *publish.Receipt
}

// apiSession is the JSON shape of GET /api/sessions/{id}.
type apiSession struct {
	ID        string           `json:"id"`
	Profile   string           `json:"profile"`
	CreatedAt time.Time        `json:"created_at"`
	Ready     bool             `json:"ready"`
	Inputs    map[string]int   `json:"input_rows"`
	Summary   *merge.Summary   `json:"summary,omitempty"`
	Warnings  []string         `json:"warnings"`
	Published *publish.Receipt `json:"published,omitempty"`
}

func (s *Server) page() pageData {
	return pageData{
		Profiles:   s.deps.Profiles.Names(),
		Profile:    mapping.IndeedStandardName,
		CanPublish: s.deps.Publisher != nil,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.WithError(err).Error("Template error")
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	data := s.page()
	data.Error = msg
	s.render(w, status, data)
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, s.page())
}

// handleMerge decodes the three uploads, merges them in a new session and
// renders the preview.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		s.fail(w, http.StatusBadRequest, "bad upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	name := strings.TrimSpace(r.FormValue("profile"))
	if name == "" {
		name = mapping.IndeedStandardName
	}
	profile, err := s.deps.Profiles.Get(name)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := s.deps.Sessions.Create(profile)
	for _, src := range mapping.Sources {
		f, hdr, err := r.FormFile(src.Tag())
		if err != nil {
			s.deps.Sessions.Delete(sess.ID())
			s.fail(w, http.StatusBadRequest, fmt.Sprintf("missing %s export", src.Label()))
			return
		}
		t, err := s.deps.Loader.Decode(r.Context(), f, hdr.Filename, src)
		f.Close()
		if err != nil {
			s.deps.Sessions.Delete(sess.ID())
			s.fail(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", src.Label(), err))
			return
		}
		sess.SetSource(src, t)
	}

	res, err := sess.Run(s.cfg.Job)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.WithFields(logrus.Fields{
		"session":  sess.ID(),
		"profile":  name,
		"rows":     res.Output.Len(),
		"warnings": len(res.Warnings),
	}).Info("Merged uploads")
	s.renderSession(w, http.StatusOK, sess)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.deps.Sessions.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// handleSession renders an existing session.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		s.renderSession(w, http.StatusOK, sess)
	}
}

func (s *Server) renderSession(w http.ResponseWriter, status int, sess *session.Session) {
	data := s.page()
	v := &sessionView{ID: sess.ID().String()}
	if p := sess.Profile(); p != nil {
		v.Profile = p.Name()
		data.Profile = p.Name()
	}
	if res, ok := sess.Result(); ok {
		v.Summary = merge.Preview(res.Output, previewRows)
		v.Warnings = res.Messages()
	}
	if rec, ok := sess.Published(); ok {
		v.Published = &rec
	}
	data.Session = v
	s.render(w, status, data)
}

// handlePublish publishes the session result and redirects to the session
// page.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.deps.Publisher == nil {
		http.Error(w, "publishing is not configured", http.StatusConflict)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := sess.Report(strings.TrimSpace(r.FormValue("title")), s.now())
	if errors.Is(err, session.ErrNoResult) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	p, err := s.deps.Publisher(r.Context())
	if err != nil {
		s.log.WithError(err).Error("Open publisher")
		http.Error(w, "publish failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer p.Close()

	rec, err := publish.Run(r.Context(), p, report, s.cfg.Job, s.log.WithField("session", sess.ID()))
	if err != nil {
		s.log.WithError(err).Error("Publish failed")
		http.Error(w, "publish failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	sess.SetPublished(rec)
	http.Redirect(w, r, "/sessions/"+sess.ID().String(), http.StatusSeeOther)
}

// handleAPISession returns the session state as JSON.
func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	out := apiSession{
		ID:        sess.ID().String(),
		CreatedAt: sess.CreatedAt(),
		Ready:     sess.Ready(),
		Inputs:    map[string]int{},
		Warnings:  []string{},
	}
	if p := sess.Profile(); p != nil {
		out.Profile = p.Name()
	}
	for src, t := range sess.Inputs().Sources() {
		if t != nil {
			out.Inputs[src.Tag()] = t.Len()
		}
	}
	if res, ok := sess.Result(); ok {
		sum := merge.Preview(res.Output, previewRows)
		out.Summary = &sum
		out.Warnings = append(out.Warnings, res.Messages()...)
	}
	if rec, ok := sess.Published(); ok {
		out.Published = &rec
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.log.WithError(err).Error("Encode session")
	}
}
