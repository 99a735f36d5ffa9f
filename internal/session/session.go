// Package session holds the state of one interactive merge: the chosen
// profile, the uploaded exports, the last result and its publication.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"reportmerge/internal/mapping"
	"reportmerge/internal/merge"
	"reportmerge/internal/metrics"
	"reportmerge/internal/publish"
	"reportmerge/internal/table"
)

// Session is safe for concurrent use.
type Session struct {
	id        uuid.UUID
	createdAt time.Time

	mu        sync.Mutex
	profile   *mapping.Config
	inputs    merge.Inputs
	result    *merge.Result
	published *publish.Receipt
	touched   time.Time
	clock     func() time.Time
}

// New returns an empty session using profile.
func New(profile *mapping.Config) *Session {
	return newSession(profile, time.Now)
}

func newSession(profile *mapping.Config, clock func() time.Time) *Session {
	now := clock()
	return &Session{id: uuid.New(), createdAt: now, touched: now, profile: profile, clock: clock}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// CreatedAt returns the creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Profile returns the current profile.
func (s *Session) Profile() *mapping.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile switches the profile and drops any previous result.
func (s *Session) SetProfile(cfg *mapping.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = cfg
	s.invalidate()
}

// SetSource stores the export of src and drops any previous result.
func (s *Session) SetSource(src mapping.SourceID, t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Set(src, t)
	s.invalidate()
}

// Inputs returns the loaded exports.
func (s *Session) Inputs() merge.Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

// Ready reports whether a profile and all three exports are present.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile != nil && s.inputs.Complete()
}

// Run merges the current inputs and stores the result.
func (s *Session) Run(job string) (merge.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || !s.inputs.Complete() {
		return merge.Result{}, ErrNotReady
	}

	var res merge.Result
	_ = metrics.Time(job, "merge", func() error {
		res = merge.Merge(s.inputs, s.profile)
		return nil
	})
	metrics.RecordRows(job, "output_rows", res.Output.Len())
	metrics.RecordWarnings(job, "merge", len(res.Warnings))

	s.result = &res
	s.published = nil
	s.touched = s.clock()
	return res, nil
}

// Result returns the last merge result, if any.
func (s *Session) Result() (merge.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return merge.Result{}, false
	}
	return *s.result, true
}

// Report builds the publishable report of the last result.
func (s *Session) Report(title string, now time.Time) (publish.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return publish.Report{}, fmt.Errorf("%w: %s", ErrNoResult, s.id)
	}
	return publish.NewReport(title, s.inputs, *s.result, now), nil
}

// SetPublished records the receipt of the last publication.
func (s *Session) SetPublished(r publish.Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = &r
	s.touched = s.clock()
}

// Published returns the last receipt, if any.
func (s *Session) Published() (publish.Receipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.published == nil {
		return publish.Receipt{}, false
	}
	return *s.published, true
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// invalidate must be called with mu held.
func (s *Session) invalidate() {
	s.result = nil
	s.published = nil
	s.touched = s.clock()
}
