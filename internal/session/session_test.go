package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportmerge/internal/mapping"
	"reportmerge/internal/publish"
	"reportmerge/internal/table"
)

func profile(t *testing.T) *mapping.Config {
	t.Helper()
	cfg, err := mapping.New(mapping.Definition{
		Name: "test",
		Outputs: []mapping.OutputColumn{
			{Name: "ID", Spec: mapping.DirectRef{Source: mapping.XTM, Column: "Project ID"}},
			{Name: "Status", Spec: mapping.Constant{Value: "Translated"}},
		},
	})
	require.NoError(t, err)
	return cfg
}

func tbl(name string, cols ...string) *table.Table {
	t := table.New(name, cols)
	t.Append("P1")
	return t
}

func loaded(t *testing.T) *Session {
	t.Helper()
	s := New(profile(t))
	s.SetSource(mapping.XTM, tbl("XTM", "Project ID"))
	s.SetSource(mapping.TOS, tbl("TOS", "order_id"))
	s.SetSource(mapping.EDIT, tbl("Edit Distance", "Task ID"))
	return s
}

/*
TestRun_RequiresAllInputs verifies Run refuses to merge until the three
exports are present.
*/
func TestRun_RequiresAllInputs(t *testing.T) {
	s := New(profile(t))
	s.SetSource(mapping.XTM, tbl("XTM", "Project ID"))
	assert.False(t, s.Ready())

	_, err := s.Run("test")
	require.ErrorIs(t, err, ErrNotReady)

	_, ok := s.Result()
	assert.False(t, ok)
}

func TestRun_StoresResult(t *testing.T) {
	s := loaded(t)
	require.True(t, s.Ready())

	res, err := s.Run("test")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Status"}, res.Output.Columns)
	assert.Equal(t, [][]any{{"P1", "Translated"}}, res.Output.Rows)

	got, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, res, got)
}

/*
TestSetSource_InvalidatesResult verifies new inputs or a new profile drop the
stale result and receipt.
*/
func TestSetSource_InvalidatesResult(t *testing.T) {
	s := loaded(t)
	_, err := s.Run("test")
	require.NoError(t, err)
	s.SetPublished(publish.Receipt{Kind: "xlsx"})

	s.SetSource(mapping.TOS, tbl("TOS", "order_id"))
	_, ok := s.Result()
	assert.False(t, ok)
	_, ok = s.Published()
	assert.False(t, ok)

	_, err = s.Run("test")
	require.NoError(t, err)
	s.SetProfile(mapping.IndeedStandard())
	_, ok = s.Result()
	assert.False(t, ok)
	assert.Equal(t, mapping.IndeedStandardName, s.Profile().Name())
}

func TestReport(t *testing.T) {
	s := loaded(t)
	_, err := s.Report("x", time.Now())
	require.ErrorIs(t, err, ErrNoResult)

	_, err = s.Run("test")
	require.NoError(t, err)
	r, err := s.Report("Weekly", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Weekly", r.Title)
	assert.Equal(t, 1, r.MergedRows())
	assert.Len(t, r.Sources, 3)
}

func TestPublished(t *testing.T) {
	s := loaded(t)
	_, ok := s.Published()
	assert.False(t, ok)

	s.SetPublished(publish.Receipt{Kind: "sql", ID: "abc"})
	rec, ok := s.Published()
	require.True(t, ok)
	assert.Equal(t, "abc", rec.ID)
}

func TestSession_ConcurrentUse(t *testing.T) {
	s := loaded(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Run("test")
		}()
		go func() {
			defer wg.Done()
			s.SetSource(mapping.EDIT, tbl("Edit Distance", "Task ID"))
			_ = s.Ready()
		}()
	}
	wg.Wait()
	assert.True(t, s.Ready())
}

func TestStore(t *testing.T) {
	st := NewStore()
	s := st.Create(profile(t))
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(s.ID().String())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = st.Get("not-a-uuid")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(uuid.NewString())
	require.ErrorIs(t, err, ErrSessionNotFound)

	st.Delete(s.ID())
	_, err = st.Get(s.ID().String())
	require.ErrorIs(t, err, ErrSessionNotFound)
}

/*
TestStore_Prune verifies only sessions idle past the ttl are removed.
*/
func TestStore_Prune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore()
	st.now = func() time.Time { return now }

	old := st.Create(profile(t))
	now = now.Add(90 * time.Minute)
	fresh := st.Create(profile(t))
	now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, st.Prune(time.Hour))
	_, err := st.Get(old.ID().String())
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(fresh.ID().String())
	require.NoError(t, err)
	assert.Equal(t, old.CreatedAt().Add(90*time.Minute), fresh.CreatedAt())
}
