package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameFromURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "export.xlsx", FilenameFromURL("https://tos.example.com/reports/export.xlsx?token=x"))

	got := FilenameFromURL("https://tos.example.com/reports/")
	assert.True(t, strings.HasSuffix(got, ".csv"), got)
	assert.Equal(t, got, FilenameFromURL("https://tos.example.com/reports/"))
	assert.NotEqual(t, got, FilenameFromURL("https://tos.example.com/other/"))
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsURL("https://example.com/a.csv"))
	assert.True(t, IsURL("http://localhost:8080/x"))
	assert.False(t, IsURL("/tmp/xtm.csv"))
	assert.False(t, IsURL("C:\\exports\\xtm.csv"))
	assert.False(t, IsURL("ftp://example.com/a.csv"))
}

func TestRemote_Open(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "a,b\n")
	}))
	defer srv.Close()

	r := NewRemote(NewClient(Config{}), srv.URL+"/edit.csv")
	assert.Equal(t, "edit.csv", r.Name())

	rc, err := r.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(b))
}
