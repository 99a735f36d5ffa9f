package httpds

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/zeebo/xxh3"
)

// Remote is a datasource backed by an export URL.
type Remote struct {
	client *Client
	url    string
}

// NewRemote binds rawURL to client.
func NewRemote(client *Client, rawURL string) *Remote {
	return &Remote{client: client, url: rawURL}
}

// Open issues the GET and returns the response body.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	return r.client.Get(ctx, r.url)
}

// Name returns a file-like name for the URL.
func (r *Remote) Name() string { return FilenameFromURL(r.url) }

// IsURL reports whether location is an http(s) URL.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FilenameFromURL returns the last path segment of rawURL so the extension can
// pick a decoder. URLs without a usable segment get a stable hash name with a
// .csv extension, which is what export endpoints serve by default.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		base := path.Base(u.Path)
		if base != "." && base != "/" && strings.Contains(base, ".") {
			return base
		}
	}
	return fmt.Sprintf("%016x.csv", xxh3.HashString(rawURL))
}
