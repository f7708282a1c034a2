// Package fetcher downloads remote data from the federal statistical
// APIs and bulk-file hosts, with per-host rate limiting and retry.
package fetcher

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned for HTTP 404 responses. Some upstream
// endpoints use 404 for valid queries with no data (the QCEW slice
// files), so callers need to distinguish it from transport failures.
var ErrNotFound = eris.New("fetcher: not found")

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// Post sends a JSON body to the URL and returns the response body.
	Post(ctx context.Context, url string, body []byte) (io.ReadCloser, error)
}
