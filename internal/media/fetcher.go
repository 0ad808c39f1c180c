package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher retrieves the bytes behind a resolved media location: remote
// assets over HTTP, local assets from the media directory, inline data URIs
// decoded in place.
type Fetcher struct {
	mediaDir string
	http     *http.Client
}

// NewFetcher creates a fetcher rooted at the given local media directory.
func NewFetcher(mediaDir string) *Fetcher {
	return &Fetcher{
		mediaDir: mediaDir,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch reads a resolved location into memory. The context bounds the
// remote case; local reads are quick enough not to need it.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return f.fetchHTTP(ctx, location)
	case strings.HasPrefix(location, "data:"):
		return decodeDataURI(location)
	case strings.HasPrefix(location, "file://"):
		return os.ReadFile(strings.TrimPrefix(location, "file://"))
	}

	path := location
	if !filepath.IsAbs(path) && f.mediaDir != "" {
		path = filepath.Join(f.mediaDir, path)
	}
	return os.ReadFile(path)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	return []byte(payload), nil
}
