package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/mviewer/errors"
)

// Document names served by the renderer.
const (
	ViewDocument = "view.json"
	PickDocument = "pick.json"
)

// HeaderDocument returns the name of the FITS header fragment for a plane index.
func HeaderDocument(index int) string {
	return fmt.Sprintf("header%d.html", index)
}

// Fetcher retrieves a renderer document by name.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// HTTPFetcher GETs documents relative to a base URL, adding a fresh seed
// query parameter to every request so no cache answers it.
type HTTPFetcher struct {
	base       *url.URL
	httpClient *http.Client
	seed       func() string
}

// NewHTTPFetcher creates a fetcher rooted at baseURL. A zero timeout waits
// for as long as the caller's context allows.
func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid base URL").
			WithDetail("url", baseURL)
	}
	return &HTTPFetcher{
		base:       base,
		httpClient: &http.Client{Timeout: timeout},
		seed:       uuid.NewString,
	}, nil
}

// URL returns the address fetched for name, including a new seed.
func (f *HTTPFetcher) URL(name string) string {
	u := f.base.ResolveReference(&url.URL{Path: name})
	q := u.Query()
	q.Set("seed", f.seed())
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(name), nil)
	if err != nil {
		return nil, errors.FetchFailed(name, 0, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.FetchFailed(name, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.FetchFailed(name, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.FetchFailed(name, resp.StatusCode, err)
	}
	return body, nil
}

// DirFetcher reads documents straight from the renderer's workspace directory.
type DirFetcher struct {
	Dir string
}

// Fetch implements Fetcher.
func (f DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.FetchFailed(name, 0, err)
	}
	data, err := os.ReadFile(filepath.Join(f.Dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, errors.FetchFailed(name, 0, err)
	}
	return data, nil
}
