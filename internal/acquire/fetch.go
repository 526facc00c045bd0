// Package acquire downloads the model and texture payloads of recipe items
// into the item store, one fetch at a time.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrHTTPStatus is wrapped by fetch errors for non-2xx responses.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Fetcher copies the payload at url to the file dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url, dest string) error

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url, dest string) error {
	return f(ctx, url, dest)
}

// FetchError reports a failed fetch.
type FetchError struct {
	URL    string
	Dest   string
	Status int // HTTP status, 0 for transport errors
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("when downloading %s to %s: %v", e.URL, e.Dest, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher fetches http, https and file URLs.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration // per fetch, 0 for none
}

// NewHTTPFetcher returns a fetcher whose client also serves file:// URLs
// from the local filesystem.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &HTTPFetcher{
		Client:    &http.Client{Transport: transport},
		UserAgent: userAgent,
		Timeout:   timeout,
	}
}

// Fetch downloads url into dest, truncating any existing file. A failed
// transfer may leave a partial file behind.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	fail := func(status int, err error) error {
		return &FetchError{URL: url, Dest: dest, Status: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(0, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fail(resp.StatusCode, err)
	}
	if err := out.Close(); err != nil {
		return fail(resp.StatusCode, err)
	}
	return nil
}
