package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the raw bytes of a resource (e.g., filepath, URL).
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetchError reports a resource that could not be retrieved.
// Status is the HTTP status code when the server answered with a non-2xx.
type FetchError struct {
	Location string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Location, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Locator dispatches http(s) locations to HTTP and everything else to the
// local filesystem.
type Locator struct {
	HTTP HTTPFetcher
	File FileFetcher
}

func NewLocator(timeout time.Duration) *Locator {
	return &Locator{HTTP: HTTPFetcher{Client: &http.Client{Timeout: timeout}}}
}

func (l *Locator) Fetch(ctx context.Context, location string) ([]byte, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return l.HTTP.Fetch(ctx, location)
	}
	return l.File.Fetch(ctx, location)
}

// HTTPFetcher GETs a URL. A nil Client means http.DefaultClient.
type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Location: location, Status: resp.StatusCode, Err: fmt.Errorf("%s", resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	return data, nil
}

// FileFetcher reads a local file.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	return data, nil
}
