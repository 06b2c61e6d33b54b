// Package upstream retrieves the published provider IP range documents.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/common/utils"
	"github.com/haukened/ipmon/internal/ipmon/services/monitor"
)

// Error message constants for consistent error handling
const (
	errNoSourcesProvided = "no upstream sources provided"
	errSourceFailed      = "source %s: %w"
	errBuildRequest      = "build request: %w"
	errRequestFailed     = "request failed: %w"
	errUnexpectedStatus  = "unexpected status %d"
	errReadFailed        = "read failed: %w"
	errDecodeFailed      = "decode failed: %w"
	errResponseTooLarge  = "response exceeds %d bytes"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 10 << 20
	maxParallel      = 4
	userAgent        = "ipmon/1.0"
)

var _ monitor.Fetcher = (*Fetcher)(nil)

// Fetcher downloads every configured source concurrently.
type Fetcher struct {
	sources []utils.Source
	client  *http.Client
	logger  log.Logger
}

// Options defines the sources to fetch and the HTTP behaviour.
type Options struct {
	// required parameters
	Sources []utils.Source
	Timeout time.Duration
	// options to inject for testing purposes
	Client *http.Client
	Logger log.Logger
}

// NewFetcher creates a fetcher for the given sources. The timeout applies to
// each request and defaults to 10 seconds.
func NewFetcher(opts Options) (*Fetcher, error) {
	if len(opts.Sources) == 0 {
		return nil, fmt.Errorf(errNoSourcesProvided)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Fetcher{
		sources: opts.Sources,
		client:  opts.Client,
		logger:  opts.Logger,
	}, nil
}

// Fetch returns the decoded JSON object of every source keyed by source name.
// A source that fails maps to nil and its error is joined into the returned
// error; the remaining sources are still returned.
func (f *Fetcher) Fetch(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, len(f.sources))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, src := range f.sources {
		g.Go(func() error {
			doc, err := f.fetchOne(gctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out[src.Name] = nil
				errs = append(errs, fmt.Errorf(errSourceFailed, src.Name, err))
				f.logger.Warn(map[string]any{
					"source": src.Name,
					"url":    src.URL,
					"error":  err.Error(),
				}, "failed to fetch source")
				return nil
			}
			out[src.Name] = doc
			f.logger.Debug(map[string]any{"source": src.Name}, "fetched source")
			return nil
		})
	}
	_ = g.Wait()
	return out, errors.Join(errs...)
}

func (f *Fetcher) fetchOne(ctx context.Context, src utils.Source) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf(errBuildRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf(errUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf(errReadFailed, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf(errResponseTooLarge, maxResponseBytes)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf(errDecodeFailed, err)
	}
	if doc == nil {
		return nil, fmt.Errorf(errDecodeFailed, errors.New("document is not a JSON object"))
	}
	return doc, nil
}
