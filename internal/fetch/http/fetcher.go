// Package httpfetch retrieves policy metadata over HTTP.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/asimihsan/manup/internal/metrics"
	"github.com/asimihsan/manup/pkg/gate"
)

// maxBodyBytes bounds how much of a metadata response is read.
const maxBodyBytes = 1 << 20

// Fetcher implements gate.Fetcher over net/http.
type Fetcher struct {
	httpClient  *http.Client
	cacheBuster bool
}

var _ gate.Fetcher = (*Fetcher)(nil)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the default client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = c }
}

// WithCacheBuster appends a random q parameter to every request so that
// intermediate caches never serve a stale document.
func WithCacheBuster() Option {
	return func(f *Fetcher) { f.cacheBuster = true }
}

// New creates a Fetcher with the given request timeout.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get implements gate.Fetcher.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	timer := prometheus.NewTimer(metrics.MetadataFetchLatency.WithLabelValues("remote"))
	defer timer.ObserveDuration()

	target, err := f.requestURL(rawURL)
	if err != nil {
		metrics.MetadataFetchErrors.WithLabelValues("request_creation").Inc()
		return nil, fmt.Errorf("%w: %v", gate.ErrNetworkFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		metrics.MetadataFetchErrors.WithLabelValues("request_creation").Inc()
		return nil, fmt.Errorf("%w: creating request: %v", gate.ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		metrics.MetadataFetchErrors.WithLabelValues("http_error").Inc()
		return nil, fmt.Errorf("%w: %v", gate.ErrNetworkFailure, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			metrics.MetadataFetchErrors.WithLabelValues("body_close_error").Inc()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		metrics.MetadataFetchErrors.WithLabelValues(fmt.Sprintf("status_%d", resp.StatusCode)).Inc()
		return nil, fmt.Errorf("%w: unexpected status code %d", gate.ErrNetworkFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		metrics.MetadataFetchErrors.WithLabelValues("read_error").Inc()
		return nil, fmt.Errorf("%w: reading body: %v", gate.ErrNetworkFailure, err)
	}
	if len(body) > maxBodyBytes {
		metrics.MetadataFetchErrors.WithLabelValues("oversize").Inc()
		return nil, fmt.Errorf("%w: body exceeds %d bytes", gate.ErrNetworkFailure, maxBodyBytes)
	}

	return body, nil
}

func (f *Fetcher) requestURL(rawURL string) (string, error) {
	if !f.cacheBuster {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	q.Set("q", strconv.FormatFloat(rand.Float64(), 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
