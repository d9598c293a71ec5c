package contentfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/circuitbreaker"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/retry"
)

// DefaultTimeout is the fetch deadline used when no configuration
// overrides it.
const DefaultTimeout = 10 * time.Second

// Fetcher implements C3: Fetch(url) -> raw HTML text. Extraction (C4) is a
// separate, pure stage; this type performs only the network round trip.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryPolicy    retry.Policy
	timeout        time.Duration
	denyPrivateIPs bool
	userAgent      string
}

// New creates a Fetcher with the given per-request timeout. A zero timeout
// selects DefaultTimeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:         &http.Client{Timeout: timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		retryPolicy:    retry.FeedFetchPolicy(),
		timeout:        timeout,
		denyPrivateIPs: true,
		userAgent:      "nvidia-blog-agent/1.0",
	}
}

// Fetch retrieves the raw HTML body at url. Network errors, non-2xx
// responses, and timeouts are reported as a single *FetchFailed error so
// the ingestion pipeline can uniformly drop the offending post without
// aborting the run.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := validateURL(url, f.denyPrivateIPs); err != nil {
		return "", &FetchFailed{URL: url, Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var body string

	retryErr := retry.Do(ctx, f.retryPolicy, func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("content fetch circuit breaker open, request rejected",
					slog.String("url", url))
			}
			return err
		}
		body = result.(string)
		return nil
	})

	if retryErr != nil {
		return "", &FetchFailed{URL: url, Cause: retryErr}
	}
	return body, nil
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("fetching %s", url)}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
