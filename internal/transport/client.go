// Package transport issues the raw HTTP GETs that source adapters parse.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 8 << 20
)

// Response is the raw result of a GET
type Response struct {
	URL    string
	Status int
	Body   []byte
}

// OK reports whether the status is 2xx
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client fetches a URL within a timeout.
// A non-2xx status is not an error at this level; callers decide.
type Client interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) (Response, error)
}

// Options configures an HTTPClient
type Options struct {
	UserAgent string
	// RequestsPerSecond limits requests per upstream host; 0 disables limiting
	RequestsPerSecond float64
	Burst             int
}

// HTTPClient implements Client with net/http and a per-host rate limiter
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string
	rps        rate.Limit
	burst      int
	logger     *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPClient creates a new HTTPClient
func NewHTTPClient(opts Options, logger *zap.Logger) *HTTPClient {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &HTTPClient{
		httpClient: &http.Client{},
		userAgent:  userAgent,
		rps:        rate.Limit(opts.RequestsPerSecond),
		burst:      burst,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Get performs a single GET request bounded by timeout
func (c *HTTPClient) Get(ctx context.Context, rawURL string, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Response{}, errors.Wrapf(err, "invalid url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if limiter := c.limiter(parsed.Host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return Response{}, errors.Wrapf(err, "rate limit wait for %s", parsed.Host)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "hu-HU,hu;q=0.9,en-US;q=0.5,en;q=0.3")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, errors.Wrapf(err, "GET %s", rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, errors.Wrapf(err, "failed to read response body from %s", rawURL)
	}

	c.logger.Debug("Fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)))

	return Response{
		URL:    rawURL,
		Status: resp.StatusCode,
		Body:   body,
	}, nil
}

func (c *HTTPClient) limiter(host string) *rate.Limiter {
	if c.rps <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.limiters[host] = l
	}
	return l
}
