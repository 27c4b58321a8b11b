package openmeteo

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const maxBackoff = 30 * time.Second

// Client talks to the Open-Meteo forecast API
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
	logger      *log.Entry
	retry       *retryablehttp.Client
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new API client. By default a request is attempted up
// to 5 times, waiting 0.2s, 0.4s, 0.8s and 1.6s between attempts.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxAttempts: 5,
		backoffBase: 200 * time.Millisecond,
		logger:      log.WithField("component", "openmeteo"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = c.httpClient
	rc.RetryMax = c.maxAttempts - 1
	rc.RetryWaitMin = c.backoffBase
	rc.RetryWaitMax = maxBackoff
	rc.Backoff = exponentialBackoff
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	rc.Logger = &retryLogger{entry: c.logger}
	c.retry = rc

	return c
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTransport sets the round tripper used for network calls, e.g. a cache.
// The current HTTP client is copied, a client passed to WithHTTPClient is
// left untouched.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Transport = rt
		c.httpClient = &hc
	}
}

// WithRetry sets the total number of attempts and the first backoff delay
func WithRetry(maxAttempts int, backoffBase time.Duration) ClientOption {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.backoffBase = backoffBase
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(logger *log.Entry) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// exponentialBackoff waits min * 2^attempt before retry number attempt
// (0-based), capped at max. A zero min disables the wait.
func exponentialBackoff(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
	if min <= 0 {
		return 0
	}
	wait := float64(min) * math.Pow(2, float64(attemptNum))
	if wait > float64(max) {
		return max
	}
	return time.Duration(wait)
}

// do executes req with the retry policy
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return c.retry.Do(req)
}

// retryLogger adapts logrus to retryablehttp.LeveledLogger
type retryLogger struct {
	entry *log.Entry
}

func (l *retryLogger) fields(keysAndValues []interface{}) *log.Entry {
	fields := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return l.entry.WithFields(fields)
}

// Error is logged as a warning: a failed attempt is only fatal once the
// retries are exhausted, and that error is returned to the caller.
func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
