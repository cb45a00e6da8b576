package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/trackerops/tracker-audit/pkg/ratelimit"
)

// DefaultBaseURL is the production endpoint of the tracker API.
const DefaultBaseURL = "https://api.tracker.yandex.net"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	// throttleBackoffCap bounds the sleep between retries of a throttled
	// request.
	throttleBackoffCap = 10 * time.Second
)

// OrgType selects which organization-scope header authenticates requests.
type OrgType string

const (
	// OrgTypeStandard sends the X-Org-ID header.
	OrgTypeStandard OrgType = "standard"
	// OrgTypeCloud sends the X-Cloud-Org-ID header.
	OrgTypeCloud OrgType = "cloud"
)

// Client is the sole point of contact with the tracker API. Every call goes
// through the pacing limiter and the bounded retry loop in do.
type Client struct {
	baseURL    *url.URL
	token      string
	orgID      string
	orgType    OrgType
	userAgent  string
	maxRetries int
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *zap.SugaredLogger

	// sleep is swapped out in tests to observe backoff behavior.
	sleep func(time.Duration)

	start          time.Time
	totalRequests  atomic.Int64
	failedRequests atomic.Int64
}

type Option func(*Client) error

// New creates a client. A token and an organization id are required.
func New(opts ...Option) (*Client, error) {
	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		baseURL:    base,
		orgType:    OrgTypeStandard,
		userAgent:  "trackeraudit",
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    ratelimit.New(ratelimit.DefaultRate),
		logger:     zap.NewNop().Sugar(),
		sleep:      time.Sleep,
		start:      time.Now(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.token == "" {
		return nil, errors.New("token is required")
	}
	if c.orgID == "" {
		return nil, errors.New("organization id is required")
	}
	return c, nil
}

func WithBaseURL(base string) Option {
	return func(c *Client) error {
		if base == "" {
			return errors.New("base URL is required")
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		c.baseURL = parsed
		return nil
	}
}

func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

func WithOrg(orgID string, orgType OrgType) Option {
	return func(c *Client) error {
		if orgType != OrgTypeStandard && orgType != OrgTypeCloud {
			return fmt.Errorf("unknown org type: %s", orgType)
		}
		c.orgID = orgID
		c.orgType = orgType
		return nil
	}
}

// WithRate overrides the allowed requests per second. The limiter still
// tightens permanently when the service signals throttling.
func WithRate(requestsPerSecond float64) Option {
	return func(c *Client) error {
		c.limiter = ratelimit.New(requestsPerSecond)
		return nil
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return errors.New("max retries cannot be negative")
		}
		c.maxRetries = n
		return nil
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) error {
		c.logger = logger.Named("tracker")
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client is nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

// Limiter exposes the pacing limiter, primarily for statistics.
func (c *Client) Limiter() *ratelimit.Limiter { return c.limiter }

// Response wraps a successful (or absent, see NotFound) API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// NotFound reports whether the resource was absent. Absence is not an error;
// callers must check before decoding.
func (r *Response) NotFound() bool { return r.StatusCode == http.StatusNotFound }

// Decode unmarshals the response body into out. An empty body is a no-op.
func (r *Response) Decode(out interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, out)
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, query)
}

// do runs one API call through the retry state machine: each attempt waits on
// the pacing limiter, then the outcome is classified as success, retryable
// (throttled, timed out, unreachable), or terminal. The retry bound is strict;
// attempts = maxRetries + 1.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values) (*Response, error) {
	fullURL := *c.baseURL
	fullURL.Path = path.Join(fullURL.Path, endpoint)
	if query != nil {
		fullURL.RawQuery = query.Encode()
	}
	target := fullURL.String()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if attempt > 0 {
			c.logger.Infow("retrying request", "method", method, "url", target, "attempt", attempt+1)
		} else {
			c.logger.Debugw("request", "method", method, "url", target)
		}

		c.totalRequests.Add(1)
		started := time.Now()

		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "OAuth "+c.token)
		req.Header.Set("Content-Type", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if c.orgType == OrgTypeCloud {
			req.Header.Set("X-Cloud-Org-ID", c.orgID)
		} else {
			req.Header.Set("X-Org-ID", c.orgID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			timedOut := isTimeout(err)
			if attempt < c.maxRetries {
				c.logger.Warnw("transport failure, backing off",
					"url", target, "attempt", attempt+1, "timeout", timedOut, "error", err)
				c.sleep(transportBackoff(attempt))
				continue
			}
			c.failedRequests.Add(1)
			if timedOut {
				return nil, &TimeoutError{URL: target}
			}
			return nil, &ConnectionError{URL: target, Err: err}
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		elapsed := time.Since(started)
		c.logger.Debugw("response", "status", resp.StatusCode, "elapsed", elapsed)

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			c.limiter.OnThrottled()
			if attempt < c.maxRetries {
				backoff := throttleBackoff(attempt)
				c.logger.Warnw("throttled by the service, backing off",
					"url", target, "attempt", attempt+1, "backoff", backoff)
				c.sleep(backoff)
				continue
			}
			c.failedRequests.Add(1)
			return nil, &RateLimitError{Attempts: attempt + 1}

		case resp.StatusCode == http.StatusUnauthorized:
			c.failedRequests.Add(1)
			return nil, &UnauthorizedError{}

		case resp.StatusCode == http.StatusForbidden:
			c.failedRequests.Add(1)
			denial := parseAccessDenial(body)
			if denial != nil {
				c.logger.Infow("access denied",
					"url", target,
					"queue", denial.QueueKey,
					"owner", denial.OwnerName,
					"owner_email", denial.OwnerEmail,
					"deleted", denial.Deleted,
					"message", denial.Message)
			} else {
				c.logger.Infow("access denied, details unavailable", "url", target)
			}
			return nil, &PermissionDeniedError{Denial: denial}

		case resp.StatusCode == http.StatusNotFound:
			// Absence, not failure. The caller checks NotFound.
			return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Elapsed: elapsed}, nil

		case resp.StatusCode >= 500:
			c.failedRequests.Add(1)
			c.logger.Errorw("server error", "url", target, "status", resp.StatusCode)
			return nil, &ServerError{Code: resp.StatusCode}

		case resp.StatusCode >= 400:
			c.failedRequests.Add(1)
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
		}

		if readErr != nil {
			c.failedRequests.Add(1)
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}
		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body, Elapsed: elapsed}, nil
	}

	// Unreachable: every path above either returns or continues within the
	// attempt budget.
	return nil, errors.New("retry loop exhausted without a terminal outcome")
}

func transportBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func throttleBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<attempt) * time.Second
	if backoff > throttleBackoffCap {
		backoff = throttleBackoffCap
	}
	return backoff
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func errorMessage(body []byte, fallback string) string {
	var parsed struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.ErrorMessages) > 0 {
		return parsed.ErrorMessages[0]
	}
	if len(body) > 0 {
		return string(body)
	}
	return fallback
}
