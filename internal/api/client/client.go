package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/erpshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/erpshell/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/erpshell/internal/shared/id"
)

// ErrCircuitOpen is returned while the backend breaker is open.
var ErrCircuitOpen = errors.New("erp backend unavailable: circuit breaker open")

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the call goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the ERP REST backend. It wraps resty with a retrying
// transport, a rate limiter and a circuit breaker.
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breaker  *resilience.Breaker
	metrics  *monitoring.Metrics
	log      *zap.Logger
	clientID string

	mu     sync.RWMutex
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics records every backend call.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for cfg.APIEndpoint().
func New(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		log:      zap.NewNop(),
		clientID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil
	// Hand the last response back instead of a "giving up" error so 5xx
	// bodies still reach the caller as APIError.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = cfg.Timeout

	c.resty = resty.NewWithClient(httpClient).
		SetBaseURL(cfg.APIEndpoint()).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("X-Client-ID", c.clientID).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	if cfg.RateLimit <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	maxFailures := cfg.BreakerMax
	if maxFailures == 0 {
		maxFailures = 10
	}
	c.breaker = resilience.New("erp-backend", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsFailure: isBackendFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			c.log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c
}

// SetTokenSource replaces the token source. The session store registers
// itself here after construction.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// ClientID identifies this shell instance to the backend.
func (c *Client) ClientID() string {
	return c.clientID
}

// BaseURL returns the versioned API endpoint.
func (c *Client) BaseURL() string {
	return c.resty.BaseURL
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// call describes one backend request. route is the path template used as
// the metrics label; path is the concrete path.
type call struct {
	method  string
	route   string
	path    string
	body    any
	query   map[string]string
	out     any
	accept  []int
	prepare func(*resty.Request)
}

// do executes a call. Non-2xx responses become *APIError unless the status
// is listed in accept, in which case the body is decoded into out.
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	if err := c.breaker.Allow(); err != nil {
		return nil, ErrCircuitOpen
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	requestID := id.NewRequestID().String()
	timer := monitoring.NewTimer(c.metrics, cl.method, cl.route)

	resp, err := resilience.Execute(c.breaker, func() (*resty.Response, error) {
		req := c.resty.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", requestID)

		if token := c.token(); token != "" {
			req.SetAuthToken(token)
		}
		if cl.body != nil {
			req.SetBody(cl.body)
		}
		if len(cl.query) > 0 {
			req.SetQueryParams(cl.query)
		}
		if cl.prepare != nil {
			cl.prepare(req)
		}

		resp, err := req.Execute(cl.method, cl.path)
		if err != nil {
			return nil, err
		}
		if resp.IsError() && !accepted(resp.StatusCode(), cl.accept) {
			return resp, newAPIError(resp)
		}
		return resp, nil
	})

	if err != nil {
		status := "error"
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			status = strconv.Itoa(apiErr.Status)
		}
		timer.Stop(status)

		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		c.log.Debug("backend call failed",
			zap.String("request_id", requestID),
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Error(err))
		return resp, err
	}
	timer.Stop(strconv.Itoa(resp.StatusCode()))

	if cl.out != nil && len(resp.Body()) > 0 {
		if err := sonic.Unmarshal(resp.Body(), cl.out); err != nil {
			return resp, fmt.Errorf("failed to decode %s %s response: %w", cl.method, cl.route, err)
		}
	}
	return resp, nil
}

func accepted(status int, list []int) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

// isBackendFailure counts transport errors and 5xx toward tripping the
// breaker. 4xx answers mean the backend is healthy.
func isBackendFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}
