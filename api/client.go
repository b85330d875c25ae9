package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"socialclient/utils"
)

const retryBackoff = 200 * time.Millisecond

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Retries     int
	RateLimit   float64 // requests per second, 0 disables throttling
	RateBurst   int
	Credentials Credentials
	Metrics     *Metrics
	Logger      *zap.Logger
}

// Client talks to the REST backend. It owns the session credential and maps
// every failure onto the utils error taxonomy.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	retries int
	limiter *rate.Limiter
	creds   Credentials
	metrics *Metrics
	logger  *zap.Logger
}

func New(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &fasthttp.Client{
			Name:                "socialclient",
			MaxConnsPerHost:     16,
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: opts.Timeout,
		retries: opts.Retries,
		creds:   opts.Credentials,
		metrics: opts.Metrics,
		logger:  utils.OrNop(opts.Logger),
	}
	if c.creds == nil {
		c.creds = &MemoryCredentials{}
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// get issues an idempotent read, retried on transport failures.
func (c *Client) get(ctx context.Context, route, path string, out interface{}) error {
	return utils.WithRetry(ctx, c.retries, retryBackoff, func() error {
		return c.do(ctx, fasthttp.MethodGet, route, path, nil, out)
	})
}

// send issues a mutating call exactly once.
func (c *Client) send(ctx context.Context, method, route, path string, in, out interface{}) error {
	return c.do(ctx, method, route, path, in, out)
}

func (c *Client) do(ctx context.Context, method, route, path string, in, out interface{}) error {
	op := method + " " + route
	if err := ctx.Err(); err != nil {
		return utils.Wrap(utils.CodeCancelled, op, err)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return utils.Wrap(utils.CodeCancelled, op, err)
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	requestID := utils.NewRequestID()
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return utils.Wrap(utils.CodeInternal, "encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	start := time.Now()
	err := c.roundTrip(ctx, req, resp)
	status := 0
	if err == nil {
		status = resp.StatusCode()
	}
	c.metrics.observe(method, route, status, time.Since(start))

	if err != nil {
		c.logger.Warn("request_failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return utils.Transport(op, errors.Wrap(err, "round trip"))
	}

	c.logger.Debug("request_done",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)

	body := resp.Body()
	if status >= 400 {
		return classify(op, status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return utils.Transport(op, errors.Wrap(err, "decode response"))
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		if c.timeout <= 0 || time.Until(deadline) < c.timeout {
			return c.http.DoDeadline(req, resp, deadline)
		}
	}
	if c.timeout > 0 {
		return c.http.DoTimeout(req, resp, c.timeout)
	}
	return c.http.Do(req, resp)
}

type errorBody struct {
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

func classify(op string, status int, body []byte) error {
	var payload errorBody
	_ = json.Unmarshal(body, &payload)
	msg := payload.Error
	if msg == "" {
		msg = payload.Detail
	}
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = strings.ToLower(fasthttp.StatusMessage(status))
	}

	switch status {
	case fasthttp.StatusBadRequest, fasthttp.StatusUnprocessableEntity:
		return utils.Validation(msg)
	case fasthttp.StatusUnauthorized:
		return utils.Unauthenticated(msg)
	case fasthttp.StatusForbidden:
		return utils.Forbidden(msg)
	case fasthttp.StatusNotFound:
		return utils.NotFound(msg)
	case fasthttp.StatusConflict:
		return utils.Conflict(msg)
	}
	return utils.Transport(op, fmt.Errorf("status %d: %s", status, msg))
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
