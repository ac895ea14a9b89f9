// Package backend is the HTTP client for the syllabus finder service.
//
// The service does the heavy lifting: PDF parsing, topic extraction, video
// search and history storage. This package only moves requests and turns
// responses into model values or typed errors.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/abelbrown/sylfinder/internal/logging"
	"github.com/abelbrown/sylfinder/internal/validation"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 10 << 20

// Config holds the client settings.
type Config struct {
	BaseURL string

	// Per-operation deadlines. A call that exceeds its deadline fails like
	// any other request.
	AuthTimeout    time.Duration
	UploadTimeout  time.Duration
	HistoryTimeout time.Duration

	RequestsPerSecond float64
	Burst             int

	// Consecutive transport/5xx failures before the breaker opens, and how
	// long it stays open.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client talks to the service. Safe for concurrent use.
type Client struct {
	base    *url.URL
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*rawResponse]
	log     *log.Logger
}

// rawResponse is a response whose body has already been read.
type rawResponse struct {
	status int
	body   []byte
}

// errServerStatus marks 5xx responses so the breaker counts them.
var errServerStatus = errors.New("server error status")

// New creates a Client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend: invalid base URL %q", cfg.BaseURL)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	logger := logging.WithPrefix("backend")

	breaker := gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:    "backend",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		base:    base,
		cfg:     cfg,
		client:  &http.Client{},
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
		log:     logger,
	}, nil
}

// endpoint resolves path against the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// withTimeout applies d to ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// send executes req through the rate limiter and circuit breaker. A non-nil
// *rawResponse is returned for every response that arrived, including
// 4xx/5xx; the error is non-nil for transport failures, an open breaker or
// a 5xx status.
func (c *Client) send(req *http.Request) (*rawResponse, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sylfinder/0.1")

	start := time.Now()
	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		raw := &rawResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= 500 {
			return raw, errServerStatus
		}
		return raw, nil
	})

	status := 0
	if raw != nil {
		status = raw.status
	}
	c.log.Debug("request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"duration", time.Since(start),
		"request_id", requestID,
		"err", err,
	)
	return raw, err
}

// call runs req and decodes a 2xx body into out, validating it.
func (c *Client) call(op string, req *http.Request, out interface{}) error {
	raw, err := c.send(req)
	if raw != nil && (raw.status < 200 || raw.status > 299) {
		return &RequestError{Op: op, Status: raw.status, Message: serverMessage(raw.body)}
	}
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return &RequestError{Op: op, Err: err}
	}

	if err := json.Unmarshal(raw.body, out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	if err := validatePayload(out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

func validatePayload(out interface{}) error {
	switch v := out.(type) {
	case *[]historyEntry:
		if *v == nil {
			return errors.New("history is not a list")
		}
		for i := range *v {
			if err := validation.Struct((*v)[i]); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
		return nil
	default:
		return validation.Struct(out)
	}
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.Message)
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
