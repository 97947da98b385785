// Package remote talks to the remote auth, role and content service over
// HTTP and translates its responses into domain values and errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/infrastructure/metrics"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 1 << 20
)

// Config captures the settings shared by all remote clients.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Defaults to 15s.
	Timeout time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
	Logger zerolog.Logger
}

// Client is the transport shared by AuthGateway, RoleResolver and
// ContentClient.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote: base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: base,
		http:    hc,
		log:     cfg.Logger.With().Str("component", "remote").Logger(),
	}, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the remote service answers HTTP at all. Any status below
// 500 counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", domain.ErrUnreachable, resp.StatusCode)
	}
	return nil
}

// StatusError is a non-2xx response. It unwraps to the domain error its
// status class maps to.
type StatusError struct {
	Code    int
	Message string
	err     error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.err, e.Code)
	}
	return fmt.Sprintf("%v (status %d): %s", e.err, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return e.err }

func newStatusError(code int, body []byte) *StatusError {
	se := &StatusError{Code: code, Message: errorMessage(body)}
	switch {
	case code >= http.StatusInternalServerError:
		se.err = domain.ErrUnreachable
	case code == http.StatusUnauthorized:
		se.err = domain.ErrUnauthorized
	case code == http.StatusForbidden:
		se.err = domain.ErrForbidden
	case code == http.StatusBadRequest, code == http.StatusConflict, code == http.StatusUnprocessableEntity:
		se.err = domain.ErrValidationFailed
	default:
		se.err = domain.ErrMalformedResponse
	}
	return se
}

// errorMessage extracts a human-readable message from an error body. Both
// {"error":"..."} and {"error":{"message":"..."}} are understood.
func errorMessage(body []byte) string {
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if len(env.Error) > 0 {
		var s string
		if json.Unmarshal(env.Error, &s) == nil {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return env.Message
}

// do sends one JSON request. endpoint names the call for metrics and logs;
// it must not contain ids. A nil out discards the body.
func (c *Client) do(ctx context.Context, endpoint, method, path string, cred domain.Credential, body, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, cred, body, out)
	metrics.RemoteRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.RemoteRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
	if err != nil {
		c.log.Debug().Err(err).Str("endpoint", endpoint).Str("method", method).Msg("remote call failed")
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, cred domain.Credential, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != "" {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUnreachable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return fmt.Errorf("%w: empty body", domain.ErrMalformedResponse)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return strconv.Itoa(se.Code)
	case errors.Is(err, domain.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}

// flexID accepts ids encoded as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*f = flexID(n.String())
		return nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
