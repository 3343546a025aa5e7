// Package statusclient queries a remote lock status service over HTTP.
package statusclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erp/invoicelock/internal/application/customerlock"
	domain "github.com/erp/invoicelock/internal/domain/customerlock"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// StatusPath is the query endpoint of the status service
const StatusPath = "/api/v1/customer-lock/status"

// DefaultTimeout bounds a status query when none is configured
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 1 << 20

// Client implements customerlock.StatusQuerier against the HTTP status service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is left unchanged.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the service at baseURL. Every query is bounded
// by timeout in addition to the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusPayload is the query response body
type statusPayload struct {
	Locked      bool   `json:"locked"`
	Status      string `json:"status"`
	Severity    string `json:"severity"`
	DaysOverdue int    `json:"days_overdue"`
}

// envelope is the standard API response wrapper
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// QueryStatus asks the service whether customer is locked. A response with
// no data yields a nil status and a nil error.
func (c *Client) QueryStatus(ctx context.Context, customer string) (*domain.LockStatus, error) {
	body, err := json.Marshal(customerlock.StatusRequest{Customer: customer})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+StatusPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Status service returned an error",
			zap.String("customer", customer),
			zap.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("status service returned HTTP %d", resp.StatusCode)
	}

	return decodeStatus(data)
}

// decodeStatus accepts the bare payload or the payload inside the standard
// {"success", "data"} envelope
func decodeStatus(data []byte) (*domain.LockStatus, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	if env.Success != nil {
		if !*env.Success {
			msg := "unknown error"
			if env.Error != nil {
				msg = env.Error.Code + ": " + env.Error.Message
			}
			return nil, fmt.Errorf("status service error: %s", msg)
		}
		data = env.Data
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return nil, nil
		}
	}

	var p statusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode status payload: %w", err)
	}
	sev, err := domain.ParseSeverity(p.Severity)
	if err != nil {
		// newer tiers are unknown here; the status text decides
		sev = domain.SeverityNone
	}
	st := domain.LockStatus{
		Locked:      p.Locked,
		Severity:    sev,
		Status:      p.Status,
		DaysOverdue: p.DaysOverdue,
	}.Normalize()
	return &st, nil
}

var _ customerlock.StatusQuerier = (*Client)(nil)
