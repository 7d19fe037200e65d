// Package client implements the HTTP client for the elevator simulator
// API. It exposes the two operations the panel needs, Poll and
// RequestFloor, and normalizes every failure into one of three error
// kinds (NetworkError, ServerError, ParseError). The client never
// retries: retry cadence belongs entirely to the panel's polling timer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/liftview/state"
)

// maxResponseSize limits response bodies; a snapshot for any plausible
// building fits in a fraction of this.
const maxResponseSize = 1 * 1024 * 1024 // 1MB

// defaultTimeout bounds a single request. The poll period is 500ms, so a
// hung request should give up well before the log fills with duplicates.
const defaultTimeout = 10 * time.Second

// Client talks to the elevator simulator over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// RequestResult is the server's answer to a floor request. State is the
// embedded post-request snapshot when the server includes one.
type RequestResult struct {
	Message string          `json:"message"`
	State   *state.Snapshot `json:"state"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// New creates a client for the simulator at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Poll fetches the current snapshot from GET /state.
func (c *Client) Poll(ctx context.Context) (*state.Snapshot, error) {
	requestID := uuid.New().String()
	c.logger.Debug("Polling elevator state", "request_id", requestID, "url", c.baseURL+"/state")

	body, err := c.do(ctx, http.MethodGet, "/state", nil)
	if err != nil {
		return nil, err
	}

	snap, err := decodeSnapshot(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Poll complete",
		"request_id", requestID,
		"current_floor", snap.CurrentFloor,
		"direction", snap.Direction,
		"queued", len(snap.Queue))
	return snap, nil
}

// RequestFloor submits a floor request via POST /request. The floor is
// not range-checked here; the server owns that validation and its detail
// message is surfaced verbatim.
func (c *Client) RequestFloor(ctx context.Context, floor int) (*RequestResult, error) {
	requestID := uuid.New().String()
	c.logger.Debug("Requesting floor", "request_id", requestID, "floor", floor)

	payload, err := json.Marshal(map[string]int{"floor": floor})
	if err != nil {
		return nil, NewParseError(fmt.Errorf("encode request: %w", err))
	}

	body, err := c.do(ctx, http.MethodPost, "/request", payload)
	if err != nil {
		return nil, err
	}

	var result RequestResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewParseError(fmt.Errorf("decode request response: %w", err))
	}
	if result.State != nil {
		if err := result.State.Validate(); err != nil {
			return nil, NewParseError(fmt.Errorf("invalid embedded snapshot: %w", err))
		}
	}

	c.logger.Debug("Floor request accepted", "request_id", requestID, "floor", floor, "message", result.Message)
	return &result, nil
}

// do executes a single request and returns the response body, mapping
// failures onto the error taxonomy. No retries.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("create request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newServerError(resp.StatusCode, body)
	}

	return body, nil
}

// decodeSnapshot parses and validates a snapshot body.
func decodeSnapshot(body []byte) (*state.Snapshot, error) {
	var snap state.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, NewParseError(fmt.Errorf("decode snapshot: %w", err))
	}
	if err := snap.Validate(); err != nil {
		return nil, NewParseError(fmt.Errorf("invalid snapshot: %w", err))
	}
	return &snap, nil
}
