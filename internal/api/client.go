package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"hardwareStoreInventory/models"
)

// The inventory API authenticates with a custom header rather than
// Authorization: "Autorizacion: Back <token>".
const (
	HeaderAuth      = "Autorizacion"
	AuthScheme      = "Back"
	HeaderRequestID = "X-Request-ID"
)

// Client talks to the inventory REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userAgent  string
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL    string        // server root; routes are appended under /api
	Timeout    time.Duration // zero means no timeout
	Token      string
	HTTPClient *http.Client // optional; overrides Timeout
}

// NewClient creates a new inventory API client.
func NewClient(config *ClientConfig) *Client {
	hc := config.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: config.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: hc,
		token:      config.Token,
		userAgent:  "ferreteria-client/1.0",
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Error is a non-2xx answer from the API. Entity routes explain failures in
// an "error" field and the auth routes in "mensaje"; both are kept.
type Error struct {
	Status  int
	Message string // "error" field
	Mensaje string // "mensaje" field
	BodyErr error  // set when the body was not JSON
}

func (e *Error) Error() string {
	if msg := e.text(); msg != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *Error) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Mensaje
}

// ServerMessage extracts the server-provided message from err, if any.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.text()
	}
	return ""
}

// IsTransport reports whether err happened before an HTTP response was read.
func IsTransport(err error) bool {
	var apiErr *Error
	return err != nil && !errors.As(err, &apiErr) && !errors.Is(err, ErrDecode)
}

// ErrDecode wraps response bodies that could not be decoded.
var ErrDecode = errors.New("decode response")

// Entity endpoints

// List fetches an endpoint's collection. A 2xx body that is not a JSON array
// yields an empty list, not an error.
func (c *Client) List(ctx context.Context, ep Endpoint) ([]models.Record, error) {
	var raw any
	if err := c.doRequest(ctx, http.MethodGet, ep.ListPath(), nil, &raw, true); err != nil {
		return nil, fmt.Errorf("list %s: %w", ep, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return []models.Record{}, nil
	}
	out := make([]models.Record, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, models.Record(m))
		}
	}
	return out, nil
}

// Create posts a new record to the endpoint's insert route.
func (c *Client) Create(ctx context.Context, ep Endpoint, payload models.Record) error {
	if err := c.doRequest(ctx, http.MethodPost, ep.CreatePath(), payload, nil, true); err != nil {
		return fmt.Errorf("create %s: %w", ep, err)
	}
	return nil
}

// Update replaces the record addressed by key.
func (c *Client) Update(ctx context.Context, ep Endpoint, key string, payload models.Record) error {
	if err := c.doRequest(ctx, http.MethodPut, ep.UpdatePath(key), payload, nil, true); err != nil {
		return fmt.Errorf("update %s/%s: %w", ep, key, err)
	}
	return nil
}

// Delete removes the record addressed by key.
func (c *Client) Delete(ctx context.Context, ep Endpoint, key string) error {
	if err := c.doRequest(ctx, http.MethodDelete, ep.DeletePath(key), nil, nil, true); err != nil {
		return fmt.Errorf("delete %s/%s: %w", ep, key, err)
	}
	return nil
}

// doRequest performs a single HTTP request. There is no retry: every failure
// is returned to the caller, which decides whether the user repeats the action.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, authenticated bool) error {
	req, err := c.createRequest(ctx, method, path, body, authenticated)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ErrorResponse
		bodyErr := json.Unmarshal(raw, &errorResp)
		return &Error{Status: resp.StatusCode, Message: errorResp.Error, Mensaje: errorResp.Mensaje, BodyErr: bodyErr}
	}

	if result == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func (c *Client) createRequest(ctx context.Context, method, path string, body any, authenticated bool) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if authenticated {
		req.Header.Set(HeaderAuth, AuthScheme+" "+c.token)
	}
	return req, nil
}

// ErrorResponse is the error body shape.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Mensaje string `json:"mensaje,omitempty"`
}
