// Package client is a Go client for the marketplace HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	// Fields holds per-field validation messages when the server sent them.
	Fields map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string { return c.token }

type BookingRequest struct {
	CampaignID string    `json:"campaignId"`
	ScreenID   string    `json:"screenId"`
	Start      time.Time `json:"startDatetime"`
	End        time.Time `json:"endDatetime"`
	TotalCost  float64   `json:"totalCost,omitempty"`
}

type TransitionResult struct {
	Booking *Booking `json:"booking"`
	Board   *Board   `json:"board"`
}

type signInResponse struct {
	Token string `json:"token"`
}

// SignIn exchanges credentials for an access token and keeps it for later
// calls.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var res signInResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signin", body, &res); err != nil {
		return err
	}
	c.token = res.Token
	return nil
}

func (c *Client) Bookings(ctx context.Context) (*Board, error) {
	var board Board
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	var b Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// TransitionBooking approves or rejects a booking and returns it together
// with the owner's refreshed board.
func (c *Client) TransitionBooking(ctx context.Context, id string, status BookingStatus) (*TransitionResult, error) {
	var res TransitionResult
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, "/bookings/"+id+"/status", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(data, &envelope) != nil || len(envelope.Error) == 0 {
		return apiErr
	}
	var msg string
	if json.Unmarshal(envelope.Error, &msg) == nil {
		apiErr.Message = msg
		return apiErr
	}
	var fields map[string]string
	if json.Unmarshal(envelope.Error, &fields) == nil {
		apiErr.Message = "validation failed"
		apiErr.Fields = fields
	}
	return apiErr
}
