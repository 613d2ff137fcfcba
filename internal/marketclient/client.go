// Package marketclient implements the REST client for the swap marketplace
// API: the network half of the synchronization orchestrator. Transport
// failures and 5xx responses are retried with exponential backoff; business
// rejections are returned as *APIError without retry.
package marketclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Client talks to the marketplace REST API.
type Client struct {
	baseURL     string
	client      *http.Client
	validate    *validator.Validate
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithMaxRetries sets maximum retry attempts for retryable failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// New creates a marketplace API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		validate:    validator.New(),
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSwaps fetches the full swap collection for a user.
func (c *Client) ListSwaps(ctx context.Context, userID string) ([]*SwapPayload, error) {
	var out []*SwapPayload
	path := "/api/swaps"
	if userID != "" {
		path += "?userId=" + userID
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := c.validate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid swap payload %q: %w", p.ID, err)
		}
	}
	return out, nil
}

// GetSwap fetches one swap by id.
func (c *Client) GetSwap(ctx context.Context, swapID string) (*SwapPayload, error) {
	var out SwapPayload
	if err := c.do(ctx, http.MethodGet, "/api/swaps/"+swapID, nil, &out); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("invalid swap payload: %w", err)
	}
	return &out, nil
}

// ListProposals fetches the proposal list for a swap, submission order.
func (c *Client) ListProposals(ctx context.Context, swapID string) ([]*ProposalPayload, error) {
	var out []*ProposalPayload
	if err := c.do(ctx, http.MethodGet, "/api/swaps/"+swapID+"/proposals", nil, &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := c.validate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid proposal payload %q: %w", p.ID, err)
		}
	}
	return out, nil
}

// CreateSwap submits a new swap and returns the authoritative record.
func (c *Client) CreateSwap(ctx context.Context, req CreateSwapRequest) (*SwapPayload, error) {
	var out SwapPayload
	if err := c.do(ctx, http.MethodPost, "/api/swaps", req, &out); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("invalid swap payload: %w", err)
	}
	return &out, nil
}

// SubmitProposal submits a proposal against a swap.
func (c *Client) SubmitProposal(ctx context.Context, swapID string, req SubmitProposalRequest) (*ProposalPayload, error) {
	var out ProposalPayload
	if err := c.do(ctx, http.MethodPost, "/api/swaps/"+swapID+"/proposals", req, &out); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("invalid proposal payload: %w", err)
	}
	return &out, nil
}

// UpdateStatus asks the server to move a swap to the given status and
// returns the authoritative record.
func (c *Client) UpdateStatus(ctx context.Context, swapID, status string) (*SwapPayload, error) {
	var out SwapPayload
	if err := c.do(ctx, http.MethodPatch, "/api/swaps/"+swapID+"/status", UpdateStatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("invalid swap payload: %w", err)
	}
	return &out, nil
}

// ProcessPayment requests a cash settlement for a swap.
func (c *Client) ProcessPayment(ctx context.Context, swapID string, req ProcessPaymentRequest) (*PaymentResultPayload, error) {
	var out PaymentResultPayload
	if err := c.do(ctx, http.MethodPost, "/api/swaps/"+swapID+"/payment", req, &out); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("invalid payment payload: %w", err)
	}
	return &out, nil
}

// CompleteSwap asks the server to complete a swap and returns the
// authoritative record including the completion overlay.
func (c *Client) CompleteSwap(ctx context.Context, swapID string, req CompleteSwapRequest) (*SwapPayload, error) {
	var out SwapPayload
	if err := c.do(ctx, http.MethodPost, "/api/swaps/"+swapID+"/complete", req, &out); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("invalid swap payload: %w", err)
	}
	return &out, nil
}

// do performs one API call with retries and exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		var reader io.Reader
		if reqBody != nil {
			reader = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
			continue
		case resp.StatusCode >= 400:
			// Business rejections are final.
			apiErr := &APIError{HTTPStatus: resp.StatusCode}
			if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Code == "" {
				apiErr.Code = "request_failed"
				apiErr.Message = strings.TrimSpace(string(respBody))
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
