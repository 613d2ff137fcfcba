// Package stub provides an in-memory marketplace API for testing.
package stub

import (
	"context"
	"fmt"
	"sync/atomic"

	"bookswap-client/internal/marketclient"
)

// Client implements the syncer's API interface against in-memory fixtures.
// Setting FailWith makes every mutating call return that error; call
// counters let tests assert network traffic.
type Client struct {
	Swaps     map[string]*marketclient.SwapPayload
	Proposals map[string][]*marketclient.ProposalPayload

	// FailWith, when set, is returned by every mutating call.
	FailWith error

	ListCalls atomic.Int32
	nextID    atomic.Int32
}

// NewClient creates an empty stub marketplace.
func NewClient() *Client {
	return &Client{
		Swaps:     make(map[string]*marketclient.SwapPayload),
		Proposals: make(map[string][]*marketclient.ProposalPayload),
	}
}

// AddSwap seeds a swap payload.
func (c *Client) AddSwap(p *marketclient.SwapPayload) {
	c.Swaps[p.ID] = p
}

// ListSwaps returns all seeded swaps.
func (c *Client) ListSwaps(_ context.Context, _ string) ([]*marketclient.SwapPayload, error) {
	c.ListCalls.Add(1)
	out := make([]*marketclient.SwapPayload, 0, len(c.Swaps))
	for _, p := range c.Swaps {
		out = append(out, p)
	}
	return out, nil
}

// GetSwap returns a seeded swap.
func (c *Client) GetSwap(_ context.Context, swapID string) (*marketclient.SwapPayload, error) {
	p, ok := c.Swaps[swapID]
	if !ok {
		return nil, &marketclient.APIError{HTTPStatus: 404, Code: "not_found", Message: "swap not found"}
	}
	return p, nil
}

// ListProposals returns the seeded proposal list for a swap.
func (c *Client) ListProposals(_ context.Context, swapID string) ([]*marketclient.ProposalPayload, error) {
	return c.Proposals[swapID], nil
}

// CreateSwap assigns a server id and stores the swap.
func (c *Client) CreateSwap(_ context.Context, req marketclient.CreateSwapRequest) (*marketclient.SwapPayload, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	id := fmt.Sprintf("srv-%d", c.nextID.Add(1))
	p := &marketclient.SwapPayload{
		ID:            id,
		SourceBooking: marketclient.BookingPayload{ID: req.SourceBookingID, Kind: "hotel"},
		TargetBooking: marketclient.BookingPayload{ID: req.TargetBookingID, Kind: "hotel"},
		Owner:         marketclient.UserPayload{ID: req.OwnerID},
		Status:        "pending",
		Terms:         req.Terms,
		PaymentTypes:  req.PaymentTypes,
		Acceptance:    req.Acceptance,
	}
	c.Swaps[id] = p
	return p, nil
}

// SubmitProposal assigns a server id and appends the proposal.
func (c *Client) SubmitProposal(_ context.Context, swapID string, req marketclient.SubmitProposalRequest) (*marketclient.ProposalPayload, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	p := &marketclient.ProposalPayload{
		ID:        fmt.Sprintf("srv-p-%d", c.nextID.Add(1)),
		SwapID:    swapID,
		BookingID: req.BookingID,
		CashOffer: req.CashOffer,
		Message:   req.Message,
		Status:    "pending",
	}
	c.Proposals[swapID] = append(c.Proposals[swapID], p)
	return p, nil
}

// UpdateStatus applies the status to the seeded swap.
func (c *Client) UpdateStatus(_ context.Context, swapID, status string) (*marketclient.SwapPayload, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	p, ok := c.Swaps[swapID]
	if !ok {
		return nil, &marketclient.APIError{HTTPStatus: 404, Code: "not_found", Message: "swap not found"}
	}
	updated := *p
	updated.Status = status
	updated.Timeline.RespondedAt = 5_000_000
	c.Swaps[swapID] = &updated
	return &updated, nil
}

// ProcessPayment settles immediately with a fixed reference.
func (c *Client) ProcessPayment(_ context.Context, swapID string, _ marketclient.ProcessPaymentRequest) (*marketclient.PaymentResultPayload, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	return &marketclient.PaymentResultPayload{
		SwapID:    swapID,
		Reference: "stub-ref-" + swapID,
		SettledAt: 6_000_000,
	}, nil
}

// CompleteSwap marks the seeded swap completed with a provenance overlay.
func (c *Client) CompleteSwap(_ context.Context, swapID string, req marketclient.CompleteSwapRequest) (*marketclient.SwapPayload, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	p, ok := c.Swaps[swapID]
	if !ok {
		return nil, &marketclient.APIError{HTTPStatus: 404, Code: "not_found", Message: "swap not found"}
	}
	updated := *p
	updated.Status = "completed"
	updated.Timeline.CompletedAt = 7_000_000
	updated.Completion = &marketclient.CompletionPayload{
		CompletedAt:    7_000_000,
		TransactionRef: "stub-txn-" + swapID,
		Type:           req.Type,
		ProposalID:     req.ProposalID,
	}
	c.Swaps[swapID] = &updated
	return &updated, nil
}
