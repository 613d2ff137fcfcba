// Package syncer coordinates the marketplace API, the real-time channel and
// the state engine. It owns every network round-trip: reads are gated by the
// cache freshness guard, writes follow the optimistic start/confirm/rollback
// pattern, and real-time pushes are pumped into the engine as events.
package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bookswap-client/internal/domain"
	"bookswap-client/internal/marketclient"
	"bookswap-client/internal/realtime"
	"bookswap-client/internal/state"
)

// API is the slice of the marketplace client the syncer depends on.
type API interface {
	ListSwaps(ctx context.Context, userID string) ([]*marketclient.SwapPayload, error)
	GetSwap(ctx context.Context, swapID string) (*marketclient.SwapPayload, error)
	ListProposals(ctx context.Context, swapID string) ([]*marketclient.ProposalPayload, error)
	CreateSwap(ctx context.Context, req marketclient.CreateSwapRequest) (*marketclient.SwapPayload, error)
	SubmitProposal(ctx context.Context, swapID string, req marketclient.SubmitProposalRequest) (*marketclient.ProposalPayload, error)
	UpdateStatus(ctx context.Context, swapID, status string) (*marketclient.SwapPayload, error)
	ProcessPayment(ctx context.Context, swapID string, req marketclient.ProcessPaymentRequest) (*marketclient.PaymentResultPayload, error)
	CompleteSwap(ctx context.Context, swapID string, req marketclient.CompleteSwapRequest) (*marketclient.SwapPayload, error)
}

// Options for creating a Syncer.
type Options struct {
	API    API
	Engine *state.Engine
	UserID string
	Logger *logrus.Logger
}

// Syncer is the synchronization orchestrator.
type Syncer struct {
	api    API
	engine *state.Engine
	userID string
	log    *logrus.Entry
}

// New creates a Syncer.
func New(opts Options) *Syncer {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Syncer{
		api:    opts.API,
		engine: opts.Engine,
		userID: opts.UserID,
		log:    log.WithField("component", "syncer"),
	}
}

// Refresh fetches the swap collection unless the cache is still fresh.
// force bypasses the freshness gate.
func (s *Syncer) Refresh(ctx context.Context, force bool) error {
	if !force && s.engine.CacheValid() {
		s.log.Debug("cache fresh, skipping refetch")
		return nil
	}

	payloads, err := s.api.ListSwaps(ctx, s.userID)
	if err != nil {
		return err
	}

	swaps := make([]*domain.Swap, 0, len(payloads))
	for _, p := range payloads {
		swaps = append(swaps, p.ToDomain())
	}
	s.engine.Dispatch(state.SwapsFetched{Swaps: swaps})
	s.log.WithField("swaps", len(swaps)).Info("collection refreshed")
	return nil
}

// InvalidateCache forces the next Refresh to hit the network.
func (s *Syncer) InvalidateCache() {
	s.engine.Dispatch(state.CacheInvalidated{})
}

// OpenSwap marks a swap as viewed and loads its proposal list.
func (s *Syncer) OpenSwap(ctx context.Context, swapID string) error {
	s.engine.Dispatch(state.SwapViewed{SwapID: swapID})

	payloads, err := s.api.ListProposals(ctx, swapID)
	if err != nil {
		return err
	}
	proposals := make([]*domain.Proposal, 0, len(payloads))
	for _, p := range payloads {
		proposals = append(proposals, p.ToDomain())
	}
	s.engine.Dispatch(state.ProposalsFetched{SwapID: swapID, Proposals: proposals})
	return nil
}

// CloseSwap clears the viewed mirror.
func (s *Syncer) CloseSwap() {
	s.engine.Dispatch(state.SwapViewed{SwapID: ""})
}

// CreateSwap optimistically creates a swap and reconciles with the server.
// Returns the server-assigned swap id on success. On failure the optimistic
// entry is rolled back and the error returned for the caller to render.
func (s *Syncer) CreateSwap(ctx context.Context, draft *domain.Swap, req marketclient.CreateSwapRequest) (string, error) {
	pendingID := "pending-" + uuid.NewString()
	s.engine.Dispatch(state.SwapCreateStarted{PendingID: pendingID, Swap: draft})

	payload, err := s.api.CreateSwap(ctx, req)
	if err != nil {
		s.engine.Dispatch(state.SwapCreateFailed{PendingID: pendingID, Err: flowError(err)})
		s.log.WithError(err).Warn("swap creation rolled back")
		return "", err
	}

	s.engine.Dispatch(state.SwapCreateSucceeded{PendingID: pendingID, Swap: payload.ToDomain()})
	return payload.ID, nil
}

// SubmitProposal optimistically submits a proposal against a swap.
func (s *Syncer) SubmitProposal(ctx context.Context, draft *domain.Proposal, req marketclient.SubmitProposalRequest) (string, error) {
	pendingID := "pending-" + uuid.NewString()
	s.engine.Dispatch(state.ProposalCreateStarted{PendingID: pendingID, Proposal: draft})

	payload, err := s.api.SubmitProposal(ctx, draft.SwapID, req)
	if err != nil {
		s.engine.Dispatch(state.ProposalCreateFailed{PendingID: pendingID, Err: flowError(err)})
		s.log.WithError(err).Warn("proposal submission rolled back")
		return "", err
	}

	s.engine.Dispatch(state.ProposalCreateSucceeded{PendingID: pendingID, Proposal: payload.ToDomain()})
	return payload.ID, nil
}

// Respond optimistically moves a swap to the given status and reconciles
// with the server's authoritative record.
func (s *Syncer) Respond(ctx context.Context, swapID string, status domain.SwapStatus) error {
	current, err := s.engine.SwapByID(swapID)
	if err != nil {
		return err
	}
	original := current.Status

	s.engine.Dispatch(state.StatusChangeRequested{SwapID: swapID, Status: status, Actor: s.userID})

	payload, err := s.api.UpdateStatus(ctx, swapID, string(status))
	if err != nil {
		s.engine.Dispatch(state.StatusChangeFailed{
			SwapID:         swapID,
			OriginalStatus: original,
			Err:            flowError(err),
		})
		s.log.WithError(err).WithField("swap", swapID).Warn("status change rolled back")
		return err
	}

	// Settle the in-flight record first, then adopt the full payload. A
	// missing responded-at is stamped by the engine clock.
	s.engine.Dispatch(state.StatusPushed{
		SwapID:          swapID,
		Status:          domain.SwapStatus(payload.Status),
		ServerTimestamp: payload.Timeline.RespondedAt,
	})
	s.engine.Dispatch(state.SwapUpdated{Swap: payload.ToDomain()})
	return nil
}

// CancelRespond forces the Failed transition for an in-flight status change
// whose response will never be consumed (e.g. modal closed mid-request). The
// underlying request may still be in flight; the rollback does not depend on
// its abort.
func (s *Syncer) CancelRespond(swapID string, originalStatus domain.SwapStatus) {
	s.engine.Dispatch(state.StatusChangeFailed{
		SwapID:         swapID,
		OriginalStatus: originalStatus,
		Err:            &state.FlowError{Code: "cancelled", Message: "request cancelled by user"},
	})
}

// Pay optimistically records a cash payment and reconciles the settlement.
func (s *Syncer) Pay(ctx context.Context, swapID string, amount float64, currency string) error {
	s.engine.Dispatch(state.PaymentStarted{Payment: &domain.PaymentTransaction{
		SwapID:   swapID,
		Payer:    s.userID,
		Amount:   amount,
		Currency: currency,
	}})

	result, err := s.api.ProcessPayment(ctx, swapID, marketclient.ProcessPaymentRequest{
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		s.engine.Dispatch(state.PaymentFailed{SwapID: swapID, Err: flowError(err)})
		s.log.WithError(err).WithField("swap", swapID).Warn("payment rolled back")
		return err
	}

	s.engine.Dispatch(state.PaymentSettled{
		SwapID:    swapID,
		Reference: result.Reference,
		SettledAt: result.SettledAt,
	})
	return nil
}

// Complete optimistically completes a swap and reconciles the completion
// overlay with the server's provenance record.
func (s *Syncer) Complete(ctx context.Context, swapID, proposalID string, ctype domain.CompletionType) error {
	current, err := s.engine.SwapByID(swapID)
	if err != nil {
		return err
	}
	original := current.Status

	s.engine.Dispatch(state.CompletionRequested{
		SwapID:     swapID,
		ProposalID: proposalID,
		Type:       ctype,
		Actor:      s.userID,
	})

	payload, err := s.api.CompleteSwap(ctx, swapID, marketclient.CompleteSwapRequest{
		ProposalID: proposalID,
		Type:       string(ctype),
	})
	if err != nil {
		s.engine.Dispatch(state.CompletionRolledBack{
			SwapID:         swapID,
			OriginalStatus: original,
			Err:            flowError(err),
		})
		s.log.WithError(err).WithField("swap", swapID).Warn("completion rolled back")
		return err
	}

	authoritative := payload.ToDomain()
	s.engine.Dispatch(state.CompletionUpdated{SwapID: swapID, Completion: authoritative.Completion})
	s.engine.Dispatch(state.SwapUpdated{Swap: authoritative})
	return nil
}

// Pump feeds real-time pushes into the engine until the channel closes or
// the context is cancelled.
func (s *Syncer) Pump(ctx context.Context, events <-chan realtime.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch {
			case ev.Status != nil:
				s.engine.Dispatch(state.StatusPushed{
					SwapID:          ev.Status.SwapID,
					Status:          domain.SwapStatus(ev.Status.Status),
					ServerTimestamp: ev.Status.ServerTimestamp,
				})
			case ev.Escrow != nil:
				s.engine.Dispatch(state.EscrowUpdated{Escrow: &domain.EscrowAccount{
					SwapID:     ev.Escrow.SwapID,
					Amount:     ev.Escrow.Amount,
					Currency:   ev.Escrow.Currency,
					Status:     domain.EscrowStatus(ev.Escrow.Status),
					Reference:  ev.Escrow.Reference,
					FundedAt:   ev.Escrow.FundedAt,
					ReleasedAt: ev.Escrow.ReleasedAt,
				}})
			}
		}
	}
}

// flowError wraps an API failure into the error payload surfaced to the
// view layer. Business rejections keep their server code and message; other
// failures are classified as network errors.
func flowError(err error) *state.FlowError {
	now := time.Now().UnixMilli()
	var apiErr *marketclient.APIError
	if errors.As(err, &apiErr) {
		return &state.FlowError{Code: apiErr.Code, Message: apiErr.Message, Err: err, At: now}
	}
	return &state.FlowError{Code: "network_error", Message: err.Error(), Err: err, At: now}
}
