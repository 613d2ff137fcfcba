package state

import (
	"fmt"

	"bookswap-client/internal/domain"
)

// MutationKind classifies an in-flight optimistic mutation.
type MutationKind string

// Optimistic mutation kinds.
const (
	MutationSwapCreate     MutationKind = "swap_create"
	MutationProposalSubmit MutationKind = "proposal_submit"
	MutationPayment        MutationKind = "payment"
	MutationStatusChange   MutationKind = "status_change"
	MutationCompletion     MutationKind = "completion"
)

// PendingMutation records one in-flight optimistic mutation together with the
// pre-mutation snapshot needed to reverse it. A key is in exactly one of
// {absent, in-flight}; confirmation and failure are terminal and idempotent.
// Records never outlive the process.
type PendingMutation struct {
	Key    string // tracker key; also the error-map key
	Kind   MutationKind
	SwapID string

	// Reversal snapshots, populated per kind. PrevSwap and PrevHistory hold
	// the pre-mutation record so a rollback restores the exact prior state,
	// not a guessed default.
	OriginalStatus domain.SwapStatus
	PrevSwap       *domain.Swap
	PrevHistory    []domain.StatusTransition
	PrevPayment    *domain.PaymentTransaction
	PrevEscrow     *domain.EscrowAccount

	StartedAt int64
}

// Tracker keys. Create-style mutations use the client-generated pending id
// directly; per-swap mutations derive the key from the swap id so a second
// attempt on the same swap reuses the slot.
func statusKey(swapID string) string     { return "status:" + swapID }
func paymentKey(swapID string) string    { return "payment:" + swapID }
func completionKey(swapID string) string { return "completion:" + swapID }

// FlowError is the error payload attached to a failed mutation. It is kept
// verbatim for the view layer to render; Err carries the underlying transport
// error when there was one.
type FlowError struct {
	Code    string
	Message string
	Err     error
	At      int64
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap exposes the underlying transport error for errors.Is/As.
func (e *FlowError) Unwrap() error { return e.Err }
