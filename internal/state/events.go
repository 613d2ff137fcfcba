package state

import "bookswap-client/internal/domain"

// Event is a discrete mutation consumed by the engine. Events are applied
// strictly in dispatch order, each running to completion; last-write-wins
// when two events touch the same swap in sequence.
type Event interface {
	event()
}

// --- server / fetch events ---

// SwapsFetched replaces the full swap collection and stamps the cache
// freshness marker.
type SwapsFetched struct {
	Swaps []*domain.Swap
}

// SwapAdded upserts a single swap; new entries are prepended (most recent
// first). Re-adding an identical record is a no-op for index membership.
type SwapAdded struct {
	Swap *domain.Swap
}

// SwapUpdated replaces a swap by id, prepending when the id is unknown.
type SwapUpdated struct {
	Swap *domain.Swap
}

// SwapRemoved deletes a swap and cascades removal of its proposal ledger
// entry, history and payment shadow state.
type SwapRemoved struct {
	ID string
}

// ProposalsFetched replaces the full proposal list for a swap.
type ProposalsFetched struct {
	SwapID    string
	Proposals []*domain.Proposal
}

// ProposalAdded appends a proposal to its swap's list, routed by the
// proposal's own SwapID.
type ProposalAdded struct {
	Proposal *domain.Proposal
}

// ProposalUpdated substitutes a proposal by id within its swap's list.
type ProposalUpdated struct {
	Proposal *domain.Proposal
}

// SwapViewed marks a swap as currently open in a detail view; its proposal
// list is mirrored into the viewed shadow list. An empty SwapID closes the
// view.
type SwapViewed struct {
	SwapID string
}

// StatusPushed applies an authoritative status change carrying a server
// timestamp (real-time push or mutation confirmation). It clears any
// in-flight optimistic status change for the swap.
type StatusPushed struct {
	SwapID          string
	Status          domain.SwapStatus
	ServerTimestamp int64
}

// CompletionUpdated sets or clears the completion overlay. Setting a
// completion with a timestamp promotes status to completed; clearing the
// overlay never demotes status. Confirms any in-flight optimistic completion.
type CompletionUpdated struct {
	SwapID     string
	Completion *domain.Completion
}

// EscrowUpdated applies an authoritative escrow snapshot from the server.
type EscrowUpdated struct {
	Escrow *domain.EscrowAccount
}

// CacheInvalidated forces the next read to be treated as stale.
type CacheInvalidated struct{}

// --- optimistic mutation events ---

// StatusChangeRequested pre-applies a status change and records the original
// status for rollback.
type StatusChangeRequested struct {
	SwapID string
	Status domain.SwapStatus
	Actor  string
}

// StatusChangeFailed rolls an optimistic status change back to the original
// status and records the error. A second delivery is a no-op.
type StatusChangeFailed struct {
	SwapID         string
	OriginalStatus domain.SwapStatus
	Err            *FlowError
}

// SwapCreateStarted pre-applies a swap creation under a client-generated
// pending id.
type SwapCreateStarted struct {
	PendingID string
	Swap      *domain.Swap
}

// SwapCreateSucceeded replaces the optimistic swap with the authoritative
// server payload, preserving list position.
type SwapCreateSucceeded struct {
	PendingID string
	Swap      *domain.Swap
}

// SwapCreateFailed removes the optimistic swap and records the error.
type SwapCreateFailed struct {
	PendingID string
	Err       *FlowError
}

// ProposalCreateStarted pre-applies a proposal submission under a
// client-generated pending id.
type ProposalCreateStarted struct {
	PendingID string
	Proposal  *domain.Proposal
}

// ProposalCreateSucceeded replaces the optimistic proposal with the
// authoritative server payload, preserving list position.
type ProposalCreateSucceeded struct {
	PendingID string
	Proposal  *domain.Proposal
}

// ProposalCreateFailed removes the optimistic proposal and records the error.
type ProposalCreateFailed struct {
	PendingID string
	Err       *FlowError
}

// PaymentStarted pre-applies a cash payment: the transaction shadow goes
// pending and an escrow shadow is opened in the awaiting state.
type PaymentStarted struct {
	Payment *domain.PaymentTransaction
}

// PaymentSettled confirms a payment: the transaction settles with the
// external reference and the escrow moves to funded.
type PaymentSettled struct {
	SwapID    string
	Reference string
	SettledAt int64
}

// PaymentFailed restores the pre-payment shadow state and records the error.
type PaymentFailed struct {
	SwapID string
	Reason string
	Err    *FlowError
}

// CompletionRequested pre-applies a completion overlay (promoting status to
// completed) and captures the original status and overlay for rollback.
type CompletionRequested struct {
	SwapID     string
	ProposalID string
	Type       domain.CompletionType
	Actor      string
}

// CompletionRolledBack restores the exact prior lifecycle state of an
// optimistic completion. OriginalStatus is taken from the event so the
// caller controls the restored state, matching the rollback contract.
type CompletionRolledBack struct {
	SwapID         string
	OriginalStatus domain.SwapStatus
	Err            *FlowError
}

func (SwapsFetched) event()            {}
func (SwapAdded) event()               {}
func (SwapUpdated) event()             {}
func (SwapRemoved) event()             {}
func (ProposalsFetched) event()        {}
func (ProposalAdded) event()           {}
func (ProposalUpdated) event()         {}
func (SwapViewed) event()              {}
func (StatusPushed) event()            {}
func (CompletionUpdated) event()       {}
func (EscrowUpdated) event()           {}
func (CacheInvalidated) event()        {}
func (StatusChangeRequested) event()   {}
func (StatusChangeFailed) event()      {}
func (SwapCreateStarted) event()       {}
func (SwapCreateSucceeded) event()     {}
func (SwapCreateFailed) event()        {}
func (ProposalCreateStarted) event()   {}
func (ProposalCreateSucceeded) event() {}
func (ProposalCreateFailed) event()    {}
func (PaymentStarted) event()          {}
func (PaymentSettled) event()          {}
func (PaymentFailed) event()           {}
func (CompletionRequested) event()     {}
func (CompletionRolledBack) event()    {}
