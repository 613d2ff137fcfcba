// Package state implements the swap state synchronization engine: a single
// in-memory aggregate of swap records, their proposal ledger, derived
// indices, optimistic-mutation tracking and cache freshness, mutated only
// through dispatched events.
package state

import "bookswap-client/internal/domain"

// State is one immutable snapshot of the aggregate. Reducers never mutate a
// snapshot in place; every event produces a new value (copy-on-write at the
// container level, modified entities cloned). This keeps optimistic rollback
// snapshots and subscriber reads trivially correct.
type State struct {
	// Swaps is the canonical collection, most recent first.
	Swaps []*domain.Swap

	// Proposals is the per-swap ledger, keyed by swap id, submission order.
	Proposals map[string][]*domain.Proposal

	// History holds per-swap status transitions in occurrence order.
	History map[string][]domain.StatusTransition

	// ViewedSwapID and ViewedProposals form the advisory mirror of the
	// proposal list for the swap currently open in a detail view. Derived,
	// never authoritative.
	ViewedSwapID    string
	ViewedProposals []*domain.Proposal

	// Payment and escrow shadow state, keyed by swap id.
	Payments map[string]*domain.PaymentTransaction
	Escrows  map[string]*domain.EscrowAccount

	// Pending tracks in-flight optimistic mutations by key.
	Pending map[string]*PendingMutation

	// Errors holds the last failure per mutation key, cleared on retry.
	Errors map[string]*FlowError

	// Freshness gates whether the orchestrator should refetch.
	Freshness Freshness

	// Indexes are the derived partitions, rebuilt on every swap mutation.
	Indexes Indexes
}

// newState creates an empty snapshot with the given cache TTL.
func newState(fresh Freshness) *State {
	s := &State{
		Proposals: make(map[string][]*domain.Proposal),
		History:   make(map[string][]domain.StatusTransition),
		Payments:  make(map[string]*domain.PaymentTransaction),
		Escrows:   make(map[string]*domain.EscrowAccount),
		Pending:   make(map[string]*PendingMutation),
		Errors:    make(map[string]*FlowError),
		Freshness: fresh,
	}
	s.Indexes = buildIndexes(s.Swaps)
	return s
}

// clone copies the snapshot containers. Entities are shared until a reducer
// replaces them with a clone, so callers must never mutate what they read.
func (s *State) clone() *State {
	next := &State{
		Swaps:           append([]*domain.Swap(nil), s.Swaps...),
		Proposals:       make(map[string][]*domain.Proposal, len(s.Proposals)),
		History:         make(map[string][]domain.StatusTransition, len(s.History)),
		ViewedSwapID:    s.ViewedSwapID,
		ViewedProposals: append([]*domain.Proposal(nil), s.ViewedProposals...),
		Payments:        make(map[string]*domain.PaymentTransaction, len(s.Payments)),
		Escrows:         make(map[string]*domain.EscrowAccount, len(s.Escrows)),
		Pending:         make(map[string]*PendingMutation, len(s.Pending)),
		Errors:          make(map[string]*FlowError, len(s.Errors)),
		Freshness:       s.Freshness,
		Indexes:         s.Indexes,
	}
	for k, v := range s.Proposals {
		next.Proposals[k] = v
	}
	for k, v := range s.History {
		next.History[k] = v
	}
	for k, v := range s.Payments {
		next.Payments[k] = v
	}
	for k, v := range s.Escrows {
		next.Escrows[k] = v
	}
	for k, v := range s.Pending {
		next.Pending[k] = v
	}
	for k, v := range s.Errors {
		next.Errors[k] = v
	}
	return next
}

// swapIndex returns the position of a swap in the collection, -1 if absent.
func (s *State) swapIndex(id string) int {
	for i, sw := range s.Swaps {
		if sw.ID == id {
			return i
		}
	}
	return -1
}

func cloneSwaps(in []*domain.Swap) []*domain.Swap {
	out := make([]*domain.Swap, 0, len(in))
	for _, sw := range in {
		if sw == nil {
			continue
		}
		out = append(out, sw.Clone())
	}
	return out
}

func cloneProposals(in []*domain.Proposal) []*domain.Proposal {
	out := make([]*domain.Proposal, 0, len(in))
	for _, p := range in {
		if p == nil {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
