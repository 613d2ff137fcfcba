package state

import "bookswap-client/internal/domain"

// Query surface. All queries read the current snapshot and return defensive
// copies, so the view layer can hold results across dispatches.

// AllSwaps returns the full collection, most recent first.
func (e *Engine) AllSwaps() []*domain.Swap {
	return cloneSwaps(e.Snapshot().Swaps)
}

// SwapByID returns a swap by id. Returns ErrNotFound if absent.
func (e *Engine) SwapByID(id string) (*domain.Swap, error) {
	s := e.Snapshot()
	if i := s.swapIndex(id); i >= 0 {
		return s.Swaps[i].Clone(), nil
	}
	return nil, ErrNotFound
}

// SwapsByStatus returns swaps in the given lifecycle state, in collection
// order, answered from the status index.
func (e *Engine) SwapsByStatus(status domain.SwapStatus) []*domain.Swap {
	s := e.Snapshot()
	return e.swapsByIDs(s, s.Indexes.ByStatus[status])
}

// SwapsRequiringAction returns pending swaps owned by the given user where
// the user is not the proposer: the ones waiting on their response.
func (e *Engine) SwapsRequiringAction(userID string) []*domain.Swap {
	s := e.Snapshot()
	var out []*domain.Swap
	for _, sw := range s.Swaps {
		if sw.Status == domain.SwapStatusPending && sw.Owner.ID == userID && sw.Proposer.ID != userID {
			out = append(out, sw.Clone())
		}
	}
	return out
}

// AuctionSwaps returns swaps with the auction acceptance strategy.
func (e *Engine) AuctionSwaps() []*domain.Swap {
	s := e.Snapshot()
	return e.swapsByIDs(s, s.Indexes.Auction)
}

// FirstMatchSwaps returns swaps with the first-match acceptance strategy.
func (e *Engine) FirstMatchSwaps() []*domain.Swap {
	s := e.Snapshot()
	return e.swapsByIDs(s, s.Indexes.FirstMatch)
}

// CashEnabledSwaps returns swaps that accept cash-assisted settlement.
func (e *Engine) CashEnabledSwaps() []*domain.Swap {
	s := e.Snapshot()
	return e.swapsByIDs(s, s.Indexes.CashEnabled)
}

// BookingOnlySwaps returns plain booking-for-booking swaps.
func (e *Engine) BookingOnlySwaps() []*domain.Swap {
	s := e.Snapshot()
	return e.swapsByIDs(s, s.Indexes.BookingOnly)
}

// ProposalsForSwap returns the swap's proposals in submission order.
func (e *Engine) ProposalsForSwap(swapID string) []*domain.Proposal {
	return cloneProposals(e.Snapshot().Proposals[swapID])
}

// HistoryForSwap returns the swap's status transitions in occurrence order.
func (e *Engine) HistoryForSwap(swapID string) []domain.StatusTransition {
	return append([]domain.StatusTransition(nil), e.Snapshot().History[swapID]...)
}

// PaymentForSwap returns the payment shadow record for a swap.
// Returns ErrNotFound if absent.
func (e *Engine) PaymentForSwap(swapID string) (*domain.PaymentTransaction, error) {
	if txn, ok := e.Snapshot().Payments[swapID]; ok {
		return txn.Clone(), nil
	}
	return nil, ErrNotFound
}

// EscrowForSwap returns the escrow shadow record for a swap.
// Returns ErrNotFound if absent.
func (e *Engine) EscrowForSwap(swapID string) (*domain.EscrowAccount, error) {
	if esc, ok := e.Snapshot().Escrows[swapID]; ok {
		return esc.Clone(), nil
	}
	return nil, ErrNotFound
}

// PendingMutationKeys returns the keys of all in-flight optimistic mutations.
func (e *Engine) PendingMutationKeys() []string {
	s := e.Snapshot()
	keys := make([]string, 0, len(s.Pending))
	for k := range s.Pending {
		keys = append(keys, k)
	}
	return keys
}

// ErrorFor returns the recorded failure for a mutation key, nil when none.
func (e *Engine) ErrorFor(key string) *FlowError {
	return e.Snapshot().Errors[key]
}

// CacheValid reports whether the last fetch is still within the TTL.
func (e *Engine) CacheValid() bool {
	return e.Snapshot().Freshness.Valid(e.now())
}

// Statistics are aggregate counts over the current collection.
type Statistics struct {
	TotalSwaps         int
	TotalAuctions      int
	TotalCashSwaps     int
	AverageCashOffer   float64
	AuctionSuccessRate float64
}

// ComputeStatistics scans the current collection on demand. Isolated here so
// it can be memoized later without touching mutation logic.
func (e *Engine) ComputeStatistics() Statistics {
	s := e.Snapshot()
	st := Statistics{TotalSwaps: len(s.Swaps)}

	var cashSum float64
	var auctionsCompleted int
	for _, sw := range s.Swaps {
		if sw.Acceptance != nil && sw.Acceptance.Kind == domain.AcceptanceAuction {
			st.TotalAuctions++
			if sw.Status == domain.SwapStatusCompleted {
				auctionsCompleted++
			}
		}
		if sw.CashEnabled() {
			st.TotalCashSwaps++
			cashSum += sw.Terms.AdditionalPayment
		}
	}
	if st.TotalCashSwaps > 0 {
		st.AverageCashOffer = cashSum / float64(st.TotalCashSwaps)
	}
	if st.TotalAuctions > 0 {
		st.AuctionSuccessRate = float64(auctionsCompleted) / float64(st.TotalAuctions)
	}
	return st
}

func (e *Engine) swapsByIDs(s *State, ids []string) []*domain.Swap {
	out := make([]*domain.Swap, 0, len(ids))
	for _, id := range ids {
		if i := s.swapIndex(id); i >= 0 {
			out = append(out, s.Swaps[i].Clone())
		}
	}
	return out
}
