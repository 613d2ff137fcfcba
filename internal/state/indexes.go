package state

import "bookswap-client/internal/domain"

// Indexes are the derived partitions of the swap collection. They hold swap
// ids in collection order and are rebuilt by a full pass on every mutation
// that can change membership. Never patched incrementally: the O(n) rebuild
// is the price of staying correct under interleaved optimistic and real
// mutations.
type Indexes struct {
	// ByStatus partitions the collection by lifecycle status. The buckets
	// are pairwise disjoint and their union is the full collection.
	ByStatus map[domain.SwapStatus][]string

	// Acceptance-strategy buckets. A swap with no strategy set belongs to
	// neither bucket; it is deliberately not defaulted to first-match.
	Auction    []string
	FirstMatch []string

	// Payment-capability buckets. CashEnabled holds swaps with the cash
	// flag set; BookingOnly holds swaps with booking exchange enabled and
	// cash absent or disabled.
	CashEnabled []string
	BookingOnly []string

	// Completed holds swaps carrying a completion provenance overlay.
	Completed []string
}

// buildIndexes recomputes all partitions from the collection.
func buildIndexes(swaps []*domain.Swap) Indexes {
	idx := Indexes{
		ByStatus: make(map[domain.SwapStatus][]string),
	}
	for _, sw := range swaps {
		idx.ByStatus[sw.Status] = append(idx.ByStatus[sw.Status], sw.ID)

		if sw.Acceptance != nil {
			switch sw.Acceptance.Kind {
			case domain.AcceptanceAuction:
				idx.Auction = append(idx.Auction, sw.ID)
			case domain.AcceptanceFirstMatch:
				idx.FirstMatch = append(idx.FirstMatch, sw.ID)
			}
		}

		if sw.CashEnabled() {
			idx.CashEnabled = append(idx.CashEnabled, sw.ID)
		}
		if sw.BookingOnly() {
			idx.BookingOnly = append(idx.BookingOnly, sw.ID)
		}

		if sw.Completion != nil {
			idx.Completed = append(idx.Completed, sw.ID)
		}
	}
	return idx
}
