package state

import (
	"testing"

	"bookswap-client/internal/domain"
)

var allStatuses = []domain.SwapStatus{
	domain.SwapStatusPending,
	domain.SwapStatusAccepted,
	domain.SwapStatusRejected,
	domain.SwapStatusCompleted,
	domain.SwapStatusCancelled,
	domain.SwapStatusExpired,
}

// checkPartition verifies the status buckets are pairwise disjoint and their
// union equals the full collection.
func checkPartition(t *testing.T, s *State) {
	t.Helper()

	seen := make(map[string]domain.SwapStatus)
	total := 0
	for _, status := range allStatuses {
		for _, id := range s.Indexes.ByStatus[status] {
			if other, dup := seen[id]; dup {
				t.Fatalf("swap %s appears in both %s and %s buckets", id, other, status)
			}
			seen[id] = status
			total++
		}
	}
	if total != len(s.Swaps) {
		t.Fatalf("union of status buckets has %d ids, collection has %d", total, len(s.Swaps))
	}
	for _, sw := range s.Swaps {
		if seen[sw.ID] != sw.Status {
			t.Fatalf("swap %s has status %s but is indexed under %s", sw.ID, sw.Status, seen[sw.ID])
		}
	}
}

func TestIndexes_PartitionHoldsAcrossEventSequence(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	events := []Event{
		SwapsFetched{Swaps: []*domain.Swap{
			makeSwap("s1", domain.SwapStatusPending),
			makeAuctionSwap("s2", domain.SwapStatusPending),
			makeCashSwap("s3", domain.SwapStatusAccepted, 75),
		}},
		SwapAdded{Swap: makeSwap("s4", domain.SwapStatusPending)},
		StatusChangeRequested{SwapID: "s1", Status: domain.SwapStatusAccepted},
		SwapUpdated{Swap: makeSwap("s4", domain.SwapStatusCancelled)},
		StatusChangeFailed{SwapID: "s1", OriginalStatus: domain.SwapStatusPending},
		StatusPushed{SwapID: "s2", Status: domain.SwapStatusCompleted, ServerTimestamp: 9000},
		SwapRemoved{ID: "s3"},
		SwapAdded{Swap: makeSwap("s5", domain.SwapStatusExpired)},
	}

	for i, ev := range events {
		eng.Dispatch(ev)
		s := eng.Snapshot()
		checkPartition(t, s)
		if i == len(events)-1 && len(s.Swaps) != 3 {
			t.Errorf("expected 3 swaps at end of sequence, got %d", len(s.Swaps))
		}
	}
}

func TestIndexes_StrategylessSwapInNeitherBucket(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	noStrategy := makeSwap("s1", domain.SwapStatusPending)
	firstMatch := makeSwap("s2", domain.SwapStatusPending)
	firstMatch.Acceptance = &domain.AcceptanceStrategy{Kind: domain.AcceptanceFirstMatch}

	eng.Dispatch(SwapsFetched{Swaps: []*domain.Swap{
		noStrategy, firstMatch, makeAuctionSwap("s3", domain.SwapStatusPending),
	}})

	s := eng.Snapshot()
	for _, id := range append(s.Indexes.Auction, s.Indexes.FirstMatch...) {
		if id == "s1" {
			t.Fatal("strategy-less swap must not be defaulted into a strategy bucket")
		}
	}
	if len(s.Indexes.FirstMatch) != 1 || s.Indexes.FirstMatch[0] != "s2" {
		t.Errorf("first-match bucket should be [s2], got %v", s.Indexes.FirstMatch)
	}
	if len(s.Indexes.Auction) != 1 || s.Indexes.Auction[0] != "s3" {
		t.Errorf("auction bucket should be [s3], got %v", s.Indexes.Auction)
	}
}

func TestIndexes_PaymentCapabilityBuckets(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	cash := makeCashSwap("cash", domain.SwapStatusPending, 30)
	bookingOnly := makeSwap("booking", domain.SwapStatusPending)
	bookingOnly.PaymentTypes = &domain.PaymentTypes{BookingExchange: true}
	noTypes := makeSwap("legacy", domain.SwapStatusPending)

	eng.Dispatch(SwapsFetched{Swaps: []*domain.Swap{cash, bookingOnly, noTypes}})

	s := eng.Snapshot()
	if len(s.Indexes.CashEnabled) != 1 || s.Indexes.CashEnabled[0] != "cash" {
		t.Errorf("cash bucket should be [cash], got %v", s.Indexes.CashEnabled)
	}
	if len(s.Indexes.BookingOnly) != 1 || s.Indexes.BookingOnly[0] != "booking" {
		t.Errorf("booking-only bucket should be [booking], got %v", s.Indexes.BookingOnly)
	}
}

func TestIndexes_CompletedOverlayBucket(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(SwapsFetched{Swaps: []*domain.Swap{
		makeSwap("s1", domain.SwapStatusAccepted),
		makeSwap("s2", domain.SwapStatusAccepted),
	}})

	eng.Dispatch(CompletionUpdated{SwapID: "s1", Completion: &domain.Completion{CompletedAt: 100}})

	s := eng.Snapshot()
	if len(s.Indexes.Completed) != 1 || s.Indexes.Completed[0] != "s1" {
		t.Errorf("completed bucket should be [s1], got %v", s.Indexes.Completed)
	}

	// s2 completes without provenance: status bucket moves, overlay bucket does not.
	eng.Dispatch(StatusPushed{SwapID: "s2", Status: domain.SwapStatusCompleted, ServerTimestamp: 200})
	s = eng.Snapshot()
	if len(s.Indexes.Completed) != 1 {
		t.Errorf("overlay bucket tracks the overlay, not the status, got %v", s.Indexes.Completed)
	}
	if len(s.Indexes.ByStatus[domain.SwapStatusCompleted]) != 2 {
		t.Errorf("both swaps should be status-completed, got %v",
			s.Indexes.ByStatus[domain.SwapStatusCompleted])
	}
}
