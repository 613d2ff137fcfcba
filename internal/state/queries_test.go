package state

import (
	"testing"

	"bookswap-client/internal/domain"
)

func TestSwapsRequiringAction(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	waiting := makeSwap("waiting", domain.SwapStatusPending)
	waiting.Owner = domain.UserSnapshot{ID: "u-me"}
	waiting.Proposer = domain.UserSnapshot{ID: "u-other"}

	ownProposal := makeSwap("own", domain.SwapStatusPending)
	ownProposal.Owner = domain.UserSnapshot{ID: "u-me"}
	ownProposal.Proposer = domain.UserSnapshot{ID: "u-me"}

	decided := makeSwap("decided", domain.SwapStatusAccepted)
	decided.Owner = domain.UserSnapshot{ID: "u-me"}
	decided.Proposer = domain.UserSnapshot{ID: "u-other"}

	notMine := makeSwap("theirs", domain.SwapStatusPending)

	eng.Dispatch(SwapsFetched{Swaps: []*domain.Swap{waiting, ownProposal, decided, notMine}})

	got := eng.SwapsRequiringAction("u-me")
	if len(got) != 1 || got[0].ID != "waiting" {
		t.Errorf("expected [waiting], got %v", idsOf(got))
	}
}

func TestQueries_ReturnCopies(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(SwapAdded{Swap: makeCashSwap("s1", domain.SwapStatusPending, 10)})

	got := eng.AllSwaps()
	got[0].Status = domain.SwapStatusCancelled
	got[0].PaymentTypes.CashPayment = false

	again, _ := eng.SwapByID("s1")
	if again.Status != domain.SwapStatusPending {
		t.Error("mutating a query result must not affect the store")
	}
	if !again.CashEnabled() {
		t.Error("nested records must be copied too")
	}
}

func TestStatistics(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	wonAuction := makeAuctionSwap("a1", domain.SwapStatusCompleted)
	openAuction := makeAuctionSwap("a2", domain.SwapStatusPending)
	cashLow := makeCashSwap("c1", domain.SwapStatusPending, 40)
	cashHigh := makeCashSwap("c2", domain.SwapStatusAccepted, 160)
	plain := makeSwap("p1", domain.SwapStatusPending)

	eng.Dispatch(SwapsFetched{Swaps: []*domain.Swap{wonAuction, openAuction, cashLow, cashHigh, plain}})

	st := eng.ComputeStatistics()
	if st.TotalSwaps != 5 {
		t.Errorf("TotalSwaps = %d, want 5", st.TotalSwaps)
	}
	if st.TotalAuctions != 2 {
		t.Errorf("TotalAuctions = %d, want 2", st.TotalAuctions)
	}
	if st.TotalCashSwaps != 2 {
		t.Errorf("TotalCashSwaps = %d, want 2", st.TotalCashSwaps)
	}
	if st.AverageCashOffer != 100 {
		t.Errorf("AverageCashOffer = %v, want 100", st.AverageCashOffer)
	}
	if st.AuctionSuccessRate != 0.5 {
		t.Errorf("AuctionSuccessRate = %v, want 0.5", st.AuctionSuccessRate)
	}
}

func TestStatistics_EmptyCollection(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	st := eng.ComputeStatistics()
	if st.TotalSwaps != 0 || st.AverageCashOffer != 0 || st.AuctionSuccessRate != 0 {
		t.Errorf("empty collection should produce zero statistics, got %+v", st)
	}
}

func TestHistoryForSwap_RecordsTransitions(t *testing.T) {
	eng := newTestEngine(&fakeClock{ms: 1000})
	eng.Dispatch(SwapAdded{Swap: makeSwap("s1", domain.SwapStatusPending)})
	eng.Dispatch(StatusPushed{SwapID: "s1", Status: domain.SwapStatusAccepted, ServerTimestamp: 2000})
	eng.Dispatch(StatusPushed{SwapID: "s1", Status: domain.SwapStatusCompleted, ServerTimestamp: 3000})

	h := eng.HistoryForSwap("s1")
	if len(h) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(h))
	}
	want := []domain.SwapStatus{
		domain.SwapStatusPending,
		domain.SwapStatusAccepted,
		domain.SwapStatusCompleted,
	}
	for i, status := range want {
		if h[i].Status != status {
			t.Errorf("transition %d = %s, want %s", i, h[i].Status, status)
		}
	}
	if h[2].At != 3000 {
		t.Errorf("server timestamp should be recorded, got %d", h[2].At)
	}
}

func TestEngine_SubscribersSeeCompleteSnapshots(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	var seen []*State
	cancel := eng.Subscribe(func(s *State) { seen = append(seen, s) })
	defer cancel()

	eng.Dispatch(SwapAdded{Swap: makeSwap("s1", domain.SwapStatusPending)})
	eng.Dispatch(StatusChangeRequested{SwapID: "s1", Status: domain.SwapStatusAccepted})

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	checkPartition(t, seen[0])
	checkPartition(t, seen[1])

	cancel()
	eng.Dispatch(SwapRemoved{ID: "s1"})
	if len(seen) != 2 {
		t.Error("cancelled subscriber should not be notified")
	}
}
