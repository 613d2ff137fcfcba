package state

import (
	"testing"

	"bookswap-client/internal/domain"
)

func TestLedger_TwoProposalsKeepSubmissionOrder(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(SwapAdded{Swap: makeSwap("s1", domain.SwapStatusPending)})

	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p1", "s1", "u-alice")})
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p2", "s1", "u-bob")})

	props := eng.ProposalsForSwap("s1")
	if len(props) != 2 {
		t.Fatalf("expected both proposals, got %d", len(props))
	}
	if props[0].ID != "p1" || props[1].ID != "p2" {
		t.Errorf("order should be submission order, got %s, %s", props[0].ID, props[1].ID)
	}
	if props[0].Status != domain.ProposalStatusPending || props[1].Status != domain.ProposalStatusPending {
		t.Error("both proposals should be pending")
	}
}

func TestLedger_SetAllReplacesList(t *testing.T) {
	eng := newTestEngine(&fakeClock{})

	eng.Dispatch(ProposalAdded{Proposal: makeProposal("old", "s1", "u-alice")})
	eng.Dispatch(ProposalsFetched{SwapID: "s1", Proposals: []*domain.Proposal{
		makeProposal("p1", "s1", "u-bob"),
	}})

	props := eng.ProposalsForSwap("s1")
	if len(props) != 1 || props[0].ID != "p1" {
		t.Errorf("set should replace the full list, got %v", props)
	}
}

func TestLedger_ReplaceByID(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p1", "s1", "u-alice")})
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p2", "s1", "u-bob")})

	accepted := makeProposal("p1", "s1", "u-alice")
	accepted.Status = domain.ProposalStatusAccepted
	accepted.RespondedAt = 2000
	eng.Dispatch(ProposalUpdated{Proposal: accepted})

	props := eng.ProposalsForSwap("s1")
	if props[0].Status != domain.ProposalStatusAccepted || props[0].RespondedAt != 2000 {
		t.Errorf("p1 should be substituted in place, got %+v", props[0])
	}
	if props[1].ID != "p2" {
		t.Errorf("p2 should be untouched, got %s", props[1].ID)
	}
}

func TestLedger_ViewedMirrorStaysInLockstep(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(SwapAdded{Swap: makeSwap("s1", domain.SwapStatusPending)})
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p1", "s1", "u-alice")})

	eng.Dispatch(SwapViewed{SwapID: "s1"})
	if n := len(eng.Snapshot().ViewedProposals); n != 1 {
		t.Fatalf("opening the view should mirror the list, got %d", n)
	}

	// Mutations on the viewed swap propagate into the mirror.
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p2", "s1", "u-bob")})
	if n := len(eng.Snapshot().ViewedProposals); n != 2 {
		t.Errorf("mirror should follow appends, got %d", n)
	}

	// Mutations on other swaps do not touch the mirror.
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p3", "s2", "u-carol")})
	if n := len(eng.Snapshot().ViewedProposals); n != 2 {
		t.Errorf("mirror should ignore other swaps, got %d", n)
	}

	eng.Dispatch(SwapViewed{SwapID: ""})
	if eng.Snapshot().ViewedProposals != nil {
		t.Error("closing the view should clear the mirror")
	}
}

func TestLedger_OptimisticProposalLifecycle(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(SwapAdded{Swap: makeSwap("s1", domain.SwapStatusPending)})
	eng.Dispatch(SwapViewed{SwapID: "s1"})

	draft := makeProposal("", "s1", "u-alice")
	eng.Dispatch(ProposalCreateStarted{PendingID: "tmp-p", Proposal: draft})

	props := eng.ProposalsForSwap("s1")
	if len(props) != 1 || props[0].ID != "tmp-p" {
		t.Fatalf("optimistic proposal should be appended, got %v", props)
	}

	server := makeProposal("srv-p", "s1", "u-alice")
	eng.Dispatch(ProposalCreateSucceeded{PendingID: "tmp-p", Proposal: server})

	props = eng.ProposalsForSwap("s1")
	if len(props) != 1 || props[0].ID != "srv-p" {
		t.Errorf("server payload should replace the optimistic entry in place, got %v", props)
	}
	if mirror := eng.Snapshot().ViewedProposals; len(mirror) != 1 || mirror[0].ID != "srv-p" {
		t.Errorf("mirror should follow the substitution, got %v", mirror)
	}
}

func TestLedger_ConfirmAfterRefreshDoesNotDuplicate(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(ProposalCreateStarted{PendingID: "tmp-p", Proposal: makeProposal("", "s1", "u-alice")})

	// A proposal refresh lands mid-flight and already carries the server record.
	server := makeProposal("srv-p", "s1", "u-alice")
	eng.Dispatch(ProposalsFetched{SwapID: "s1", Proposals: []*domain.Proposal{server}})
	eng.Dispatch(ProposalCreateSucceeded{PendingID: "tmp-p", Proposal: server})

	props := eng.ProposalsForSwap("s1")
	if len(props) != 1 || props[0].ID != "srv-p" {
		t.Errorf("confirmation should replace by server id, got %v", props)
	}
	if n := len(eng.PendingMutationKeys()); n != 0 {
		t.Errorf("confirmation should clear the in-flight record, got %d pending", n)
	}
}

func TestLedger_OptimisticProposalRollback(t *testing.T) {
	eng := newTestEngine(&fakeClock{})
	eng.Dispatch(ProposalAdded{Proposal: makeProposal("p1", "s1", "u-bob")})

	eng.Dispatch(ProposalCreateStarted{PendingID: "tmp-p", Proposal: makeProposal("", "s1", "u-alice")})
	eng.Dispatch(ProposalCreateFailed{PendingID: "tmp-p", Err: &FlowError{Code: "duplicate_pending"}})

	props := eng.ProposalsForSwap("s1")
	if len(props) != 1 || props[0].ID != "p1" {
		t.Errorf("rollback should leave only the pre-existing proposal, got %v", props)
	}
	if eng.ErrorFor("tmp-p") == nil {
		t.Error("rollback should surface the rejection")
	}
}
