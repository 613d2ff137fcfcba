package state

import (
	"time"

	"bookswap-client/internal/domain"
)

// fakeClock is a manually advanced time source for TTL and timestamp tests.
type fakeClock struct {
	ms int64
}

func (c *fakeClock) Now() time.Time { return time.UnixMilli(c.ms) }

func (c *fakeClock) Advance(d time.Duration) { c.ms += d.Milliseconds() }

func newTestEngine(c *fakeClock) *Engine {
	return NewEngine(WithClock(c.Now))
}

func makeSwap(id string, status domain.SwapStatus) *domain.Swap {
	return &domain.Swap{
		ID: id,
		SourceBooking: domain.BookingSnapshot{
			ID:    "b-" + id + "-src",
			Kind:  domain.BookingHotel,
			Title: "Seaside Hotel",
		},
		TargetBooking: domain.BookingSnapshot{
			ID:    "b-" + id + "-dst",
			Kind:  domain.BookingRental,
			Title: "Mountain Cabin",
		},
		Proposer: domain.UserSnapshot{ID: "u-proposer"},
		Owner:    domain.UserSnapshot{ID: "u-owner"},
		Status:   status,
		Terms:    domain.Terms{},
		Timeline: domain.Timeline{ProposedAt: 1000},
	}
}

func makeAuctionSwap(id string, status domain.SwapStatus) *domain.Swap {
	sw := makeSwap(id, status)
	sw.Acceptance = &domain.AcceptanceStrategy{
		Kind:          domain.AcceptanceAuction,
		AuctionEndsAt: 9000,
	}
	return sw
}

func makeCashSwap(id string, status domain.SwapStatus, offer float64) *domain.Swap {
	sw := makeSwap(id, status)
	sw.PaymentTypes = &domain.PaymentTypes{
		BookingExchange: true,
		CashPayment:     true,
		MinCashAmount:   10,
	}
	sw.Terms.AdditionalPayment = offer
	return sw
}

func makeProposal(id, swapID, proposer string) *domain.Proposal {
	return &domain.Proposal{
		ID:        id,
		SwapID:    swapID,
		Proposer:  domain.UserSnapshot{ID: proposer},
		BookingID: "b-" + id,
		Status:    domain.ProposalStatusPending,
		CreatedAt: 1000,
	}
}
