// Package domain defines the entities of the booking swap marketplace client.
// All timestamps are Unix milliseconds; zero means unset.
package domain

// SwapStatus is the lifecycle state of a swap.
type SwapStatus string

// Swap lifecycle states.
const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusCancelled SwapStatus = "cancelled"
	SwapStatusExpired   SwapStatus = "expired"
)

// AcceptanceKind selects how proposals against a swap are accepted.
type AcceptanceKind string

// Acceptance strategies.
const (
	AcceptanceFirstMatch AcceptanceKind = "first_match"
	AcceptanceAuction    AcceptanceKind = "auction"
)

// CompletionType describes how a swap reached completion.
type CompletionType string

// Completion types.
const (
	CompletionDirect     CompletionType = "direct"
	CompletionAuction    CompletionType = "auction"
	CompletionMultiParty CompletionType = "multi_party"
)

// Terms carries the negotiated conditions of a swap.
type Terms struct {
	AdditionalPayment float64 // cash on top of the booking exchange, in major units
	Conditions        string  // free-text conditions
	ExpiresAt         int64   // offer expiry timestamp (ms)
}

// Timeline records the swap's lifecycle timestamps, each monotonically later
// than the previous. ProposedAt and RespondedAt are set once; CompletedAt is
// set exactly while Status is completed.
type Timeline struct {
	ProposedAt  int64
	RespondedAt int64
	CompletedAt int64
}

// PaymentTypes declares which settlement modes a swap supports.
type PaymentTypes struct {
	BookingExchange     bool    // plain booking-for-booking exchange allowed
	CashPayment         bool    // cash-assisted settlement allowed
	MinCashAmount       float64 // lower bound for cash offers
	PreferredCashAmount float64 // owner's preferred cash amount
}

// AcceptanceStrategy declares how the owner accepts proposals.
// AuctionEndsAt is meaningful only when Kind is AcceptanceAuction.
type AcceptanceStrategy struct {
	Kind          AcceptanceKind
	AuctionEndsAt int64
}

// Completion is the provenance overlay recorded when a swap completes.
// It complements Status rather than replacing it: Status moves to completed
// independently, Completion carries the richer settlement context.
type Completion struct {
	CompletedAt    int64
	CompletedBy    string         // user id of the completing actor
	TransactionRef string         // external settlement reference, opaque
	Type           CompletionType
	ProposalID     string         // proposal that triggered the completion
	RelatedSwapIDs []string       // other swaps completed atomically with this one
}

// Swap is the central entity: a proposed or executed exchange between two
// bookings, optionally with cash and/or auction mechanics. Booking and user
// fields are denormalized snapshots, not live joins.
type Swap struct {
	ID            string
	SourceBooking BookingSnapshot
	TargetBooking BookingSnapshot
	Proposer      UserSnapshot
	Owner         UserSnapshot
	Status        SwapStatus
	Terms         Terms
	Timeline      Timeline
	PaymentTypes  *PaymentTypes       // nil when the swap predates payment modes
	Acceptance    *AcceptanceStrategy // nil when no strategy was chosen
	Completion    *Completion         // nil until the swap completes
}

// CashEnabled reports whether the swap accepts cash-assisted settlement.
func (s *Swap) CashEnabled() bool {
	return s.PaymentTypes != nil && s.PaymentTypes.CashPayment
}

// BookingOnly reports whether the swap is a plain booking exchange with
// cash settlement absent or disabled.
func (s *Swap) BookingOnly() bool {
	return s.PaymentTypes != nil && s.PaymentTypes.BookingExchange && !s.PaymentTypes.CashPayment
}

// Clone returns a deep copy of the swap.
func (s *Swap) Clone() *Swap {
	c := *s
	if s.PaymentTypes != nil {
		pt := *s.PaymentTypes
		c.PaymentTypes = &pt
	}
	if s.Acceptance != nil {
		a := *s.Acceptance
		c.Acceptance = &a
	}
	if s.Completion != nil {
		comp := *s.Completion
		comp.RelatedSwapIDs = append([]string(nil), s.Completion.RelatedSwapIDs...)
		c.Completion = &comp
	}
	return &c
}

// StatusTransition is one entry in a swap's status history.
type StatusTransition struct {
	Status SwapStatus
	At     int64
	Actor  string // user id that caused the transition, empty for server pushes
}
