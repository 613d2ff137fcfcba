package domain

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

// Proposal lifecycle states.
const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

// Proposal is a counter-offer submitted against an existing swap. It belongs
// to exactly one swap, referenced by SwapID only (no back-pointer). A proposal
// offers either a booking (BookingID set) or cash (CashOffer > 0), or both.
//
// At most one pending proposal per (swap, proposer) exists at a time; the
// server rejects duplicates upstream, the client does not re-check.
type Proposal struct {
	ID          string
	SwapID      string
	Proposer    UserSnapshot
	BookingID   string
	CashOffer   float64
	Message     string
	Conditions  string
	Status      ProposalStatus
	CreatedAt   int64
	RespondedAt int64 // set on transition out of pending
}

// Clone returns a copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	c := *p
	return &c
}
