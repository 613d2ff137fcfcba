package domain

// PaymentState is the settlement state of a cash payment.
type PaymentState string

// Payment settlement states.
const (
	PaymentPending PaymentState = "pending"
	PaymentSettled PaymentState = "settled"
	PaymentFailed  PaymentState = "failed"
)

// PaymentTransaction is the client-side shadow of a cash settlement attached
// to a swap. The actual money movement happens server-side; this record only
// models its observed outcome.
type PaymentTransaction struct {
	SwapID        string
	Payer         string // user id
	Amount        float64
	Currency      string
	Status        PaymentState
	Reference     string // external settlement reference, set when settled
	CreatedAt     int64
	SettledAt     int64
	FailureReason string // set when Status is PaymentFailed
}

// Clone returns a copy of the transaction.
func (t *PaymentTransaction) Clone() *PaymentTransaction {
	c := *t
	return &c
}

// EscrowStatus is the state of an escrow account backing a swap.
type EscrowStatus string

// Escrow states.
const (
	EscrowAwaiting EscrowStatus = "awaiting"
	EscrowFunded   EscrowStatus = "funded"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

// EscrowAccount is the client-side shadow of the escrow backing a
// cash-assisted swap.
type EscrowAccount struct {
	SwapID     string
	Amount     float64
	Currency   string
	Status     EscrowStatus
	Reference  string
	FundedAt   int64
	ReleasedAt int64
}

// Clone returns a copy of the escrow account.
func (e *EscrowAccount) Clone() *EscrowAccount {
	c := *e
	return &c
}
