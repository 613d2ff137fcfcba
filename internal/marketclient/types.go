package marketclient

import "bookswap-client/internal/domain"

// Wire payloads for the marketplace REST API. Required fields carry
// validator tags; payloads are checked after decode so a malformed server
// response surfaces as a typed error instead of a half-filled entity.

// SwapPayload is the wire shape of a swap.
type SwapPayload struct {
	ID            string                     `json:"id" validate:"required"`
	SourceBooking BookingPayload             `json:"sourceBooking" validate:"required"`
	TargetBooking BookingPayload             `json:"targetBooking" validate:"required"`
	Proposer      UserPayload                `json:"proposer" validate:"required"`
	Owner         UserPayload                `json:"owner" validate:"required"`
	Status        string                     `json:"status" validate:"required,oneof=pending accepted rejected completed cancelled expired"`
	Terms         TermsPayload               `json:"terms"`
	Timeline      TimelinePayload            `json:"timeline"`
	PaymentTypes  *PaymentTypesPayload       `json:"paymentTypes,omitempty"`
	Acceptance    *AcceptanceStrategyPayload `json:"acceptanceStrategy,omitempty"`
	Completion    *CompletionPayload         `json:"completion,omitempty"`
}

// BookingPayload is the denormalized booking snapshot on the wire.
type BookingPayload struct {
	ID         string  `json:"id" validate:"required"`
	Kind       string  `json:"kind" validate:"required,oneof=hotel event flight rental"`
	Title      string  `json:"title"`
	Location   string  `json:"location"`
	StartsAt   int64   `json:"startsAt"`
	EndsAt     int64   `json:"endsAt"`
	FaceValue  float64 `json:"faceValue"`
	Refundable bool    `json:"refundable"`
}

// UserPayload is the denormalized user snapshot on the wire.
type UserPayload struct {
	ID          string  `json:"id" validate:"required"`
	DisplayName string  `json:"displayName"`
	Rating      float64 `json:"rating"`
}

// TermsPayload carries swap terms.
type TermsPayload struct {
	AdditionalPayment float64 `json:"additionalPayment"`
	Conditions        string  `json:"conditions"`
	ExpiresAt         int64   `json:"expiresAt"`
}

// TimelinePayload carries lifecycle timestamps.
type TimelinePayload struct {
	ProposedAt  int64 `json:"proposedAt"`
	RespondedAt int64 `json:"respondedAt"`
	CompletedAt int64 `json:"completedAt"`
}

// PaymentTypesPayload carries supported settlement modes.
type PaymentTypesPayload struct {
	BookingExchange     bool    `json:"bookingExchange"`
	CashPayment         bool    `json:"cashPayment"`
	MinCashAmount       float64 `json:"minCashAmount"`
	PreferredCashAmount float64 `json:"preferredCashAmount"`
}

// AcceptanceStrategyPayload carries the acceptance strategy.
type AcceptanceStrategyPayload struct {
	Kind          string `json:"kind" validate:"required,oneof=first_match auction"`
	AuctionEndsAt int64  `json:"auctionEndsAt"`
}

// CompletionPayload carries completion provenance.
type CompletionPayload struct {
	CompletedAt    int64    `json:"completedAt"`
	CompletedBy    string   `json:"completedBy"`
	TransactionRef string   `json:"transactionRef"`
	Type           string   `json:"type"`
	ProposalID     string   `json:"proposalId"`
	RelatedSwapIDs []string `json:"relatedSwapIds"`
}

// ProposalPayload is the wire shape of a proposal.
type ProposalPayload struct {
	ID          string      `json:"id" validate:"required"`
	SwapID      string      `json:"swapId" validate:"required"`
	Proposer    UserPayload `json:"proposer" validate:"required"`
	BookingID   string      `json:"bookingId"`
	CashOffer   float64     `json:"cashOffer"`
	Message     string      `json:"message"`
	Conditions  string      `json:"conditions"`
	Status      string      `json:"status" validate:"required,oneof=pending accepted rejected withdrawn"`
	CreatedAt   int64       `json:"createdAt"`
	RespondedAt int64       `json:"respondedAt"`
}

// PaymentResultPayload is the server's answer to a payment request.
type PaymentResultPayload struct {
	SwapID    string `json:"swapId" validate:"required"`
	Reference string `json:"reference" validate:"required"`
	SettledAt int64  `json:"settledAt" validate:"required"`
}

// Request bodies.

// CreateSwapRequest is the body of POST /swaps.
type CreateSwapRequest struct {
	SourceBookingID string                     `json:"sourceBookingId"`
	TargetBookingID string                     `json:"targetBookingId"`
	OwnerID         string                     `json:"ownerId"`
	Terms           TermsPayload               `json:"terms"`
	PaymentTypes    *PaymentTypesPayload       `json:"paymentTypes,omitempty"`
	Acceptance      *AcceptanceStrategyPayload `json:"acceptanceStrategy,omitempty"`
}

// SubmitProposalRequest is the body of POST /swaps/{id}/proposals.
type SubmitProposalRequest struct {
	BookingID  string  `json:"bookingId,omitempty"`
	CashOffer  float64 `json:"cashOffer,omitempty"`
	Message    string  `json:"message,omitempty"`
	Conditions string  `json:"conditions,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /swaps/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ProcessPaymentRequest is the body of POST /swaps/{id}/payment.
type ProcessPaymentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CompleteSwapRequest is the body of POST /swaps/{id}/complete.
type CompleteSwapRequest struct {
	ProposalID string `json:"proposalId"`
	Type       string `json:"type"`
}

// ToDomain converts a swap payload into the domain entity.
func (p *SwapPayload) ToDomain() *domain.Swap {
	sw := &domain.Swap{
		ID:            p.ID,
		SourceBooking: p.SourceBooking.toDomain(),
		TargetBooking: p.TargetBooking.toDomain(),
		Proposer:      domain.UserSnapshot{ID: p.Proposer.ID, DisplayName: p.Proposer.DisplayName, Rating: p.Proposer.Rating},
		Owner:         domain.UserSnapshot{ID: p.Owner.ID, DisplayName: p.Owner.DisplayName, Rating: p.Owner.Rating},
		Status:        domain.SwapStatus(p.Status),
		Terms: domain.Terms{
			AdditionalPayment: p.Terms.AdditionalPayment,
			Conditions:        p.Terms.Conditions,
			ExpiresAt:         p.Terms.ExpiresAt,
		},
		Timeline: domain.Timeline{
			ProposedAt:  p.Timeline.ProposedAt,
			RespondedAt: p.Timeline.RespondedAt,
			CompletedAt: p.Timeline.CompletedAt,
		},
	}
	if p.PaymentTypes != nil {
		sw.PaymentTypes = &domain.PaymentTypes{
			BookingExchange:     p.PaymentTypes.BookingExchange,
			CashPayment:         p.PaymentTypes.CashPayment,
			MinCashAmount:       p.PaymentTypes.MinCashAmount,
			PreferredCashAmount: p.PaymentTypes.PreferredCashAmount,
		}
	}
	if p.Acceptance != nil {
		sw.Acceptance = &domain.AcceptanceStrategy{
			Kind:          domain.AcceptanceKind(p.Acceptance.Kind),
			AuctionEndsAt: p.Acceptance.AuctionEndsAt,
		}
	}
	if p.Completion != nil {
		sw.Completion = &domain.Completion{
			CompletedAt:    p.Completion.CompletedAt,
			CompletedBy:    p.Completion.CompletedBy,
			TransactionRef: p.Completion.TransactionRef,
			Type:           domain.CompletionType(p.Completion.Type),
			ProposalID:     p.Completion.ProposalID,
			RelatedSwapIDs: append([]string(nil), p.Completion.RelatedSwapIDs...),
		}
	}
	return sw
}

func (p BookingPayload) toDomain() domain.BookingSnapshot {
	return domain.BookingSnapshot{
		ID:         p.ID,
		Kind:       domain.BookingKind(p.Kind),
		Title:      p.Title,
		Location:   p.Location,
		StartsAt:   p.StartsAt,
		EndsAt:     p.EndsAt,
		FaceValue:  p.FaceValue,
		Refundable: p.Refundable,
	}
}

// ToDomain converts a proposal payload into the domain entity.
func (p *ProposalPayload) ToDomain() *domain.Proposal {
	return &domain.Proposal{
		ID:          p.ID,
		SwapID:      p.SwapID,
		Proposer:    domain.UserSnapshot{ID: p.Proposer.ID, DisplayName: p.Proposer.DisplayName, Rating: p.Proposer.Rating},
		BookingID:   p.BookingID,
		CashOffer:   p.CashOffer,
		Message:     p.Message,
		Conditions:  p.Conditions,
		Status:      domain.ProposalStatus(p.Status),
		CreatedAt:   p.CreatedAt,
		RespondedAt: p.RespondedAt,
	}
}
