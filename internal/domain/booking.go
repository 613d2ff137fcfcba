package domain

// BookingKind classifies a reservable booking.
type BookingKind string

// Booking kinds.
const (
	BookingHotel  BookingKind = "hotel"
	BookingEvent  BookingKind = "event"
	BookingFlight BookingKind = "flight"
	BookingRental BookingKind = "rental"
)

// BookingSnapshot is a denormalized copy of a booking as it looked when the
// swap referencing it was created. It is never refreshed in place.
type BookingSnapshot struct {
	ID         string
	Kind       BookingKind
	Title      string
	Location   string
	StartsAt   int64 // check-in / event start (ms)
	EndsAt     int64 // check-out / event end (ms)
	FaceValue  float64
	Refundable bool
}

// UserSnapshot is a denormalized copy of a marketplace user identity.
type UserSnapshot struct {
	ID          string
	DisplayName string
	Rating      float64
}
