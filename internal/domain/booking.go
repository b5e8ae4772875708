package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type PaymentState string

const (
	PaymentStatePending PaymentState = "PENDING"
	PaymentStatePaid    PaymentState = "PAID"
)

type Booking struct {
	ID            int64
	UserID        int64
	StationID     int64
	ChargerID     int64
	StartTime     time.Time
	EndTime       time.Time
	VehicleInfo   string
	Status        BookingStatus
	AmountCents   int64
	PaymentStatus PaymentState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share at least one instant. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
