package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// Payment is one charge attempt for a booking; a booking may accumulate
// several attempts but at most one completed payment.
type Payment struct {
	ID              int64
	UserID          int64
	BookingID       int64
	AmountCents     int64
	Currency        string
	Status          PaymentStatus
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
