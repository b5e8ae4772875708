package domain

import "time"

// Review is created once for a completed booking and never modified.
type Review struct {
	ID        int64
	UserID    int64
	StationID int64
	BookingID int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}
