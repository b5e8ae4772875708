package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"evcharge/internal/domain"
)

const bookingColumns = `id, user_id, station_id, charger_id, start_time, end_time, vehicle_info, status, amount_cents, payment_status, created_at, updated_at`

type BookingRepository interface {
	CreateConfirmed(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	SetPaymentStatus(ctx context.Context, id int64, state domain.PaymentState) error
	ListConfirmedForStationDay(ctx context.Context, stationID int64, dayStart, dayEnd time.Time) ([]domain.Booking, error)
	ListUpcomingForUser(ctx context.Context, userID int64, from time.Time) ([]domain.Booking, error)
	CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// CreateConfirmed runs the overlap check and the insert in one transaction.
// A conflicting row is locked FOR UPDATE so a concurrent writer serializes
// behind it; the partial unique index on (charger_id, start_time) for
// confirmed rows is the second line of defense and is translated to
// domain.ErrSlotConflict as well.
func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var conflictID int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM bookings
		WHERE charger_id=$1 AND status=$2 AND start_time < $4 AND end_time > $3
		LIMIT 1
		FOR UPDATE
	`, booking.ChargerID, domain.BookingStatusConfirmed, booking.StartTime, booking.EndTime).Scan(&conflictID)
	if err == nil {
		return domain.ErrSlotConflict
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	booking.Status = domain.BookingStatusConfirmed
	booking.PaymentStatus = domain.PaymentStatePending
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (user_id, station_id, charger_id, start_time, end_time, vehicle_info, status, amount_cents, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, booking.UserID, booking.StationID, booking.ChargerID, booking.StartTime, booking.EndTime,
		booking.VehicleInfo, booking.Status, booking.AmountCents, booking.PaymentStatus).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlotConflict
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) SetPaymentStatus(ctx context.Context, id int64, state domain.PaymentState) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET payment_status=$1, updated_at=now() WHERE id=$2`, state, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListConfirmedForStationDay returns confirmed bookings whose interval
// intersects [dayStart, dayEnd), ordered by start time.
func (r *PGBookingRepository) ListConfirmedForStationDay(ctx context.Context, stationID int64, dayStart, dayEnd time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE station_id=$1 AND status=$2 AND start_time < $4 AND end_time > $3
		ORDER BY start_time
	`, stationID, domain.BookingStatusConfirmed, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListUpcomingForUser(ctx context.Context, userID int64, from time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id=$1 AND status=$2 AND start_time >= $3
		ORDER BY start_time
	`, userID, domain.BookingStatusConfirmed, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND end_time <= $3
		RETURNING `+bookingColumns,
		domain.BookingStatusCompleted, domain.BookingStatusConfirmed, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.StationID, &b.ChargerID, &b.StartTime, &b.EndTime,
		&b.VehicleInfo, &b.Status, &b.AmountCents, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.StationID, &b.ChargerID, &b.StartTime, &b.EndTime,
			&b.VehicleInfo, &b.Status, &b.AmountCents, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ BookingRepository = (*PGBookingRepository)(nil)
