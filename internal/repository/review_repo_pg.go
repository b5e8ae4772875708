package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evcharge/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error)
	ListByStation(ctx context.Context, stationID int64) ([]domain.Review, error)
}

type PGReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &PGReviewRepository{db: db}
}

func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO reviews (user_id, station_id, booking_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, review.UserID, review.StationID, review.BookingID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReviewExists
		}
		return err
	}
	return nil
}

func (r *PGReviewRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, station_id, booking_id, rating, comment, created_at
		FROM reviews WHERE booking_id=$1
	`, bookingID)
	var rv domain.Review
	if err := row.Scan(&rv.ID, &rv.UserID, &rv.StationID, &rv.BookingID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

func (r *PGReviewRepository) ListByStation(ctx context.Context, stationID int64) ([]domain.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, station_id, booking_id, rating, comment, created_at
		FROM reviews WHERE station_id=$1
		ORDER BY created_at DESC
	`, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.StationID, &rv.BookingID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

var _ ReviewRepository = (*PGReviewRepository)(nil)
