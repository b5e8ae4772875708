package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evcharge/internal/domain"
)

const paymentColumns = `id, user_id, booking_id, amount_cents, currency, status, payment_intent_id, created_at, updated_at`

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO payments (user_id, booking_id, amount_cents, currency, status, payment_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, payment.UserID, payment.BookingID, payment.AmountCents, payment.Currency, payment.Status, payment.PaymentIntentID).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE payment_intent_id=$1`, intentID)
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.BookingID, &p.AmountCents, &p.Currency, &p.Status, &p.PaymentIntentID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE payments SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGPaymentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.BookingID, &p.AmountCents, &p.Currency, &p.Status, &p.PaymentIntentID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
