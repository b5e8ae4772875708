package payment

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/kafka"
	"evcharge/internal/payments"
	"evcharge/internal/repository"
)

type PaymentUseCase interface {
	CreateIntent(ctx context.Context, userID, bookingID int64) (*IntentResult, error)
	Confirm(ctx context.Context, userID int64, intentID string) (*domain.Payment, error)
	History(ctx context.Context, userID int64) ([]domain.Payment, error)
}

// Provider abstracts the external card-payment processor.
type Provider interface {
	CreateIntent(ctx context.Context, booking *domain.Booking) (*payments.Intent, error)
	GetIntent(ctx context.Context, intentID string) (*payments.Intent, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	AmountCents     int64  `json:"amountCents"`
}

type PaymentService struct {
	payments           repository.PaymentRepository
	bookings           repository.BookingRepository
	provider           Provider
	producer           Producer
	notificationsTopic string
	currency           string
	logger             *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookings repository.BookingRepository,
	provider Provider,
	producer Producer,
	notificationsTopic, currency string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments:           paymentRepo,
		bookings:           bookings,
		provider:           provider,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		currency:           currency,
		logger:             logger,
	}
}

// CreateIntent opens a payment attempt for a booking with the external
// processor and records it as PENDING.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, bookingID int64) (*IntentResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if booking.PaymentStatus == domain.PaymentStatePaid {
		return nil, fmt.Errorf("%w: payment already completed", domain.ErrValidation)
	}

	intent, err := s.provider.CreateIntent(ctx, booking)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		UserID:          userID,
		BookingID:       bookingID,
		AmountCents:     booking.AmountCents,
		Currency:        s.currency,
		Status:          domain.PaymentStatusPending,
		PaymentIntentID: intent.ID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &IntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		AmountCents:     booking.AmountCents,
	}, nil
}

// Confirm checks the processor's view of the intent and, if it succeeded,
// marks the payment completed and the booking paid.
func (s *PaymentService) Confirm(ctx context.Context, userID int64, intentID string) (*domain.Payment, error) {
	intent, err := s.provider.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payments.StatusSucceeded {
		return nil, fmt.Errorf("%w: payment not completed (status %s)", domain.ErrValidation, intent.Status)
	}

	payment, err := s.payments.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, domain.ErrForbidden
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusCompleted); err != nil {
		return nil, err
	}
	if err := s.bookings.SetPaymentStatus(ctx, payment.BookingID, domain.PaymentStatePaid); err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusCompleted

	s.notify(ctx, payment)
	return payment, nil
}

func (s *PaymentService) History(ctx context.Context, userID int64) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

func (s *PaymentService) notify(ctx context.Context, payment *domain.Payment) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        "payment_confirmed",
		BookingID:   payment.BookingID,
		UserID:      payment.UserID,
		AmountCents: payment.AmountCents,
		Status:      string(payment.Status),
	}
	key := strconv.FormatInt(payment.BookingID, 10)
	if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
		s.logger.Warn("failed to publish payment event", zap.Int64("payment_id", payment.ID), zap.Error(err))
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
