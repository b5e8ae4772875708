package booking

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"evcharge/internal/domain"
	"evcharge/internal/kafka"
	"evcharge/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	CompleteEndedBookings(ctx context.Context) ([]domain.Booking, error)
}

// Cache provides the per-charger advisory lock serializing concurrent
// create attempts for one charger.
type Cache interface {
	AcquireChargerLock(ctx context.Context, chargerID int64, ttl time.Duration) (bool, error)
	ReleaseChargerLock(ctx context.Context, chargerID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	UserID      int64
	StationID   int64
	ChargerID   int64
	StartTime   time.Time
	EndTime     time.Time
	VehicleInfo string
}

type BookingService struct {
	bookings           repository.BookingRepository
	stations           repository.StationRepository
	users              repository.UserRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	ratePerHourCents   int64
	maxDuration        time.Duration
	lockTTL            time.Duration
	logger             *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	stations repository.StationRepository,
	users repository.UserRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	ratePerHourCents int64,
	maxDuration, lockTTL time.Duration,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:         bookings,
		stations:         stations,
		users:            users,
		cache:            cache,
		producer:         producer,
		bookingTopic:     bookingTopic,
		ratePerHourCents: ratePerHourCents,
		maxDuration:      maxDuration,
		lockTTL:          lockTTL,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking admits or rejects a reservation for one charger and time
// window. Two intervals [s1,e1) and [s2,e2) conflict iff s1 < e2 && s2 < e1;
// the check and the insert run under a per-charger lock plus a transactional
// re-check in the repository.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", domain.ErrValidation)
	}
	start := input.StartTime.UTC()
	end := input.EndTime.UTC()
	if input.EndTime.IsZero() {
		// Slots default to one hour.
		end = start.Add(time.Hour)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: end time must be after start time", domain.ErrValidation)
	}
	if end.Sub(start) > s.maxDuration {
		return nil, fmt.Errorf("%w: booking duration exceeds %s", domain.ErrValidation, s.maxDuration)
	}
	if start.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: start time must be in the future", domain.ErrValidation)
	}

	station, err := s.stations.GetByID(ctx, input.StationID)
	if err != nil {
		return nil, err
	}
	charger, ok := station.Charger(input.ChargerID)
	if !ok {
		return nil, fmt.Errorf("charger %d: %w", input.ChargerID, domain.ErrNotFound)
	}
	if charger.Status == domain.ChargerStatusOutOfOrder {
		return nil, fmt.Errorf("%w: charger is out of order", domain.ErrValidation)
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireChargerLock(ctx, input.ChargerID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSlotConflict
		}
		defer func() {
			if err := s.cache.ReleaseChargerLock(ctx, input.ChargerID); err != nil {
				s.logger.Warn("failed to release charger lock", zap.Int64("charger_id", input.ChargerID), zap.Error(err))
			}
		}()
	}

	booking := &domain.Booking{
		UserID:      input.UserID,
		StationID:   input.StationID,
		ChargerID:   input.ChargerID,
		StartTime:   start,
		EndTime:     end,
		VehicleInfo: input.VehicleInfo,
		AmountCents: s.amountFor(start, end),
	}

	if err := s.bookings.CreateConfirmed(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

// CancelBooking moves a confirmed booking to CANCELLED. Only the owner may
// cancel, and only from the CONFIRMED state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

// CompleteBooking moves a confirmed booking to COMPLETED. Early completion
// is allowed; completion is terminal.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_completed", updated)
	return updated, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListUpcomingForUser(ctx, userID, time.Now().UTC())
}

// CompleteEndedBookings is the worker sweep marking confirmed bookings whose
// end time has passed as completed.
func (s *BookingService) CompleteEndedBookings(ctx context.Context) ([]domain.Booking, error) {
	completed, err := s.bookings.CompleteEndedBefore(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.publish(ctx, "booking_completed", &completed[i])
	}
	return completed, nil
}

func (s *BookingService) amountFor(start, end time.Time) int64 {
	hours := int64(math.Ceil(end.Sub(start).Hours()))
	return hours * s.ratePerHourCents
}

// publish is best-effort: notification failures are logged, never surfaced
// into the request outcome.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}

	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		StationID:   booking.StationID,
		ChargerID:   booking.ChargerID,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Status:      string(booking.Status),
		AmountCents: booking.AmountCents,
	}
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, booking.UserID); err == nil {
			event.Email = user.Email
		}
	}

	key := strconv.FormatInt(booking.ID, 10)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		s.logger.Warn("failed to publish booking event", zap.String("type", eventType), zap.Int64("booking_id", booking.ID), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.logger.Warn("failed to publish notification event", zap.String("type", eventType), zap.Int64("booking_id", booking.ID), zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
