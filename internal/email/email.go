package email

import (
	"context"

	"go.uber.org/zap"

	"evcharge/internal/kafka"
)

// Sender delivers booking notifications. Delivery is mocked: the message is
// logged instead of handed to an SMTP provider.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.logger.Info("sending booking email",
		zap.String("to", event.Email),
		zap.String("event", event.Type),
		zap.Int64("booking_id", event.BookingID),
		zap.Int64("charger_id", event.ChargerID),
		zap.Time("start_time", event.StartTime),
	)
	return nil
}
