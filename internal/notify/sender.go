package notify

import (
	"context"

	"github.com/zvrva/retreatbooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender delivers notification events consumed by the worker. Delivery is
// currently an email/push stub that records the attempt; the booking core
// never waits on it.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	s.logger.Info("deliver notification",
		zap.String("type", event.Type),
		zap.Int64("recipient_id", event.RecipientID),
		zap.String("booking_id", event.BookingID),
		zap.String("message", event.Message),
		zap.String("link", event.Link),
	)
	return nil
}
