package broadcast

import (
	"context"

	"go.uber.org/zap"
)

// Deliverer hands a single message to a delivery channel.
type Deliverer interface {
	Deliver(ctx context.Context, phone, text string) error
}

// LogDeliverer only records deliveries in the log.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, phone, text string) error {
	zap.L().Info("Message delivered",
		zap.String("phone", phone),
		zap.Int("length", len([]rune(text))))
	return nil
}
