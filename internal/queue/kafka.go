// internal/queue/kafka.go
package queue

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Bus publishes confirmed-booking events for downstream consumers
// (notifications worker). A nil Bus is a no-op: event publishing is best
// effort and never blocks a booking.
type Bus struct {
	Brokers []string
	Topic   string
}

func New(brokers []string, topic string) *Bus {
	return &Bus{Brokers: brokers, Topic: topic}
}

// BookingConfirmed is the event emitted after a successful submission.
type BookingConfirmed struct {
	BookingID        string `json:"booking_id"`
	SessionID        string `json:"session_id"`
	TourID           string `json:"tour_id"`
	PaymentReference string `json:"payment_reference"`
	TotalPrice       int64  `json:"total_price"`
	Currency         string `json:"currency"`
	CustomerEmail    string `json:"customer_email"`
	StartDate        string `json:"start_date"`
}

func (b *Bus) Publish(ctx context.Context, key, payload []byte) error {
	if b == nil {
		return nil
	}
	w := &kafka.Writer{
		Addr:     kafka.TCP(b.Brokers...),
		Topic:    b.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer w.Close()
	return w.WriteMessages(ctx, kafka.Message{Key: key, Value: payload})
}

func (b *Bus) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmed) error {
	if b == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.Publish(ctx, []byte(ev.PaymentReference), payload)
}
