// cmd/bookings-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"

	"github.com/example/tour-booking-gateway/internal/queue"
)

// Consumes bookings.confirmed and dispatches the confirmation notification.
// Dispatch is mocked to a log line; the event contract is the real part.
func main() {
	brokers := env("KAFKA_BROKERS", "kafka:9092")
	topic := env("KAFKA_TOPIC", "bookings.confirmed")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{brokers},
		Topic:    topic,
		GroupID:  "bookings-worker",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("[bookings-worker] started")
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			log.Printf("read err: %v", err)
			return
		}

		var ev queue.BookingConfirmed
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("bad msg: %v", err)
			continue
		}

		log.Printf("[bookings-worker] booking %s confirmed for %s (tour %s, %d minor units %s, departs %s), sending confirmation",
			ev.BookingID, ev.CustomerEmail, ev.TourID, ev.TotalPrice, ev.Currency, ev.StartDate)
	}
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
