package events

import (
	"context"
	"curevet/internal/entities"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// Publisher mirrors committed reservations onto a Kafka topic for downstream
// consumers (reporting, reminders). Best effort, like the notifier.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // key by service for per-service ordering
		RequiredAcks: kafka.RequireOne,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Printf),
	}
	return &Publisher{writer: writer}
}

func (p *Publisher) ReservationCreated(ctx context.Context, res entities.ReservationResponse) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("error marshaling reservation event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(res.Service),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
