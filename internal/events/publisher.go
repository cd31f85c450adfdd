package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/localbazaar/market-service/internal/config"
	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"

	"github.com/segmentio/kafka-go"
)

// Publisher fans order and notification events out to the shared events
// topic, keyed by the aggregate id so consumers see per-order ordering.
type Publisher struct {
	logger *slog.Logger
	writer *kafka.Writer
}

func NewPublisher(logger *slog.Logger, cfg config.Kafka) *Publisher {
	return &Publisher{
		logger: logger.With(slog.String("component", "events")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.EventsTopic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, e service.OrderEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: value,
	})
}

type notificationEvent struct {
	Event   string `json:"event"`
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func (p *Publisher) PublishNotification(ctx context.Context, n entities.Notification) error {
	value, err := json.Marshal(notificationEvent{
		Event:   "notification.created",
		ID:      n.ID,
		UserID:  n.UserID,
		Title:   n.Title,
		Message: n.Message,
		Kind:    string(n.Kind),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.UserID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
