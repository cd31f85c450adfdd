package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/localbazaar/market-service/internal/config"
	"github.com/localbazaar/market-service/internal/entities"
	"github.com/segmentio/kafka-go"
)

type QuoteAccepter interface {
	AcceptQuote(ctx context.Context, caller entities.User, orderID string) (entities.Order, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, principalToken string) (entities.User, error)
}

// PaymentConfirmation is what the payment gateway emits once an online
// payment for a quoted order clears.
type PaymentConfirmation struct {
	OrderID    string `json:"order_id" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
}

// kafkaHandler consumes payment confirmations and accepts the paid quote on
// the customer's behalf. Poison messages go to the DLQ topic.
type kafkaHandler struct {
	dlq      *kafka.Writer
	reader   *kafka.Reader
	logger   *slog.Logger
	validate *validator.Validate
	identity UserResolver
	orders   QuoteAccepter
}

func NewKafkaHandler(logger *slog.Logger, cfg config.Kafka, identity UserResolver, orders QuoteAccepter) *kafkaHandler {
	return &kafkaHandler{
		logger: logger.With(slog.String("handler", "kafka")),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   cfg.PaymentsTopic,
			MaxWait: cfg.ReaderMaxWait,
		}),
		dlq: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
		validate: validator.New(),
		identity: identity,
		orders:   orders,
	}
}

func (h *kafkaHandler) Consume(ctx context.Context) {
	for {
		m, err := h.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				break
			} else {
				h.logger.Error("failed to fetch message", slog.Any("error", err))
				continue
			}
		}

		if err := h.handlePayment(ctx, m); err != nil {
			paymentsFailed.Inc()
			h.logger.Error("failed to handle payment confirmation", slog.Any("error", err))

			if err := h.WriteToDLQ(ctx, m); err != nil {
				h.logger.Error("failed to write message to DLQ", slog.Any("error", err))
				continue
			}
			paymentsDLQ.Inc()
		} else {
			paymentsProcessed.Inc()
		}

		if err := h.reader.CommitMessages(ctx, m); err != nil {
			commitErrors.Inc()
			h.logger.Error("failed to commit message", slog.Any("error", err))
		}
	}
}

func (h *kafkaHandler) handlePayment(ctx context.Context, m kafka.Message) error {
	start := time.Now()
	defer func() {
		paymentProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	var confirmation PaymentConfirmation
	if err := json.Unmarshal(m.Value, &confirmation); err != nil {
		return fmt.Errorf("failed to unmarshal payment confirmation: %w", err)
	}

	if err := h.validate.Struct(confirmation); err != nil {
		return fmt.Errorf("invalid payment confirmation: %w", err)
	}

	customer, err := h.identity.Resolve(ctx, confirmation.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to resolve customer: %w", err)
	}

	if _, err := h.orders.AcceptQuote(ctx, customer, confirmation.OrderID); err != nil {
		// A replayed confirmation hits an already accepted order; that is
		// not a poison message.
		if errors.Is(err, entities.ErrInvalidTransition) {
			h.logger.Warn("payment confirmation for non-quoted order",
				slog.String("orderID", confirmation.OrderID), slog.Any("error", err))
			return nil
		}
		return fmt.Errorf("failed to accept quote: %w", err)
	}
	return nil
}

func (h *kafkaHandler) WriteToDLQ(ctx context.Context, m kafka.Message) error {
	m.Topic = fmt.Sprintf("%s-dlq", m.Topic)
	return h.dlq.WriteMessages(ctx, m)
}

func (h *kafkaHandler) Close() error {
	if err := h.reader.Close(); err != nil {
		return err
	}
	return h.dlq.Close()
}
