package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
	"github.com/bossbruno/quick-bundles-notifications/internal/services"
)

// ChangeHandler processes one decoded change envelope.
type ChangeHandler interface {
	HandleChange(ctx context.Context, env *models.ChangeEnvelope) error
}

// EventConsumer decodes change envelopes off the queue and hands them to
// the router. Redelivery on failure is bounded by the x-death count, after
// which the message is dead-lettered. This layer is the hosting scheduler:
// any retry policy lives here, never inside the dispatcher.
type EventConsumer struct {
	base          *BaseConsumer
	handler       ChangeHandler
	logger        *slog.Logger
	maxDeliveries int
}

func NewEventConsumer(base *BaseConsumer, handler ChangeHandler, logger *slog.Logger, maxDeliveries int) *EventConsumer {
	if maxDeliveries <= 0 {
		maxDeliveries = 4
	}
	return &EventConsumer{
		base:          base,
		handler:       handler,
		logger:        logger,
		maxDeliveries: maxDeliveries,
	}
}

func (c *EventConsumer) Start(ctx context.Context) error {
	return c.base.Start(ctx, c.handleDelivery)
}

func (c *EventConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) error {
	var env models.ChangeEnvelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		c.logger.Error("failed to unmarshal change envelope", slog.Any("error", err))
		_ = msg.Reject(false)
		return err
	}
	if env.EventID == "" {
		env.EventID = uuid.NewString()
	}

	if err := c.handler.HandleChange(ctx, &env); err != nil {
		if errors.Is(err, services.ErrBadEvent) {
			c.logger.Error("unprocessable event dropped",
				slog.String("event_id", env.EventID), slog.Any("error", err))
			_ = msg.Reject(false)
			return err
		}

		requeue := c.shouldRetry(&msg)
		if requeue {
			c.logger.Warn("event processing failed, message requeued",
				slog.String("event_id", env.EventID), slog.Any("error", err))
		} else {
			c.logger.Error("event processing failed, message dead-lettered",
				slog.String("event_id", env.EventID), slog.Any("error", err))
		}
		_ = msg.Nack(false, requeue)
		return err
	}

	return msg.Ack(false)
}

func (c *EventConsumer) shouldRetry(msg *amqp.Delivery) bool {
	return deliveryAttempts(msg) < c.maxDeliveries
}

func deliveryAttempts(msg *amqp.Delivery) int {
	if msg.Headers == nil {
		if msg.Redelivered {
			return 1
		}
		return 0
	}
	if raw, ok := msg.Headers["x-death"]; ok {
		if deaths, ok := raw.([]interface{}); ok && len(deaths) > 0 {
			if table, ok := deaths[0].(amqp.Table); ok {
				if count, ok := table["count"].(int64); ok {
					return int(count)
				}
			}
		}
	}
	if msg.Redelivered {
		return 1
	}
	return 0
}
