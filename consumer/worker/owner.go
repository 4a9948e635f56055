package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-pet-photo-service/entity"
	"github.com/tnqbao/gau-pet-photo-service/infra"
	"github.com/tnqbao/gau-pet-photo-service/infra/produce"
	"github.com/tnqbao/gau-pet-photo-service/service"
)

const maxPurgeAttempts = 3

// OwnerPurger is the part of the photo service the consumer drives.
type OwnerPurger interface {
	DeleteAllForOwner(ctx context.Context, entityType entity.EntityType, entityID uint64) (*service.BulkDeleteResult, error)
}

// OwnerConsumer removes every photo of an owner once the owning service
// announces the owner is gone.
type OwnerConsumer struct {
	channel    *amqp.Channel
	logger     *infra.LoggerClient
	purger     OwnerPurger
	retryDelay time.Duration
}

func NewOwnerConsumer(channel *amqp.Channel, logger *infra.LoggerClient, purger OwnerPurger) *OwnerConsumer {
	if logger == nil {
		logger = infra.NewNopLogger()
	}
	return &OwnerConsumer{
		channel:    channel,
		logger:     logger,
		purger:     purger,
		retryDelay: 2 * time.Second,
	}
}

func (c *OwnerConsumer) Start(ctx context.Context) error {
	if err := c.declare(); err != nil {
		return fmt.Errorf("failed to declare owner deleted topology: %w", err)
	}

	msgs, err := c.channel.Consume(
		produce.OwnerDeletedQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register owner deleted consumer: %w", err)
	}

	c.logger.InfoWithContextf(ctx, "[Owner Consumer] Started listening on queue: %s", produce.OwnerDeletedQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.InfoWithContextf(ctx, "[Owner Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.WarningWithContextf(ctx, "[Owner Consumer] Channel closed")
					return
				}
				c.handleOwnerDeleted(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *OwnerConsumer) declare() error {
	if err := c.channel.ExchangeDeclare(produce.OwnerExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.channel.QueueDeclare(produce.OwnerDeletedQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.channel.QueueBind(produce.OwnerDeletedQueue, produce.OwnerDeletedRoutingKey, produce.OwnerExchange, false, nil); err != nil {
		return err
	}
	return c.channel.Qos(1, 0, false)
}

// handleOwnerDeleted acks once nothing is left to remove. Malformed messages
// are dropped; store errors are retried and then requeued. Rows whose blob
// refuses to go are logged and acked after the last attempt, since requeueing
// would loop on them forever.
func (c *OwnerConsumer) handleOwnerDeleted(ctx context.Context, msg amqp.Delivery) {
	c.logger.InfoWithContextf(ctx, "[Owner Consumer] Received message: %s", string(msg.Body))

	var payload produce.OwnerDeletedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Owner Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	entityType, err := entity.ParseEntityType(payload.EntityType)
	if err == nil && payload.EntityID == 0 {
		err = fmt.Errorf("%w: entity_id is required", entity.ErrInvalidUpload)
	}
	if err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Owner Consumer] Invalid owner %q %d, dropping", payload.EntityType, payload.EntityID)
		_ = msg.Nack(false, false)
		return
	}

	var result *service.BulkDeleteResult
	for attempt := 1; attempt <= maxPurgeAttempts; attempt++ {
		result, err = c.purger.DeleteAllForOwner(ctx, entityType, payload.EntityID)
		if err == nil && len(result.Failed) == 0 {
			c.logger.InfoWithContextf(ctx, "[Owner Consumer] Removed %d photos of %s %d", result.DeletedCount, entityType, payload.EntityID)
			_ = msg.Ack(false)
			return
		}

		if err != nil {
			c.logger.ErrorWithContextf(ctx, err, "[Owner Consumer] Attempt %d/%d for %s %d failed: %v",
				attempt, maxPurgeAttempts, entityType, payload.EntityID, err)
		} else {
			c.logger.WarningWithContextf(ctx, "[Owner Consumer] Attempt %d/%d for %s %d left photos %v",
				attempt, maxPurgeAttempts, entityType, payload.EntityID, result.Failed)
		}

		if attempt < maxPurgeAttempts {
			select {
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}
	}

	if err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Owner Consumer] Failed after %d attempts, requeueing message", maxPurgeAttempts)
		_ = msg.Nack(false, true)
		return
	}

	c.logger.WarningWithContextf(ctx, "[Owner Consumer] Giving up on photos %v of %s %d", result.Failed, entityType, payload.EntityID)
	_ = msg.Ack(false)
}
