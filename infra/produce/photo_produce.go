package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-pet-photo-service/entity"
)

const (
	PhotoExchange = "photo.exchange"

	PhotoUploadedRoutingKey    = "photo.uploaded"
	PhotoDeletedRoutingKey     = "photo.deleted"
	PhotoOwnerPurgedRoutingKey = "photo.owner_purged"

	// Owner services announce deletions here; the consumer cascades them.
	OwnerExchange          = "owner.exchange"
	OwnerDeletedRoutingKey = "owner.deleted"
	OwnerDeletedQueue      = "photo.owner.deleted"
)

// PhotoEventMessage is what the notification pipeline receives.
type PhotoEventMessage struct {
	Event        string `json:"event"`
	PhotoID      uint64 `json:"photo_id,omitempty"`
	ObjectName   string `json:"object_name,omitempty"`
	URL          string `json:"url,omitempty"`
	EntityType   string `json:"entity_type"`
	EntityID     uint64 `json:"entity_id"`
	DeletedCount int    `json:"deleted_count,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// OwnerDeletedMessage is published by user/shelter/animal services.
type OwnerDeletedMessage struct {
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	Timestamp  int64  `json:"timestamp"`
}

type PhotoEventService struct {
	channel *amqp.Channel
}

func InitPhotoEventService(channel *amqp.Channel) *PhotoEventService {
	err := channel.ExchangeDeclare(
		PhotoExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Photo exchange: " + err.Error())
	}

	return &PhotoEventService{
		channel: channel,
	}
}

func (s *PhotoEventService) PublishPhotoUploaded(ctx context.Context, photo *entity.Photo) error {
	return s.publish(ctx, PhotoUploadedRoutingKey, PhotoEventMessage{
		Event:      PhotoUploadedRoutingKey,
		PhotoID:    photo.ID,
		ObjectName: photo.ObjectName,
		URL:        photo.URL,
		EntityType: photo.EntityType.String(),
		EntityID:   photo.EntityID,
	})
}

func (s *PhotoEventService) PublishPhotoDeleted(ctx context.Context, photo *entity.Photo) error {
	return s.publish(ctx, PhotoDeletedRoutingKey, PhotoEventMessage{
		Event:      PhotoDeletedRoutingKey,
		PhotoID:    photo.ID,
		ObjectName: photo.ObjectName,
		EntityType: photo.EntityType.String(),
		EntityID:   photo.EntityID,
	})
}

func (s *PhotoEventService) PublishOwnerPurged(ctx context.Context, entityType entity.EntityType, entityID uint64, deleted int) error {
	return s.publish(ctx, PhotoOwnerPurgedRoutingKey, PhotoEventMessage{
		Event:        PhotoOwnerPurgedRoutingKey,
		EntityType:   entityType.String(),
		EntityID:     entityID,
		DeletedCount: deleted,
	})
}

func (s *PhotoEventService) publish(ctx context.Context, routingKey string, msg PhotoEventMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal photo event: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		PhotoExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish photo event: %w", err)
	}

	return nil
}
