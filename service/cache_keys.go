package service

import (
	"fmt"

	"github.com/tnqbao/gau-pet-photo-service/entity"
)

const (
	allPhotosKey     = "photo:all"
	entityTypePrefix = "photo:type:"
	// every owner-type aggregate, whatever types exist now or later
	entityTypePattern = entityTypePrefix + "*"
)

func photoIDKey(id uint64) string {
	return fmt.Sprintf("photo:id:%d", id)
}

func objectNameKey(objectName string) string {
	return "photo:object:" + objectName
}

func ownerKey(entityType entity.EntityType, entityID uint64) string {
	return fmt.Sprintf("photo:owner:%s:%d", entityType, entityID)
}

func entityTypeKey(entityType entity.EntityType) string {
	return entityTypePrefix + string(entityType)
}

// invalidationKeys lists the exact keys a mutation on one owner makes stale.
// Photos are passed only for deletes, where their single-record entries go too.
func invalidationKeys(entityType entity.EntityType, entityID uint64, photos ...*entity.Photo) []string {
	keys := []string{
		allPhotosKey,
		entityTypeKey(entityType),
		ownerKey(entityType, entityID),
	}
	for _, photo := range photos {
		keys = append(keys, photoIDKey(photo.ID), objectNameKey(photo.ObjectName))
	}
	return keys
}
