package service

import (
	"context"
	"io"
	"time"

	"github.com/tnqbao/gau-pet-photo-service/entity"
)

type (
	// ObjectStore holds the photo bytes. PutObject returns the URL the store
	// serves the blob under; it may be absolute.
	ObjectStore interface {
		PutObject(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string, metadata map[string]string) (string, error)
		GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
		DeleteObject(ctx context.Context, bucket, key string) error
	}

	// MetadataStore is the source of truth for photo rows. Missing rows are
	// reported as entity.ErrNotFound.
	MetadataStore interface {
		Create(ctx context.Context, photo *entity.Photo) error
		FindByID(ctx context.Context, id uint64) (*entity.Photo, error)
		FindByObjectName(ctx context.Context, objectName string) (*entity.Photo, error)
		FindByOwner(ctx context.Context, entityType entity.EntityType, entityID uint64) ([]entity.Photo, error)
		FindByEntityType(ctx context.Context, entityType entity.EntityType) ([]entity.Photo, error)
		FindAll(ctx context.Context) ([]entity.Photo, error)
		Delete(ctx context.Context, id uint64) error
	}

	// Cache stores JSON-encoded values. Get returns infra.ErrCacheMiss on miss.
	Cache interface {
		Get(ctx context.Context, key string, dest interface{}) error
		Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
		Delete(ctx context.Context, keys ...string) (int64, error)
		DeleteByPattern(ctx context.Context, pattern string) (int64, error)
	}

	// EventPublisher feeds the notification pipeline. Failures are logged only.
	EventPublisher interface {
		PublishPhotoUploaded(ctx context.Context, photo *entity.Photo) error
		PublishPhotoDeleted(ctx context.Context, photo *entity.Photo) error
		PublishOwnerPurged(ctx context.Context, entityType entity.EntityType, entityID uint64, deleted int) error
	}
)
