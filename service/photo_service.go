package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-pet-photo-service/entity"
	"github.com/tnqbao/gau-pet-photo-service/infra"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

const (
	DefaultCacheTTL     = time.Hour
	DefaultAllCacheTTL  = 10 * time.Minute
	DefaultStoreTimeout = 10 * time.Second
)

type Options struct {
	Bucket       string
	CacheTTL     time.Duration
	AllCacheTTL  time.Duration
	StoreTimeout time.Duration // applied to every single store call

	Logger *infra.LoggerClient
	Events EventPublisher // optional

	// NewObjectName overrides object key generation; tests only.
	NewObjectName func(originalName string) string
}

// PhotoService coordinates the object store, the metadata store and the cache
// for every photo. It keeps no state of its own between calls.
type PhotoService struct {
	objects  ObjectStore
	metadata MetadataStore
	cache    Cache
	events   EventPublisher
	logger   *infra.LoggerClient
	metrics  *photoMetrics

	bucket        string
	cacheTTL      time.Duration
	allCacheTTL   time.Duration
	storeTimeout  time.Duration
	newObjectName func(string) string
}

func NewPhotoService(objects ObjectStore, metadata MetadataStore, cache Cache, opts Options) *PhotoService {
	if objects == nil || metadata == nil || cache == nil {
		panic("photo service requires an object store, a metadata store and a cache")
	}
	if opts.Bucket == "" {
		panic("photo service requires a bucket")
	}

	s := &PhotoService{
		objects:       objects,
		metadata:      metadata,
		cache:         cache,
		events:        opts.Events,
		logger:        opts.Logger,
		metrics:       newPhotoMetrics(),
		bucket:        opts.Bucket,
		cacheTTL:      opts.CacheTTL,
		allCacheTTL:   opts.AllCacheTTL,
		storeTimeout:  opts.StoreTimeout,
		newObjectName: opts.NewObjectName,
	}
	if s.logger == nil {
		s.logger = infra.NewNopLogger()
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = DefaultCacheTTL
	}
	if s.allCacheTTL <= 0 {
		s.allCacheTTL = DefaultAllCacheTTL
	}
	if s.storeTimeout <= 0 {
		s.storeTimeout = DefaultStoreTimeout
	}
	if s.newObjectName == nil {
		s.newObjectName = generateObjectName
	}
	return s
}

// Bucket is the namespace new blobs are written to.
func (s *PhotoService) Bucket() string {
	return s.bucket
}

// Upload writes the blob, then the metadata row, then drops every cached list
// the new photo belongs to. A failed row insert leaves the blob orphaned.
func (s *PhotoService) Upload(ctx context.Context, in UploadInput) (result *UploadResult, err error) {
	ctx, span := startSpan(ctx, "PhotoService.Upload",
		attribute.String("photo.entity_type", in.EntityType.String()),
		attribute.Int64("photo.entity_id", int64(in.EntityID)),
	)
	defer func() {
		s.metrics.add(ctx, s.metrics.uploads, 1, outcomeAttr(err))
		endSpan(span, err)
	}()

	if err := validateUpload(in); err != nil {
		return nil, err
	}

	objectName := s.newObjectName(in.OriginalName)
	objectMetadata := map[string]string{
		"original-name": in.OriginalName,
		"entity-type":   in.EntityType.String(),
		"entity-id":     strconv.FormatUint(in.EntityID, 10),
	}

	callCtx, cancel := s.storeContext(ctx)
	rawURL, err := s.objects.PutObject(callCtx, s.bucket, objectName, in.Reader, in.Size, in.MimeType, objectMetadata)
	cancel()
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Failed to store blob %s/%s", s.bucket, objectName)
		return nil, fmt.Errorf("failed to store photo blob: %w", err)
	}

	photo := &entity.Photo{
		OriginalName: in.OriginalName,
		ObjectName:   objectName,
		Bucket:       s.bucket,
		Size:         in.Size,
		MimeType:     in.MimeType,
		EntityType:   in.EntityType,
		EntityID:     in.EntityID,
		URL:          entity.NormalizeURL(rawURL, s.bucket),
		Metadata:     toJSONMap(objectMetadata),
	}

	callCtx, cancel = s.storeContext(ctx)
	err = s.metadata.Create(callCtx, photo)
	cancel()
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Metadata insert failed, blob %s/%s is orphaned", s.bucket, objectName)
		return nil, fmt.Errorf("failed to save photo metadata: %w", err)
	}

	outcome := s.invalidate(ctx, photo.EntityType, photo.EntityID)

	s.logger.InfoWithContextf(ctx, "[Photo] Uploaded photo %d (%s, %d bytes) for %s %d",
		photo.ID, objectName, photo.Size, photo.EntityType, photo.EntityID)

	if s.events != nil {
		if err := s.events.PublishPhotoUploaded(ctx, photo); err != nil {
			s.logger.WarningWithContextf(ctx, "[Photo] Failed to publish upload event for photo %d: %v", photo.ID, err)
		}
	}

	photo.Normalize()
	return &UploadResult{Photo: photo, Cache: outcome}, nil
}

func (s *PhotoService) GetByID(ctx context.Context, id uint64) (photo *entity.Photo, err error) {
	ctx, span := startSpan(ctx, "PhotoService.GetByID", attribute.Int64("photo.id", int64(id)))
	defer func() { endSpan(span, err) }()

	photo, err = lookup(ctx, s, "id", photoIDKey(id), s.cacheTTL, func(ctx context.Context) (*entity.Photo, bool, error) {
		p, err := s.metadata.FindByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	})
	if err != nil {
		return nil, wrapNotFound(err, "id %d", id)
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: id %d", entity.ErrNotFound, id)
	}
	photo.Normalize()
	return photo, nil
}

func (s *PhotoService) GetByObjectName(ctx context.Context, objectName string) (photo *entity.Photo, err error) {
	ctx, span := startSpan(ctx, "PhotoService.GetByObjectName", attribute.String("photo.object_name", objectName))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(objectName) == "" {
		return nil, fmt.Errorf("%w: object name %q", entity.ErrNotFound, objectName)
	}

	photo, err = lookup(ctx, s, "object", objectNameKey(objectName), s.cacheTTL, func(ctx context.Context) (*entity.Photo, bool, error) {
		p, err := s.metadata.FindByObjectName(ctx, objectName)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	})
	if err != nil {
		return nil, wrapNotFound(err, "object name %q", objectName)
	}
	if photo == nil {
		return nil, fmt.Errorf("%w: object name %q", entity.ErrNotFound, objectName)
	}
	photo.Normalize()
	return photo, nil
}

func (s *PhotoService) GetByOwner(ctx context.Context, entityType entity.EntityType, entityID uint64) (photos []entity.Photo, err error) {
	ctx, span := startSpan(ctx, "PhotoService.GetByOwner",
		attribute.String("photo.entity_type", entityType.String()),
		attribute.Int64("photo.entity_id", int64(entityID)),
	)
	defer func() { endSpan(span, err) }()

	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidEntityType, entityType)
	}

	return s.lookupList(ctx, "owner", ownerKey(entityType, entityID), s.cacheTTL, func(ctx context.Context) ([]entity.Photo, error) {
		return s.metadata.FindByOwner(ctx, entityType, entityID)
	})
}

func (s *PhotoService) GetByOwnerType(ctx context.Context, entityType entity.EntityType) (photos []entity.Photo, err error) {
	ctx, span := startSpan(ctx, "PhotoService.GetByOwnerType", attribute.String("photo.entity_type", entityType.String()))
	defer func() { endSpan(span, err) }()

	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidEntityType, entityType)
	}

	return s.lookupList(ctx, "type", entityTypeKey(entityType), s.cacheTTL, func(ctx context.Context) ([]entity.Photo, error) {
		return s.metadata.FindByEntityType(ctx, entityType)
	})
}

func (s *PhotoService) GetAll(ctx context.Context) (photos []entity.Photo, err error) {
	ctx, span := startSpan(ctx, "PhotoService.GetAll")
	defer func() { endSpan(span, err) }()

	return s.lookupList(ctx, "all", allPhotosKey, s.allCacheTTL, s.metadata.FindAll)
}

// OpenContent returns the photo record and a reader over its blob. The reader
// must be closed by the caller.
func (s *PhotoService) OpenContent(ctx context.Context, id uint64) (*entity.Photo, io.ReadCloser, error) {
	photo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	// the timeout has to outlive this call since the body is streamed afterwards
	callCtx, cancel := s.storeContext(ctx)
	body, err := s.objects.GetObject(callCtx, photo.Bucket, photo.ObjectName)
	if err != nil {
		cancel()
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Failed to open blob %s/%s for photo %d", photo.Bucket, photo.ObjectName, id)
		return nil, nil, fmt.Errorf("failed to open photo blob: %w", err)
	}
	return photo, &cancelOnClose{ReadCloser: body, cancel: cancel}, nil
}

// Delete removes the blob first and the row second. A failed blob delete
// leaves the row untouched; a failed row delete after a successful blob delete
// is reported as a failure and not compensated.
func (s *PhotoService) Delete(ctx context.Context, id uint64) (result *DeleteResult, err error) {
	ctx, span := startSpan(ctx, "PhotoService.Delete", attribute.Int64("photo.id", int64(id)))
	defer func() {
		s.metrics.add(ctx, s.metrics.deletes, 1, outcomeAttr(err), attribute.String("mode", "single"))
		endSpan(span, err)
	}()

	callCtx, cancel := s.storeContext(ctx)
	photo, err := s.metadata.FindByID(callCtx, id)
	cancel()
	if err != nil {
		return nil, wrapNotFound(err, "id %d", id)
	}

	if err := s.remove(ctx, photo); err != nil {
		return nil, err
	}

	outcome := s.invalidate(ctx, photo.EntityType, photo.EntityID, photo)

	s.logger.InfoWithContextf(ctx, "[Photo] Deleted photo %d (%s) of %s %d", photo.ID, photo.ObjectName, photo.EntityType, photo.EntityID)

	if s.events != nil {
		if err := s.events.PublishPhotoDeleted(ctx, photo); err != nil {
			s.logger.WarningWithContextf(ctx, "[Photo] Failed to publish delete event for photo %d: %v", photo.ID, err)
		}
	}

	photo.Normalize()
	return &DeleteResult{Photo: photo, Cache: outcome}, nil
}

// DeleteAllForOwner removes every photo of one owner, row by row. A row that
// fails is skipped and reported in Failed; the rest still go. Aggregate keys
// are invalidated once at the end.
func (s *PhotoService) DeleteAllForOwner(ctx context.Context, entityType entity.EntityType, entityID uint64) (result *BulkDeleteResult, err error) {
	ctx, span := startSpan(ctx, "PhotoService.DeleteAllForOwner",
		attribute.String("photo.entity_type", entityType.String()),
		attribute.Int64("photo.entity_id", int64(entityID)),
	)
	defer func() { endSpan(span, err) }()

	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidEntityType, entityType)
	}

	callCtx, cancel := s.storeContext(ctx)
	photos, err := s.metadata.FindByOwner(callCtx, entityType, entityID)
	cancel()
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Failed to list photos of %s %d for bulk delete", entityType, entityID)
		return nil, fmt.Errorf("failed to list owner photos: %w", err)
	}

	result = &BulkDeleteResult{Fetched: len(photos), Failed: []uint64{}}
	if len(photos) == 0 {
		return result, nil
	}

	removed := make([]*entity.Photo, 0, len(photos))
	for i := range photos {
		photo := &photos[i]
		if err := s.remove(ctx, photo); err != nil {
			result.Failed = append(result.Failed, photo.ID)
			s.metrics.add(ctx, s.metrics.deletes, 1, outcomeAttr(err), attribute.String("mode", "bulk"))
			continue
		}
		removed = append(removed, photo)
		s.metrics.add(ctx, s.metrics.deletes, 1, outcomeAttr(nil), attribute.String("mode", "bulk"))
	}
	result.DeletedCount = len(removed)
	result.Cache = s.invalidate(ctx, entityType, entityID, removed...)

	if len(result.Failed) > 0 {
		s.logger.WarningWithContextf(ctx, "[Photo] Bulk delete for %s %d removed %d of %d photos, failed: %v",
			entityType, entityID, result.DeletedCount, result.Fetched, result.Failed)
	} else {
		s.logger.InfoWithContextf(ctx, "[Photo] Bulk delete for %s %d removed %d photos", entityType, entityID, result.DeletedCount)
	}

	if s.events != nil {
		if err := s.events.PublishOwnerPurged(ctx, entityType, entityID, result.DeletedCount); err != nil {
			s.logger.WarningWithContextf(ctx, "[Photo] Failed to publish purge event for %s %d: %v", entityType, entityID, err)
		}
	}

	return result, nil
}

// remove is the physical two-step delete shared by single and bulk delete.
func (s *PhotoService) remove(ctx context.Context, photo *entity.Photo) error {
	callCtx, cancel := s.storeContext(ctx)
	err := s.objects.DeleteObject(callCtx, photo.Bucket, photo.ObjectName)
	cancel()
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Failed to delete blob %s/%s of photo %d", photo.Bucket, photo.ObjectName, photo.ID)
		return fmt.Errorf("failed to delete photo blob: %w", err)
	}

	callCtx, cancel = s.storeContext(ctx)
	err = s.metadata.Delete(callCtx, photo.ID)
	cancel()
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return fmt.Errorf("%w: id %d", entity.ErrNotFound, photo.ID)
		}
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Blob %s/%s removed but metadata row %d remains", photo.Bucket, photo.ObjectName, photo.ID)
		return fmt.Errorf("failed to delete photo metadata: %w", err)
	}
	return nil
}

// invalidate drops the exact keys of one owner (plus the given photos'
// single-record keys) and then every owner-type aggregate by pattern.
func (s *PhotoService) invalidate(ctx context.Context, entityType entity.EntityType, entityID uint64, photos ...*entity.Photo) CacheOutcome {
	var outcome CacheOutcome

	keys := invalidationKeys(entityType, entityID, photos...)
	callCtx, cancel := s.storeContext(ctx)
	n, err := s.cache.Delete(callCtx, keys...)
	cancel()
	outcome.KeysDeleted += n
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Errorf("delete keys %v: %w", keys, err))
	}

	callCtx, cancel = s.storeContext(ctx)
	n, err = s.cache.DeleteByPattern(callCtx, entityTypePattern)
	cancel()
	outcome.KeysDeleted += n
	if err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Errorf("delete pattern %s: %w", entityTypePattern, err))
	}

	for _, cacheErr := range outcome.Errors {
		s.metrics.add(ctx, s.metrics.invalidationErrors, 1)
		s.logger.WarningWithContextf(ctx, "[Photo] Cache invalidation failed: %v", cacheErr)
	}
	return outcome
}

// lookup is the cache-aside read shared by every lookup shape. load reports
// whether its value may be cached; not-found errors are never cached.
func lookup[T any](ctx context.Context, s *PhotoService, shape, key string, ttl time.Duration, load func(context.Context) (T, bool, error)) (T, error) {
	var cached T
	if s.cacheGet(ctx, key, &cached) {
		s.metrics.add(ctx, s.metrics.cacheHits, 1, attribute.String("shape", shape))
		return cached, nil
	}
	s.metrics.add(ctx, s.metrics.cacheMisses, 1, attribute.String("shape", shape))

	callCtx, cancel := s.storeContext(ctx)
	value, cacheable, err := load(callCtx)
	cancel()
	if err != nil {
		var zero T
		return zero, err
	}

	if cacheable {
		s.cacheSet(ctx, key, value, ttl)
	}
	return value, nil
}

func (s *PhotoService) lookupList(ctx context.Context, shape, key string, ttl time.Duration, load func(context.Context) ([]entity.Photo, error)) ([]entity.Photo, error) {
	photos, err := lookup(ctx, s, shape, key, ttl, func(ctx context.Context) ([]entity.Photo, bool, error) {
		photos, err := load(ctx)
		if err != nil {
			return nil, false, err
		}
		return photos, len(photos) > 0, nil
	})
	if err != nil {
		s.logger.ErrorWithContextf(ctx, err, "[Photo] Failed to load %s list", shape)
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}

	if photos == nil {
		photos = []entity.Photo{}
	}
	for i := range photos {
		photos[i].Normalize()
	}
	return photos, nil
}

// cacheGet reports a hit. Any cache error counts as a miss.
func (s *PhotoService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	err := s.cache.Get(callCtx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, infra.ErrCacheMiss) {
		s.logger.WarningWithContextf(ctx, "[Photo] Cache read %s failed, falling back to store: %v", key, err)
	}
	return false
}

func (s *PhotoService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.cache.Set(callCtx, key, value, ttl); err != nil {
		s.logger.WarningWithContextf(ctx, "[Photo] Cache write %s failed: %v", key, err)
	}
}

func (s *PhotoService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

func validateUpload(in UploadInput) error {
	if in.Reader == nil {
		return fmt.Errorf("%w: empty file", entity.ErrInvalidUpload)
	}
	if in.Size < 0 {
		return fmt.Errorf("%w: negative size", entity.ErrInvalidUpload)
	}
	if !in.EntityType.Valid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidEntityType, in.EntityType)
	}
	if in.EntityID == 0 {
		return fmt.Errorf("%w: entity_id is required", entity.ErrInvalidUpload)
	}
	return nil
}

// generateObjectName gives every blob a random key; the original extension is
// kept so browsers and CDNs can sniff the type.
func generateObjectName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 16 || strings.ContainsAny(ext, " /\\*?") {
		ext = ""
	}
	return uuid.NewString() + ext
}

func toJSONMap(m map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("failed to load photo: %w", err)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
