// Package fake provides in-memory stand-ins for the photo service stores with
// hooks for injecting failures.
package fake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/tnqbao/gau-pet-photo-service/entity"
	"github.com/tnqbao/gau-pet-photo-service/infra"
)

var ErrUnavailable = errors.New("fake: store unavailable")

// block waits for the caller's deadline, the way an unresponsive server does.
func block(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type Blob struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// ObjectStore keeps blobs in memory and reports absolute URLs the way MinIO does.
type ObjectStore struct {
	mu      sync.Mutex
	blobs   map[string]Blob
	BaseURL string

	PutErr    error
	DeleteErr func(bucket, key string) error
	// Hang makes every call block until its context ends.
	Hang bool

	Puts, Gets, Deletes int
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{blobs: map[string]Blob{}, BaseURL: "http://minio:9000"}
}

func (s *ObjectStore) PutObject(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string, metadata map[string]string) (string, error) {
	if s.Hang {
		return "", block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts++

	if s.PutErr != nil {
		return "", s.PutErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.blobs[bucket+"/"+key] = Blob{Data: buf, ContentType: contentType, Metadata: metadata}
	return fmt.Sprintf("%s/%s/%s", s.BaseURL, bucket, key), nil
}

func (s *ObjectStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if s.Hang {
		return nil, block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets++

	blob, ok := s.blobs[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("fake: no such key %s/%s", bucket, key)
	}
	return io.NopCloser(bytes.NewReader(blob.Data)), nil
}

func (s *ObjectStore) DeleteObject(ctx context.Context, bucket, key string) error {
	if s.Hang {
		return block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++

	if s.DeleteErr != nil {
		if err := s.DeleteErr(bucket, key); err != nil {
			return err
		}
	}
	delete(s.blobs, bucket+"/"+key)
	return nil
}

func (s *ObjectStore) Has(bucket, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[bucket+"/"+key]
	return ok
}

func (s *ObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// MetadataStore is an in-memory photos table with an auto-increment id.
type MetadataStore struct {
	mu     sync.Mutex
	rows   map[uint64]entity.Photo
	nextID uint64

	CreateErr error
	DeleteErr func(id uint64) error
	FindErr   error
	Hang      bool

	Reads int
}

func NewMetadataStore() *MetadataStore {
	return &MetadataStore{rows: map[uint64]entity.Photo{}, nextID: 1}
}

func (s *MetadataStore) Create(ctx context.Context, photo *entity.Photo) error {
	if s.Hang {
		return block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, row := range s.rows {
		if row.ObjectName == photo.ObjectName {
			return fmt.Errorf("fake: duplicate object_name %s", photo.ObjectName)
		}
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	photo.ID = s.nextID
	photo.UploadedAt = now
	photo.UpdatedAt = now
	s.nextID++
	s.rows[photo.ID] = *photo
	return nil
}

func (s *MetadataStore) FindByID(ctx context.Context, id uint64) (*entity.Photo, error) {
	if s.Hang {
		return nil, block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++

	if s.FindErr != nil {
		return nil, s.FindErr
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &row, nil
}

func (s *MetadataStore) FindByObjectName(ctx context.Context, objectName string) (*entity.Photo, error) {
	if s.Hang {
		return nil, block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++

	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for _, row := range s.rows {
		if row.ObjectName == objectName {
			return &row, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *MetadataStore) FindByOwner(ctx context.Context, entityType entity.EntityType, entityID uint64) ([]entity.Photo, error) {
	return s.filter(func(p entity.Photo) bool {
		return p.EntityType == entityType && p.EntityID == entityID
	})
}

func (s *MetadataStore) FindByEntityType(ctx context.Context, entityType entity.EntityType) ([]entity.Photo, error) {
	return s.filter(func(p entity.Photo) bool { return p.EntityType == entityType })
}

func (s *MetadataStore) FindAll(ctx context.Context) ([]entity.Photo, error) {
	return s.filter(func(entity.Photo) bool { return true })
}

func (s *MetadataStore) Delete(ctx context.Context, id uint64) error {
	if s.Hang {
		return block(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		if err := s.DeleteErr(id); err != nil {
			return err
		}
	}
	if _, ok := s.rows[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Seed inserts a row directly, bypassing failure hooks.
func (s *MetadataStore) Seed(photo entity.Photo) entity.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo.ID = s.nextID
	s.nextID++
	s.rows[photo.ID] = photo
	return photo
}

func (s *MetadataStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MetadataStore) filter(keep func(entity.Photo) bool) ([]entity.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++

	if s.FindErr != nil {
		return nil, s.FindErr
	}
	out := make([]entity.Photo, 0)
	for _, row := range s.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Cache stores JSON like the redis adapter, so values round-trip the same way.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration

	// Err, when set, fails every call.
	Err error
	// HangGet makes reads block until their context ends.
	HangGet bool
}

func NewCache() *Cache {
	return &Cache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.HangGet {
		return block(ctx)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	data, ok := c.entries[key]
	if !ok {
		return infra.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	c.ttls[key] = ttl
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return 0, c.Err
	}
	var n int64
	for _, key := range keys {
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			delete(c.ttls, key)
			n++
		}
	}
	return n, nil
}

func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return 0, c.Err
	}
	var n int64
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
			delete(c.ttls, key)
			n++
		}
	}
	return n, nil
}

func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *Cache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

// Put stores a raw JSON value, e.g. to plant a stale entry.
func (c *Cache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, _ := json.Marshal(value)
	c.entries[key] = data
}

type Event struct {
	Name       string
	PhotoID    uint64
	EntityType entity.EntityType
	EntityID   uint64
	Deleted    int
}

// Publisher records events instead of sending them.
type Publisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (p *Publisher) PublishPhotoUploaded(ctx context.Context, photo *entity.Photo) error {
	return p.record(Event{Name: "photo.uploaded", PhotoID: photo.ID, EntityType: photo.EntityType, EntityID: photo.EntityID})
}

func (p *Publisher) PublishPhotoDeleted(ctx context.Context, photo *entity.Photo) error {
	return p.record(Event{Name: "photo.deleted", PhotoID: photo.ID, EntityType: photo.EntityType, EntityID: photo.EntityID})
}

func (p *Publisher) PublishOwnerPurged(ctx context.Context, entityType entity.EntityType, entityID uint64, deleted int) error {
	return p.record(Event{Name: "photo.owner_purged", EntityType: entityType, EntityID: entityID, Deleted: deleted})
}

func (p *Publisher) record(e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, e)
	return nil
}

func (p *Publisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.Events))
	for i, e := range p.Events {
		names[i] = e.Name
	}
	return names
}
