package service

import (
	"io"

	"github.com/tnqbao/gau-pet-photo-service/entity"
)

// CacheOutcome reports what happened to the cache while a mutation ran. It
// never affects whether the mutation itself succeeded.
type CacheOutcome struct {
	KeysDeleted int64
	Errors      []error
}

func (o CacheOutcome) OK() bool {
	return len(o.Errors) == 0
}

type UploadInput struct {
	Reader       io.Reader
	Size         int64
	MimeType     string
	OriginalName string
	EntityType   entity.EntityType
	EntityID     uint64
}

type UploadResult struct {
	Photo *entity.Photo
	Cache CacheOutcome
}

type DeleteResult struct {
	Photo *entity.Photo
	Cache CacheOutcome
}

// BulkDeleteResult carries partial failures as data: Failed lists the photo IDs
// that are still present after the call.
type BulkDeleteResult struct {
	Fetched      int
	DeletedCount int
	Failed       []uint64
	Cache        CacheOutcome
}
