package dto

import "github.com/tnqbao/gau-pet-photo-service/entity"

// UploadPhotoRequestDTO is the non-file part of the multipart upload form.
type UploadPhotoRequestDTO struct {
	EntityType string `form:"entity_type" binding:"required"`
	EntityID   uint64 `form:"entity_id" binding:"required,min=1"`
}

type ListPhotosQueryDTO struct {
	EntityType string `form:"entity_type"`
	EntityID   uint64 `form:"entity_id"`
}

type PhotoListResponseDTO struct {
	Photos []entity.Photo `json:"photos"`
	Count  int            `json:"count"`
}

type DeletePhotoResponseDTO struct {
	Message string        `json:"message"`
	Photo   *entity.Photo `json:"photo"`
}

type BulkDeleteResponseDTO struct {
	EntityType   entity.EntityType `json:"entity_type"`
	EntityID     uint64            `json:"entity_id"`
	Fetched      int               `json:"fetched"`
	DeletedCount int               `json:"deleted_count"`
	Failed       []uint64          `json:"failed"`
}

type HealthResponseDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
