package repository

import (
	"context"
	"errors"

	"github.com/tnqbao/gau-pet-photo-service/entity"
	"gorm.io/gorm"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts the row; ID and timestamps are filled in by the database.
func (r *PhotoRepository) Create(ctx context.Context, photo *entity.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *PhotoRepository) FindByID(ctx context.Context, id uint64) (*entity.Photo, error) {
	var photo entity.Photo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error
	if err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

func (r *PhotoRepository) FindByObjectName(ctx context.Context, objectName string) (*entity.Photo, error) {
	var photo entity.Photo
	err := r.db.WithContext(ctx).Where("object_name = ?", objectName).First(&photo).Error
	if err != nil {
		return nil, translate(err)
	}
	return &photo, nil
}

func (r *PhotoRepository) FindByOwner(ctx context.Context, entityType entity.EntityType, entityID uint64) ([]entity.Photo, error) {
	var photos []entity.Photo
	err := r.db.WithContext(ctx).
		Scopes(byOwner(entityType, entityID), oldestFirst).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PhotoRepository) FindByEntityType(ctx context.Context, entityType entity.EntityType) ([]entity.Photo, error) {
	var photos []entity.Photo
	err := r.db.WithContext(ctx).
		Scopes(byEntityType(entityType), oldestFirst).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PhotoRepository) FindAll(ctx context.Context) ([]entity.Photo, error) {
	var photos []entity.Photo
	err := r.db.WithContext(ctx).Scopes(oldestFirst).Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// Delete removes one row. A row that is already gone yields entity.ErrNotFound
// so a concurrent double delete fails cleanly.
func (r *PhotoRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Photo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func byOwner(entityType entity.EntityType, entityID uint64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	}
}

func byEntityType(entityType entity.EntityType) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("entity_type = ?", entityType)
	}
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrNotFound
	}
	return err
}
