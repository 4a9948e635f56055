package service

import (
	"github.com/tnqbao/gau-pet-photo-service/config"
	"github.com/tnqbao/gau-pet-photo-service/infra"
	"github.com/tnqbao/gau-pet-photo-service/repository"
)

// InitPhotoService wires the production stores: MinIO blobs, Postgres rows and
// the Redis cache.
func InitPhotoService(cfg *config.Config, infraClient *infra.Infra, repo *repository.Repository) *PhotoService {
	opts := Options{
		Bucket:       cfg.EnvConfig.Photo.Bucket,
		CacheTTL:     cfg.EnvConfig.Photo.CacheTTL,
		AllCacheTTL:  cfg.EnvConfig.Photo.AllCacheTTL,
		StoreTimeout: cfg.EnvConfig.Photo.StoreTimeout,
		Logger:       infraClient.Logger,
	}
	if infraClient.Produce != nil && infraClient.Produce.PhotoService != nil {
		opts.Events = infraClient.Produce.PhotoService
	}
	return NewPhotoService(infraClient.Minio, repo.PhotoRepo, infraClient.Redis, opts)
}
