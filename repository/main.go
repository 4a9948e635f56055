package repository

import (
	"github.com/tnqbao/gau-pet-photo-service/infra"
)

type Repository struct {
	PhotoRepo *PhotoRepository
}

func InitRepository(infra *infra.Infra) *Repository {
	if infra.Postgres == nil || infra.Postgres.DB == nil {
		panic("database connection is nil")
	}
	return &Repository{
		PhotoRepo: NewPhotoRepository(infra.Postgres.DB),
	}
}
