package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tnqbao/gau-pet-photo-service/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB never talks to a server: statements are built but not executed.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=test password=test dbname=test port=5432 sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestPhotoQueries(t *testing.T) {
	db := newDryRunDB(t)

	cases := []struct {
		name  string
		query func(tx *gorm.DB) *gorm.DB
		want  []string
	}{
		{
			name: "by owner",
			query: func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(byOwner(entity.EntityTypeAnimal, 7), oldestFirst).Find(&[]entity.Photo{})
			},
			want: []string{`FROM "photos"`, `entity_type = 'animal' AND entity_id = 7`, `ORDER BY id ASC`},
		},
		{
			name: "by entity type",
			query: func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(byEntityType(entity.EntityTypeShelter), oldestFirst).Find(&[]entity.Photo{})
			},
			want: []string{`entity_type = 'shelter'`, `ORDER BY id ASC`},
		},
		{
			name: "all",
			query: func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(oldestFirst).Find(&[]entity.Photo{})
			},
			want: []string{`SELECT * FROM "photos" ORDER BY id ASC`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql := db.ToSQL(tc.query)
			for _, fragment := range tc.want {
				if !strings.Contains(sql, fragment) {
					t.Fatalf("expected %q in %s", fragment, sql)
				}
			}
		})
	}
}

func TestPhotoRepository_DeleteMissingRow(t *testing.T) {
	repo := NewPhotoRepository(newDryRunDB(t))

	// dry run affects zero rows, which is exactly the "already deleted" case
	err := repo.Delete(context.Background(), 42)
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTranslate(t *testing.T) {
	if !errors.Is(translate(gorm.ErrRecordNotFound), entity.ErrNotFound) {
		t.Fatal("record not found must map to entity.ErrNotFound")
	}
	if !errors.Is(translate(fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound)), entity.ErrNotFound) {
		t.Fatal("wrapped record not found must map to entity.ErrNotFound")
	}

	other := errors.New("connection refused")
	if translate(other) != other {
		t.Fatal("other errors must pass through untouched")
	}
}
