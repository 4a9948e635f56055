package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Photo is the metadata row for an uploaded image. The blob itself lives in the
// object store under (Bucket, ObjectName).
type Photo struct {
	ID           uint64            `json:"id" gorm:"primaryKey;autoIncrement"`
	OriginalName string            `json:"original_name" gorm:"type:varchar(512);not null"`
	ObjectName   string            `json:"object_name" gorm:"type:varchar(255);not null;uniqueIndex"`
	Bucket       string            `json:"bucket" gorm:"type:varchar(255);not null"`
	Size         int64             `json:"size" gorm:"not null"`
	MimeType     string            `json:"mimetype" gorm:"column:mimetype;type:varchar(255)"`
	EntityType   EntityType        `json:"entity_type" gorm:"type:varchar(32);not null;index:idx_photo_owner"`
	EntityID     uint64            `json:"entity_id" gorm:"not null;index:idx_photo_owner"`
	URL          string            `json:"url" gorm:"type:varchar(1024);not null"` // always relative, see NormalizeURL
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	UploadedAt   time.Time         `json:"uploaded_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Photo) TableName() string {
	return "photos"
}

// Normalize rewrites URL into its store-relative form. Safe to call repeatedly.
func (p *Photo) Normalize() {
	p.URL = NormalizeURL(p.URL, p.Bucket)
}
