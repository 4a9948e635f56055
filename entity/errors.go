package entity

import "errors"

var (
	ErrNotFound          = errors.New("photo not found")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidUpload     = errors.New("invalid upload")
)
