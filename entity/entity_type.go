package entity

import (
	"fmt"
	"strings"
)

// EntityType names the kind of owner a photo is attached to.
type EntityType string

const (
	EntityTypeUser     EntityType = "user"
	EntityTypeShelter  EntityType = "shelter"
	EntityTypeAnimal   EntityType = "animal"
	EntityTypeRehoming EntityType = "rehoming" // animals offered for rehoming by their owners
)

var entityTypes = []EntityType{
	EntityTypeUser,
	EntityTypeShelter,
	EntityTypeAnimal,
	EntityTypeRehoming,
}

func ParseEntityType(raw string) (EntityType, error) {
	candidate := EntityType(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEntityType, raw)
}

func (t EntityType) Valid() bool {
	for _, known := range entityTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t EntityType) String() string {
	return string(t)
}
