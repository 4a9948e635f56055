package entity

import (
	"errors"
	"testing"
)

func TestParseEntityType(t *testing.T) {
	for _, raw := range []string{"user", "shelter", "animal", "rehoming", " Animal "} {
		if _, err := ParseEntityType(raw); err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
	}

	for _, raw := range []string{"", "cat", "photo:*", "animal:7"} {
		_, err := ParseEntityType(raw)
		if !errors.Is(err, ErrInvalidEntityType) {
			t.Fatalf("expected ErrInvalidEntityType for %q, got %v", raw, err)
		}
	}
}
