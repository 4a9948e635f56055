package config

import (
	"testing"
	"time"
)

func TestLoadEnvConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PHOTO_BUCKET", "PHOTO_CACHE_TTL", "PHOTO_ALL_CACHE_TTL", "PHOTO_STORE_TIMEOUT",
		"PHOTO_MAX_UPLOAD_SIZE", "GRAFANA_OTLP_ENDPOINT", "HTTP_PORT", "DEPLOY_ENV"} {
		t.Setenv(key, "")
	}

	cfg := LoadEnvConfig()

	if cfg.Photo.Bucket != "pet-photos" {
		t.Errorf("Bucket = %q", cfg.Photo.Bucket)
	}
	if cfg.Photo.CacheTTL != time.Hour || cfg.Photo.AllCacheTTL != 10*time.Minute || cfg.Photo.StoreTimeout != 10*time.Second {
		t.Errorf("durations = %v %v %v", cfg.Photo.CacheTTL, cfg.Photo.AllCacheTTL, cfg.Photo.StoreTimeout)
	}
	if cfg.Photo.MaxUploadSize != 10<<20 {
		t.Errorf("MaxUploadSize = %d", cfg.Photo.MaxUploadSize)
	}
	if cfg.Grafana.OTLPEndpoint != "" {
		t.Errorf("OTLPEndpoint = %q, want disabled", cfg.Grafana.OTLPEndpoint)
	}
	if cfg.HTTPPort != "8080" || cfg.Environment.Mode != "development" {
		t.Errorf("HTTPPort = %q, Mode = %q", cfg.HTTPPort, cfg.Environment.Mode)
	}
}

func TestLoadEnvConfig_Overrides(t *testing.T) {
	t.Setenv("PHOTO_BUCKET", "shelter-photos")
	t.Setenv("PHOTO_CACHE_TTL", "30m")
	t.Setenv("PHOTO_ALL_CACHE_TTL", "120")
	t.Setenv("PHOTO_STORE_TIMEOUT", "not-a-duration")
	t.Setenv("PHOTO_MAX_UPLOAD_SIZE", "2048")
	t.Setenv("GRAFANA_OTLP_ENDPOINT", "https://otlp.example.com:4318")
	t.Setenv("INTERNAL_HMAC_SECRET", "s3cret")

	cfg := LoadEnvConfig()

	if cfg.Photo.Bucket != "shelter-photos" {
		t.Errorf("Bucket = %q", cfg.Photo.Bucket)
	}
	if cfg.Photo.CacheTTL != 30*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.Photo.CacheTTL)
	}
	if cfg.Photo.AllCacheTTL != 2*time.Minute {
		t.Errorf("AllCacheTTL = %v", cfg.Photo.AllCacheTTL)
	}
	if cfg.Photo.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %v, want fallback", cfg.Photo.StoreTimeout)
	}
	if cfg.Photo.MaxUploadSize != 2048 {
		t.Errorf("MaxUploadSize = %d", cfg.Photo.MaxUploadSize)
	}
	if cfg.Grafana.OTLPEndpoint != "otlp.example.com:4318" {
		t.Errorf("OTLPEndpoint = %q", cfg.Grafana.OTLPEndpoint)
	}
	if cfg.Internal.HMACSecret != "s3cret" {
		t.Errorf("HMACSecret = %q", cfg.Internal.HMACSecret)
	}
}
