package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-pet-photo-service/config"
	"github.com/tnqbao/gau-pet-photo-service/entity"
	"github.com/tnqbao/gau-pet-photo-service/http/controller"
	"github.com/tnqbao/gau-pet-photo-service/http/controller/dto"
	"github.com/tnqbao/gau-pet-photo-service/infra"
	"github.com/tnqbao/gau-pet-photo-service/repository"
	"github.com/tnqbao/gau-pet-photo-service/service"
	"github.com/tnqbao/gau-pet-photo-service/service/fake"
	"github.com/tnqbao/gau-pet-photo-service/utils"
)

const (
	jwtSecret  = "test-jwt-secret"
	hmacSecret = "test-internal-secret"
)

type testServer struct {
	router   *gin.Engine
	ctrl     *controller.Controller
	objects  *fake.ObjectStore
	metadata *fake.MetadataStore
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{EnvConfig: &config.EnvConfig{}}
	cfg.EnvConfig.JWT.SecretKey = jwtSecret
	cfg.EnvConfig.Internal.HMACSecret = hmacSecret
	cfg.EnvConfig.Photo.Bucket = "pet-photos"
	cfg.EnvConfig.Photo.MaxUploadSize = 1 << 10

	objects, metadata := fake.NewObjectStore(), fake.NewMetadataStore()
	svc := service.NewPhotoService(objects, metadata, fake.NewCache(), service.Options{Bucket: "pet-photos"})
	ctrl := controller.NewController(cfg, &infra.Infra{}, &repository.Repository{}, svc)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatal(err)
	}

	return &testServer{router: SetupRouter(ctrl), ctrl: ctrl, objects: objects, metadata: metadata, token: token}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) uploadRequest(t *testing.T, entityType, entityID, contentType string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("entity_type", entityType)
	_ = mw.WriteField("entity_id", entityID)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="rex.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	return req
}

func (s *testServer) upload(t *testing.T, entityType string, entityID uint64) entity.Photo {
	t.Helper()
	w := s.do(s.uploadRequest(t, entityType, strconv.FormatUint(entityID, 10), "image/jpeg", []byte("jpeg-data")))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var photo entity.Photo
	if err := json.Unmarshal(w.Body.Bytes(), &photo); err != nil {
		t.Fatal(err)
	}
	return photo
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestUploadAndRead(t *testing.T) {
	s := newTestServer(t)
	photo := s.upload(t, "animal", 7)

	if photo.ID == 0 || photo.URL != "/"+photo.ObjectName {
		t.Errorf("uploaded photo = %+v", photo)
	}

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/photos/?entity_type=animal&entity_id=7", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list dto.PhotoListResponseDTO
	decode(t, w, &list)
	if list.Count != 1 || list.Photos[0].ID != photo.ID {
		t.Errorf("list = %+v", list)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/photos/%d", photo.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/v1/photos/object/"+photo.ObjectName, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get by object status = %d", w.Code)
	}

	w = s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/photos/%d/content", photo.ID), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("content status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != "jpeg-data" {
		t.Errorf("content = %q", w.Body.String())
	}
}

func TestUploadRejections(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name        string
		entityType  string
		entityID    string
		contentType string
		size        int
		auth        bool
		want        int
	}{
		{"no token", "user", "1", "image/png", 10, false, http.StatusUnauthorized},
		{"not an image", "user", "1", "application/pdf", 10, true, http.StatusBadRequest},
		{"unknown owner type", "vet", "1", "image/png", 10, true, http.StatusBadRequest},
		{"missing owner id", "user", "", "image/png", 10, true, http.StatusBadRequest},
		{"too large", "user", "1", "image/png", 4 << 10, true, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := s.uploadRequest(t, tt.entityType, tt.entityID, tt.contentType, bytes.Repeat([]byte("x"), tt.size))
			if !tt.auth {
				req.Header.Del("Authorization")
			}
			if w := s.do(req); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
	if s.metadata.Len() != 0 || s.objects.Len() != 0 {
		t.Error("rejected uploads reached the stores")
	}
}

func TestListFilters(t *testing.T) {
	s := newTestServer(t)
	s.upload(t, "shelter", 1)
	s.upload(t, "shelter", 2)
	s.upload(t, "user", 3)

	tests := []struct {
		query     string
		wantCode  int
		wantCount int
	}{
		{"", http.StatusOK, 3},
		{"?entity_type=shelter", http.StatusOK, 2},
		{"?entity_type=shelter&entity_id=2", http.StatusOK, 1},
		{"?entity_type=animal&entity_id=2", http.StatusOK, 0},
		{"?entity_id=2", http.StatusBadRequest, 0},
		{"?entity_type=vet", http.StatusBadRequest, 0},
		{"?entity_type=user&entity_id=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/photos/"+tt.query, nil))
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var list dto.PhotoListResponseDTO
			decode(t, w, &list)
			if list.Count != tt.wantCount || len(list.Photos) != tt.wantCount {
				t.Errorf("count = %d, want %d", list.Count, tt.wantCount)
			}
		})
	}
}

func TestGetPhotoErrors(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/photos/42", nil)); w.Code != http.StatusNotFound {
		t.Errorf("missing photo status = %d", w.Code)
	}
	if w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/photos/abc", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", w.Code)
	}
	if w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/photos/42/content", nil)); w.Code != http.StatusNotFound {
		t.Errorf("missing content status = %d", w.Code)
	}
}

func TestDeletePhoto(t *testing.T) {
	s := newTestServer(t)
	photo := s.upload(t, "user", 5)
	path := fmt.Sprintf("/api/v1/photos/%d", photo.ID)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if w := s.do(req); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated delete status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := s.do(req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	var res dto.DeletePhotoResponseDTO
	decode(t, w, &res)
	if res.Photo == nil || res.Photo.ID != photo.ID {
		t.Errorf("delete response = %+v", res)
	}

	req = httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if w := s.do(req); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestDeleteOwnerPhotos(t *testing.T) {
	s := newTestServer(t)
	s.upload(t, "shelter", 2)
	s.upload(t, "shelter", 2)
	s.upload(t, "shelter", 9)

	path := "/api/v1/photos/owner/shelter/2"
	signed := func(secret string) *http.Request {
		ts := time.Now().Unix()
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		req.Header.Set("Authorization", "HMAC shelter-service:"+utils.SignRequest(secret, http.MethodDelete, path, ts, nil))
		req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
		return req
	}

	if w := s.do(signed("wrong-secret")); w.Code != http.StatusUnauthorized {
		t.Errorf("bad signature status = %d", w.Code)
	}

	w := s.do(signed(hmacSecret))
	if w.Code != http.StatusOK {
		t.Fatalf("purge status = %d, body = %s", w.Code, w.Body.String())
	}
	var res dto.BulkDeleteResponseDTO
	decode(t, w, &res)
	if res.Fetched != 2 || res.DeletedCount != 2 || len(res.Failed) != 0 {
		t.Errorf("purge response = %+v", res)
	}
	if s.metadata.Len() != 1 {
		t.Errorf("rows left = %d, want the other shelter's photo", s.metadata.Len())
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/photos/owner/vet/2", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if w := s.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("unknown owner type status = %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.ctrl.HealthChecks = map[string]controller.HealthCheckFunc{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return nil },
	}

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	s.ctrl.HealthChecks["minio"] = func(context.Context) error { return errors.New("bucket pet-photos does not exist") }
	w = s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var res dto.HealthResponseDTO
	decode(t, w, &res)
	if res.Checks["postgres"] != "ok" || res.Checks["minio"] == "ok" {
		t.Errorf("checks = %v", res.Checks)
	}
}
