package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-pet-photo-service/entity"
	"github.com/tnqbao/gau-pet-photo-service/http/controller/dto"
	"github.com/tnqbao/gau-pet-photo-service/service"
	"github.com/tnqbao/gau-pet-photo-service/utils"
)

// multipart framing and the text fields on top of the file itself
const formOverhead = 1 << 20

func (ctrl *Controller) UploadPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	maxSize := ctrl.Config.EnvConfig.Photo.MaxUploadSize
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+formOverhead)

	var req dto.UploadPhotoRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Upload body exceeds %d bytes", maxSize)
			utils.JSON413(c, fmt.Sprintf("File exceeds the %d byte limit", maxSize))
			return
		}
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Invalid upload form: %v", err)
		utils.JSON400(c, "entity_type and a positive entity_id are required")
		return
	}

	entityType, err := entity.ParseEntityType(req.EntityType)
	if err != nil {
		utils.JSON400(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Failed to get file from form data: %v", err)
		utils.JSON400(c, "Failed to get file: "+err.Error())
		return
	}

	if fileHeader.Size > maxSize {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Rejected '%s': %d bytes over the %d byte limit",
			fileHeader.Filename, fileHeader.Size, maxSize)
		utils.JSON413(c, fmt.Sprintf("File exceeds the %d byte limit", maxSize))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.JSON400(c, "Only image uploads are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to open uploaded file '%s'", fileHeader.Filename)
		utils.JSON500(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := ctrl.PhotoService.Upload(ctx, service.UploadInput{
		Reader:       file,
		Size:         fileHeader.Size,
		MimeType:     contentType,
		OriginalName: fileHeader.Filename,
		EntityType:   entityType,
		EntityID:     req.EntityID,
	})
	if err != nil {
		ctrl.respondError(c, err, "Failed to upload photo")
		return
	}

	utils.JSON201(c, result.Photo)
}

// ListPhotos serves the owner, owner-type and global galleries depending on
// which filters are present.
func (ctrl *Controller) ListPhotos(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListPhotosQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSON400(c, "Invalid query parameters")
		return
	}

	var (
		photos []entity.Photo
		err    error
	)
	switch {
	case query.EntityType == "" && query.EntityID != 0:
		utils.JSON400(c, "entity_id requires entity_type")
		return
	case query.EntityType == "":
		photos, err = ctrl.PhotoService.GetAll(ctx)
	default:
		entityType, parseErr := entity.ParseEntityType(query.EntityType)
		if parseErr != nil {
			utils.JSON400(c, parseErr.Error())
			return
		}
		if query.EntityID != 0 {
			photos, err = ctrl.PhotoService.GetByOwner(ctx, entityType, query.EntityID)
		} else {
			photos, err = ctrl.PhotoService.GetByOwnerType(ctx, entityType)
		}
	}
	if err != nil {
		ctrl.respondError(c, err, "Failed to list photos")
		return
	}

	utils.JSON200(c, dto.PhotoListResponseDTO{Photos: photos, Count: len(photos)})
}

func (ctrl *Controller) GetPhoto(c *gin.Context) {
	id, ok := photoIDParam(c)
	if !ok {
		return
	}

	photo, err := ctrl.PhotoService.GetByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "Failed to load photo")
		return
	}
	utils.JSON200(c, photo)
}

func (ctrl *Controller) GetPhotoByObjectName(c *gin.Context) {
	photo, err := ctrl.PhotoService.GetByObjectName(c.Request.Context(), c.Param("object_name"))
	if err != nil {
		ctrl.respondError(c, err, "Failed to load photo")
		return
	}
	utils.JSON200(c, photo)
}

func (ctrl *Controller) GetPhotoContent(c *gin.Context) {
	id, ok := photoIDParam(c)
	if !ok {
		return
	}

	photo, body, err := ctrl.PhotoService.OpenContent(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "Failed to load photo content")
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, photo.Size, photo.MimeType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", photo.OriginalName),
		"Cache-Control":       "public, max-age=3600",
	})
}

func (ctrl *Controller) DeletePhoto(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := photoIDParam(c)
	if !ok {
		return
	}

	result, err := ctrl.PhotoService.Delete(ctx, id)
	if err != nil {
		ctrl.respondError(c, err, "Failed to delete photo")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Photo] Photo %d deleted by %s", id, c.GetString("user_id"))
	utils.JSON200(c, dto.DeletePhotoResponseDTO{Message: "Photo deleted successfully", Photo: result.Photo})
}

// DeleteOwnerPhotos purges every photo of one owner. Partial failures still
// answer 200; the caller reads deleted_count and failed.
func (ctrl *Controller) DeleteOwnerPhotos(c *gin.Context) {
	ctx := c.Request.Context()

	entityType, err := entity.ParseEntityType(c.Param("entity_type"))
	if err != nil {
		utils.JSON400(c, err.Error())
		return
	}
	entityID, err := strconv.ParseUint(c.Param("entity_id"), 10, 64)
	if err != nil || entityID == 0 {
		utils.JSON400(c, "Invalid entity_id")
		return
	}

	result, err := ctrl.PhotoService.DeleteAllForOwner(ctx, entityType, entityID)
	if err != nil {
		ctrl.respondError(c, err, "Failed to delete owner photos")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Photo] Owner purge of %s %d requested via %s: %d of %d removed",
		entityType, entityID, c.GetString("auth_method"), result.DeletedCount, result.Fetched)
	utils.JSON200(c, dto.BulkDeleteResponseDTO{
		EntityType:   entityType,
		EntityID:     entityID,
		Fetched:      result.Fetched,
		DeletedCount: result.DeletedCount,
		Failed:       result.Failed,
	})
}

func (ctrl *Controller) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		utils.JSON404(c, "Photo not found")
	case errors.Is(err, entity.ErrInvalidEntityType), errors.Is(err, entity.ErrInvalidUpload):
		utils.JSON400(c, err.Error())
	default:
		ctrl.Infra.Logger.ErrorWithContextf(c.Request.Context(), err, "[Photo] %s", message)
		utils.JSON500(c, message)
	}
}

func photoIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSON400(c, "Invalid photo id")
		return 0, false
	}
	return id, true
}
