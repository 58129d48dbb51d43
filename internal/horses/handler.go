package horses

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/pagination"
	"github.com/equitrack/backend/pkg/response"
	"github.com/equitrack/backend/pkg/storage"
)

var listSortColumns = map[string]bool{
	"name":       true,
	"status":     true,
	"created_at": true,
}

// Handler handles horse HTTP endpoints.
type Handler struct {
	repo   *Repository
	guard  *access.Guard
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a horses handler. s3 may be nil when photo storage is
// not configured; photo uploads then fail with 503.
func NewHandler(repo *Repository, guard *access.Guard, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, guard: guard, s3: s3, logger: logger}
}

// CreateRequest is the body for POST /horses. Device pairing is not part
// of this body: it goes through the devices link endpoint, which validates
// the device's organization and keeps both sides of the pairing in step.
type CreateRequest struct {
	OrganizationID string          `json:"organization_id" binding:"required,uuid"`
	Name           string          `json:"name" binding:"required"`
	Breed          string          `json:"breed"`
	Gender         string          `json:"gender"`
	DateOfBirth    *string         `json:"date_of_birth"` // YYYY-MM-DD
	Status         string          `json:"status" binding:"omitempty,oneof=active injured retired inactive"`
	HealthRecords  json.RawMessage `json:"health_records"`
}

// UpdateRequest is the body for PATCH /horses/:id. The owning organization
// cannot be changed, and device pairing goes through the devices link
// endpoint.
type UpdateRequest struct {
	Name          *string         `json:"name"`
	Breed         *string         `json:"breed"`
	Gender        *string         `json:"gender"`
	DateOfBirth   *string         `json:"date_of_birth"`
	Status        *string         `json:"status" binding:"omitempty,oneof=active injured retired inactive"`
	HealthRecords json.RawMessage `json:"health_records"`
}

// newHorse builds the horse to insert from a create request. Any device_id
// in the raw body is ignored by binding: pairing is the devices endpoint's
// job.
func newHorse(req CreateRequest, orgID uuid.UUID) (*models.Horse, error) {
	status := models.HorseActive
	if req.Status != "" {
		status = models.HorseStatus(req.Status)
	}
	horse := &models.Horse{
		OrganizationID: orgID,
		Name:           req.Name,
		Breed:          req.Breed,
		Gender:         req.Gender,
		Status:         status,
		HealthRecords:  req.HealthRecords,
	}
	if req.DateOfBirth != nil {
		t, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		horse.DateOfBirth = &t
	}
	return horse, nil
}

func (req UpdateRequest) params() (UpdateParams, error) {
	if req.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *req.DateOfBirth); err != nil {
			return UpdateParams{}, err
		}
	}
	p := UpdateParams{
		Name:        req.Name,
		Breed:       req.Breed,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		Status:      req.Status,
	}
	if req.HealthRecords != nil {
		p.HealthRecords = []byte(req.HealthRecords)
	}
	return p, nil
}

// List handles GET /horses. Without organization_id the result covers every
// organization the caller can access.
func (h *Handler) List(c *gin.Context) {
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var requested *uuid.UUID
	if s := c.Query("organization_id"); s != "" {
		orgID, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid organization_id")
			return
		}
		requested = &orgID
	}
	orgIDs, err := h.guard.AccessibleOrgs(c.Request.Context(), id, requested)
	if err != nil {
		if err == access.ErrForbidden {
			response.Forbidden(c, "not authorized for this organization")
			return
		}
		response.Internal(c, "failed to resolve organizations")
		return
	}
	if status := c.Query("status"); status != "" && !models.ValidHorseStatus(status) {
		response.BadRequest(c, "invalid status filter")
		return
	}
	page := pagination.FromQuery(c)
	list, err := h.repo.List(c.Request.Context(), ListFilter{
		OrgIDs:  orgIDs,
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Limit:   page.Limit,
		Offset:  page.Offset,
		OrderBy: pagination.SortFromQuery(c, listSortColumns, "name"),
	})
	if err != nil {
		response.Internal(c, "failed to list horses")
		return
	}
	response.OK(c, list)
}

// Get handles GET /horses/:id. Membership in the horse's organization is
// checked here too; knowing an ID is not enough.
func (h *Handler) Get(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	response.OK(c, horse)
}

// Create handles POST /horses.
func (h *Handler) Create(c *gin.Context) {
	id, _ := access.IdentityFrom(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	orgID, _ := uuid.Parse(req.OrganizationID)
	if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	horse, err := newHorse(req, orgID)
	if err != nil {
		response.BadRequest(c, "invalid date_of_birth")
		return
	}
	if err := h.repo.Create(c.Request.Context(), horse); err != nil {
		response.Internal(c, "failed to create horse")
		return
	}
	response.Created(c, horse)
}

// Update handles PATCH /horses/:id.
func (h *Handler) Update(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := req.params()
	if err != nil {
		response.BadRequest(c, "invalid date_of_birth")
		return
	}
	if err := h.repo.Update(c.Request.Context(), horse.ID, p); err != nil {
		response.Internal(c, "failed to update horse")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), horse.ID)
	response.OK(c, updated)
}

// Delete handles DELETE /horses/:id.
func (h *Handler) Delete(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), horse.ID); err != nil {
		response.Internal(c, "failed to delete horse")
		return
	}
	if h.s3 != nil && horse.PhotoKey != "" {
		if err := h.s3.DeletePhoto(c.Request.Context(), horse.PhotoKey); err != nil {
			h.logger.Warn("delete horse photo failed", zap.Error(err), zap.String("key", horse.PhotoKey))
		}
	}
	response.NoContent(c)
}

// UploadPhoto handles POST /horses/:id/photo (multipart field "photo").
func (h *Handler) UploadPhoto(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "photo storage not configured")
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "photo file required")
		return
	}
	if file.Size > storage.MaxPhotoSize {
		response.BadRequest(c, "photo exceeds maximum size")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidatePhotoType(contentType, file.Filename) {
		response.BadRequest(c, "unsupported photo type")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read photo")
		return
	}
	defer src.Close()

	if contentType == "" {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}
	url, key, err := h.s3.UploadPhoto(c.Request.Context(), horse.ID.String(), file.Filename, contentType, src, file.Size)
	if err != nil {
		h.logger.Error("photo upload failed", zap.Error(err), zap.String("horse_id", horse.ID.String()))
		response.Internal(c, "failed to upload photo")
		return
	}
	if err := h.repo.SetPhoto(c.Request.Context(), horse.ID, url, key); err != nil {
		response.Internal(c, "failed to save photo reference")
		return
	}
	response.OK(c, gin.H{"photo_url": url})
}

// DownloadPhoto handles GET /horses/:id/photo: a pre-signed, time-limited
// download URL for the stored photo.
func (h *Handler) DownloadPhoto(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "photo storage not configured")
		return
	}
	if horse.PhotoKey == "" {
		response.NotFound(c, "horse has no photo")
		return
	}
	expires := h.s3.PresignExpire()
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.PhotosBucket(), horse.PhotoKey, expires)
	if err != nil {
		h.logger.Error("presign photo download failed", zap.Error(err), zap.String("horse_id", horse.ID.String()))
		response.Internal(c, "failed to sign download url")
		return
	}
	response.OK(c, gin.H{"url": url, "expires_in_seconds": int(expires.Seconds())})
}

// Favorite handles POST /horses/:id/favorite. Idempotent.
func (h *Handler) Favorite(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	id, _ := access.IdentityFrom(c)
	if err := h.repo.AddFavorite(c.Request.Context(), id.UserID, horse.ID); err != nil {
		response.Internal(c, "failed to add favorite")
		return
	}
	response.Created(c, gin.H{"horse_id": horse.ID})
}

// Unfavorite handles DELETE /horses/:id/favorite.
func (h *Handler) Unfavorite(c *gin.Context) {
	horse, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	id, _ := access.IdentityFrom(c)
	if err := h.repo.RemoveFavorite(c.Request.Context(), id.UserID, horse.ID); err != nil {
		response.Internal(c, "failed to remove favorite")
		return
	}
	response.NoContent(c)
}

// ListFavorites handles GET /horses/favorites.
func (h *Handler) ListFavorites(c *gin.Context) {
	id, _ := access.IdentityFrom(c)
	list, err := h.repo.ListFavorites(c.Request.Context(), id.UserID)
	if err != nil {
		response.Internal(c, "failed to list favorites")
		return
	}
	response.OK(c, list)
}

// loadGuarded parses :id, loads the horse and runs the membership gate.
// Writes the error response and returns ok=false on any failure.
func (h *Handler) loadGuarded(c *gin.Context) (*models.Horse, bool) {
	horseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid horse id")
		return nil, false
	}
	horse, err := h.repo.GetByID(c.Request.Context(), horseID)
	if err != nil {
		response.NotFound(c, "horse not found")
		return nil, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, horse.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return nil, false
	}
	return horse, true
}
