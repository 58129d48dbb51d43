package devices

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/horses"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles device HTTP endpoints.
type Handler struct {
	repo      *Repository
	horseRepo *horses.Repository
	guard     *access.Guard
}

// NewHandler creates a devices handler.
func NewHandler(repo *Repository, horseRepo *horses.Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, horseRepo: horseRepo, guard: guard}
}

// CreateRequest is the body for POST /devices.
type CreateRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Name           string `json:"name" binding:"omitempty,max=200"`
	Serial         string `json:"serial" binding:"required,max=100"`
}

// UpdateRequest is the body for PATCH /devices/:id.
type UpdateRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=200"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// LinkRequest is the body for POST /devices/:id/link.
type LinkRequest struct {
	HorseID string `json:"horse_id" binding:"required,uuid"`
}

// List handles GET /devices.
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
	list, err := h.repo.List(c.Request.Context(), orgIDs)
	if err != nil {
		response.Internal(c, "failed to list devices")
		return
	}
	response.OK(c, list)
}

// Get handles GET /devices/:id.
func (h *Handler) Get(c *gin.Context) {
	device, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	response.OK(c, device)
}

// Create handles POST /devices.
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
	d := &models.Device{
		OrganizationID: orgID,
		Name:           req.Name,
		Serial:         req.Serial,
		Status:         models.DeviceActive,
	}
	if err := h.repo.Create(c.Request.Context(), d); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			response.Conflict(c, "a device with this serial already exists")
			return
		}
		response.Internal(c, "failed to create device")
		return
	}
	response.Created(c, d)
}

// Update handles PATCH /devices/:id.
func (h *Handler) Update(c *gin.Context) {
	device, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := UpdateParams{Name: req.Name}
	if req.Status != nil {
		status := models.DeviceStatus(*req.Status)
		p.Status = &status
	}
	if err := h.repo.Update(c.Request.Context(), device.ID, p); err != nil {
		response.Internal(c, "failed to update device")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), device.ID)
	response.OK(c, updated)
}

// Link handles POST /devices/:id/link: attaches the device to a horse in
// the same organization.
func (h *Handler) Link(c *gin.Context) {
	device, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	horseID, _ := uuid.Parse(req.HorseID)
	horse, err := h.horseRepo.GetByID(c.Request.Context(), horseID)
	if err != nil {
		response.NotFound(c, "horse not found")
		return
	}
	if horse.OrganizationID != device.OrganizationID {
		response.BadRequest(c, "horse belongs to a different organization")
		return
	}
	if err := h.repo.LinkHorse(c.Request.Context(), device.ID, horseID); err != nil {
		response.Internal(c, "failed to link device")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), device.ID)
	response.OK(c, updated)
}

// Unlink handles POST /devices/:id/unlink.
func (h *Handler) Unlink(c *gin.Context) {
	device, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if err := h.repo.UnlinkHorse(c.Request.Context(), device.ID); err != nil {
		response.Internal(c, "failed to unlink device")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), device.ID)
	response.OK(c, updated)
}

// Delete handles DELETE /devices/:id.
func (h *Handler) Delete(c *gin.Context) {
	device, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), device.ID); err != nil {
		response.Internal(c, "failed to delete device")
		return
	}
	response.NoContent(c)
}

func (h *Handler) loadGuarded(c *gin.Context) (*models.Device, bool) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid device id")
		return nil, false
	}
	device, err := h.repo.GetByID(c.Request.Context(), deviceID)
	if err != nil {
		response.NotFound(c, "device not found")
		return nil, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, device.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return nil, false
	}
	return device, true
}
