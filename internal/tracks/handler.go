package tracks

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles track HTTP endpoints.
type Handler struct {
	repo  *Repository
	guard *access.Guard
}

// NewHandler creates a tracks handler.
func NewHandler(repo *Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, guard: guard}
}

// CreateRequest is the body for POST /tracks. Global tracks carry no
// organization; local tracks require one.
type CreateRequest struct {
	Scope          string  `json:"scope" binding:"required,oneof=global local"`
	OrganizationID *string `json:"organization_id" binding:"omitempty,uuid"`
	Name           string  `json:"name" binding:"required,max=200"`
	Surface        string  `json:"surface" binding:"omitempty,max=100"`
	LengthMeters   float64 `json:"length_meters" binding:"omitempty,min=0"`
	Location       string  `json:"location" binding:"omitempty,max=300"`
}

// UpdateRequest is the body for PATCH /tracks/:id.
type UpdateRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=200"`
	Surface      *string  `json:"surface" binding:"omitempty,max=100"`
	LengthMeters *float64 `json:"length_meters" binding:"omitempty,min=0"`
	Location     *string  `json:"location" binding:"omitempty,max=300"`
}

// List handles GET /tracks: global tracks plus local tracks of every
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
	list, err := h.repo.List(c.Request.Context(), orgIDs)
	if err != nil {
		response.Internal(c, "failed to list tracks")
		return
	}
	response.OK(c, list)
}

// Get handles GET /tracks/:id. Global tracks are readable by any
// authenticated user; local tracks require organization access.
func (h *Handler) Get(c *gin.Context) {
	track, ok := h.load(c)
	if !ok {
		return
	}
	if track.Scope == models.TrackLocal {
		id, _ := access.IdentityFrom(c)
		if err := h.guard.RequireOrg(c.Request.Context(), id, *track.OrganizationID); err != nil {
			response.Forbidden(c, "not authorized for this organization")
			return
		}
	}
	response.OK(c, track)
}

// Create handles POST /tracks.
func (h *Handler) Create(c *gin.Context) {
	id, _ := access.IdentityFrom(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t := &models.Track{
		Scope:        models.TrackScope(req.Scope),
		Name:         req.Name,
		Surface:      req.Surface,
		LengthMeters: req.LengthMeters,
		Location:     req.Location,
	}
	switch t.Scope {
	case models.TrackGlobal:
		if req.OrganizationID != nil {
			response.BadRequest(c, "global tracks cannot have an organization")
			return
		}
		if !id.IsAdmin() {
			response.Forbidden(c, "admin role required for global tracks")
			return
		}
	case models.TrackLocal:
		if req.OrganizationID == nil {
			response.BadRequest(c, "organization_id required for local tracks")
			return
		}
		orgID, _ := uuid.Parse(*req.OrganizationID)
		if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
			response.Forbidden(c, "not authorized for this organization")
			return
		}
		t.OrganizationID = &orgID
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		response.Internal(c, "failed to create track")
		return
	}
	response.Created(c, t)
}

// Update handles PATCH /tracks/:id.
func (h *Handler) Update(c *gin.Context) {
	track, ok := h.mutable(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := UpdateParams{Name: req.Name, Surface: req.Surface, LengthMeters: req.LengthMeters, Location: req.Location}
	if err := h.repo.Update(c.Request.Context(), track.ID, p); err != nil {
		response.Internal(c, "failed to update track")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), track.ID)
	response.OK(c, updated)
}

// Delete handles DELETE /tracks/:id.
func (h *Handler) Delete(c *gin.Context) {
	track, ok := h.mutable(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), track.ID); err != nil {
		response.Internal(c, "failed to delete track")
		return
	}
	response.NoContent(c)
}

func (h *Handler) load(c *gin.Context) (*models.Track, bool) {
	trackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid track id")
		return nil, false
	}
	track, err := h.repo.GetByID(c.Request.Context(), trackID)
	if err != nil {
		response.NotFound(c, "track not found")
		return nil, false
	}
	return track, true
}

// mutable loads the track and runs the scope mutation gate.
func (h *Handler) mutable(c *gin.Context) (*models.Track, bool) {
	track, ok := h.load(c)
	if !ok {
		return nil, false
	}
	id, idOK := access.IdentityFrom(c)
	if !idOK {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	allowed, err := h.guard.CanMutateTrack(c.Request.Context(), id, track.Scope, track.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to check authorization")
		return nil, false
	}
	if !allowed {
		response.Forbidden(c, "not authorized to modify this track")
		return nil, false
	}
	return track, true
}
