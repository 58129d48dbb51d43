package injuries

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/sessions"
	"github.com/equitrack/backend/pkg/pagination"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles injury record HTTP endpoints.
type Handler struct {
	repo        *Repository
	sessionRepo *sessions.Repository
	guard       *access.Guard
}

// NewHandler creates an injuries handler.
func NewHandler(repo *Repository, sessionRepo *sessions.Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, sessionRepo: sessionRepo, guard: guard}
}

// CreateRequest is the body for POST /injuries: manually flagging a session.
type CreateRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
	RiskLevel string `json:"risk_level" binding:"required,oneof=low medium high critical"`
	Notes     string `json:"notes" binding:"omitempty,max=4000"`
}

// StatusRequest is the body for POST /injuries/:id/status.
type StatusRequest struct {
	Status           string `json:"status" binding:"required,oneof=flagged dismissed diagnosed"`
	MedicalDiagnosis string `json:"medical_diagnosis" binding:"omitempty,max=4000"`
}

// NotesRequest is the body for PATCH /injuries/:id.
type NotesRequest struct {
	Notes string `json:"notes" binding:"required,max=4000"`
}

// List handles GET /injuries.
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
	f := ListFilter{OrgIDs: orgIDs}
	if s := c.Query("horse_id"); s != "" {
		horseID, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid horse_id")
			return
		}
		f.HorseID = &horseID
	}
	if s := c.Query("status"); s != "" {
		if !models.ValidInjuryStatus(s) {
			response.BadRequest(c, "invalid status filter")
			return
		}
		f.Status = s
	}
	page := pagination.FromQuery(c)
	f.Limit, f.Offset = page.Limit, page.Offset

	list, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, "failed to list injury records")
		return
	}
	response.OK(c, list)
}

// Get handles GET /injuries/:id.
func (h *Handler) Get(c *gin.Context) {
	rec, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	response.OK(c, rec)
}

// Create handles POST /injuries: any member of the session's organization
// can flag a concern manually.
func (h *Handler) Create(c *gin.Context) {
	id, _ := access.IdentityFrom(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	sessionID, _ := uuid.Parse(req.SessionID)
	session, err := h.sessionRepo.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		response.NotFound(c, "session not found")
		return
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, session.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	rec := &models.InjuryRecord{
		SessionID:      session.ID,
		OrganizationID: session.OrganizationID,
		HorseID:        session.HorseID,
		Status:         models.InjuryFlagged,
		RiskLevel:      models.InjuryRisk(req.RiskLevel),
		Notes:          req.Notes,
	}
	if err := h.repo.Create(c.Request.Context(), rec); err != nil {
		response.Internal(c, "failed to create injury record")
		return
	}
	response.Created(c, rec)
}

// SetStatus handles POST /injuries/:id/status. Moving a record out of
// flagged is restricted to veterinarians and admins.
func (h *Handler) SetStatus(c *gin.Context) {
	rec, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	id, _ := access.IdentityFrom(c)
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	to := models.InjuryStatus(req.Status)
	if !TransitionAllowed(rec.Status, to, id.IsVeterinarian()) {
		if rec.Status == to {
			response.Conflict(c, "record already has this status")
			return
		}
		response.Forbidden(c, "veterinarian or admin required for this transition")
		return
	}
	if to == models.InjuryDiagnosed && req.MedicalDiagnosis == "" {
		response.BadRequest(c, "medical_diagnosis required when diagnosing")
		return
	}
	var diagnosedBy *uuid.UUID
	if to == models.InjuryDiagnosed {
		userID := id.UserID
		diagnosedBy = &userID
	}
	if err := h.repo.SetStatus(c.Request.Context(), rec.ID, to, req.MedicalDiagnosis, diagnosedBy); err != nil {
		response.Internal(c, "failed to update injury record")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), rec.ID)
	response.OK(c, updated)
}

// UpdateNotes handles PATCH /injuries/:id.
func (h *Handler) UpdateNotes(c *gin.Context) {
	rec, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.UpdateNotes(c.Request.Context(), rec.ID, req.Notes); err != nil {
		response.Internal(c, "failed to update injury record")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), rec.ID)
	response.OK(c, updated)
}

// Delete handles DELETE /injuries/:id. Admin only; members dismiss
// instead of deleting.
func (h *Handler) Delete(c *gin.Context) {
	rec, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	id, _ := access.IdentityFrom(c)
	if !id.IsAdmin() {
		response.Forbidden(c, "admin role required")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), rec.ID); err != nil {
		response.Internal(c, "failed to delete injury record")
		return
	}
	response.NoContent(c)
}

func (h *Handler) loadGuarded(c *gin.Context) (*models.InjuryRecord, bool) {
	recID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid injury record id")
		return nil, false
	}
	rec, err := h.repo.GetByID(c.Request.Context(), recID)
	if err != nil {
		response.NotFound(c, "injury record not found")
		return nil, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, rec.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return nil, false
	}
	return rec, true
}
