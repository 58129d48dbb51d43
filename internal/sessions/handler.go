package sessions

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/horses"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/tracks"
	"github.com/equitrack/backend/pkg/pagination"
	"github.com/equitrack/backend/pkg/response"
)

var listSortColumns = map[string]bool{
	"started_at":  true,
	"injury_risk": true,
	"created_at":  true,
}

// Handler handles training session HTTP endpoints.
type Handler struct {
	repo      *Repository
	horseRepo *horses.Repository
	trackRepo *tracks.Repository
	guard     *access.Guard
}

// NewHandler creates a sessions handler.
func NewHandler(repo *Repository, horseRepo *horses.Repository, trackRepo *tracks.Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, horseRepo: horseRepo, trackRepo: trackRepo, guard: guard}
}

// CreateRequest is the body for POST /sessions (manual entry; device
// uploads go through /ingest/sessions).
type CreateRequest struct {
	OrganizationID  string          `json:"organization_id" binding:"required,uuid"`
	HorseID         *string         `json:"horse_id" binding:"omitempty,uuid"`
	TrackID         *string         `json:"track_id" binding:"omitempty,uuid"`
	StartedAt       string          `json:"started_at" binding:"required"`
	DurationSeconds int             `json:"duration_seconds" binding:"omitempty,min=0"`
	DistanceMeters  float64         `json:"distance_meters" binding:"omitempty,min=0"`
	PerformanceData json.RawMessage `json:"performance_data"`
}

// UpdateRequest is the body for PATCH /sessions/:id.
type UpdateRequest struct {
	HorseID    *string `json:"horse_id" binding:"omitempty,uuid"`
	ClearHorse bool    `json:"clear_horse"`
	TrackID    *string `json:"track_id" binding:"omitempty,uuid"`
	ClearTrack bool    `json:"clear_track"`
	StartedAt  *string `json:"started_at"`
}

// BatchAssignRequest is the body for POST /sessions/batch-assign.
type BatchAssignRequest struct {
	OrganizationID string   `json:"organization_id" binding:"required,uuid"`
	SessionIDs     []string `json:"session_ids" binding:"required,min=1,dive,uuid"`
	TrackID        *string  `json:"track_id" binding:"omitempty,uuid"`
	HorseID        *string  `json:"horse_id" binding:"omitempty,uuid"`
}

// CommentRequest is the body for POST /sessions/:id/comments.
type CommentRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// List handles GET /sessions.
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
	if s := c.Query("track_id"); s != "" {
		trackID, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid track_id")
			return
		}
		f.TrackID = &trackID
	}
	if s := c.Query("risk"); s != "" {
		if !models.ValidInjuryRisk(s) {
			response.BadRequest(c, "invalid risk filter")
			return
		}
		f.Risk = s
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, "invalid from timestamp")
			return
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, "invalid to timestamp")
			return
		}
		f.To = &t
	}
	page := pagination.FromQuery(c)
	f.Limit, f.Offset = page.Limit, page.Offset
	f.OrderBy = pagination.SortFromQuery(c, listSortColumns, "started_at")

	list, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, "failed to list sessions")
		return
	}
	response.OK(c, list)
}

// Get handles GET /sessions/:id.
func (h *Handler) Get(c *gin.Context) {
	session, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	response.OK(c, session)
}

// Create handles POST /sessions.
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
	startedAt, err := time.Parse(time.RFC3339, req.StartedAt)
	if err != nil {
		response.BadRequest(c, "invalid started_at")
		return
	}
	s := &models.Session{
		OrganizationID:  orgID,
		StartedAt:       startedAt,
		DurationSeconds: req.DurationSeconds,
		DistanceMeters:  req.DistanceMeters,
		PerformanceData: req.PerformanceData,
		InjuryRisk:      models.RiskLow,
	}
	if req.HorseID != nil {
		horseID, _ := uuid.Parse(*req.HorseID)
		if !h.horseInOrg(c, horseID, orgID) {
			return
		}
		s.HorseID = &horseID
	}
	if req.TrackID != nil {
		trackID, _ := uuid.Parse(*req.TrackID)
		if !h.trackUsable(c, trackID, orgID) {
			return
		}
		s.TrackID = &trackID
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to create session")
		return
	}
	response.Created(c, s)
}

// Update handles PATCH /sessions/:id.
func (h *Handler) Update(c *gin.Context) {
	session, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := UpdateParams{ClearHorse: req.ClearHorse, ClearTrack: req.ClearTrack}
	if req.HorseID != nil {
		horseID, _ := uuid.Parse(*req.HorseID)
		if !h.horseInOrg(c, horseID, session.OrganizationID) {
			return
		}
		p.HorseID = &horseID
	}
	if req.TrackID != nil {
		trackID, _ := uuid.Parse(*req.TrackID)
		if !h.trackUsable(c, trackID, session.OrganizationID) {
			return
		}
		p.TrackID = &trackID
	}
	if req.StartedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartedAt)
		if err != nil {
			response.BadRequest(c, "invalid started_at")
			return
		}
		p.StartedAt = &t
	}
	if err := h.repo.Update(c.Request.Context(), session.ID, p); err != nil {
		response.Internal(c, "failed to update session")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), session.ID)
	response.OK(c, updated)
}

// Delete handles DELETE /sessions/:id. Injury records on the session are
// cascade-deleted with it.
func (h *Handler) Delete(c *gin.Context) {
	session, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), session.ID); err != nil {
		response.Internal(c, "failed to delete session")
		return
	}
	response.NoContent(c)
}

// BatchAssign handles POST /sessions/batch-assign: assigns a track and/or
// horse to many sessions in one call, returning per-item outcomes.
func (h *Handler) BatchAssign(c *gin.Context) {
	id, _ := access.IdentityFrom(c)
	var req BatchAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.TrackID == nil && req.HorseID == nil {
		response.BadRequest(c, "track_id or horse_id required")
		return
	}
	orgID, _ := uuid.Parse(req.OrganizationID)
	if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	var target AssignTarget
	if req.TrackID != nil {
		trackID, _ := uuid.Parse(*req.TrackID)
		if !h.trackUsable(c, trackID, orgID) {
			return
		}
		target.TrackID = &trackID
	}
	if req.HorseID != nil {
		horseID, _ := uuid.Parse(*req.HorseID)
		if !h.horseInOrg(c, horseID, orgID) {
			return
		}
		target.HorseID = &horseID
	}
	ids := make([]uuid.UUID, 0, len(req.SessionIDs))
	for _, s := range req.SessionIDs {
		sessionID, _ := uuid.Parse(s)
		ids = append(ids, sessionID)
	}
	results, err := h.repo.BatchAssign(c.Request.Context(), orgID, ids, target)
	if err != nil {
		response.Internal(c, "failed to assign sessions")
		return
	}
	response.OK(c, gin.H{"results": results})
}

// CreateComment handles POST /sessions/:id/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	session, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	id, _ := access.IdentityFrom(c)
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cm := &models.SessionComment{SessionID: session.ID, UserID: id.UserID, Body: req.Body}
	if err := h.repo.CreateComment(c.Request.Context(), cm); err != nil {
		response.Internal(c, "failed to create comment")
		return
	}
	response.Created(c, cm)
}

// ListComments handles GET /sessions/:id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	session, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	list, err := h.repo.ListComments(c.Request.Context(), session.ID)
	if err != nil {
		response.Internal(c, "failed to list comments")
		return
	}
	response.OK(c, list)
}

// DeleteComment handles DELETE /sessions/:id/comments/:commentId. The
// author or an admin may delete.
func (h *Handler) DeleteComment(c *gin.Context) {
	session, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}
	cm, err := h.repo.GetComment(c.Request.Context(), commentID)
	if err != nil || cm.SessionID != session.ID {
		response.NotFound(c, "comment not found")
		return
	}
	id, _ := access.IdentityFrom(c)
	if !id.IsAdmin() && cm.UserID != id.UserID {
		response.Forbidden(c, "only the author can delete this comment")
		return
	}
	if err := h.repo.DeleteComment(c.Request.Context(), commentID); err != nil {
		response.Internal(c, "failed to delete comment")
		return
	}
	response.NoContent(c)
}

// loadGuarded parses :id, loads the session and runs the membership gate.
func (h *Handler) loadGuarded(c *gin.Context) (*models.Session, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return nil, false
	}
	session, err := h.repo.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		response.NotFound(c, "session not found")
		return nil, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, session.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return nil, false
	}
	return session, true
}

// horseInOrg verifies the horse exists and belongs to orgID. Writes the
// error response and returns false otherwise.
func (h *Handler) horseInOrg(c *gin.Context, horseID, orgID uuid.UUID) bool {
	horse, err := h.horseRepo.GetByID(c.Request.Context(), horseID)
	if err != nil {
		response.NotFound(c, "horse not found")
		return false
	}
	if horse.OrganizationID != orgID {
		response.BadRequest(c, "horse belongs to a different organization")
		return false
	}
	return true
}

// trackUsable verifies the track is global or owned by orgID.
func (h *Handler) trackUsable(c *gin.Context, trackID, orgID uuid.UUID) bool {
	track, err := h.trackRepo.GetByID(c.Request.Context(), trackID)
	if err != nil {
		response.NotFound(c, "track not found")
		return false
	}
	if track.Scope == models.TrackLocal && (track.OrganizationID == nil || *track.OrganizationID != orgID) {
		response.BadRequest(c, "track belongs to a different organization")
		return false
	}
	return true
}
