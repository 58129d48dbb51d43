package organizations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo  *Repository
	guard *access.Guard
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, guard: guard}
}

// CreateRequest is the body for POST /organizations.
type CreateRequest struct {
	Name                 string `json:"name" binding:"required"`
	ContactEmail         string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone         string `json:"contact_phone"`
	NotifyInjuryAlerts   *bool  `json:"notify_injury_alerts"`
	NotifySessionUploads *bool  `json:"notify_session_uploads"`
}

// UpdateRequest is the body for PATCH /organizations/:id.
type UpdateRequest struct {
	Name                 *string `json:"name"`
	ContactEmail         *string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone         *string `json:"contact_phone"`
	NotifyInjuryAlerts   *bool   `json:"notify_injury_alerts"`
	NotifySessionUploads *bool   `json:"notify_session_uploads"`
}

// Create handles POST /organizations. The caller becomes owner and first member.
func (h *Handler) Create(c *gin.Context) {
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 1 || len(req.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	org := &models.Organization{
		Name:               req.Name,
		ContactEmail:       req.ContactEmail,
		ContactPhone:       req.ContactPhone,
		OwnerID:            id.UserID,
		NotifyInjuryAlerts: true,
	}
	if req.NotifyInjuryAlerts != nil {
		org.NotifyInjuryAlerts = *req.NotifyInjuryAlerts
	}
	if req.NotifySessionUploads != nil {
		org.NotifySessionUploads = *req.NotifySessionUploads
	}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// ListMine handles GET /organizations. Returns orgs the caller is a member of.
func (h *Handler) ListMine(c *gin.Context) {
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	orgs, err := h.repo.ListForUser(c.Request.Context(), id.UserID)
	if err != nil {
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, orgs)
}

// Get handles GET /organizations/:id. Requires membership or admin.
func (h *Handler) Get(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, _ := access.IdentityFrom(c)
	if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// Update handles PATCH /organizations/:id. Owner or admin only.
func (h *Handler) Update(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, _ := access.IdentityFrom(c)
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	if !h.guard.CanMutateOrganization(id, org.OwnerID) {
		response.Forbidden(c, "only the owner can update this organization")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), orgID, req.Name, req.ContactEmail, req.ContactPhone,
		req.NotifyInjuryAlerts, req.NotifySessionUploads); err != nil {
		response.Internal(c, "failed to update organization")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), orgID)
	response.OK(c, updated)
}

// Delete handles DELETE /organizations/:id. Owner or admin only. Owned
// entities cascade through foreign keys.
func (h *Handler) Delete(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, _ := access.IdentityFrom(c)
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	if !h.guard.CanMutateOrganization(id, org.OwnerID) {
		response.Forbidden(c, "only the owner can delete this organization")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), orgID); err != nil {
		response.Internal(c, "failed to delete organization")
		return
	}
	response.NoContent(c)
}

// ListMembers handles GET /organizations/:id/members. Requires membership.
func (h *Handler) ListMembers(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, _ := access.IdentityFrom(c)
	if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}

// RemoveMember handles DELETE /organizations/:id/members/:userId. Owner or admin.
func (h *Handler) RemoveMember(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	id, _ := access.IdentityFrom(c)
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	if !h.guard.CanMutateOrganization(id, org.OwnerID) {
		response.Forbidden(c, "only the owner can remove members")
		return
	}
	if memberID == org.OwnerID {
		response.BadRequest(c, "cannot remove the organization owner")
		return
	}
	if err := h.repo.RemoveMember(c.Request.Context(), orgID, memberID); err != nil {
		response.Internal(c, "failed to remove member")
		return
	}
	response.NoContent(c)
}

// RequestJoin handles POST /organizations/:id/join-requests.
func (h *Handler) RequestJoin(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, _ := access.IdentityFrom(c)
	if _, err := h.repo.GetByID(c.Request.Context(), orgID); err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	member, err := h.repo.IsMember(c.Request.Context(), orgID, id.UserID)
	if err != nil {
		response.Internal(c, "failed to check membership")
		return
	}
	if member {
		response.Conflict(c, "already a member of this organization")
		return
	}
	jr, err := h.repo.CreateJoinRequest(c.Request.Context(), orgID, id.UserID)
	if err != nil {
		response.Internal(c, "failed to create join request")
		return
	}
	response.Created(c, jr)
}

// ListJoinRequests handles GET /organizations/:id/join-requests. Owner or admin.
func (h *Handler) ListJoinRequests(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, _ := access.IdentityFrom(c)
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	if !h.guard.CanMutateOrganization(id, org.OwnerID) {
		response.Forbidden(c, "only the owner can review join requests")
		return
	}
	status := c.Query("status")
	list, err := h.repo.ListJoinRequests(c.Request.Context(), orgID, status)
	if err != nil {
		response.Internal(c, "failed to load join requests")
		return
	}
	response.OK(c, list)
}

// ResolveJoinRequest handles POST /organizations/:id/join-requests/:requestId/:action
// with action "approve" or "reject". Owner or admin.
func (h *Handler) ResolveJoinRequest(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	action := c.Param("action")
	if action != "approve" && action != "reject" {
		response.BadRequest(c, "action must be approve or reject")
		return
	}
	id, _ := access.IdentityFrom(c)
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	if !h.guard.CanMutateOrganization(id, org.OwnerID) {
		response.Forbidden(c, "only the owner can review join requests")
		return
	}
	jr, err := h.repo.GetJoinRequest(c.Request.Context(), requestID)
	if err != nil || jr.OrganizationID != orgID {
		response.NotFound(c, "join request not found")
		return
	}
	if err := h.repo.ResolveJoinRequest(c.Request.Context(), requestID, action == "approve"); err != nil {
		if err == pgx.ErrNoRows {
			response.Conflict(c, "join request already resolved")
			return
		}
		response.Internal(c, "failed to resolve join request")
		return
	}
	resolved, _ := h.repo.GetJoinRequest(c.Request.Context(), requestID)
	response.OK(c, resolved)
}
