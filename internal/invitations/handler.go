package invitations

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/organizations"
	"github.com/equitrack/backend/pkg/response"
)

// TTL is how long an invitation stays acceptable.
const TTL = 7 * 24 * time.Hour

// Handler handles invitation HTTP endpoints.
type Handler struct {
	repo    *Repository
	orgRepo *organizations.Repository
	guard   *access.Guard
}

// NewHandler creates an invitations handler.
func NewHandler(repo *Repository, orgRepo *organizations.Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, orgRepo: orgRepo, guard: guard}
}

// CreateRequest is the body for POST /organizations/:id/invitations.
type CreateRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Create handles POST /organizations/:id/invitations. Owner or admin only.
func (h *Handler) Create(c *gin.Context) {
	org, id, ok := h.ownerGate(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	inv := &models.Invitation{
		OrganizationID: org.ID,
		Email:          strings.ToLower(req.Email),
		Token:          newToken(),
		Status:         models.InvitationPending,
		InvitedBy:      id.UserID,
		ExpiresAt:      time.Now().UTC().Add(TTL),
	}
	if err := h.repo.Create(c.Request.Context(), inv); err != nil {
		response.Internal(c, "failed to create invitation")
		return
	}
	// The token travels in the invitation email; this response is the
	// inviter's copy of it.
	response.Created(c, gin.H{"invitation": inv, "token": inv.Token})
}

// List handles GET /organizations/:id/invitations. Owner or admin only.
func (h *Handler) List(c *gin.Context) {
	org, _, ok := h.ownerGate(c)
	if !ok {
		return
	}
	invs, err := h.repo.ListByOrg(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to list invitations")
		return
	}
	response.OK(c, invs)
}

// Revoke handles POST /organizations/:id/invitations/:invitationId/revoke.
func (h *Handler) Revoke(c *gin.Context) {
	org, _, ok := h.ownerGate(c)
	if !ok {
		return
	}
	invID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}
	inv, err := h.repo.GetByID(c.Request.Context(), invID)
	if err != nil || inv.OrganizationID != org.ID {
		response.NotFound(c, "invitation not found")
		return
	}
	if err := h.repo.Revoke(c.Request.Context(), invID); err != nil {
		if err == pgx.ErrNoRows {
			response.Conflict(c, "invitation is not pending")
			return
		}
		response.Internal(c, "failed to revoke invitation")
		return
	}
	response.NoContent(c)
}

// Validate handles GET /invitations/:token. No authentication: the
// invited person checks the invitation before registering.
func (h *Handler) Validate(c *gin.Context) {
	inv, err := h.repo.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.NotFound(c, "invitation not found")
		return
	}
	valid := inv.Status == models.InvitationPending && inv.ExpiresAt.After(time.Now().UTC())
	org, err := h.orgRepo.GetByID(c.Request.Context(), inv.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	response.OK(c, gin.H{
		"valid":             valid,
		"organization_name": org.Name,
		"email":             inv.Email,
		"expires_at":        inv.ExpiresAt,
	})
}

// Accept handles POST /invitations/:token/accept. Requires authentication;
// the accepting account joins the organization.
func (h *Handler) Accept(c *gin.Context) {
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	inv, err := h.repo.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.NotFound(c, "invitation not found")
		return
	}
	if err := h.repo.Accept(c.Request.Context(), inv.ID, id.UserID); err != nil {
		if err == pgx.ErrNoRows {
			response.Conflict(c, "invitation expired or already used")
			return
		}
		response.Internal(c, "failed to accept invitation")
		return
	}
	response.OK(c, gin.H{"organization_id": inv.OrganizationID})
}

// ownerGate loads the organization and enforces the ownership gate.
func (h *Handler) ownerGate(c *gin.Context) (*models.Organization, access.Identity, bool) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return nil, access.Identity{}, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, access.Identity{}, false
	}
	org, err := h.orgRepo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return nil, access.Identity{}, false
	}
	if !h.guard.CanMutateOrganization(id, org.OwnerID) {
		response.Forbidden(c, "only the organization owner can manage invitations")
		return nil, access.Identity{}, false
	}
	return org, id, true
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
