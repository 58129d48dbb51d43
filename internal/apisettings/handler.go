package apisettings

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles API key HTTP endpoints, nested under an organization.
type Handler struct {
	repo  *Repository
	guard *access.Guard
}

// NewHandler creates an API key handler.
func NewHandler(repo *Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, guard: guard}
}

// CreateRequest is the body for POST /organizations/:id/api-keys.
type CreateRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// createdKey is the one response that carries the plaintext key.
type createdKey struct {
	models.APIKey
	Key string `json:"key"`
}

// Create handles POST /organizations/:id/api-keys. The plaintext key is
// in this response only; it cannot be retrieved again.
func (h *Handler) Create(c *gin.Context) {
	orgID, id, ok := h.gate(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	plaintext, hash, prefix := GenerateKey()
	k := &models.APIKey{
		OrganizationID: orgID,
		Name:           req.Name,
		KeyHash:        hash,
		KeyPrefix:      prefix,
		CreatedBy:      id.UserID,
	}
	if err := h.repo.Create(c.Request.Context(), k); err != nil {
		response.Internal(c, "failed to create api key")
		return
	}
	response.Created(c, createdKey{APIKey: *k, Key: plaintext})
}

// List handles GET /organizations/:id/api-keys.
func (h *Handler) List(c *gin.Context) {
	orgID, _, ok := h.gate(c)
	if !ok {
		return
	}
	keys, err := h.repo.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to list api keys")
		return
	}
	response.OK(c, keys)
}

// Revoke handles POST /organizations/:id/api-keys/:keyId/revoke.
func (h *Handler) Revoke(c *gin.Context) {
	orgID, _, ok := h.gate(c)
	if !ok {
		return
	}
	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		response.BadRequest(c, "invalid api key id")
		return
	}
	k, err := h.repo.GetByID(c.Request.Context(), keyID)
	if err != nil || k.OrganizationID != orgID {
		response.NotFound(c, "api key not found")
		return
	}
	if k.Revoked() {
		response.Conflict(c, "api key already revoked")
		return
	}
	if err := h.repo.Revoke(c.Request.Context(), keyID, time.Now().UTC()); err != nil {
		response.Internal(c, "failed to revoke api key")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), keyID)
	response.OK(c, updated)
}

// gate parses the organization path param and runs the membership gate.
func (h *Handler) gate(c *gin.Context) (uuid.UUID, access.Identity, bool) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return uuid.Nil, access.Identity{}, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return uuid.Nil, access.Identity{}, false
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return uuid.Nil, access.Identity{}, false
	}
	return orgID, id, true
}
