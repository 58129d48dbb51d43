package dashboard

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles the organization dashboard endpoint.
type Handler struct {
	repo  *Repository
	guard *access.Guard
}

// NewHandler creates a dashboard handler.
func NewHandler(repo *Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, guard: guard}
}

// Summary handles GET /organizations/:id/dashboard.
func (h *Handler) Summary(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, orgID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	summary, err := h.repo.Summarize(c.Request.Context(), orgID, time.Now().UTC())
	if err != nil {
		response.Internal(c, "failed to compute dashboard")
		return
	}
	response.OK(c, summary)
}
