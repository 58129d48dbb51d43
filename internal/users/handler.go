package users

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/pagination"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles admin user-management endpoints. All routes sit behind
// the admin-only gate.
type Handler struct {
	repo *Repository
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// UpdateRequest is the body for PATCH /users/:id.
type UpdateRequest struct {
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"`
	UserType *string `json:"user_type" binding:"omitempty,oneof=standard veterinarian"`
	Status   *string `json:"status" binding:"omitempty,oneof=active suspended deactivated"`
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	page := pagination.FromQuery(c)
	status := c.Query("status")
	if status != "" {
		switch models.UserStatus(status) {
		case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusDeactivated:
		default:
			response.BadRequest(c, "invalid status filter")
			return
		}
	}
	list, err := h.repo.List(c.Request.Context(), status, c.Query("search"), page.Limit, page.Offset)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u)
}

// Update handles PATCH /users/:id (role, user type, status).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.Get(c.Request.Context(), id); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Role, req.UserType, req.Status); err != nil {
		response.Internal(c, "failed to update user")
		return
	}
	updated, _ := h.repo.Get(c.Request.Context(), id)
	response.OK(c, updated)
}

// Delete handles DELETE /users/:id. Hard delete; admins cannot delete themselves.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	caller, _ := access.IdentityFrom(c)
	if caller.UserID == id {
		response.BadRequest(c, "cannot delete your own account")
		return
	}
	if _, err := h.repo.Get(c.Request.Context(), id); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete user")
		return
	}
	response.NoContent(c)
}
