package care

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/access"
	"github.com/equitrack/backend/internal/horses"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/pagination"
	"github.com/equitrack/backend/pkg/response"
)

// Handler handles care task HTTP endpoints.
type Handler struct {
	repo      *Repository
	horseRepo *horses.Repository
	guard     *access.Guard
}

// NewHandler creates a care handler.
func NewHandler(repo *Repository, horseRepo *horses.Repository, guard *access.Guard) *Handler {
	return &Handler{repo: repo, horseRepo: horseRepo, guard: guard}
}

// CreateRequest is the body for POST /care-tasks.
type CreateRequest struct {
	HorseID  string `json:"horse_id" binding:"required,uuid"`
	TaskType string `json:"task_type" binding:"required,oneof=vaccination farrier dental deworming checkup"`
	DueDate  string `json:"due_date" binding:"required"` // YYYY-MM-DD
	Notes    string `json:"notes" binding:"omitempty,max=4000"`
}

// taskView is a care task with its due classification attached.
type taskView struct {
	models.CareTask
	DueStatus DueStatus `json:"due_status"`
}

// List handles GET /care-tasks. ?upcoming=true narrows to open tasks due
// within the upcoming window (overdue included).
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
	now := time.Now().UTC()
	if c.Query("upcoming") == "true" {
		f.OpenOnly = true
		cutoff := now.Add(UpcomingWindow)
		f.DueBefore = &cutoff
	}
	page := pagination.FromQuery(c)
	f.Limit, f.Offset = page.Limit, page.Offset

	tasks, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, "failed to list care tasks")
		return
	}
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, taskView{CareTask: tasks[i], DueStatus: StatusOf(&tasks[i], now)})
	}
	response.OK(c, views)
}

// Create handles POST /care-tasks.
func (h *Handler) Create(c *gin.Context) {
	id, _ := access.IdentityFrom(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		response.BadRequest(c, "invalid due_date, expected YYYY-MM-DD")
		return
	}
	horseID, _ := uuid.Parse(req.HorseID)
	horse, err := h.horseRepo.GetByID(c.Request.Context(), horseID)
	if err != nil {
		response.NotFound(c, "horse not found")
		return
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, horse.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return
	}
	t := &models.CareTask{
		OrganizationID: horse.OrganizationID,
		HorseID:        horseID,
		TaskType:       models.CareTaskType(req.TaskType),
		DueDate:        due,
		Notes:          req.Notes,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		response.Internal(c, "failed to create care task")
		return
	}
	response.Created(c, t)
}

// Complete handles POST /care-tasks/:id/complete.
func (h *Handler) Complete(c *gin.Context) {
	task, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if task.CompletedAt != nil {
		response.Conflict(c, "task already completed")
		return
	}
	if err := h.repo.Complete(c.Request.Context(), task.ID, time.Now().UTC()); err != nil {
		response.Internal(c, "failed to complete care task")
		return
	}
	updated, _ := h.repo.GetByID(c.Request.Context(), task.ID)
	response.OK(c, updated)
}

// Delete handles DELETE /care-tasks/:id.
func (h *Handler) Delete(c *gin.Context) {
	task, ok := h.loadGuarded(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), task.ID); err != nil {
		response.Internal(c, "failed to delete care task")
		return
	}
	response.NoContent(c)
}

func (h *Handler) loadGuarded(c *gin.Context) (*models.CareTask, bool) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid care task id")
		return nil, false
	}
	task, err := h.repo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		response.NotFound(c, "care task not found")
		return nil, false
	}
	id, ok := access.IdentityFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, false
	}
	if err := h.guard.RequireOrg(c.Request.Context(), id, task.OrganizationID); err != nil {
		response.Forbidden(c, "not authorized for this organization")
		return nil, false
	}
	return task, true
}
