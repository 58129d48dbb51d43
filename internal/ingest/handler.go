// Package ingest receives training sessions uploaded by tracking devices.
// Authentication is by organization API key, not user JWT: devices are not
// users.
package ingest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equitrack/backend/internal/apisettings"
	"github.com/equitrack/backend/internal/devices"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/realtime"
	"github.com/equitrack/backend/internal/sessions"
	"github.com/equitrack/backend/pkg/queue"
	"github.com/equitrack/backend/pkg/response"
)

// HeaderAPIKey carries the organization ingest key.
const HeaderAPIKey = "X-API-Key"

const contextAPIKey = "ingest_api_key"

// Handler handles device session ingestion.
type Handler struct {
	keyRepo     *apisettings.Repository
	deviceRepo  *devices.Repository
	sessionRepo *sessions.Repository
	queue       *queue.Queue
	hub         *realtime.Hub
	maxBody     int64
	logger      *zap.Logger
}

// NewHandler creates an ingest handler. Queue and hub may be nil; ingestion
// then still stores the session but skips analysis and live events.
func NewHandler(keyRepo *apisettings.Repository, deviceRepo *devices.Repository,
	sessionRepo *sessions.Repository, q *queue.Queue, hub *realtime.Hub,
	maxBody int64, logger *zap.Logger) *Handler {
	return &Handler{
		keyRepo:     keyRepo,
		deviceRepo:  deviceRepo,
		sessionRepo: sessionRepo,
		queue:       q,
		hub:         hub,
		maxBody:     maxBody,
		logger:      logger,
	}
}

// Authenticate is the API key middleware for the ingest routes.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderAPIKey)
		if raw == "" {
			response.Unauthorized(c, "missing api key")
			c.Abort()
			return
		}
		key, err := h.keyRepo.GetByHash(c.Request.Context(), apisettings.HashKey(raw))
		if err != nil || key.Revoked() {
			response.Unauthorized(c, "invalid api key")
			c.Abort()
			return
		}
		_ = h.keyRepo.TouchLastUsed(c.Request.Context(), key.ID)
		c.Set(contextAPIKey, key)
		c.Next()
	}
}

// SessionRequest is the device upload payload.
type SessionRequest struct {
	DeviceSerial    string          `json:"device_serial" binding:"required,max=100"`
	StartedAt       string          `json:"started_at" binding:"required"`
	DurationSeconds int             `json:"duration_seconds" binding:"omitempty,min=0"`
	DistanceMeters  float64         `json:"distance_meters" binding:"omitempty,min=0"`
	PerformanceData json.RawMessage `json:"performance_data"`
}

// CreateSession handles POST /ingest/sessions. The session lands in the
// key's organization; the horse link resolves from the device's current
// assignment and may be absent.
func (h *Handler) CreateSession(c *gin.Context) {
	keyVal, _ := c.Get(contextAPIKey)
	key, ok := keyVal.(*models.APIKey)
	if !ok {
		response.Unauthorized(c, "missing api key context")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	startedAt, err := time.Parse(time.RFC3339, req.StartedAt)
	if err != nil {
		response.BadRequest(c, "invalid started_at")
		return
	}
	perf, err := normalizePerformance(req.PerformanceData)
	if err != nil {
		response.BadRequest(c, "invalid performance_data")
		return
	}

	s := &models.Session{
		OrganizationID:  key.OrganizationID,
		DeviceSerial:    req.DeviceSerial,
		StartedAt:       startedAt,
		DurationSeconds: req.DurationSeconds,
		DistanceMeters:  req.DistanceMeters,
		PerformanceData: perf,
		InjuryRisk:      models.RiskLow,
	}
	// Serial match outside the key's organization is ignored: one tenant's
	// key never attaches another tenant's horse.
	device, err := h.deviceRepo.GetBySerial(c.Request.Context(), req.DeviceSerial)
	if err == nil && device.OrganizationID == key.OrganizationID && device.HorseID != nil {
		s.HorseID = device.HorseID
	}

	if err := h.sessionRepo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to store session")
		return
	}

	if h.queue != nil && len(s.PerformanceData) > 0 {
		err := h.queue.EnqueueRiskAnalysis(c.Request.Context(), queue.RiskAnalysisPayload{
			SessionID:      s.ID,
			OrganizationID: s.OrganizationID,
		})
		if err != nil {
			// The session is stored; analysis can be re-run later.
			h.logger.Warn("failed to enqueue risk analysis",
				zap.String("session_id", s.ID.String()), zap.Error(err))
		}
	}
	if h.hub != nil {
		h.hub.Publish(s.OrganizationID, realtime.EventSessionIngested, gin.H{
			"session_id":    s.ID,
			"horse_id":      s.HorseID,
			"device_serial": s.DeviceSerial,
			"started_at":    s.StartedAt,
		})
	}
	response.Created(c, s)
}
