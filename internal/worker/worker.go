package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/equitrack/backend/internal/injuries"
	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/internal/realtime"
	"github.com/equitrack/backend/internal/risk"
	"github.com/equitrack/backend/internal/sessions"
	"github.com/equitrack/backend/pkg/queue"
)

// RiskProcessor processes risk analysis jobs: score the session's
// performance data, store the risk label, raise an injury record for
// high and critical outcomes.
type RiskProcessor struct {
	sessionRepo *sessions.Repository
	injuryRepo  *injuries.Repository
	queue       *queue.Queue
	hub         *realtime.Hub
	logger      *zap.Logger
}

// NewRiskProcessor creates a risk analysis processor. Hub may be nil.
func NewRiskProcessor(sessionRepo *sessions.Repository, injuryRepo *injuries.Repository, q *queue.Queue, hub *realtime.Hub, logger *zap.Logger) *RiskProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskProcessor{sessionRepo: sessionRepo, injuryRepo: injuryRepo, queue: q, hub: hub, logger: logger}
}

// Process executes one risk analysis job.
func (p *RiskProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeRiskAnalysis {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.RiskAnalysisPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	session, err := p.sessionRepo.GetByID(ctx, payload.SessionID)
	if err != nil {
		return fmt.Errorf("session not found: %s", payload.SessionID)
	}

	result, err := risk.Analyze(session.PerformanceData)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := p.sessionRepo.UpdateInjuryRisk(ctx, session.ID, result.Risk); err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	if p.hub != nil {
		p.hub.Publish(session.OrganizationID, realtime.EventRiskUpdated, map[string]any{
			"session_id": session.ID,
			"horse_id":   session.HorseID,
			"risk":       result.Risk,
		})
	}

	if result.Risk == models.RiskHigh || result.Risk == models.RiskCritical {
		rec := &models.InjuryRecord{
			SessionID:      session.ID,
			OrganizationID: session.OrganizationID,
			HorseID:        session.HorseID,
			Status:         models.InjuryFlagged,
			RiskLevel:      result.Risk,
			Notes:          notesFor(result.Findings),
		}
		if err := p.injuryRepo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create injury record: %w", err)
		}
		if p.hub != nil {
			p.hub.Publish(session.OrganizationID, realtime.EventInjuryFlagged, map[string]any{
				"injury_id":  rec.ID,
				"session_id": session.ID,
				"horse_id":   session.HorseID,
				"risk":       result.Risk,
			})
		}
	}

	p.logger.Info("session analyzed",
		zap.String("session_id", session.ID.String()),
		zap.String("risk", string(result.Risk)))
	return nil
}

func notesFor(findings []risk.Finding) string {
	msg := "Automatic flag from session analysis:"
	for _, f := range findings {
		switch f {
		case risk.FindingSpeedDrop:
			msg += " late-session speed drop;"
		case risk.FindingStrideCollapse:
			msg += " stride length collapse;"
		case risk.FindingPoorRecovery:
			msg += " poor heart rate recovery;"
		}
	}
	return msg
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *RiskProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("risk worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
