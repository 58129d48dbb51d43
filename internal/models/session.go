package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// InjuryRisk is the categorical risk label attached to a session.
type InjuryRisk string

const (
	RiskLow      InjuryRisk = "low"
	RiskMedium   InjuryRisk = "medium"
	RiskHigh     InjuryRisk = "high"
	RiskCritical InjuryRisk = "critical"
)

// ValidInjuryRisk reports whether s is a known risk label.
func ValidInjuryRisk(s string) bool {
	switch InjuryRisk(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Session is one training session. Sessions arrive from devices and may be
// unassigned (nil horse) until a member links them; the owning organization
// is always known (resolved from the ingest API key or the horse).
type Session struct {
	ID              uuid.UUID       `json:"id"`
	OrganizationID  uuid.UUID       `json:"organization_id"`
	HorseID         *uuid.UUID      `json:"horse_id,omitempty"`
	TrackID         *uuid.UUID      `json:"track_id,omitempty"`
	DeviceSerial    string          `json:"device_serial,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	DurationSeconds int             `json:"duration_seconds"`
	DistanceMeters  float64         `json:"distance_meters"`
	PerformanceData json.RawMessage `json:"performance_data,omitempty"`
	InjuryRisk      InjuryRisk      `json:"injury_risk"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PerformanceData is the decoded shape of Session.PerformanceData: parallel
// per-sectional time series captured by the tracking device.
type PerformanceData struct {
	SectionalMeters int       `json:"sectional_meters"` // distance per sectional, usually 200
	SpeedsKmh       []float64 `json:"speeds_kmh"`
	StrideLengthsM  []float64 `json:"stride_lengths_m"`
	HeartRatesBpm   []int     `json:"heart_rates_bpm"`
	RecoveryHrBpm   int       `json:"recovery_hr_bpm,omitempty"` // heart rate ~2min after pull-up
}

// SessionComment is a free-text comment on a session. Create/delete only.
type SessionComment struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
