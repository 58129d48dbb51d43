package models

import (
	"time"

	"github.com/google/uuid"
)

// InjuryStatus is an injury record's workflow state.
type InjuryStatus string

const (
	InjuryFlagged   InjuryStatus = "flagged"
	InjuryDismissed InjuryStatus = "dismissed"
	InjuryDiagnosed InjuryStatus = "diagnosed"
)

// ValidInjuryStatus reports whether s is a known injury status.
func ValidInjuryStatus(s string) bool {
	switch InjuryStatus(s) {
	case InjuryFlagged, InjuryDismissed, InjuryDiagnosed:
		return true
	}
	return false
}

// InjuryRecord is raised (usually by the risk worker) against a session.
// Diagnosis fields are only set through the veterinarian workflow.
type InjuryRecord struct {
	ID               uuid.UUID    `json:"id"`
	SessionID        uuid.UUID    `json:"session_id"`
	OrganizationID   uuid.UUID    `json:"organization_id"`
	HorseID          *uuid.UUID   `json:"horse_id,omitempty"`
	Status           InjuryStatus `json:"status"`
	RiskLevel        InjuryRisk   `json:"risk_level"`
	Notes            string       `json:"notes,omitempty"`
	MedicalDiagnosis string       `json:"medical_diagnosis,omitempty"`
	DiagnosedBy      *uuid.UUID   `json:"diagnosed_by,omitempty"`
	DiagnosedAt      *time.Time   `json:"diagnosed_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
