package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HorseStatus is a horse's lifecycle state.
type HorseStatus string

const (
	HorseActive   HorseStatus = "active"
	HorseInjured  HorseStatus = "injured"
	HorseRetired  HorseStatus = "retired"
	HorseInactive HorseStatus = "inactive"
)

// Horse belongs to exactly one organization; the organization is fixed at
// creation and no update path changes it.
//
// HealthRecords is an opaque JSON document (owner, rider, vaccinations,
// conditions, ...) maintained by the client; it is stored and returned
// byte-for-byte with no normalization.
type Horse struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Name           string          `json:"name"`
	Breed          string          `json:"breed"`
	Gender         string          `json:"gender"`
	DateOfBirth    *time.Time      `json:"date_of_birth,omitempty"`
	Status         HorseStatus     `json:"status"`
	DeviceID       *uuid.UUID      `json:"device_id,omitempty"`
	HealthRecords  json.RawMessage `json:"health_records,omitempty"`
	PhotoURL       string          `json:"photo_url,omitempty"`
	PhotoKey       string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ValidHorseStatus reports whether s is a known horse status.
func ValidHorseStatus(s string) bool {
	switch HorseStatus(s) {
	case HorseActive, HorseInjured, HorseRetired, HorseInactive:
		return true
	}
	return false
}

// HorseFavorite marks a horse as a favorite of a user.
type HorseFavorite struct {
	UserID    uuid.UUID `json:"user_id"`
	HorseID   uuid.UUID `json:"horse_id"`
	CreatedAt time.Time `json:"created_at"`
}
