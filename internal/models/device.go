package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceStatus is a tracking device's operational state.
type DeviceStatus string

const (
	DeviceActive   DeviceStatus = "active"
	DeviceInactive DeviceStatus = "inactive"
)

// Device is a wearable tracking device owned by an organization and
// optionally strapped to one horse.
type Device struct {
	ID             uuid.UUID    `json:"id"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	Name           string       `json:"name"`
	Serial         string       `json:"serial"`
	Status         DeviceStatus `json:"status"`
	HorseID        *uuid.UUID   `json:"horse_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
