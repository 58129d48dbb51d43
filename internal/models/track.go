package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackScope distinguishes platform-wide tracks from organization-owned ones.
type TrackScope string

const (
	TrackGlobal TrackScope = "global"
	TrackLocal  TrackScope = "local"
)

// Track is a training or racing track. Global tracks are admin-managed and
// visible to everyone; local tracks belong to one organization
// (OrganizationID is nil iff scope is global).
type Track struct {
	ID             uuid.UUID  `json:"id"`
	Scope          TrackScope `json:"scope"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Name           string     `json:"name"`
	Surface        string     `json:"surface"`
	LengthMeters   float64    `json:"length_meters"`
	Location       string     `json:"location"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
