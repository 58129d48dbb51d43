package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authenticates device session ingestion for one organization.
// Only the SHA-256 hash of the key material is stored; the plaintext is
// returned exactly once at creation.
type APIKey struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	KeyHash        string     `json:"-"`
	KeyPrefix      string     `json:"key_prefix"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Revoked reports whether the key has been revoked.
func (k *APIKey) Revoked() bool { return k.RevokedAt != nil }
