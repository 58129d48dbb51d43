package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant: the ownership boundary for horses,
// local tracks, devices, and (transitively) sessions.
type Organization struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	ContactEmail         string    `json:"contact_email"`
	ContactPhone         string    `json:"contact_phone"`
	OwnerID              uuid.UUID `json:"owner_id"`
	NotifyInjuryAlerts   bool      `json:"notify_injury_alerts"`
	NotifySessionUploads bool      `json:"notify_session_uploads"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// OrganizationUser links a user to an organization. Presence in this
// relation is the sole authorization signal for non-admin access.
type OrganizationUser struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// InvitationStatus is the lifecycle of an organization invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation is an email invitation into an organization.
type Invitation struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Email          string           `json:"email"`
	Token          string           `json:"-"`
	Status         InvitationStatus `json:"status"`
	InvitedBy      uuid.UUID        `json:"invited_by"`
	ExpiresAt      time.Time        `json:"expires_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

// JoinRequestStatus is the lifecycle of an organization join request.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a user-initiated request to join an organization.
type JoinRequest struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	UserID         uuid.UUID         `json:"user_id"`
	Status         JoinRequestStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
