// Package access implements organization-scoped authorization: membership
// resolution and the gates every data-access endpoint runs before touching
// the store.
package access

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/equitrack/backend/internal/middleware"
	"github.com/equitrack/backend/internal/models"
)

// ErrForbidden is returned when a gate rejects the caller. Handlers map it
// to a 403 response; no store mutation happens after a failed gate.
var ErrForbidden = errors.New("forbidden")

// MembershipSource resolves organization membership for a user. Unknown
// users yield an empty set, not an error.
type MembershipSource interface {
	// OrganizationIDs returns the organizations the user belongs to, in
	// membership insertion order.
	OrganizationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// IsMember reports whether the user belongs to the organization.
	IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
}

// Identity is the authenticated caller as resolved by the JWT middleware.
type Identity struct {
	UserID   uuid.UUID
	Role     models.Role
	UserType models.UserType
}

// IsAdmin reports whether the caller has the platform admin role.
func (id Identity) IsAdmin() bool { return id.Role == models.RoleAdmin }

// IsVeterinarian reports whether the caller is a veterinarian or admin.
func (id Identity) IsVeterinarian() bool {
	return id.IsAdmin() || id.UserType == models.UserTypeVeterinarian
}

// IdentityFrom reads the caller identity from the gin context. The second
// return is false when the JWT middleware did not run.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	idVal, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return Identity{}, false
	}
	userID, ok := idVal.(uuid.UUID)
	if !ok {
		return Identity{}, false
	}
	roleVal, _ := c.Get(middleware.ContextUserRole)
	role, _ := roleVal.(string)
	typeVal, _ := c.Get(middleware.ContextUserType)
	userType, _ := typeVal.(string)
	return Identity{
		UserID:   userID,
		Role:     models.Role(role),
		UserType: models.UserType(userType),
	}, true
}

// Guard evaluates authorization gates against a membership source.
type Guard struct {
	members MembershipSource
}

// NewGuard creates a guard over the given membership source.
func NewGuard(members MembershipSource) *Guard {
	return &Guard{members: members}
}

// CanAccessOrg reports whether the caller may read or write entities scoped
// to the organization: admins always, others only with membership.
func (g *Guard) CanAccessOrg(ctx context.Context, id Identity, orgID uuid.UUID) (bool, error) {
	if id.IsAdmin() {
		return true, nil
	}
	return g.members.IsMember(ctx, orgID, id.UserID)
}

// RequireOrg is CanAccessOrg returning ErrForbidden on rejection, for use
// as a pre-mutation gate.
func (g *Guard) RequireOrg(ctx context.Context, id Identity, orgID uuid.UUID) error {
	ok, err := g.CanAccessOrg(ctx, id, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// AccessibleOrgs resolves the organization filter for list endpoints.
//
// With a requested organization the caller must pass the membership gate
// and the result is exactly that organization. Without one, admins get nil
// (no filter: all organizations) and other callers get the full set of
// their memberships, never an arbitrary "first" organization. An
// empty non-nil result means the caller has no accessible organizations
// and lists must come back empty.
func (g *Guard) AccessibleOrgs(ctx context.Context, id Identity, requested *uuid.UUID) ([]uuid.UUID, error) {
	if requested != nil {
		if err := g.RequireOrg(ctx, id, *requested); err != nil {
			return nil, err
		}
		return []uuid.UUID{*requested}, nil
	}
	if id.IsAdmin() {
		return nil, nil
	}
	orgs, err := g.members.OrganizationIDs(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if orgs == nil {
		orgs = []uuid.UUID{}
	}
	return orgs, nil
}

// CanMutateOrganization is the ownership gate for organization mutation:
// admin or the organization's owner.
func (g *Guard) CanMutateOrganization(id Identity, ownerID uuid.UUID) bool {
	return id.IsAdmin() || id.UserID == ownerID
}

// CanMutateTrack is the resource-scope gate for track mutation: global
// tracks require admin; local tracks require membership in the owning
// organization.
func (g *Guard) CanMutateTrack(ctx context.Context, id Identity, scope models.TrackScope, orgID *uuid.UUID) (bool, error) {
	if scope == models.TrackGlobal {
		return id.IsAdmin(), nil
	}
	if orgID == nil {
		return false, nil
	}
	return g.CanAccessOrg(ctx, id, *orgID)
}
