package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/backend/internal/models"
)

// fakeMembers is an in-memory MembershipSource.
type fakeMembers struct {
	orgs map[uuid.UUID][]uuid.UUID // userID -> org memberships in order
}

func (f *fakeMembers) OrganizationIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.orgs[userID], nil
}

func (f *fakeMembers) IsMember(_ context.Context, orgID, userID uuid.UUID) (bool, error) {
	for _, id := range f.orgs[userID] {
		if id == orgID {
			return true, nil
		}
	}
	return false, nil
}

func TestCanAccessOrg(t *testing.T) {
	member := uuid.New()
	stranger := uuid.New()
	org := uuid.New()
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{member: {org}}})

	ok, err := g.CanAccessOrg(context.Background(), Identity{UserID: member, Role: models.RoleUser}, org)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.CanAccessOrg(context.Background(), Identity{UserID: stranger, Role: models.RoleUser}, org)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanAccessOrgAdminBypassesMembership(t *testing.T) {
	admin := uuid.New()
	org := uuid.New()
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{}})

	ok, err := g.CanAccessOrg(context.Background(), Identity{UserID: admin, Role: models.RoleAdmin}, org)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRequireOrgReturnsForbidden(t *testing.T) {
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{}})
	err := g.RequireOrg(context.Background(), Identity{UserID: uuid.New(), Role: models.RoleUser}, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccessibleOrgsRequestedOrg(t *testing.T) {
	user := uuid.New()
	org := uuid.New()
	other := uuid.New()
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{user: {org}}})

	got, err := g.AccessibleOrgs(context.Background(), Identity{UserID: user, Role: models.RoleUser}, &org)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{org}, got)

	_, err = g.AccessibleOrgs(context.Background(), Identity{UserID: user, Role: models.RoleUser}, &other)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccessibleOrgsDefaultsToMembershipUnion(t *testing.T) {
	user := uuid.New()
	orgA := uuid.New()
	orgB := uuid.New()
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{user: {orgA, orgB}}})

	got, err := g.AccessibleOrgs(context.Background(), Identity{UserID: user, Role: models.RoleUser}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{orgA, orgB}, got)
}

func TestAccessibleOrgsAdminUnrestricted(t *testing.T) {
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{}})
	got, err := g.AccessibleOrgs(context.Background(), Identity{UserID: uuid.New(), Role: models.RoleAdmin}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccessibleOrgsNoMembershipsIsEmptyNotError(t *testing.T) {
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{}})
	got, err := g.AccessibleOrgs(context.Background(), Identity{UserID: uuid.New(), Role: models.RoleUser}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCanMutateOrganization(t *testing.T) {
	owner := uuid.New()
	g := NewGuard(&fakeMembers{})

	assert.True(t, g.CanMutateOrganization(Identity{UserID: owner, Role: models.RoleUser}, owner))
	assert.True(t, g.CanMutateOrganization(Identity{UserID: uuid.New(), Role: models.RoleAdmin}, owner))
	assert.False(t, g.CanMutateOrganization(Identity{UserID: uuid.New(), Role: models.RoleUser}, owner))
}

func TestCanMutateTrack(t *testing.T) {
	member := uuid.New()
	org := uuid.New()
	g := NewGuard(&fakeMembers{orgs: map[uuid.UUID][]uuid.UUID{member: {org}}})

	ok, err := g.CanMutateTrack(context.Background(), Identity{UserID: member, Role: models.RoleUser}, models.TrackGlobal, nil)
	require.NoError(t, err)
	assert.False(t, ok, "global tracks are admin-only")

	ok, err = g.CanMutateTrack(context.Background(), Identity{UserID: uuid.New(), Role: models.RoleAdmin}, models.TrackGlobal, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.CanMutateTrack(context.Background(), Identity{UserID: member, Role: models.RoleUser}, models.TrackLocal, &org)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.CanMutateTrack(context.Background(), Identity{UserID: uuid.New(), Role: models.RoleUser}, models.TrackLocal, &org)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsVeterinarian(t *testing.T) {
	assert.True(t, Identity{UserType: models.UserTypeVeterinarian}.IsVeterinarian())
	assert.True(t, Identity{Role: models.RoleAdmin}.IsVeterinarian())
	assert.False(t, Identity{Role: models.RoleUser, UserType: models.UserTypeStandard}.IsVeterinarian())
}
