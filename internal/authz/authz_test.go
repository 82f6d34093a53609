package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_AnyMatchingRoleAdmits(t *testing.T) {
	policy := MustPolicy(RoleAdmin, RoleModerator)

	moderator := &Principal{ID: 1, Roles: []RoleName{RoleModerator}}
	assert.Equal(t, Admit, Decide(moderator, policy),
		"one matching role out of the required set should admit")

	customer := &Principal{ID: 2, Roles: []RoleName{RoleCustomer}}
	assert.Equal(t, DenyForbidden, Decide(customer, policy),
		"a principal with no matching role should be forbidden")
}

func TestDecide_UnauthenticatedTakesPrecedence(t *testing.T) {
	policy := MustPolicy(RoleAdmin)

	// No principal at all: must never surface as forbidden.
	assert.Equal(t, DenyUnauthenticated, Decide(nil, policy))
}

func TestDecide_MultipleRolesOnPrincipal(t *testing.T) {
	policy := MustPolicy(RoleSuperAdmin)

	principal := &Principal{ID: 3, Roles: []RoleName{RoleCustomer, RoleSuperAdmin}}
	assert.Equal(t, Admit, Decide(principal, policy))
}

func TestDecide_PrincipalWithNoRoles(t *testing.T) {
	policy := MustPolicy(RoleAdmin, RoleModerator)

	// Authenticated but holding zero roles: forbidden, not unauthenticated.
	principal := &Principal{ID: 4}
	assert.Equal(t, DenyForbidden, Decide(principal, policy))
}

func TestNewPolicy_RejectsEmptyRoleSet(t *testing.T) {
	_, err := NewPolicy()
	assert.ErrorIs(t, err, ErrEmptyPolicy)
}

func TestNewPolicy_RejectsUnknownRole(t *testing.T) {
	_, err := NewPolicy(RoleName("warehouse-clerk"))
	assert.Error(t, err)
}

func TestMustPolicy_PanicsOnEmptyRoleSet(t *testing.T) {
	assert.Panics(t, func() { MustPolicy() })
}

func TestDecideAuthenticated_SessionPresenceOnly(t *testing.T) {
	// The coarse gate ignores roles entirely.
	customer := &Principal{ID: 5, Roles: []RoleName{RoleCustomer}}
	assert.Equal(t, Admit, DecideAuthenticated(customer))

	noRoles := &Principal{ID: 6}
	assert.Equal(t, Admit, DecideAuthenticated(noRoles))

	assert.Equal(t, DenyUnauthenticated, DecideAuthenticated(nil))
}

func TestRoleName_DisplayLookupBothDirections(t *testing.T) {
	assert.Equal(t, "Junior Admin", RoleJuniorAdmin.Display())

	role, ok := RoleNameByDisplay("Junior Admin")
	require.True(t, ok)
	assert.Equal(t, RoleJuniorAdmin, role)

	_, ok = RoleNameByDisplay("Janitor")
	assert.False(t, ok)
}

func TestParseRoleName(t *testing.T) {
	role, ok := ParseRoleName("moderator")
	require.True(t, ok)
	assert.Equal(t, RoleModerator, role)

	_, ok = ParseRoleName("Moderator") // display value, not the slug name
	assert.False(t, ok)
}

func TestAdminRoleNames_ExcludesCustomer(t *testing.T) {
	for _, role := range AdminRoleNames() {
		assert.NotEqual(t, RoleCustomer, role)
	}
	assert.Len(t, AdminRoleNames(), len(AllRoleNames())-1)
}

func TestPrincipal_HasRole(t *testing.T) {
	principal := &Principal{ID: 7, Roles: []RoleName{RoleModerator}}
	assert.True(t, principal.HasRole(RoleModerator))
	assert.False(t, principal.HasRole(RoleAdmin))

	var nobody *Principal
	assert.False(t, nobody.HasRole(RoleAdmin))
}
