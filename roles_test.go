package identity_test

import (
	"testing"

	identity "github.com/krwicher/wil-fasting-group"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     identity.Role
		min      identity.Role
		expected bool
	}{
		{identity.RolePending, identity.RolePending, true},
		{identity.RolePending, identity.RoleApproved, false},
		{identity.RoleApproved, identity.RolePending, true},
		{identity.RoleApproved, identity.RoleApproved, true},
		{identity.RoleApproved, identity.RoleAdmin, false},
		{identity.RoleAdmin, identity.RoleApproved, true},
		{identity.RoleAdmin, identity.RoleAdmin, true},
		{identity.RoleAdmin, identity.RoleSuperAdmin, false},
		{identity.RoleSuperAdmin, identity.RoleAdmin, true},
		{identity.RoleSuperAdmin, identity.RoleSuperAdmin, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.role.AtLeast(tt.min),
			"%s.AtLeast(%s)", tt.role, tt.min)
	}
}

func TestRoleAtLeastUnknownRole(t *testing.T) {
	unknown := identity.Role("moderator")

	assert.True(t, unknown.AtLeast(identity.RolePending),
		"unknown roles rank as pending")
	assert.False(t, unknown.AtLeast(identity.RoleApproved))
	assert.False(t, unknown.AtLeast(identity.RoleAdmin))
}

func TestRoleAtLeastUnknownMinimum(t *testing.T) {
	assert.False(t, identity.RoleSuperAdmin.AtLeast(identity.Role("owner")),
		"an unrecognized minimum never passes")
}

func TestRoleIsValid(t *testing.T) {
	for _, role := range identity.AllRoles() {
		assert.True(t, role.IsValid())
	}
	assert.False(t, identity.Role("moderator").IsValid())
	assert.False(t, identity.Role("").IsValid())
}

func TestParseRole(t *testing.T) {
	role, ok := identity.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, identity.RoleAdmin, role)

	_, ok = identity.ParseRole("ADMIN")
	assert.False(t, ok, "role values are case sensitive")

	_, ok = identity.ParseRole("moderator")
	assert.False(t, ok)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, identity.RoleApproved, identity.NormalizeRole("approved"))
	assert.Equal(t, identity.RolePending, identity.NormalizeRole("moderator"))
	assert.Equal(t, identity.RolePending, identity.NormalizeRole(""))
}

func TestRoleCapabilities(t *testing.T) {
	assert.False(t, identity.RolePending.CanCreateFast())
	assert.True(t, identity.RoleApproved.CanCreateFast())

	assert.False(t, identity.RoleApproved.CanManageUsers())
	assert.True(t, identity.RoleAdmin.CanManageUsers())
	assert.True(t, identity.RoleSuperAdmin.CanManageUsers())

	assert.False(t, identity.RoleAdmin.CanPromoteToAdmin())
	assert.True(t, identity.RoleSuperAdmin.CanPromoteToAdmin())
}

func TestRoleOneOf(t *testing.T) {
	assert.True(t, identity.RoleAdmin.OneOf(identity.RoleAdmin, identity.RoleSuperAdmin))
	assert.False(t, identity.RoleApproved.OneOf(identity.RoleAdmin, identity.RoleSuperAdmin))
}
