package identity

// Role is the privilege tier stored on an Account.
type Role string

const (
	// RolePending is assigned at sign-up, before an admin reviews the account
	RolePending Role = "pending"
	// RoleApproved is a reviewed member (may create and join fasts)
	RoleApproved Role = "approved"
	// RoleAdmin may review, approve, and reject accounts
	RoleAdmin Role = "admin"
	// RoleSuperAdmin may additionally grant admin and super_admin
	RoleSuperAdmin Role = "super_admin"
)

// roleRanks is the total order behind every minimum-role check.
var roleRanks = map[Role]int{
	RolePending:    0,
	RoleApproved:   1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// rank returns the privilege rank. Unrecognized roles rank as pending: they
// satisfy the pending floor and nothing above it.
func (r Role) rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return roleRanks[RolePending]
}

// AtLeast checks if this role meets the minimum required level. An
// unrecognized minimum always fails.
func (r Role) AtLeast(min Role) bool {
	minRank, ok := roleRanks[min]
	if !ok {
		return false
	}
	return r.rank() >= minRank
}

// OneOf checks exact membership against an allowed set.
func (r Role) OneOf(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// CanCreateFast checks if this role may create group fasts
func (r Role) CanCreateFast() bool {
	return r.AtLeast(RoleApproved)
}

// CanModerateChat checks if this role may moderate fast chat rooms
func (r Role) CanModerateChat() bool {
	return r.AtLeast(RoleAdmin)
}

// CanManageUsers checks if this role may list, approve, and reject accounts
func (r Role) CanManageUsers() bool {
	return r.AtLeast(RoleAdmin)
}

// CanPromoteToAdmin checks if this role may grant admin or super_admin
func (r Role) CanPromoteToAdmin() bool {
	return r.AtLeast(RoleSuperAdmin)
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{
		RolePending,
		RoleApproved,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// NormalizeRole coerces an arbitrary role string to a valid role, falling
// back to pending for unrecognized values. Reads only: writes reject invalid
// roles instead of coercing them.
func NormalizeRole(roleStr string) Role {
	if role, ok := ParseRole(roleStr); ok {
		return role
	}
	return RolePending
}
