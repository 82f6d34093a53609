package authz

// RoleName is a recognized capability label. The set of roles is fixed;
// rows in the roles table are seeded from this enumeration at bootstrap.
type RoleName string

const (
	RoleSuperAdmin  RoleName = "super-admin"
	RoleAdmin       RoleName = "admin"
	RoleJuniorAdmin RoleName = "junior-admin"
	RoleModerator   RoleName = "moderator"
	RoleCustomer    RoleName = "customer"
)

// roleDisplay maps each role name to its human-readable label.
// parseDisplay is the reverse index so both directions are O(1).
var roleDisplay = map[RoleName]string{
	RoleSuperAdmin:  "Super Admin",
	RoleAdmin:       "Admin",
	RoleJuniorAdmin: "Junior Admin",
	RoleModerator:   "Moderator",
	RoleCustomer:    "Customer",
}

var parseDisplay = func() map[string]RoleName {
	m := make(map[string]RoleName, len(roleDisplay))
	for name, display := range roleDisplay {
		m[display] = name
	}
	return m
}()

// Display returns the human-readable label for the role,
// or the raw name if the role is not part of the enumeration.
func (r RoleName) Display() string {
	if display, ok := roleDisplay[r]; ok {
		return display
	}
	return string(r)
}

// Valid reports whether r is one of the recognized roles.
func (r RoleName) Valid() bool {
	_, ok := roleDisplay[r]
	return ok
}

// ParseRoleName resolves a role name string (e.g. "moderator").
func ParseRoleName(s string) (RoleName, bool) {
	r := RoleName(s)
	return r, r.Valid()
}

// RoleNameByDisplay resolves a display label (e.g. "Junior Admin").
func RoleNameByDisplay(display string) (RoleName, bool) {
	r, ok := parseDisplay[display]
	return r, ok
}

// AllRoleNames returns every recognized role, most privileged first.
func AllRoleNames() []RoleName {
	return []RoleName{RoleSuperAdmin, RoleAdmin, RoleJuniorAdmin, RoleModerator, RoleCustomer}
}

// AdminRoleNames returns every role that grants access to the cpanel,
// i.e. all roles except customer.
func AdminRoleNames() []RoleName {
	return []RoleName{RoleSuperAdmin, RoleAdmin, RoleJuniorAdmin, RoleModerator}
}
