package domain

// Permission names a UI action gated by an explicit role allow-list.
type Permission string

const (
	PermViewContent    Permission = "content:view"
	PermCreateContent  Permission = "content:create"
	PermPublishContent Permission = "content:publish"
	PermEditContent    Permission = "content:edit"
	PermDeleteContent  Permission = "content:delete"
)

// There is no role hierarchy: an Admin is not implied to hold SuperAdmin
// permissions, each action lists its roles.
var permissionRoles = map[Permission]RoleSet{
	PermViewContent:    0,
	PermCreateContent:  Roles(RoleAdmin, RoleSuperAdmin),
	PermPublishContent: Roles(RoleAdmin, RoleSuperAdmin),
	PermEditContent:    Roles(RoleSuperAdmin),
	PermDeleteContent:  Roles(RoleSuperAdmin),
}

// RequiredRoles returns the allow-list for p. Unknown permissions return an
// empty set, which only requires authentication.
func (p Permission) RequiredRoles() RoleSet {
	return permissionRoles[p]
}

// Grants reports whether role may perform p. Authentication is checked by
// the caller.
func (p Permission) Grants(role Role) bool {
	required := p.RequiredRoles()
	return required.Empty() || required.Contains(role)
}
