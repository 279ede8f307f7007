package permissions

// Role is a member's role within one organization. Roles form a superset
// chain: owner ⊇ admin ⊇ member ⊇ viewer, except delete_organization which
// is exclusive to the owner.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permission is a named capability granted by a role.
type Permission string

const (
	PermViewSubmissions      Permission = "view_submissions"
	PermCreateSubmissions    Permission = "create_submissions"
	PermEditOwnSubmissions   Permission = "edit_own_submissions"
	PermEditAllSubmissions   Permission = "edit_all_submissions"
	PermDeleteOwnSubmissions Permission = "delete_own_submissions"
	PermDeleteAllSubmissions Permission = "delete_all_submissions"
	PermViewTemplates        Permission = "view_templates"
	PermCreateTemplates      Permission = "create_templates"
	PermEditTemplates        Permission = "edit_templates"
	PermDeleteTemplates      Permission = "delete_templates"
	PermInviteMembers        Permission = "invite_members"
	PermRemoveMembers        Permission = "remove_members"
	PermManageRoles          Permission = "manage_roles"
	PermManageOrganization   Permission = "manage_organization"
	PermDeleteOrganization   Permission = "delete_organization"
)

var viewerPermissions = []Permission{
	PermViewSubmissions,
	PermViewTemplates,
}

var memberPermissions = append([]Permission{
	PermCreateSubmissions,
	PermEditOwnSubmissions,
	PermDeleteOwnSubmissions,
}, viewerPermissions...)

var adminPermissions = append([]Permission{
	PermEditAllSubmissions,
	PermDeleteAllSubmissions,
	PermCreateTemplates,
	PermEditTemplates,
	PermDeleteTemplates,
	PermInviteMembers,
	PermRemoveMembers,
	PermManageRoles,
	PermManageOrganization,
}, memberPermissions...)

var ownerPermissions = append([]Permission{
	PermDeleteOrganization,
}, adminPermissions...)

var rolePermissions = map[Role]map[Permission]struct{}{
	RoleOwner:  permissionSet(ownerPermissions),
	RoleAdmin:  permissionSet(adminPermissions),
	RoleMember: permissionSet(memberPermissions),
	RoleViewer: permissionSet(viewerPermissions),
}

func permissionSet(perms []Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role's base permission set contains
// the permission. Unknown roles have no permissions.
func HasPermission(role Role, perm Permission) bool {
	_, ok := rolePermissions[role][perm]
	return ok
}

// Permissions returns the base permission set of a role.
func Permissions(role Role) []Permission {
	set := rolePermissions[role]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}

// CustomPermissions is the per-membership overlay. Overlays are additive,
// restricted to this fixed key set, and only meaningful for the member
// role; they never subtract a permission the base role already grants.
type CustomPermissions struct {
	CanDeleteSubmissions bool `json:"canDeleteSubmissions"`
}

// HasEffectivePermission checks the union of the role's base set and the
// membership overlay. The overlay grants delete_all_submissions to a
// member: an organization-wide deletion grant, not an ownership-scoped one.
func HasEffectivePermission(role Role, custom *CustomPermissions, perm Permission) bool {
	if HasPermission(role, perm) {
		return true
	}
	if role != RoleMember || custom == nil {
		return false
	}
	return perm == PermDeleteAllSubmissions && custom.CanDeleteSubmissions
}
