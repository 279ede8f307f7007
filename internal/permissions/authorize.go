package permissions

// Action is a generic operation an actor attempts on a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ResourceKind names the resource an action targets.
type ResourceKind string

const (
	ResourceSubmission   ResourceKind = "submission"
	ResourceTemplate     ResourceKind = "template"
	ResourceOrganization ResourceKind = "organization"
	ResourceMember       ResourceKind = "member"
)

// actionPermissions maps every non-ownership-sensitive (resource, action)
// pair onto a single named permission.
var actionPermissions = map[ResourceKind]map[Action]Permission{
	ResourceSubmission: {
		ActionView:   PermViewSubmissions,
		ActionCreate: PermCreateSubmissions,
	},
	ResourceTemplate: {
		ActionView:   PermViewTemplates,
		ActionCreate: PermCreateTemplates,
		ActionEdit:   PermEditTemplates,
		ActionDelete: PermDeleteTemplates,
	},
	ResourceOrganization: {
		ActionEdit:   PermManageOrganization,
		ActionDelete: PermDeleteOrganization,
	},
	ResourceMember: {
		ActionCreate: PermInviteMembers,
		ActionEdit:   PermManageRoles,
		ActionDelete: PermRemoveMembers,
	},
}

// Authorize decides whether a role may perform an action on a resource
// kind. Submission edit and delete are ownership-sensitive: owning the
// submission requires only the *_own_submissions permission, anything
// else requires *_all_submissions. Every other pair defers to the
// permission table; unmapped pairs are denied.
func Authorize(role Role, action Action, resource ResourceKind, isOwnerOfResource bool) bool {
	if resource == ResourceSubmission {
		switch action {
		case ActionEdit:
			if isOwnerOfResource {
				return HasPermission(role, PermEditOwnSubmissions)
			}
			return HasPermission(role, PermEditAllSubmissions)
		case ActionDelete:
			if isOwnerOfResource {
				return HasPermission(role, PermDeleteOwnSubmissions)
			}
			return HasPermission(role, PermDeleteAllSubmissions)
		}
	}

	perm, ok := actionPermissions[resource][action]
	if !ok {
		return false
	}
	return HasPermission(role, perm)
}

// CanDeleteSubmission is the deletion decision enforced at the persistence
// boundary. It resolves the historical split between the ownership-aware
// UI gate and the ownership-blind delete check into one semantic:
// effective delete_all_submissions (role or membership overlay) allows
// deleting any submission in the organization, and delete_own_submissions
// still allows a member to delete their own.
func CanDeleteSubmission(role Role, custom *CustomPermissions, isOwnerOfResource bool) bool {
	if HasEffectivePermission(role, custom, PermDeleteAllSubmissions) {
		return true
	}
	return isOwnerOfResource && HasPermission(role, PermDeleteOwnSubmissions)
}
