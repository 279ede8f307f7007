package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleMember.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestPermissionCounts(t *testing.T) {
	assert.Len(t, Permissions(RoleOwner), 15)
	assert.Len(t, Permissions(RoleAdmin), 14)
	assert.Len(t, Permissions(RoleMember), 5)
	assert.Len(t, Permissions(RoleViewer), 2)
	assert.Empty(t, Permissions(Role("superuser")))
}

// Each role's permission set must contain every permission of the role
// below it. delete_organization stays exclusive to the owner.
func TestRoleSupersetChain(t *testing.T) {
	chain := []Role{RoleViewer, RoleMember, RoleAdmin, RoleOwner}
	for i := 0; i < len(chain)-1; i++ {
		lower, higher := chain[i], chain[i+1]
		for _, perm := range Permissions(lower) {
			assert.True(t, HasPermission(higher, perm),
				"%s should inherit %s from %s", higher, perm, lower)
		}
	}

	assert.True(t, HasPermission(RoleOwner, PermDeleteOrganization))
	assert.False(t, HasPermission(RoleAdmin, PermDeleteOrganization))
	assert.False(t, HasPermission(RoleMember, PermDeleteOrganization))
	assert.False(t, HasPermission(RoleViewer, PermDeleteOrganization))
}

func TestViewerPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleViewer, PermViewSubmissions))
	assert.True(t, HasPermission(RoleViewer, PermViewTemplates))
	assert.False(t, HasPermission(RoleViewer, PermCreateSubmissions))
	assert.False(t, HasPermission(RoleViewer, PermEditOwnSubmissions))
}

func TestMemberPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleMember, PermCreateSubmissions))
	assert.True(t, HasPermission(RoleMember, PermEditOwnSubmissions))
	assert.True(t, HasPermission(RoleMember, PermDeleteOwnSubmissions))
	assert.False(t, HasPermission(RoleMember, PermEditAllSubmissions))
	assert.False(t, HasPermission(RoleMember, PermDeleteAllSubmissions))
	assert.False(t, HasPermission(RoleMember, PermCreateTemplates))
	assert.False(t, HasPermission(RoleMember, PermInviteMembers))
}

func TestAuthorize_Submissions(t *testing.T) {
	// Viewing and creating ignore ownership.
	assert.True(t, Authorize(RoleViewer, ActionView, ResourceSubmission, false))
	assert.False(t, Authorize(RoleViewer, ActionCreate, ResourceSubmission, false))
	assert.True(t, Authorize(RoleMember, ActionCreate, ResourceSubmission, false))

	// A member may edit and delete their own submissions only.
	assert.True(t, Authorize(RoleMember, ActionEdit, ResourceSubmission, true))
	assert.False(t, Authorize(RoleMember, ActionEdit, ResourceSubmission, false))
	assert.True(t, Authorize(RoleMember, ActionDelete, ResourceSubmission, true))
	assert.False(t, Authorize(RoleMember, ActionDelete, ResourceSubmission, false))

	// Admins and owners reach everyone's submissions.
	assert.True(t, Authorize(RoleAdmin, ActionEdit, ResourceSubmission, false))
	assert.True(t, Authorize(RoleAdmin, ActionDelete, ResourceSubmission, false))
	assert.True(t, Authorize(RoleOwner, ActionDelete, ResourceSubmission, false))

	// Viewers touch nothing, not even hypothetically their own.
	assert.False(t, Authorize(RoleViewer, ActionEdit, ResourceSubmission, true))
	assert.False(t, Authorize(RoleViewer, ActionDelete, ResourceSubmission, true))
}

func TestAuthorize_Templates(t *testing.T) {
	assert.True(t, Authorize(RoleViewer, ActionView, ResourceTemplate, false))
	assert.True(t, Authorize(RoleMember, ActionView, ResourceTemplate, false))
	assert.False(t, Authorize(RoleMember, ActionCreate, ResourceTemplate, false))
	assert.False(t, Authorize(RoleMember, ActionEdit, ResourceTemplate, false))
	assert.True(t, Authorize(RoleAdmin, ActionCreate, ResourceTemplate, false))
	assert.True(t, Authorize(RoleAdmin, ActionDelete, ResourceTemplate, false))
}

func TestAuthorize_OrganizationAndMembers(t *testing.T) {
	assert.True(t, Authorize(RoleAdmin, ActionEdit, ResourceOrganization, false))
	assert.False(t, Authorize(RoleAdmin, ActionDelete, ResourceOrganization, false))
	assert.True(t, Authorize(RoleOwner, ActionDelete, ResourceOrganization, false))

	assert.True(t, Authorize(RoleAdmin, ActionCreate, ResourceMember, false))
	assert.True(t, Authorize(RoleAdmin, ActionEdit, ResourceMember, false))
	assert.True(t, Authorize(RoleAdmin, ActionDelete, ResourceMember, false))
	assert.False(t, Authorize(RoleMember, ActionCreate, ResourceMember, false))

	// Unmapped pairs are denied outright.
	assert.False(t, Authorize(RoleOwner, ActionView, ResourceOrganization, false))
	assert.False(t, Authorize(RoleOwner, ActionCreate, ResourceOrganization, false))
	assert.False(t, Authorize(RoleOwner, ActionView, ResourceMember, false))
}

func TestHasEffectivePermission_Overlay(t *testing.T) {
	overlay := &CustomPermissions{CanDeleteSubmissions: true}

	// The overlay grants delete_all_submissions to a member and nothing else.
	assert.True(t, HasEffectivePermission(RoleMember, overlay, PermDeleteAllSubmissions))
	assert.False(t, HasEffectivePermission(RoleMember, overlay, PermEditAllSubmissions))
	assert.False(t, HasEffectivePermission(RoleMember, overlay, PermDeleteOrganization))

	// Without the overlay the member's base set applies.
	assert.False(t, HasEffectivePermission(RoleMember, nil, PermDeleteAllSubmissions))
	assert.False(t, HasEffectivePermission(RoleMember, &CustomPermissions{}, PermDeleteAllSubmissions))

	// Non-member roles ignore the overlay entirely.
	assert.False(t, HasEffectivePermission(RoleViewer, overlay, PermDeleteAllSubmissions))
	assert.True(t, HasEffectivePermission(RoleAdmin, nil, PermDeleteAllSubmissions))
}

func TestCanDeleteSubmission(t *testing.T) {
	overlay := &CustomPermissions{CanDeleteSubmissions: true}

	// A member with the overlay may delete any submission in the
	// organization, not just their own.
	assert.True(t, CanDeleteSubmission(RoleMember, overlay, false))
	assert.True(t, CanDeleteSubmission(RoleMember, overlay, true))

	// A plain member only deletes their own.
	assert.True(t, CanDeleteSubmission(RoleMember, nil, true))
	assert.False(t, CanDeleteSubmission(RoleMember, nil, false))

	// Admins and owners delete anything regardless of overlay.
	assert.True(t, CanDeleteSubmission(RoleAdmin, nil, false))
	assert.True(t, CanDeleteSubmission(RoleOwner, nil, false))

	// Viewers delete nothing, overlay or not.
	assert.False(t, CanDeleteSubmission(RoleViewer, overlay, true))
	assert.False(t, CanDeleteSubmission(RoleViewer, nil, true))
}
