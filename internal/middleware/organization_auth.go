package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcheck/checklist-api/internal/database"
	apierrors "github.com/fieldcheck/checklist-api/internal/errors"
	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/permissions"
)

const (
	ContextKeyOrganization       = "organization"
	ContextKeyOrganizationMember = "organization_member"
)

// RequireOrganizationAccess checks if the user is a member of the organization
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgIDStr := c.Param("id")
		orgID, err := strconv.ParseUint(orgIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().First(&org, orgID).Error; err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		// Non-members get 404, not 403, so organization existence does not
		// leak across the tenancy boundary.
		var member models.OrganizationMember
		err = database.GetDB().Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error
		if err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		c.Set(ContextKeyOrganization, org)
		c.Set(ContextKeyOrganizationMember, member)
		c.Next()
	}
}

// RequireOrganizationPermission checks that the requester's role grants the
// given action on the given resource kind. Must run after
// RequireOrganizationAccess.
func RequireOrganizationPermission(action permissions.Action, resource permissions.ResourceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get(ContextKeyOrganizationMember)
		if !exists {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.OrganizationMember)
		if !ok {
			apierrors.InternalError(c, "Invalid organization member data")
			c.Abort()
			return
		}

		if !permissions.Authorize(member.Role, action, resource, false) {
			apierrors.Forbidden(c, "Insufficient role for this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetOrganizationMember retrieves the membership stored by
// RequireOrganizationAccess.
func GetOrganizationMember(c *gin.Context) (models.OrganizationMember, bool) {
	memberInterface, exists := c.Get(ContextKeyOrganizationMember)
	if !exists {
		return models.OrganizationMember{}, false
	}
	member, ok := memberInterface.(models.OrganizationMember)
	return member, ok
}
