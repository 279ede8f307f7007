package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcheck/checklist-api/internal/dto"
	apierrors "github.com/fieldcheck/checklist-api/internal/errors"
	"github.com/fieldcheck/checklist-api/internal/middleware"
	"github.com/fieldcheck/checklist-api/internal/permissions"
	"github.com/fieldcheck/checklist-api/internal/services"
)

// OrganizationHandler coordinates organization and membership HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganization creates a new organization owned by the requester.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateOrganizationRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:    req.Name,
		OwnerID: userID,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// ListOrganizations returns the organizations the requester belongs to.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	orgs := make([]dto.OrganizationWithRoleDTO, len(memberships))
	for i, m := range memberships {
		orgs[i] = dto.ToOrganizationWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrganization returns one organization with its members.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.InternalError(c, "Organization member missing from context")
		return
	}

	org, members, err := h.orgService.GetOrganizationWithMembers(member.OrganizationID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, member.Role))
}

// UpdateOrganization renames an organization.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.InternalError(c, "Organization member missing from context")
		return
	}

	type UpdateOrganizationRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.UpdateOrganizationName(member.OrganizationID, req.Name)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// DeleteOrganization removes an organization and everything under it.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.InternalError(c, "Organization member missing from context")
		return
	}

	if err := h.orgService.DeleteOrganization(member.OrganizationID, member.UserID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}

// JoinOrganization adds the requester to an organization by invite code.
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type JoinOrganizationRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.JoinOrganizationByInvite(userID, req.InviteCode)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, false))
}

// RegenerateInviteCode rotates the organization's invite code.
func (h *OrganizationHandler) RegenerateInviteCode(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.InternalError(c, "Organization member missing from context")
		return
	}

	org, err := h.orgService.RegenerateInviteCode(member.OrganizationID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org, true))
}

// UpdateMember changes a member's role or permission overlay.
func (h *OrganizationHandler) UpdateMember(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.InternalError(c, "Organization member missing from context")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateMemberRequest struct {
		Role                 *string `json:"role"`
		CanDeleteSubmissions *bool   `json:"can_delete_submissions"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateMemberInput{
		OrganizationID:       member.OrganizationID,
		ActorID:              member.UserID,
		TargetID:             targetID,
		CanDeleteSubmissions: req.CanDeleteSubmissions,
	}
	if req.Role != nil {
		role := permissions.Role(*req.Role)
		input.Role = &role
	}

	updated, err := h.orgService.UpdateMember(input)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":            updated.UserID,
		"role":               updated.Role,
		"custom_permissions": updated.CustomPermissions,
	})
}

// RemoveMember removes a member from the organization.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.InternalError(c, "Organization member missing from context")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.orgService.RemoveMember(member.OrganizationID, member.UserID, targetID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganizationName):
		apierrors.BadRequest(c, "Organization name cannot be empty")
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, "Unknown role")
	case errors.Is(err, services.ErrInvalidInviteCode):
		apierrors.NotFound(c, "Invalid invite code")
	case errors.Is(err, services.ErrAlreadyOrganizationMember):
		apierrors.Conflict(c, "Already a member of this organization")
	case errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.BadRequest(c, "Cannot remove yourself from the organization")
	case errors.Is(err, services.ErrCannotChangeOwnRole):
		apierrors.BadRequest(c, "Cannot change your own role")
	case errors.Is(err, services.ErrOrganizationMemberNotFound):
		apierrors.NotFound(c, "Organization member not found")
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	default:
		apierrors.InternalError(c, "")
	}
}
