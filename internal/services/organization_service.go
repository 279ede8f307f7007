package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/permissions"
	"github.com/fieldcheck/checklist-api/internal/repository"
	"github.com/fieldcheck/checklist-api/internal/utils"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrInvalidOrganizationName    = errors.New("organization name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyOrganizationMember  = errors.New("user is already a member of this organization")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the organization")
	ErrCannotChangeOwnRole        = errors.New("cannot change your own role")
	ErrOrganizationMemberNotFound = errors.New("organization member not found")
	ErrInvalidRole                = errors.New("unknown role")
	ErrPermissionDenied           = errors.New("permission denied")
	ErrNotOrganizationMember      = errors.New("user is not a member of the organization")
)

// OrganizationService provides business logic for organization and
// membership operations.
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name    string
	OwnerID uint64
}

// CreateOrganization creates a new organization and assigns the owner.
func (s *OrganizationService) CreateOrganization(input CreateOrganizationInput) (*models.Organization, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org := &models.Organization{
		Name:       input.Name,
		InviteCode: inviteCode,
	}

	if err := s.orgRepo.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         input.OwnerID,
		Role:           permissions.RoleOwner,
		JoinedAt:       time.Now(),
	}

	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add owner to organization: %w", err)
	}

	return org, nil
}

// ListOrganizationsForUser returns organizations the user belongs to.
func (s *OrganizationService) ListOrganizationsForUser(userID uint64) ([]models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(orgID uint64) (*models.Organization, []models.OrganizationMember, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrganizationNotFound
		}
		return nil, nil, fmt.Errorf("failed to find organization: %w", err)
	}

	members, err := s.orgRepo.ListMembers(orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// UpdateOrganizationName updates an organization's name.
func (s *OrganizationService) UpdateOrganizationName(orgID uint64, name string) (*models.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	org.Name = name
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// DeleteOrganization removes an organization together with its templates,
// submissions and memberships. Only the owner may do this.
func (s *OrganizationService) DeleteOrganization(orgID, actorID uint64) error {
	membership, err := s.requireMember(orgID, actorID)
	if err != nil {
		return err
	}
	if !permissions.Authorize(membership.Role, permissions.ActionDelete, permissions.ResourceOrganization, false) {
		return ErrPermissionDenied
	}

	if err := s.orgRepo.Delete(orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// JoinOrganizationByInvite adds a user to an organization via invite code.
// New joiners always start as plain members.
func (s *OrganizationService) JoinOrganizationByInvite(userID uint64, inviteCode string) (*models.Organization, error) {
	org, err := s.orgRepo.FindByInviteCode(inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find organization by invite code: %w", err)
	}

	if _, err := s.orgRepo.FindMember(org.ID, userID); err == nil {
		return nil, ErrAlreadyOrganizationMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           permissions.RoleMember,
		JoinedAt:       time.Now(),
	}

	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to organization: %w", err)
	}

	return org, nil
}

// RegenerateInviteCode generates a new invite code for the organization.
func (s *OrganizationService) RegenerateInviteCode(orgID uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org.InviteCode = code
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return org, nil
}

// UpdateMemberInput carries a role change and/or a permission-overlay
// change for one member.
type UpdateMemberInput struct {
	OrganizationID uint64
	ActorID        uint64
	TargetID       uint64
	Role           *permissions.Role
	// CanDeleteSubmissions toggles the single allowlisted overlay key. The
	// overlay is additive and only meaningful for the member role; setting
	// it grants organization-wide submission deletion.
	CanDeleteSubmissions *bool
}

// UpdateMember changes a member's role or custom-permission overlay.
// Requires the manage_roles permission.
func (s *OrganizationService) UpdateMember(input UpdateMemberInput) (*models.OrganizationMember, error) {
	actor, err := s.requireMember(input.OrganizationID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !permissions.Authorize(actor.Role, permissions.ActionEdit, permissions.ResourceMember, false) {
		return nil, ErrPermissionDenied
	}
	if input.TargetID == input.ActorID && input.Role != nil {
		return nil, ErrCannotChangeOwnRole
	}

	target, err := s.orgRepo.FindMember(input.OrganizationID, input.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationMemberNotFound
		}
		return nil, fmt.Errorf("failed to find organization member: %w", err)
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		target.Role = *input.Role
	}
	if input.CanDeleteSubmissions != nil {
		if *input.CanDeleteSubmissions {
			target.CustomPermissions = &permissions.CustomPermissions{CanDeleteSubmissions: true}
		} else {
			target.CustomPermissions = nil
		}
	}

	// The overlay carries no meaning outside the member role; drop it when
	// the role moves past member.
	if target.Role != permissions.RoleMember {
		target.CustomPermissions = nil
	}

	if err := s.orgRepo.UpdateMember(target); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return target, nil
}

// RemoveMember removes a member from the organization. Requires the
// remove_members permission.
func (s *OrganizationService) RemoveMember(orgID, actorID, targetID uint64) error {
	actor, err := s.requireMember(orgID, actorID)
	if err != nil {
		return err
	}
	if !permissions.Authorize(actor.Role, permissions.ActionDelete, permissions.ResourceMember, false) {
		return ErrPermissionDenied
	}
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.orgRepo.FindMember(orgID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationMemberNotFound
		}
		return fmt.Errorf("failed to find organization member: %w", err)
	}

	if err := s.orgRepo.RemoveMember(orgID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// requireMember loads the actor's membership in the organization.
func (s *OrganizationService) requireMember(orgID, userID uint64) (*models.OrganizationMember, error) {
	member, err := s.orgRepo.FindMember(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}
	return member, nil
}
