package repository

import (
	"github.com/fieldcheck/checklist-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalOrganization creates a user, their personal organization,
	// and corresponding membership within a single transaction.
	CreateWithPersonalOrganization(user *models.User, org *models.Organization, member *models.OrganizationMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// OrganizationRepository defines the interface for organization and
// membership data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(code string) (*models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete deletes an organization and all related data
	Delete(id uint64) error

	// AddMember adds a member to an organization
	AddMember(member *models.OrganizationMember) error

	// UpdateMember persists role or custom-permission changes for a member
	UpdateMember(member *models.OrganizationMember) error

	// RemoveMember removes a member from an organization
	RemoveMember(organizationID, userID uint64) error

	// FindMember finds a specific organization member
	FindMember(organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembersByUserID lists all organizations a user is a member of
	ListMembersByUserID(userID uint64) ([]models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(organizationID uint64) ([]models.OrganizationMember, error)
}

// TemplateFilter holds filtering options for listing templates
type TemplateFilter struct {
	// OrganizationID scopes the listing; public and system templates are
	// always included alongside the organization's own.
	OrganizationID uint64
	Category       *string
	Page           int
	PageSize       int
}

// TemplateRepository defines the interface for template schema data access
type TemplateRepository interface {
	// Create creates a template together with its sections and fields
	Create(template *models.Template) error

	// FindByID finds a template with its sections and fields preloaded
	FindByID(id uint64) (*models.Template, error)

	// List retrieves templates visible to an organization
	List(filter TemplateFilter) ([]models.Template, int64, error)

	// Update replaces the template row and its whole section/field tree
	// atomically
	Update(template *models.Template) error

	// Delete deletes a template and its sections and fields
	Delete(id uint64) error

	// SwapSectionOrder exchanges the order values of two sections of the
	// same template
	SwapSectionOrder(templateID, sectionA, sectionB uint64) error

	// SwapFieldOrder exchanges the order values of two fields belonging to
	// the same template
	SwapFieldOrder(templateID, fieldA, fieldB uint64) error
}

// SubmissionFilter holds filtering options for listing submissions
type SubmissionFilter struct {
	OrganizationIDs []uint64
	TemplateID      *uint64
	SubmittedBy     *uint64
	Status          *models.SubmissionStatus
	Page            int
	PageSize        int
}

// SubmissionRepository defines the interface for submission data access
type SubmissionRepository interface {
	// Save persists a submission with its answers. Saving is idempotent on
	// the submission id: an existing id overwrites the previous row and
	// answer set instead of duplicating it.
	Save(submission *models.Submission) error

	// FindByID finds a submission by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Submission, error)

	// FindByIDAny finds a submission by ID including soft-deleted rows,
	// so id collisions on create are detected even against deleted data.
	FindByIDAny(id uint64) (*models.Submission, error)

	// List retrieves submissions with filtering and pagination
	List(filter SubmissionFilter) ([]models.Submission, int64, error)

	// ReplaceAnswers updates the submission row and swaps the entire answer
	// set inside a single transaction, so a mid-sequence failure can never
	// leave a partial answer set behind.
	ReplaceAnswers(submission *models.Submission, answers []models.Answer) error

	// Delete deletes a submission and cascades to its answers
	Delete(id uint64) error
}
