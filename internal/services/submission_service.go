package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/permissions"
	"github.com/fieldcheck/checklist-api/internal/repository"
	"github.com/fieldcheck/checklist-api/internal/schema"
	"github.com/fieldcheck/checklist-api/internal/validation"
)

var (
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionIDConflict = errors.New("submission id already taken by another member")
	ErrTemplateNotUsable    = errors.New("template has no sections and cannot accept submissions")
	ErrInvalidStatus        = errors.New("invalid submission status")
)

// ValidationError carries the field-keyed error map produced by the
// validator. It is returned before any persistence call is attempted.
type ValidationError struct {
	Fields map[uint64]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// SubmissionService orchestrates submission CRUD. Every mutation asks the
// permission engine first and the validator second; only then does the
// persistence port see the request.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	templateRepo   repository.TemplateRepository
	orgRepo        repository.OrganizationRepository
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(submissionRepo repository.SubmissionRepository, templateRepo repository.TemplateRepository, orgRepo repository.OrganizationRepository) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		templateRepo:   templateRepo,
		orgRepo:        orgRepo,
	}
}

// CreateSubmissionInput represents input for creating a submission.
type CreateSubmissionInput struct {
	// ID is optional. A client retrying an ambiguous network failure may
	// resend the same id; the write then overwrites instead of duplicating.
	ID             uint64
	TemplateID     uint64
	OrganizationID uint64
	ActorID        uint64
	Status         models.SubmissionStatus
	Answers        map[uint64]any
	PhotoURLs      map[uint64][]string
}

// UpdateSubmissionInput represents input for replacing a submission's
// answer set.
type UpdateSubmissionInput struct {
	SubmissionID uint64
	ActorID      uint64
	Status       *models.SubmissionStatus
	Answers      map[uint64]any
	PhotoURLs    map[uint64][]string
}

// ListSubmissionsInput represents filters for listing submissions.
type ListSubmissionsInput struct {
	ActorID        uint64
	OrganizationID *uint64
	TemplateID     *uint64
	SubmittedByMe  bool
	Status         *models.SubmissionStatus
	Page           int
	PageSize       int
}

// CreateSubmission validates and persists a new submission. The actor must
// hold create_submissions in the organization, the template must be
// visible there and have at least one section, and a completed submission
// must pass validation before anything is written.
func (s *SubmissionService) CreateSubmission(input CreateSubmissionInput) (*models.Submission, error) {
	membership, err := s.requireMember(input.OrganizationID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !permissions.Authorize(membership.Role, permissions.ActionCreate, permissions.ResourceSubmission, false) {
		return nil, ErrPermissionDenied
	}

	template, err := s.findVisibleTemplate(input.TemplateID, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !template.Usable() {
		return nil, ErrTemplateNotUsable
	}

	status := input.Status
	if status == "" {
		status = models.SubmissionStatusCompleted
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	// Drafts may be partial; completed submissions must validate before
	// any write is attempted.
	if status == models.SubmissionStatusCompleted {
		if errs := validation.Validate(template, input.Answers); len(errs) > 0 {
			return nil, &ValidationError{Fields: errs}
		}
	}

	if input.ID != 0 {
		// A colliding id is an idempotent retry only when it names the
		// actor's own live submission in this organization. Reuse across
		// organizations and reuse of a deleted id are cloaked; a
		// colleague's id is a conflict, never an overwrite.
		if existing, err := s.submissionRepo.FindByIDAny(input.ID); err == nil {
			switch {
			case existing.OrganizationID != input.OrganizationID || existing.DeletedAt.Valid:
				return nil, ErrSubmissionNotFound
			case existing.SubmittedBy != input.ActorID:
				return nil, ErrSubmissionIDConflict
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check submission id: %w", err)
		}
	}

	submission := &models.Submission{
		ID:               input.ID,
		TemplateID:       template.ID,
		TemplateName:     template.Name,
		TemplateCategory: template.Category,
		Status:           status,
		SubmittedBy:      input.ActorID,
		OrganizationID:   input.OrganizationID,
		SubmittedAt:      time.Now(),
		Answers:          buildAnswers(template, input.Answers, input.PhotoURLs),
	}

	if err := s.submissionRepo.Save(submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	return s.submissionRepo.FindByID(submission.ID, "Answers")
}

// UpdateSubmission replaces the whole answer set atomically. TemplateID,
// OrganizationID, SubmittedBy and SubmittedAt are preserved unchanged;
// answer snapshots are retaken from the live template at write time.
func (s *SubmissionService) UpdateSubmission(input UpdateSubmissionInput) (*models.Submission, error) {
	submission, membership, err := s.loadVisible(input.SubmissionID, input.ActorID)
	if err != nil {
		return nil, err
	}

	isOwner := submission.SubmittedBy == input.ActorID
	if !permissions.Authorize(membership.Role, permissions.ActionEdit, permissions.ResourceSubmission, isOwner) {
		return nil, ErrPermissionDenied
	}

	template, err := s.findVisibleTemplate(submission.TemplateID, submission.OrganizationID)
	if err != nil {
		return nil, err
	}

	status := submission.Status
	if input.Status != nil {
		status = *input.Status
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	if status == models.SubmissionStatusCompleted {
		if errs := validation.Validate(template, input.Answers); len(errs) > 0 {
			return nil, &ValidationError{Fields: errs}
		}
	}

	submission.Status = status
	answers := buildAnswers(template, input.Answers, input.PhotoURLs)

	if err := s.submissionRepo.ReplaceAnswers(submission, answers); err != nil {
		return nil, fmt.Errorf("failed to replace answers: %w", err)
	}

	return s.submissionRepo.FindByID(submission.ID, "Answers")
}

// DeleteSubmission removes a submission and its answers. The decision runs
// through CanDeleteSubmission: effective delete_all_submissions (role or
// membership overlay) deletes anything in the organization, and a plain
// member may delete their own.
func (s *SubmissionService) DeleteSubmission(submissionID, actorID uint64) error {
	submission, membership, err := s.loadVisible(submissionID, actorID)
	if err != nil {
		return err
	}

	isOwner := submission.SubmittedBy == actorID
	if !permissions.CanDeleteSubmission(membership.Role, membership.CustomPermissions, isOwner) {
		return ErrPermissionDenied
	}

	if err := s.submissionRepo.Delete(submissionID); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

// GetSubmission returns a submission with its answers. A submission in an
// organization the actor does not belong to is reported as not found.
func (s *SubmissionService) GetSubmission(submissionID, actorID uint64) (*models.Submission, error) {
	submission, _, err := s.loadVisible(submissionID, actorID)
	if err != nil {
		return nil, err
	}

	return s.submissionRepo.FindByID(submission.ID, "Answers", "Submitter")
}

// ListSubmissions returns submissions across the actor's organizations,
// optionally scoped to one.
func (s *SubmissionService) ListSubmissions(input ListSubmissionsInput) ([]models.Submission, int64, error) {
	orgIDs, err := s.resolveAccessibleOrganizationIDs(input.ActorID, input.OrganizationID)
	if err != nil {
		return nil, 0, err
	}

	if len(orgIDs) == 0 {
		return []models.Submission{}, 0, nil
	}

	filter := repository.SubmissionFilter{
		OrganizationIDs: orgIDs,
		TemplateID:      input.TemplateID,
		Status:          input.Status,
		Page:            input.Page,
		PageSize:        input.PageSize,
	}
	if input.SubmittedByMe {
		filter.SubmittedBy = &input.ActorID
	}

	submissions, total, err := s.submissionRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

// loadVisible loads a submission and the actor's membership in its
// organization. Both a missing row and a cross-tenant row come back as
// ErrSubmissionNotFound so that existence never leaks across the tenancy
// boundary.
func (s *SubmissionService) loadVisible(submissionID, actorID uint64) (*models.Submission, *models.OrganizationMember, error) {
	submission, err := s.submissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, fmt.Errorf("failed to find submission: %w", err)
	}

	membership, err := s.orgRepo.FindMember(submission.OrganizationID, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}

	return submission, membership, nil
}

func (s *SubmissionService) findVisibleTemplate(templateID, orgID uint64) (*models.Template, error) {
	template, err := s.templateRepo.FindByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}

	visible := template.OrganizationID == nil ||
		*template.OrganizationID == orgID ||
		template.IsPublic
	if !visible {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

func (s *SubmissionService) requireMember(orgID, userID uint64) (*models.OrganizationMember, error) {
	member, err := s.orgRepo.FindMember(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}
	return member, nil
}

// resolveAccessibleOrganizationIDs returns the organization IDs the user can access
func (s *SubmissionService) resolveAccessibleOrganizationIDs(userID uint64, organizationID *uint64) ([]uint64, error) {
	if organizationID != nil {
		if _, err := s.requireMember(*organizationID, userID); err != nil {
			return nil, err
		}
		return []uint64{*organizationID}, nil
	}

	memberships, err := s.orgRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch organization memberships: %w", err)
	}

	orgIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		orgIDs = append(orgIDs, m.OrganizationID)
	}

	return orgIDs, nil
}

// buildAnswers walks the schema in ascending section and field order and
// produces one Answer per field, copying the field's label, type and
// section title into the row. An unanswered field gets the type's default
// value so historical rows stay self-describing.
func buildAnswers(template *models.Template, answers map[uint64]any, photoURLs map[uint64][]string) []models.Answer {
	var built []models.Answer
	position := 0

	for _, section := range validation.SortedSections(template.Sections) {
		for _, field := range validation.SortedFields(section.Fields) {
			value, ok := answers[field.ID]
			if !ok || value == nil {
				value = schema.DefaultValue(field.Type)
			}

			built = append(built, models.Answer{
				FieldID:      field.ID,
				FieldLabel:   field.Label,
				FieldType:    field.Type,
				SectionTitle: section.Title,
				Position:     position,
				Value:        value,
				PhotoURLs:    photoURLs[field.ID],
			})
			position++
		}
	}

	return built
}
