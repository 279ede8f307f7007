package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/permissions"
	"github.com/fieldcheck/checklist-api/internal/repository"
	"github.com/fieldcheck/checklist-api/internal/schema"
)

var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateNameRequired = errors.New("template name is required")
	ErrTemplateNotEditable  = errors.New("system and foreign templates cannot be modified")
)

// TemplateService guards template CRUD behind the permission engine and
// the schema model's configuration checks.
type TemplateService struct {
	templateRepo repository.TemplateRepository
	orgRepo      repository.OrganizationRepository
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo repository.TemplateRepository, orgRepo repository.OrganizationRepository) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		orgRepo:      orgRepo,
	}
}

// FieldInput describes one field of a section being created or replaced.
type FieldInput struct {
	Type        string
	Label       string
	Placeholder string
	HelpText    string
	Required    bool
	Order       int
	Config      schema.FieldConfig
}

// SectionInput describes one section of a template being created or
// replaced. A section may hold zero fields.
type SectionInput struct {
	Title       string
	Description string
	Order       int
	Fields      []FieldInput
}

// TemplateInput describes a template create or full update.
type TemplateInput struct {
	Name        string
	Category    string
	Description string
	Icon        string
	IsPublic    bool
	Sections    []SectionInput
}

// CreateTemplate creates a template owned by the organization. Requires
// the create_templates permission.
func (s *TemplateService) CreateTemplate(orgID, actorID uint64, input TemplateInput) (*models.Template, error) {
	membership, err := s.requireMember(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !permissions.Authorize(membership.Role, permissions.ActionCreate, permissions.ResourceTemplate, false) {
		return nil, ErrPermissionDenied
	}

	sections, err := buildSections(input)
	if err != nil {
		return nil, err
	}

	template := &models.Template{
		Name:           input.Name,
		Category:       input.Category,
		Description:    input.Description,
		Icon:           input.Icon,
		IsPublic:       input.IsPublic,
		OrganizationID: &orgID,
		Sections:       sections,
	}

	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return s.templateRepo.FindByID(template.ID)
}

// GetTemplate returns a template visible to the actor's organization:
// its own, a public one, or a system template. Anything else is reported
// as not found.
func (s *TemplateService) GetTemplate(templateID, orgID, actorID uint64) (*models.Template, error) {
	if _, err := s.requireMember(orgID, actorID); err != nil {
		return nil, err
	}

	template, err := s.findVisible(templateID, orgID)
	if err != nil {
		return nil, err
	}
	return template, nil
}

// ListTemplates returns the organization's templates plus public and
// system templates.
func (s *TemplateService) ListTemplates(orgID, actorID uint64, category *string, page, pageSize int) ([]models.Template, int64, error) {
	if _, err := s.requireMember(orgID, actorID); err != nil {
		return nil, 0, err
	}

	templates, total, err := s.templateRepo.List(repository.TemplateFilter{
		OrganizationID: orgID,
		Category:       category,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, total, nil
}

// UpdateTemplate replaces a template's metadata and its whole
// section/field tree. Requires the edit_templates permission; only the
// owning organization may edit, public visibility grants reading only.
func (s *TemplateService) UpdateTemplate(templateID, orgID, actorID uint64, input TemplateInput) (*models.Template, error) {
	membership, err := s.requireMember(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !permissions.Authorize(membership.Role, permissions.ActionEdit, permissions.ResourceTemplate, false) {
		return nil, ErrPermissionDenied
	}

	template, err := s.findVisible(templateID, orgID)
	if err != nil {
		return nil, err
	}
	if template.OrganizationID == nil || *template.OrganizationID != orgID {
		return nil, ErrTemplateNotEditable
	}

	sections, err := buildSections(input)
	if err != nil {
		return nil, err
	}

	template.Name = input.Name
	template.Category = input.Category
	template.Description = input.Description
	template.Icon = input.Icon
	template.IsPublic = input.IsPublic
	template.Sections = sections

	if err := s.templateRepo.Update(template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	return s.templateRepo.FindByID(template.ID)
}

// DeleteTemplate removes a template and its schema tree. Requires the
// delete_templates permission of the owning organization.
func (s *TemplateService) DeleteTemplate(templateID, orgID, actorID uint64) error {
	membership, err := s.requireMember(orgID, actorID)
	if err != nil {
		return err
	}
	if !permissions.Authorize(membership.Role, permissions.ActionDelete, permissions.ResourceTemplate, false) {
		return ErrPermissionDenied
	}

	template, err := s.findVisible(templateID, orgID)
	if err != nil {
		return err
	}
	if template.OrganizationID == nil || *template.OrganizationID != orgID {
		return ErrTemplateNotEditable
	}

	if err := s.templateRepo.Delete(templateID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// SwapSections exchanges the order of two sections. Requires
// edit_templates on the owning organization.
func (s *TemplateService) SwapSections(templateID, orgID, actorID, sectionA, sectionB uint64) error {
	if err := s.requireEditable(templateID, orgID, actorID); err != nil {
		return err
	}

	if err := s.templateRepo.SwapSectionOrder(templateID, sectionA, sectionB); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to swap sections: %w", err)
	}
	return nil
}

// SwapFields exchanges the order of two fields of the same template.
func (s *TemplateService) SwapFields(templateID, orgID, actorID, fieldA, fieldB uint64) error {
	if err := s.requireEditable(templateID, orgID, actorID); err != nil {
		return err
	}

	if err := s.templateRepo.SwapFieldOrder(templateID, fieldA, fieldB); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to swap fields: %w", err)
	}
	return nil
}

func (s *TemplateService) requireEditable(templateID, orgID, actorID uint64) error {
	membership, err := s.requireMember(orgID, actorID)
	if err != nil {
		return err
	}
	if !permissions.Authorize(membership.Role, permissions.ActionEdit, permissions.ResourceTemplate, false) {
		return ErrPermissionDenied
	}

	template, err := s.findVisible(templateID, orgID)
	if err != nil {
		return err
	}
	if template.OrganizationID == nil || *template.OrganizationID != orgID {
		return ErrTemplateNotEditable
	}
	return nil
}

// findVisible loads a template and cloaks cross-tenant rows as not found.
func (s *TemplateService) findVisible(templateID, orgID uint64) (*models.Template, error) {
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

func (s *TemplateService) requireMember(orgID, userID uint64) (*models.OrganizationMember, error) {
	member, err := s.orgRepo.FindMember(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to verify organization membership: %w", err)
	}
	return member, nil
}

// buildSections converts the input tree into model rows, rejecting unknown
// field types and invalid type-specific configuration.
func buildSections(input TemplateInput) ([]models.Section, error) {
	if input.Name == "" {
		return nil, ErrTemplateNameRequired
	}

	sections := make([]models.Section, 0, len(input.Sections))
	for _, sec := range input.Sections {
		fields := make([]models.Field, 0, len(sec.Fields))
		for _, f := range sec.Fields {
			fieldType, err := schema.ParseFieldType(f.Type)
			if err != nil {
				return nil, err
			}
			if err := schema.ValidateConfig(fieldType, f.Config); err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Label, err)
			}
			fields = append(fields, models.Field{
				Type:        fieldType,
				Label:       f.Label,
				Placeholder: f.Placeholder,
				HelpText:    f.HelpText,
				Required:    f.Required,
				Order:       f.Order,
				Config:      f.Config,
			})
		}
		sections = append(sections, models.Section{
			Title:       sec.Title,
			Description: sec.Description,
			Order:       sec.Order,
			Fields:      fields,
		})
	}
	return sections, nil
}
