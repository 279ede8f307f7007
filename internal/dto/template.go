package dto

import (
	"time"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/schema"
	"github.com/fieldcheck/checklist-api/internal/validation"
)

// FieldDTO represents a field in API responses
type FieldDTO struct {
	ID          uint64             `json:"id"`
	Type        schema.FieldType   `json:"type"`
	Label       string             `json:"label"`
	Placeholder string             `json:"placeholder,omitempty"`
	HelpText    string             `json:"help_text,omitempty"`
	Required    bool               `json:"required"`
	Order       int                `json:"order"`
	Config      schema.FieldConfig `json:"config"`
}

// SectionDTO represents a section in API responses
type SectionDTO struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Fields      []FieldDTO `json:"fields"`
}

// TemplateDTO represents a template in API responses
type TemplateDTO struct {
	ID             uint64       `json:"id"`
	Name           string       `json:"name"`
	Category       string       `json:"category,omitempty"`
	Description    string       `json:"description,omitempty"`
	Icon           string       `json:"icon,omitempty"`
	IsPublic       bool         `json:"is_public"`
	OrganizationID *uint64      `json:"organization_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Sections       []SectionDTO `json:"sections"`
}

// TemplateListItemDTO represents a template in list responses
type TemplateListItemDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	IsPublic     bool      `json:"is_public"`
	SectionCount int       `json:"section_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToFieldDTO converts a Field model to FieldDTO
func ToFieldDTO(field models.Field) FieldDTO {
	return FieldDTO{
		ID:          field.ID,
		Type:        field.Type,
		Label:       field.Label,
		Placeholder: field.Placeholder,
		HelpText:    field.HelpText,
		Required:    field.Required,
		Order:       field.Order,
		Config:      field.Config,
	}
}

// ToSectionDTO converts a Section model to SectionDTO with fields in
// ascending order
func ToSectionDTO(section models.Section) SectionDTO {
	fields := validation.SortedFields(section.Fields)
	fieldDTOs := make([]FieldDTO, len(fields))
	for i, field := range fields {
		fieldDTOs[i] = ToFieldDTO(field)
	}

	return SectionDTO{
		ID:          section.ID,
		Title:       section.Title,
		Description: section.Description,
		Order:       section.Order,
		Fields:      fieldDTOs,
	}
}

// ToTemplateDTO converts a Template model to TemplateDTO with sections in
// ascending order
func ToTemplateDTO(template models.Template) TemplateDTO {
	sections := validation.SortedSections(template.Sections)
	sectionDTOs := make([]SectionDTO, len(sections))
	for i, section := range sections {
		sectionDTOs[i] = ToSectionDTO(section)
	}

	return TemplateDTO{
		ID:             template.ID,
		Name:           template.Name,
		Category:       template.Category,
		Description:    template.Description,
		Icon:           template.Icon,
		IsPublic:       template.IsPublic,
		OrganizationID: template.OrganizationID,
		CreatedAt:      template.CreatedAt,
		UpdatedAt:      template.UpdatedAt,
		Sections:       sectionDTOs,
	}
}

// ToTemplateListItemDTO converts a Template model to TemplateListItemDTO
func ToTemplateListItemDTO(template models.Template) TemplateListItemDTO {
	return TemplateListItemDTO{
		ID:           template.ID,
		Name:         template.Name,
		Category:     template.Category,
		Icon:         template.Icon,
		IsPublic:     template.IsPublic,
		SectionCount: len(template.Sections),
		CreatedAt:    template.CreatedAt,
	}
}
