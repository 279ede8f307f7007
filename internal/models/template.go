package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/schema"
)

// Template is the ordered schema of an inspection checklist. A nil
// OrganizationID marks a system template available to every organization.
type Template struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Category       string         `gorm:"type:varchar(100)" json:"category"`
	Description    string         `gorm:"type:text" json:"description"`
	Icon           string         `gorm:"type:varchar(100)" json:"icon"`
	IsPublic       bool           `gorm:"not null;default:false" json:"is_public"`
	OrganizationID *uint64        `gorm:"index" json:"organization_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Sections     []Section     `gorm:"foreignKey:TemplateID" json:"sections,omitempty"`
}

// Usable reports whether the template can accept submissions. A template
// needs at least one section; a section may still hold zero fields.
func (t *Template) Usable() bool {
	return len(t.Sections) > 0
}

// Section groups fields under a title; rendered and validated in
// ascending Order.
type Section struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	TemplateID  uint64 `gorm:"not null;index" json:"template_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"column:sort_order;not null" json:"order"`

	// Relations
	Fields []Field `gorm:"foreignKey:SectionID" json:"fields,omitempty"`
}

// Field is one entry in a section. Type is the closed variant from the
// schema package; Config carries the type-specific payload.
type Field struct {
	ID          uint64             `gorm:"primarykey" json:"id"`
	SectionID   uint64             `gorm:"not null;index" json:"section_id"`
	Type        schema.FieldType   `gorm:"type:varchar(20);not null" json:"type"`
	Label       string             `gorm:"type:varchar(255);not null" json:"label"`
	Placeholder string             `gorm:"type:varchar(255)" json:"placeholder"`
	HelpText    string             `gorm:"type:varchar(255)" json:"help_text"`
	Required    bool               `gorm:"not null;default:false" json:"required"`
	Order       int                `gorm:"column:sort_order;not null" json:"order"`
	Config      schema.FieldConfig `gorm:"serializer:json" json:"config"`
}
