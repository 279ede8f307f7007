package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/schema"
)

type SubmissionStatus string

const (
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusDraft     SubmissionStatus = "draft"
)

// Valid reports whether s is a known submission status.
func (s SubmissionStatus) Valid() bool {
	return s == SubmissionStatusCompleted || s == SubmissionStatusDraft
}

// Submission is a completed (or draft) instance of a template.
// TemplateName and TemplateCategory are snapshots taken at creation time;
// TemplateID, OrganizationID, SubmittedBy and SubmittedAt never change
// after creation.
type Submission struct {
	ID               uint64           `gorm:"primarykey" json:"id"`
	TemplateID       uint64           `gorm:"not null;index" json:"template_id"`
	TemplateName     string           `gorm:"type:varchar(255);not null" json:"template_name"`
	TemplateCategory string           `gorm:"type:varchar(100)" json:"template_category"`
	Status           SubmissionStatus `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	SubmittedBy      uint64           `gorm:"not null;index" json:"submitted_by"`
	OrganizationID   uint64           `gorm:"not null;index" json:"organization_id"`
	SubmittedAt      time.Time        `gorm:"not null" json:"submitted_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	Submitter    User         `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Answers      []Answer     `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
}

// Answer stores the entered value together with a snapshot of the field's
// label, type and section title as they were at write time. Submissions
// never dereference the live template, so later template edits cannot
// corrupt historical data. Answers are hard-deleted when replaced.
type Answer struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	SubmissionID uint64           `gorm:"not null;index" json:"submission_id"`
	FieldID      uint64           `gorm:"not null" json:"field_id"`
	FieldLabel   string           `gorm:"type:varchar(255);not null" json:"field_label"`
	FieldType    schema.FieldType `gorm:"type:varchar(20);not null" json:"field_type"`
	SectionTitle string           `gorm:"type:varchar(255)" json:"section_title"`
	Position     int              `gorm:"not null" json:"position"`
	Value        any              `gorm:"serializer:json;type:text" json:"value"`
	PhotoURLs    []string         `gorm:"serializer:json;type:text" json:"photo_urls,omitempty"`
}
