package dto

import (
	"time"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/schema"
)

// AnswerDTO represents an answer in API responses. Label, type and section
// title come from the snapshot stored with the answer, never from the live
// template.
type AnswerDTO struct {
	FieldID      uint64           `json:"field_id"`
	FieldLabel   string           `json:"field_label"`
	FieldType    schema.FieldType `json:"field_type"`
	SectionTitle string           `json:"section_title,omitempty"`
	Value        any              `json:"value"`
	PhotoURLs    []string         `json:"photo_urls,omitempty"`
}

// SubmissionDTO represents a submission in API responses
type SubmissionDTO struct {
	ID               uint64                  `json:"id"`
	TemplateID       uint64                  `json:"template_id"`
	TemplateName     string                  `json:"template_name"`
	TemplateCategory string                  `json:"template_category,omitempty"`
	Status           models.SubmissionStatus `json:"status"`
	SubmittedBy      uint64                  `json:"submitted_by"`
	OrganizationID   uint64                  `json:"organization_id"`
	SubmittedAt      time.Time               `json:"submitted_at"`
	Submitter        *UserDTO                `json:"submitter,omitempty"`
	Answers          []AnswerDTO             `json:"answers,omitempty"`
}

// SubmissionListItemDTO represents a submission in list responses
type SubmissionListItemDTO struct {
	ID           uint64                  `json:"id"`
	TemplateID   uint64                  `json:"template_id"`
	TemplateName string                  `json:"template_name"`
	Status       models.SubmissionStatus `json:"status"`
	SubmittedBy  uint64                  `json:"submitted_by"`
	SubmittedAt  time.Time               `json:"submitted_at"`
	Submitter    *UserDTO                `json:"submitter,omitempty"`
}

// ToAnswerDTO converts an Answer model to AnswerDTO
func ToAnswerDTO(answer models.Answer) AnswerDTO {
	return AnswerDTO{
		FieldID:      answer.FieldID,
		FieldLabel:   answer.FieldLabel,
		FieldType:    answer.FieldType,
		SectionTitle: answer.SectionTitle,
		Value:        answer.Value,
		PhotoURLs:    answer.PhotoURLs,
	}
}

// ToSubmissionDTO converts a Submission model to SubmissionDTO
func ToSubmissionDTO(submission models.Submission) SubmissionDTO {
	dto := SubmissionDTO{
		ID:               submission.ID,
		TemplateID:       submission.TemplateID,
		TemplateName:     submission.TemplateName,
		TemplateCategory: submission.TemplateCategory,
		Status:           submission.Status,
		SubmittedBy:      submission.SubmittedBy,
		OrganizationID:   submission.OrganizationID,
		SubmittedAt:      submission.SubmittedAt,
	}

	if submission.Submitter.ID != 0 {
		submitter := ToUserDTO(submission.Submitter)
		dto.Submitter = &submitter
	}

	if len(submission.Answers) > 0 {
		dto.Answers = make([]AnswerDTO, len(submission.Answers))
		for i, answer := range submission.Answers {
			dto.Answers[i] = ToAnswerDTO(answer)
		}
	}

	return dto
}

// ToSubmissionListItemDTO converts a Submission model to SubmissionListItemDTO
func ToSubmissionListItemDTO(submission models.Submission) SubmissionListItemDTO {
	dto := SubmissionListItemDTO{
		ID:           submission.ID,
		TemplateID:   submission.TemplateID,
		TemplateName: submission.TemplateName,
		Status:       submission.Status,
		SubmittedBy:  submission.SubmittedBy,
		SubmittedAt:  submission.SubmittedAt,
	}

	if submission.Submitter.ID != 0 {
		submitter := ToUserDTO(submission.Submitter)
		dto.Submitter = &submitter
	}

	return dto
}
