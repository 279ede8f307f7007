package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldcheck/checklist-api/internal/database"
	"github.com/fieldcheck/checklist-api/internal/models"
)

// GormSubmissionRepository is a GORM implementation of SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Save persists a submission with its answers in one transaction. A
// client-supplied id that already exists overwrites the earlier row and
// its answers, so retried creates stay idempotent.
func (r *GormSubmissionRepository) Save(submission *models.Submission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if submission.ID != 0 {
			if err := tx.Where("submission_id = ?", submission.ID).
				Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}

		answers := submission.Answers
		submission.Answers = nil
		err := tx.Omit("Answers").
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(submission).Error
		submission.Answers = answers
		if err != nil {
			return err
		}

		for i := range answers {
			answers[i].ID = 0
			answers[i].SubmissionID = submission.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a submission by ID with optional preloading
func (r *GormSubmissionRepository) FindByID(id uint64, preload ...string) (*models.Submission, error) {
	var submission models.Submission
	query := r.db

	for _, p := range preload {
		if p == "Answers" {
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("answers.position ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&submission, id).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

// FindByIDAny looks a submission up by ID, including soft-deleted rows.
func (r *GormSubmissionRepository) FindByIDAny(id uint64) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.Unscoped().First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// List retrieves submissions with filtering and pagination
func (r *GormSubmissionRepository) List(filter SubmissionFilter) ([]models.Submission, int64, error) {
	var submissions []models.Submission

	if len(filter.OrganizationIDs) == 0 {
		return []models.Submission{}, 0, nil
	}

	query := r.db.Model(&models.Submission{}).
		Where("submissions.organization_id IN ?", filter.OrganizationIDs)

	if filter.TemplateID != nil {
		query = query.Where("submissions.template_id = ?", *filter.TemplateID)
	}
	if filter.SubmittedBy != nil {
		query = query.Where("submissions.submitted_by = ?", *filter.SubmittedBy)
	}
	if filter.Status != nil {
		query = query.Where("submissions.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("submissions.submitted_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Submitter").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// ReplaceAnswers updates the submission row and swaps the entire answer set
// inside a single transaction. Either every old answer is gone and every
// new answer written, or nothing changed.
func (r *GormSubmissionRepository) ReplaceAnswers(submission *models.Submission, answers []models.Answer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Answers").Save(submission).Error; err != nil {
			return err
		}

		if err := tx.Where("submission_id = ?", submission.ID).
			Delete(&models.Answer{}).Error; err != nil {
			return err
		}

		for i := range answers {
			answers[i].ID = 0
			answers[i].SubmissionID = submission.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}

		submission.Answers = answers
		return nil
	})
}

// Delete deletes a submission and cascades to its answers
func (r *GormSubmissionRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Submission{}, id).Error
	})
}
