package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Submission indexes for org-scoped listing and filtering
		{"submissions", "idx_submissions_organization_id", "organization_id"},
		{"submissions", "idx_submissions_template_id", "template_id"},
		{"submissions", "idx_submissions_submitted_by", "submitted_by"},
		{"submissions", "idx_submissions_status", "status"},
		{"submissions", "idx_submissions_submitted_at", "submitted_at"},

		// Answer lookup by submission
		{"answers", "idx_answers_submission_id", "submission_id"},

		// Schema tree traversal
		{"templates", "idx_templates_organization_id", "organization_id"},
		{"sections", "idx_sections_template_id", "template_id"},
		{"fields", "idx_fields_section_id", "section_id"},

		// Organization members indexes
		{"organization_members", "idx_org_members_organization_id", "organization_id"},
		{"organization_members", "idx_org_members_user_id", "user_id"},

		// Organization invite code index
		{"organizations", "idx_organizations_invite_code", "invite_code"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
