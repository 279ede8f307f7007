package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fieldcheck/checklist-api/internal/database"
	"github.com/fieldcheck/checklist-api/internal/models"
)

// ErrOrderSwapMismatch is returned when the two rows of an order swap do
// not belong to the same template.
var ErrOrderSwapMismatch = errors.New("template repository: rows belong to different templates")

// GormTemplateRepository is a GORM implementation of TemplateRepository
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Create creates a template together with its sections and fields
func (r *GormTemplateRepository) Create(template *models.Template) error {
	return r.db.Create(template).Error
}

// FindByID finds a template with its sections and fields preloaded
func (r *GormTemplateRepository) FindByID(id uint64) (*models.Template, error) {
	var template models.Template
	if err := r.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.sort_order ASC")
		}).
		Preload("Sections.Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("fields.sort_order ASC")
		}).
		First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// List retrieves the organization's own templates plus public and system
// templates, with pagination
func (r *GormTemplateRepository) List(filter TemplateFilter) ([]models.Template, int64, error) {
	var templates []models.Template

	query := r.db.Model(&models.Template{}).
		Where("organization_id = ? OR is_public = ? OR organization_id IS NULL",
			filter.OrganizationID, true)

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("templates.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.sort_order ASC")
		}).
		Preload("Sections.Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("fields.sort_order ASC")
		}).
		Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// Update replaces the template row and its whole section/field tree
// atomically
func (r *GormTemplateRepository) Update(template *models.Template) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteTemplateTree(tx, template.ID); err != nil {
			return err
		}

		sections := template.Sections
		template.Sections = nil
		if err := tx.Omit("Sections").Save(template).Error; err != nil {
			template.Sections = sections
			return err
		}

		for i := range sections {
			sections[i].ID = 0
			sections[i].TemplateID = template.ID
			for j := range sections[i].Fields {
				sections[i].Fields[j].ID = 0
				sections[i].Fields[j].SectionID = 0
			}
		}
		if len(sections) > 0 {
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}
		template.Sections = sections
		return nil
	})
}

// Delete deletes a template and its sections and fields
func (r *GormTemplateRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteTemplateTree(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Template{}, id).Error
	})
}

// deleteTemplateTree hard-deletes every section and field under a template.
func deleteTemplateTree(tx *gorm.DB, templateID uint64) error {
	var sectionIDs []uint64
	if err := tx.Model(&models.Section{}).Where("template_id = ?", templateID).
		Pluck("id", &sectionIDs).Error; err != nil {
		return err
	}
	if len(sectionIDs) > 0 {
		if err := tx.Where("section_id IN ?", sectionIDs).Delete(&models.Field{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("template_id = ?", templateID).Delete(&models.Section{}).Error
}

// SwapSectionOrder exchanges the order values of two sections of the same
// template. Reordering is always a pairwise swap, never a full renumber.
func (r *GormTemplateRepository) SwapSectionOrder(templateID, sectionA, sectionB uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var a, b models.Section
		if err := tx.Where("template_id = ?", templateID).First(&a, sectionA).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", templateID).First(&b, sectionB).Error; err != nil {
			return err
		}

		// UpdateColumn writes the new value back into a, so both orders
		// must be captured before the first update runs.
		aOrder, bOrder := a.Order, b.Order
		if err := tx.Model(&a).UpdateColumn("sort_order", bOrder).Error; err != nil {
			return err
		}
		return tx.Model(&b).UpdateColumn("sort_order", aOrder).Error
	})
}

// SwapFieldOrder exchanges the order values of two fields belonging to the
// same template
func (r *GormTemplateRepository) SwapFieldOrder(templateID, fieldA, fieldB uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var a, b models.Field
		if err := tx.First(&a, fieldA).Error; err != nil {
			return err
		}
		if err := tx.First(&b, fieldB).Error; err != nil {
			return err
		}

		// Both fields must hang off the same template.
		var count int64
		if err := tx.Model(&models.Section{}).
			Where("template_id = ? AND id IN ?", templateID, []uint64{a.SectionID, b.SectionID}).
			Distinct("id").Count(&count).Error; err != nil {
			return err
		}
		sectionIDs := map[uint64]struct{}{a.SectionID: {}, b.SectionID: {}}
		if count != int64(len(sectionIDs)) {
			return ErrOrderSwapMismatch
		}

		aOrder, bOrder := a.Order, b.Order
		if err := tx.Model(&a).UpdateColumn("sort_order", bOrder).Error; err != nil {
			return err
		}
		return tx.Model(&b).UpdateColumn("sort_order", aOrder).Error
	})
}
