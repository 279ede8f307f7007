// Package validation checks an answer set against a template schema and
// produces a field-keyed error map.
package validation

import (
	"sort"

	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/schema"
)

const (
	MsgFieldRequired   = "This field is required"
	MsgCheckboxChecked = "This field must be checked"
)

// Validate walks the template's sections and fields in ascending order and
// returns one error message per offending field, keyed by field id. Only
// required fields are ever flagged: an absent, nil or empty value produces
// the generic required message, and a required checkbox that is not true
// produces the checkbox message instead. An empty map means the answer set
// is acceptable.
func Validate(template *models.Template, answers map[uint64]any) map[uint64]string {
	errs := make(map[uint64]string)

	for _, section := range SortedSections(template.Sections) {
		for _, field := range SortedFields(section.Fields) {
			if !field.Required {
				continue
			}

			value, present := answers[field.ID]
			if !present || value == nil || value == "" {
				errs[field.ID] = MsgFieldRequired
			}

			// The unchecked state of a required checkbox is itself the
			// error, not merely an empty value; its message wins.
			if field.Type == schema.FieldTypeCheckbox && schema.IsEmptyValue(field.Type, value) {
				errs[field.ID] = MsgCheckboxChecked
			}
		}
	}

	return errs
}

// SortedSections returns the sections ordered by ascending Order without
// mutating the input.
func SortedSections(sections []models.Section) []models.Section {
	sorted := make([]models.Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// SortedFields returns the fields ordered by ascending Order without
// mutating the input.
func SortedFields(fields []models.Field) []models.Field {
	sorted := make([]models.Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}
