package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownFieldType is returned for any type outside the closed set.
var ErrUnknownFieldType = errors.New("unknown field type")

// FieldType is the closed set of field variants a template may use.
// It is not extensible at runtime; anything outside this set is rejected
// at template creation time.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeNumber    FieldType = "number"
	FieldTypeDropdown  FieldType = "dropdown"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeDate      FieldType = "date"
	FieldTypeTime      FieldType = "time"
	FieldTypePhoto     FieldType = "photo"
	FieldTypeSignature FieldType = "signature"
)

// ParseFieldType converts a raw string into a FieldType, rejecting
// anything outside the closed set.
func ParseFieldType(s string) (FieldType, error) {
	t := FieldType(s)
	if _, ok := capabilities[t]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownFieldType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	_, ok := capabilities[t]
	return ok
}

// FieldConfig carries the type-specific configuration payload of a field.
// Only the portion relevant to the field's type is populated; the rest is
// left at zero values and omitted from JSON.
type FieldConfig struct {
	// Dropdown
	Options []string `json:"options,omitempty"`

	// Number
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`
	Unit string   `json:"unit,omitempty"`

	// Photo
	MaxFiles int `json:"max_files,omitempty"`

	// Signature
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}
