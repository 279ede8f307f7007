package schema

import (
	"errors"
	"fmt"
)

var (
	ErrDropdownNeedsOptions  = errors.New("dropdown fields require at least one option")
	ErrNumberRangeInverted   = errors.New("number field min must not exceed max")
	ErrPhotoMaxFilesNegative = errors.New("photo field max_files cannot be negative")
	ErrSignatureDimensions   = errors.New("signature field dimensions cannot be negative")
)

// capability describes what a field type accepts and what it falls back to
// when no value was entered. All type-specific behavior is dispatched
// through this table rather than switched on type strings at call sites.
type capability struct {
	defaultValue   any
	isEmpty        func(value any) bool
	validateConfig func(cfg FieldConfig) error
}

func emptyString(value any) bool {
	s, ok := value.(string)
	return !ok || s == ""
}

func noConfig(FieldConfig) error { return nil }

var capabilities = map[FieldType]capability{
	FieldTypeText: {
		defaultValue:   "",
		isEmpty:        emptyString,
		validateConfig: noConfig,
	},
	FieldTypeTextarea: {
		defaultValue:   "",
		isEmpty:        emptyString,
		validateConfig: noConfig,
	},
	FieldTypeNumber: {
		defaultValue: nil,
		isEmpty: func(value any) bool {
			switch v := value.(type) {
			case float64, int, int64:
				return false
			case string:
				return v == ""
			default:
				return true
			}
		},
		validateConfig: func(cfg FieldConfig) error {
			if cfg.Min != nil && cfg.Max != nil && *cfg.Min > *cfg.Max {
				return ErrNumberRangeInverted
			}
			return nil
		},
	},
	FieldTypeDropdown: {
		defaultValue: "",
		isEmpty:      emptyString,
		validateConfig: func(cfg FieldConfig) error {
			if len(cfg.Options) == 0 {
				return ErrDropdownNeedsOptions
			}
			return nil
		},
	},
	FieldTypeCheckbox: {
		defaultValue: false,
		isEmpty: func(value any) bool {
			b, ok := value.(bool)
			return !ok || !b
		},
		validateConfig: noConfig,
	},
	FieldTypeDate: {
		defaultValue:   "",
		isEmpty:        emptyString,
		validateConfig: noConfig,
	},
	FieldTypeTime: {
		defaultValue:   "",
		isEmpty:        emptyString,
		validateConfig: noConfig,
	},
	FieldTypePhoto: {
		defaultValue: nil,
		isEmpty: func(value any) bool {
			switch v := value.(type) {
			case []string:
				return len(v) == 0
			case []any:
				return len(v) == 0
			case string:
				return v == ""
			default:
				return true
			}
		},
		validateConfig: func(cfg FieldConfig) error {
			if cfg.MaxFiles < 0 {
				return ErrPhotoMaxFilesNegative
			}
			return nil
		},
	},
	FieldTypeSignature: {
		defaultValue:   "",
		isEmpty:        emptyString,
		validateConfig: func(cfg FieldConfig) error {
			if cfg.Width < 0 || cfg.Height < 0 {
				return ErrSignatureDimensions
			}
			return nil
		},
	},
}

// DefaultValue returns the value used when a field of the given type was
// left unanswered.
func DefaultValue(t FieldType) any {
	return capabilities[t].defaultValue
}

// IsEmptyValue reports whether value counts as "no answer" for the field
// type. A false checkbox is empty: an unchecked required checkbox is the
// error condition itself.
func IsEmptyValue(t FieldType, value any) bool {
	c, ok := capabilities[t]
	if !ok {
		return value == nil
	}
	if value == nil {
		return true
	}
	return c.isEmpty(value)
}

// ValidateConfig checks the type-specific configuration payload.
func ValidateConfig(t FieldType, cfg FieldConfig) error {
	c, ok := capabilities[t]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownFieldType, t)
	}
	return c.validateConfig(cfg)
}
