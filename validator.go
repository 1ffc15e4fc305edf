package cinit

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator defines the interface for raw field value validation
type Validator interface {
	Validate(value string) error
}

// Schema represents a validation schema for extracted FieldMaps. It covers
// the "expected field names per record" contract callers bring to the
// extraction: which fields must be present and what shape their raw value
// text must have.
type Schema struct {
	Rules map[string][]Validator
}

// NewSchema creates a new validation schema
func NewSchema() *Schema {
	return &Schema{
		Rules: make(map[string][]Validator),
	}
}

// AddRule adds a validation rule for a field
func (s *Schema) AddRule(field string, validators ...Validator) {
	s.Rules[field] = append(s.Rules[field], validators...)
}

// Validate validates one FieldMap against the schema, collecting every
// violation into a MultiError.
func (s *Schema) Validate(fields FieldMap) error {
	var errors MultiError
	s.validateFields("", fields, &errors)

	if errors.HasErrors() {
		return &errors
	}
	return nil
}

// ValidateEntries validates every entry of an IndexedEntryMap, prefixing
// field paths with the entry key.
func (s *Schema) ValidateEntries(entries IndexedEntryMap) error {
	var errors MultiError
	for key, fields := range entries {
		s.validateFields(key, fields, &errors)
	}

	if errors.HasErrors() {
		return &errors
	}
	return nil
}

func (s *Schema) validateFields(prefix string, fields FieldMap, errors *MultiError) {
	for field, validators := range s.Rules {
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		value, exists := fields[field]
		if !exists {
			for _, validator := range validators {
				if _, isRequired := validator.(RequiredValidator); isRequired {
					errors.Add(&ValidationError{
						Field:   path,
						Value:   nil,
						Message: "value is required",
					})
				}
			}
			continue
		}
		for _, validator := range validators {
			if err := validator.Validate(value); err != nil {
				errors.Add(&ValidationError{
					Field:   path,
					Value:   value,
					Message: err.Error(),
				})
			}
		}
	}
}

// Built-in validators

// RequiredValidator ensures a field is present with a non-empty value
type RequiredValidator struct{}

func (v RequiredValidator) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

// IntegerValidator ensures the raw value evaluates to an integer constant
type IntegerValidator struct {
	Env *Environment
}

func (v IntegerValidator) Validate(value string) error {
	if _, err := EvaluateWith(value, v.Env); err != nil {
		return fmt.Errorf("expected integer expression: %v", err)
	}
	return nil
}

// RangeValidator ensures the evaluated value lies within [Min, Max]
type RangeValidator struct {
	Min *int64
	Max *int64
	Env *Environment
}

func (v RangeValidator) Validate(value string) error {
	n, err := EvaluateWith(value, v.Env)
	if err != nil {
		return fmt.Errorf("expected integer expression: %v", err)
	}
	if v.Min != nil && n < *v.Min {
		return fmt.Errorf("value %d below minimum %d", n, *v.Min)
	}
	if v.Max != nil && n > *v.Max {
		return fmt.Errorf("value %d above maximum %d", n, *v.Max)
	}
	return nil
}

// PatternValidator ensures the raw value matches a regular expression
type PatternValidator struct {
	Pattern string
}

func (v PatternValidator) Validate(value string) error {
	re, err := regexp.Compile(v.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %v", err)
	}
	if !re.MatchString(value) {
		return fmt.Errorf("value does not match pattern %s", v.Pattern)
	}
	return nil
}

// OneOfValidator ensures the raw value is one of the allowed symbols
type OneOfValidator struct {
	Allowed []string
}

func (v OneOfValidator) Validate(value string) error {
	for _, allowed := range v.Allowed {
		if value == allowed {
			return nil
		}
	}
	return fmt.Errorf("value must be one of %v", v.Allowed)
}
