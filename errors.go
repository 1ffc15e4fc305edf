package cinit

import (
	"fmt"
	"strings"
)

// SyntaxError represents a malformed or unsupported token stream in a
// constant expression
type SyntaxError struct {
	Message  string
	Fragment string
}

func (e *SyntaxError) Error() string {
	if e.Fragment == "" {
		return e.Message
	}
	return fmt.Sprintf("%s near %q", e.Message, e.Fragment)
}

// ArithmeticError represents division or modulo by zero in an expression
type ArithmeticError struct {
	Op string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s by zero in expression", e.Op)
}

// UnresolvedIdentError represents an identifier outside the symbol table
type UnresolvedIdentError struct {
	Name string
}

func (e *UnresolvedIdentError) Error() string {
	return fmt.Sprintf("unknown identifier in expression: %s", e.Name)
}

// ParseError represents unbalanced delimiters or a missing required
// segment in one of the value decoders
type ParseError struct {
	Decoder  string
	Fragment string
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (fragment: %q)", e.Decoder, e.Message, e.Fragment)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}
