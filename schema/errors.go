package schema

import (
	"fmt"
)

// NotFoundError indicates a required file or path is absent.
type NotFoundError struct {
	// Path is the missing file or directory.
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// ParseError indicates malformed source text (YAML or JSON syntax).
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Err is the underlying decoder error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError indicates well-formed source that violates the schema:
// a missing required field, a duplicate key, a malformed identifier.
type ValidationError struct {
	// Path is the file containing the fault, if known.
	Path string

	// Entity identifies the offending entity (component key, control key).
	Entity string

	// Field is the schema field at fault, if the fault is field-level.
	Field string

	// Msg describes the violation.
	Msg string

	// Violations holds the full set when the error aggregates a
	// post-construction validation pass.
	Violations Violations
}

func (e *ValidationError) Error() string {
	s := "validation failed"
	if e.Path != "" {
		s += " in " + e.Path
	}
	if e.Entity != "" {
		s += fmt.Sprintf(" (entity %q)", e.Entity)
	}
	if e.Field != "" {
		s += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if n := len(e.Violations.Errors()); n > 0 {
		s += fmt.Sprintf(": %d violation(s)", n)
	}
	return s
}

// UnrecognizedLayoutError indicates a repository tree that matches neither
// the canonical nor any known alternate layout.
type UnrecognizedLayoutError struct {
	// Root is the repository root that failed structural detection.
	Root string
}

func (e *UnrecognizedLayoutError) Error() string {
	return fmt.Sprintf("unrecognized repository layout at %s", e.Root)
}

// ConversionError indicates the cross-format converter hit an unresolvable
// structural conflict, such as an ambiguous catalog identifier.
type ConversionError struct {
	// Entity identifies the entity being converted.
	Entity string

	// Msg describes the conflict.
	Msg string
}

func (e *ConversionError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("conversion failed for %q: %s", e.Entity, e.Msg)
	}
	return "conversion failed: " + e.Msg
}
