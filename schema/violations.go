package schema

import "fmt"

// Severity classifies a validation violation.
type Severity string

const (
	// SeverityError marks a violation that blocks save.
	SeverityError Severity = "error"

	// SeverityWarning marks a best-effort finding that is reported but
	// does not block save, such as a control reference that cannot be
	// resolved against a known catalog.
	SeverityWarning Severity = "warning"
)

// Violation is a single field-level validation finding.
type Violation struct {
	// Entity locates the owning entity, e.g. "components[2]" or a
	// component key.
	Entity string

	// Field is the schema field at fault.
	Field string

	// Msg describes the finding.
	Msg string

	// Severity is error or warning.
	Severity Severity
}

func (v Violation) String() string {
	s := string(v.Severity)
	if v.Entity != "" {
		s += " " + v.Entity
	}
	if v.Field != "" {
		s += "." + v.Field
	}
	return fmt.Sprintf("%s: %s", s, v.Msg)
}

// Violations is the result of a post-construction validation pass.
type Violations []Violation

// Add appends an error-severity violation.
func (v *Violations) Add(entity, field, msg string) {
	*v = append(*v, Violation{Entity: entity, Field: field, Msg: msg, Severity: SeverityError})
}

// Warn appends a warning-severity violation.
func (v *Violations) Warn(entity, field, msg string) {
	*v = append(*v, Violation{Entity: entity, Field: field, Msg: msg, Severity: SeverityWarning})
}

// Errors returns only the error-severity violations.
func (v Violations) Errors() Violations {
	var out Violations
	for _, violation := range v {
		if violation.Severity == SeverityError {
			out = append(out, violation)
		}
	}
	return out
}

// OK reports whether no error-severity violations are present.
func (v Violations) OK() bool {
	return len(v.Errors()) == 0
}

// Err wraps the violations in a ValidationError for the given path, or
// returns nil if only warnings are present.
func (v Violations) Err(path string) error {
	errs := v.Errors()
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &ValidationError{
		Path:       path,
		Entity:     first.Entity,
		Field:      first.Field,
		Msg:        first.Msg,
		Violations: v,
	}
}
