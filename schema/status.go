package schema

// ImplementationStatus describes how far a control implementation has
// progressed.
type ImplementationStatus string

const (
	StatusPartial  ImplementationStatus = "partial"
	StatusComplete ImplementationStatus = "complete"
	StatusPlanned  ImplementationStatus = "planned"
	StatusNone     ImplementationStatus = "none"
)

// IsValid reports whether the status is one of the known values.
func (s ImplementationStatus) IsValid() bool {
	switch s {
	case StatusPartial, StatusComplete, StatusPlanned, StatusNone:
		return true
	}
	return false
}
