// Package schema provides the validated value types shared by both
// compliance-document families: control and statement identifiers,
// implementation statuses, field-level validation violations, the error
// taxonomy, and the ordered unknown-field bag used for forward-compatible
// round-tripping.
package schema
