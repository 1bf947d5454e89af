package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Control identifier patterns covering the common catalog families.
var (
	nist800171Pattern        = regexp.MustCompile(`^\d+\.\d+(\.\d+)*$`)
	nist80053SimplePattern   = regexp.MustCompile(`^([a-z]{2})-(\d+)$`)
	nist80053ExtendedPattern = regexp.MustCompile(`^([a-z]{2})-(\d+)\s*\((\d+)\)$`)
	nist80053PartPattern     = regexp.MustCompile(`^([a-z]{2})-(\d+)\.([a-z]+)$`)
	nist80053ExtPartPattern  = regexp.MustCompile(`^([a-z]{2})-(\d+)\s*\((\d+)\)\.([a-z]+)$`)
	catalogIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	controlIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._()-]*$`)
)

// OscalizeControlID normalizes a control identifier from the common source
// spellings to the standard form, e.g. "AC-01" -> "ac-1" and
// "AC-2 (1)" -> "ac-2.1". Identifiers that match no known family are
// returned lowercased and trimmed.
func OscalizeControlID(controlID string) string {
	id := strings.ToLower(strings.TrimSpace(controlID))

	// 1.2, 1.2.3, 1.2.3.4, ...
	if nist800171Pattern.MatchString(id) {
		return id
	}

	// AC-1
	if m := nist80053SimplePattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d", m[1], atoi(m[2]))
	}

	// AC-2(1)
	if m := nist80053ExtendedPattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d.%d", m[1], atoi(m[2]), atoi(m[3]))
	}

	// AC-1.a refers to the whole control
	if m := nist80053PartPattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d", m[1], atoi(m[2]))
	}

	// AC-2(1).b refers to the whole enhancement
	if m := nist80053ExtPartPattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d.%d", m[1], atoi(m[2]), atoi(m[3]))
	}

	return id
}

// ControlToStatementID constructs a statement identifier from a control
// identifier, e.g. "AC-1.a" -> "ac-1_smt.a".
func ControlToStatementID(controlID string) string {
	id := strings.ToLower(strings.TrimSpace(controlID))

	if nist800171Pattern.MatchString(id) {
		return id + "_smt"
	}

	if m := nist80053SimplePattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d_smt", m[1], atoi(m[2]))
	}

	if m := nist80053ExtendedPattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d.%d_smt", m[1], atoi(m[2]), atoi(m[3]))
	}

	if m := nist80053PartPattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d_smt.%s", m[1], atoi(m[2]), m[3])
	}

	if m := nist80053ExtPartPattern.FindStringSubmatch(id); m != nil {
		return fmt.Sprintf("%s-%d.%d_smt.%s", m[1], atoi(m[2]), atoi(m[3]), m[4])
	}

	return id + "_smt"
}

// StatementID constructs a statement identifier for one part of a control,
// e.g. ("ac-2", "a") -> "ac-2_smt.a". An empty part refers to the control
// in its entirety.
func StatementID(controlID, part string) string {
	id := OscalizeControlID(controlID) + "_smt"
	if part != "" {
		id += "." + part
	}
	return id
}

// QualifiedControlID is a control identifier qualified by the catalog it
// belongs to, written "catalog:control".
type QualifiedControlID struct {
	// Catalog is the catalog (standard) identifier prefix.
	Catalog string

	// Control is the control identifier within the catalog.
	Control string
}

func (q QualifiedControlID) String() string {
	return q.Catalog + ":" + q.Control
}

// ParseQualifiedControlID splits a "catalog:control" identifier. It fails
// when either side is empty or contains characters outside the identifier
// alphabet; resolvability against an actual catalog is not checked here.
func ParseQualifiedControlID(s string) (QualifiedControlID, error) {
	catalog, control, ok := strings.Cut(s, ":")
	if !ok {
		return QualifiedControlID{}, fmt.Errorf("malformed qualified control id %q: missing catalog prefix", s)
	}
	if !catalogIdentifierPattern.MatchString(catalog) {
		return QualifiedControlID{}, fmt.Errorf("malformed qualified control id %q: bad catalog identifier", s)
	}
	if !IsWellFormedControlID(control) {
		return QualifiedControlID{}, fmt.Errorf("malformed qualified control id %q: bad control identifier", s)
	}
	return QualifiedControlID{Catalog: catalog, Control: control}, nil
}

// IsWellFormedControlID reports whether a bare control identifier is
// syntactically valid, including statement-part suffixes such as
// "ac-2_smt.a".
func IsWellFormedControlID(s string) bool {
	base := s
	if i := strings.Index(s, "_smt"); i >= 0 {
		base = s[:i]
		suffix := s[i+len("_smt"):]
		if suffix != "" && !strings.HasPrefix(suffix, ".") {
			return false
		}
	}
	return controlIdentifierPattern.MatchString(base)
}

// IsWellFormedCatalogID reports whether a catalog (standard) identifier is
// syntactically valid.
func IsWellFormedCatalogID(s string) bool {
	return catalogIdentifierPattern.MatchString(s)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
