package opencontrol

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/openctrl/complianceio/schema"
)

// Layout names a repository component-file layout.
type Layout string

const (
	// LayoutAuto selects the layout by structural detection.
	LayoutAuto Layout = ""

	// LayoutCanonical is the standard layout: each component file carries
	// its controls inline under "satisfies".
	LayoutCanonical Layout = "canonical"

	// LayoutFen is the alternate layout in which a component file's
	// "satisfies" lists per-family control files next to it.
	LayoutFen Layout = "fen"
)

// layoutMatcher detects and resolves one component-file layout. Matchers
// are evaluated in order; each returns a definite match or no-match, and
// the fallback when none matches is an UnrecognizedLayoutError.
type layoutMatcher struct {
	name    Layout
	matches func(doc *yaml.Node) bool
	resolve func(l *loader, doc *yaml.Node, path string) (*Component, error)
}

var layoutMatchers = []layoutMatcher{
	{name: LayoutCanonical, matches: matchesCanonical, resolve: resolveCanonical},
	{name: LayoutFen, matches: matchesFen, resolve: resolveFen},
}

// resolveComponentFile runs the matcher list (or the hinted matcher alone)
// over one component document.
func (l *loader) resolveComponentFile(doc *yaml.Node, path string) (*Component, error) {
	if l.layout != LayoutAuto {
		for _, m := range layoutMatchers {
			if m.name != l.layout {
				continue
			}
			if !m.matches(doc) {
				return nil, &schema.UnrecognizedLayoutError{Root: l.root}
			}
			return m.resolve(l, doc, path)
		}
		return nil, fmt.Errorf("unknown layout hint %q", l.layout)
	}

	for _, m := range layoutMatchers {
		if m.matches(doc) {
			l.logger.Debug("matched component layout",
				slog.String("layout", string(m.name)), slog.String("path", path))
			return m.resolve(l, doc, path)
		}
	}
	return nil, &schema.UnrecognizedLayoutError{Root: l.root}
}

// satisfiesNode returns the "satisfies" value node of a component mapping.
func satisfiesNode(doc *yaml.Node) *yaml.Node {
	if doc == nil || doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "satisfies" {
			return doc.Content[i+1]
		}
	}
	return nil
}

// matchesCanonical accepts component files whose satisfies entries are
// inline control mappings, or which have no satisfies at all.
func matchesCanonical(doc *yaml.Node) bool {
	if doc == nil || doc.Kind != yaml.MappingNode {
		return false
	}
	satisfies := satisfiesNode(doc)
	if satisfies == nil || satisfies.Kind == yaml.ScalarNode && satisfies.Value == "" {
		return true
	}
	if satisfies.Kind != yaml.SequenceNode {
		return false
	}
	if len(satisfies.Content) == 0 {
		return true
	}
	return satisfies.Content[0].Kind == yaml.MappingNode
}

// matchesFen accepts component files whose satisfies entries are file
// names of per-family control files.
func matchesFen(doc *yaml.Node) bool {
	if doc == nil || doc.Kind != yaml.MappingNode {
		return false
	}
	satisfies := satisfiesNode(doc)
	if satisfies == nil || satisfies.Kind != yaml.SequenceNode || len(satisfies.Content) == 0 {
		return false
	}
	return satisfies.Content[0].Kind == yaml.ScalarNode && satisfies.Content[0].Value != ""
}

func resolveCanonical(l *loader, doc *yaml.Node, path string) (*Component, error) {
	var c Component
	if err := doc.Decode(&c); err != nil {
		return nil, &schema.ParseError{Path: path, Err: err}
	}
	return &c, nil
}

// fenComponent is the component file shape of the fen layout.
type fenComponent struct {
	SchemaVersion string   `yaml:"schema_version"`
	Key           string   `yaml:"key"`
	Name          string   `yaml:"name"`
	Satisfies     []string `yaml:"satisfies"`
}

var fenComponentKnownKeys = []string{"schema_version", "key", "name", "satisfies"}

// fenFamily is one per-family control file of the fen layout.
type fenFamily struct {
	SchemaVersion string     `yaml:"schema_version"`
	Family        string     `yaml:"family"`
	Satisfies     []*Control `yaml:"satisfies"`
}

var fenFamilyKnownKeys = []string{"schema_version", "family", "satisfies"}

// resolveFen normalizes a fen-layout component into the canonical shape.
// Normalization is conversion-only: family names and any fields unknown to
// the canonical schema are preserved in the component's extras bag.
func resolveFen(l *loader, doc *yaml.Node, path string) (*Component, error) {
	var fc fenComponent
	if err := doc.Decode(&fc); err != nil {
		return nil, &schema.ParseError{Path: path, Err: err}
	}
	extras, err := schema.UnknownYAML(doc, fenComponentKnownKeys...)
	if err != nil {
		return nil, &schema.ParseError{Path: path, Err: err}
	}

	c := &Component{
		SchemaVersion: fc.SchemaVersion,
		Key:           fc.Key,
		Name:          fc.Name,
		Extras:        extras,
	}

	var families []any
	for _, satisfier := range fc.Satisfies {
		familyPath := filepath.Join(filepath.Dir(path), satisfier)
		data, err := os.ReadFile(familyPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &schema.NotFoundError{Path: familyPath}
			}
			return nil, fmt.Errorf("read family file: %w", err)
		}
		l.logger.Debug("read file", slog.String("path", familyPath))

		var familyDoc yaml.Node
		if err := yaml.Unmarshal(data, &familyDoc); err != nil {
			return nil, &schema.ParseError{Path: familyPath, Err: err}
		}
		if len(familyDoc.Content) == 0 {
			continue
		}

		var family fenFamily
		if err := familyDoc.Content[0].Decode(&family); err != nil {
			return nil, &schema.ParseError{Path: familyPath, Err: err}
		}
		familyExtras, err := schema.UnknownYAML(familyDoc.Content[0], fenFamilyKnownKeys...)
		if err != nil {
			return nil, &schema.ParseError{Path: familyPath, Err: err}
		}

		c.Satisfies = append(c.Satisfies, family.Satisfies...)

		record := map[string]any{"family": family.Family}
		for _, extra := range familyExtras {
			record[extra.Key] = extra.Value
		}
		families = append(families, record)
	}
	if len(families) > 0 {
		c.Extras.Set("families", families)
	}
	return c, nil
}
