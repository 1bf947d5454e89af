package opencontrol

import (
	"fmt"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/openctrl/complianceio/schema"
)

// Schema versions written for newly built entities.
const (
	SchemaVersion          = "1.0.0"
	ComponentSchemaVersion = "3.1.0"
)

// Repository is the root of an OpenControl repository: top-level metadata
// plus the components, standards, and certifications resolved from their
// individual files.
type Repository struct {
	// SchemaVersion is the repository schema version.
	SchemaVersion string

	// Name is the repository (system) name.
	Name string

	// Metadata is the optional top-level metadata block.
	Metadata *Metadata

	// Components are the system components, in root-file order.
	Components []*Component

	// Standards are the control catalogs referenced by the components,
	// in root-file order.
	Standards []*Standard

	// Certifications are the certification baselines, in root-file order.
	Certifications []*Certification

	// Dependencies are external repository dependencies, grouped by kind.
	Dependencies map[string][]Dependency

	// Extras carries root-file fields unknown to the canonical schema.
	Extras schema.Extras
}

// Metadata is the repository description block.
type Metadata struct {
	Description string   `yaml:"description,omitempty"`
	Maintainers []string `yaml:"maintainers,omitempty"`
}

// Dependency references an external OpenControl repository.
type Dependency struct {
	URL        string `yaml:"url"`
	Revision   string `yaml:"revision"`
	ContextDir string `yaml:"contextdir,omitempty"`
}

// Reference is a link attached to a component or control.
type Reference struct {
	Name string `yaml:"name"`
	Path string `yaml:"path,omitempty"`
	Type string `yaml:"type,omitempty"`
}

// Verification is an audit artifact attached to a component.
type Verification struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Path        string `yaml:"path,omitempty"`
	Description string `yaml:"description,omitempty"`
	TestPassed  *bool  `yaml:"test_passed,omitempty"`
	LastRun     string `yaml:"last_run,omitempty"`
}

// Statement is one narrative response, optionally keyed to a control part.
type Statement struct {
	// Key identifies the control part this statement responds to, e.g.
	// "a". Empty means the statement covers the whole control.
	Key string `yaml:"key,omitempty"`

	// Text is the narrative response.
	Text string `yaml:"text"`
}

// Parameter is a control parameter assignment.
type Parameter struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

// CoveredBy references a verification that covers a control.
type CoveredBy struct {
	VerificationKey string `yaml:"verification_key"`
	SystemKey       string `yaml:"system_key,omitempty"`
	ComponentKey    string `yaml:"component_key,omitempty"`
}

// Control is one control implementation: the narrative describing how the
// owning component satisfies a control from a standard.
type Control struct {
	// ControlKey identifies the control within its standard, e.g. "AC-2".
	ControlKey string `yaml:"control_key"`

	// StandardKey names the standard the control belongs to.
	StandardKey string `yaml:"standard_key"`

	// Narrative holds the per-statement responses, in document order.
	Narrative []Statement `yaml:"narrative,omitempty"`

	// Parameters are control parameter assignments.
	Parameters []Parameter `yaml:"parameters,omitempty"`

	// CoveredBy references verifications covering this control.
	CoveredBy []CoveredBy `yaml:"covered_by,omitempty"`

	// ImplementationStatuses marks implementation progress.
	ImplementationStatuses []schema.ImplementationStatus `yaml:"implementation_statuses,omitempty"`

	// ControlOrigins records where the implementation originates.
	ControlOrigins []string `yaml:"control_origins,omitempty"`

	// Extras carries fields unknown to the canonical schema.
	Extras schema.Extras `yaml:"-"`
}

var controlKnownKeys = []string{
	"control_key", "standard_key", "narrative", "parameters", "covered_by",
	"implementation_statuses", "control_origins",
}

// UnmarshalYAML decodes the canonical fields and collects unknown ones
// into Extras.
func (c *Control) UnmarshalYAML(value *yaml.Node) error {
	type plain Control
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Control(p)

	extras, err := schema.UnknownYAML(value, controlKnownKeys...)
	if err != nil {
		return err
	}
	c.Extras = extras
	return nil
}

// MarshalYAML re-emits the canonical fields followed by Extras.
func (c *Control) MarshalYAML() (any, error) {
	type plain Control
	var node yaml.Node
	if err := node.Encode((*plain)(c)); err != nil {
		return nil, err
	}
	if err := schema.AppendYAML(&node, c.Extras); err != nil {
		return nil, err
	}
	return &node, nil
}

// Component is one system component and the controls it satisfies.
type Component struct {
	// SchemaVersion is the component schema version.
	SchemaVersion string `yaml:"schema_version,omitempty"`

	// Key identifies the component within the repository. When empty the
	// slug of Name is used.
	Key string `yaml:"key,omitempty"`

	// Name is the component display name.
	Name string `yaml:"name"`

	// System optionally names the owning system.
	System string `yaml:"system,omitempty"`

	// DocumentationComplete marks narrative documentation as finished.
	DocumentationComplete *bool `yaml:"documentation_complete,omitempty"`

	// ResponsibleRole names the role responsible for the component.
	ResponsibleRole string `yaml:"responsible_role,omitempty"`

	// References are links attached to the component.
	References []Reference `yaml:"references,omitempty"`

	// Verifications are audit artifacts attached to the component.
	Verifications []Verification `yaml:"verifications,omitempty"`

	// Satisfies lists the control implementations, in document order.
	Satisfies []*Control `yaml:"satisfies,omitempty"`

	// Extras carries fields unknown to the canonical schema.
	Extras schema.Extras `yaml:"-"`
}

var componentKnownKeys = []string{
	"schema_version", "key", "name", "system", "documentation_complete",
	"responsible_role", "references", "verifications", "satisfies",
}

// UnmarshalYAML decodes the canonical fields and collects unknown ones
// into Extras.
func (c *Component) UnmarshalYAML(value *yaml.Node) error {
	type plain Component
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Component(p)

	extras, err := schema.UnknownYAML(value, componentKnownKeys...)
	if err != nil {
		return err
	}
	c.Extras = extras
	return nil
}

// MarshalYAML re-emits the canonical fields followed by Extras.
func (c *Component) MarshalYAML() (any, error) {
	type plain Component
	var node yaml.Node
	if err := node.Encode((*plain)(c)); err != nil {
		return nil, err
	}
	if err := schema.AppendYAML(&node, c.Extras); err != nil {
		return nil, err
	}
	return &node, nil
}

// EffectiveKey returns Key, falling back to the slug of Name.
func (c *Component) EffectiveKey() string {
	if c.Key != "" {
		return c.Key
	}
	return slug.Make(c.Name)
}

// Control returns the control implementation for a (standard, control)
// pair, or nil.
func (c *Component) Control(standardKey, controlKey string) *Control {
	for _, control := range c.Satisfies {
		if control.StandardKey == standardKey && control.ControlKey == controlKey {
			return control
		}
	}
	return nil
}

// StandardControl is one catalog entry of a standard.
type StandardControl struct {
	Family      string `yaml:"family"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Standard is a named control catalog. Control entries keep their file
// order so that a load/save cycle is diff-stable.
type Standard struct {
	// Name is the standard name, e.g. "NIST-800-53".
	Name string

	// License is the optional catalog license.
	License string

	// Source is the optional catalog source URL.
	Source string

	// ControlKeys holds the control identifiers in file order.
	ControlKeys []string

	// Controls maps control identifiers to their catalog entries.
	Controls map[string]StandardControl

	// Extras carries fields unknown to the canonical schema.
	Extras schema.Extras
}

// Control returns the catalog entry for a control key.
func (s *Standard) Control(key string) (StandardControl, bool) {
	sc, ok := s.Controls[key]
	return sc, ok
}

// UnmarshalYAML decodes the standard file layout: name/license/source
// scalars plus one mapping entry per control.
func (s *Standard) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("standard must be a mapping")
	}
	s.Controls = make(map[string]StandardControl)

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valueNode := value.Content[i], value.Content[i+1]
		switch keyNode.Value {
		case "name":
			s.Name = valueNode.Value
		case "license":
			s.License = valueNode.Value
		case "source":
			s.Source = valueNode.Value
		default:
			if valueNode.Kind == yaml.MappingNode && mappingHasKey(valueNode, "family") {
				var sc StandardControl
				if err := valueNode.Decode(&sc); err != nil {
					return fmt.Errorf("control %q: %w", keyNode.Value, err)
				}
				s.ControlKeys = append(s.ControlKeys, keyNode.Value)
				s.Controls[keyNode.Value] = sc
				continue
			}
			var v any
			if err := valueNode.Decode(&v); err != nil {
				return fmt.Errorf("field %q: %w", keyNode.Value, err)
			}
			s.Extras = append(s.Extras, schema.Extra{Key: keyNode.Value, Value: v})
		}
	}
	return nil
}

// MarshalYAML re-emits the standard file layout with controls in their
// original order.
func (s *Standard) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendScalar := func(key, value string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}

	appendScalar("name", s.Name)
	if s.License != "" {
		appendScalar("license", s.License)
	}
	if s.Source != "" {
		appendScalar("source", s.Source)
	}
	for _, key := range s.ControlKeys {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(s.Controls[key]); err != nil {
			return nil, fmt.Errorf("control %q: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key}, valueNode)
	}
	if err := schema.AppendYAML(node, s.Extras); err != nil {
		return nil, err
	}
	return node, nil
}

// Certification is a certification baseline: for each standard, the set of
// controls the certification requires.
type Certification struct {
	// Name is the certification name, e.g. "FedRAMP-low".
	Name string `yaml:"name"`

	// Standards maps standard names to their required controls.
	Standards map[string]map[string]any `yaml:"standards"`

	// Extras carries fields unknown to the canonical schema.
	Extras schema.Extras `yaml:"-"`
}

var certificationKnownKeys = []string{"name", "standards"}

// UnmarshalYAML decodes the canonical fields and collects unknown ones
// into Extras.
func (c *Certification) UnmarshalYAML(value *yaml.Node) error {
	type plain Certification
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Certification(p)

	extras, err := schema.UnknownYAML(value, certificationKnownKeys...)
	if err != nil {
		return err
	}
	c.Extras = extras
	return nil
}

// MarshalYAML re-emits the canonical fields followed by Extras.
func (c *Certification) MarshalYAML() (any, error) {
	type plain Certification
	var node yaml.Node
	if err := node.Encode((*plain)(c)); err != nil {
		return nil, err
	}
	if err := schema.AppendYAML(&node, c.Extras); err != nil {
		return nil, err
	}
	return &node, nil
}

// StandardKeys returns the standards named by the certification.
func (c *Certification) StandardKeys() []string {
	keys := make([]string, 0, len(c.Standards))
	for k := range c.Standards {
		keys = append(keys, k)
	}
	return keys
}

// Component returns the component with the given key, or nil.
func (r *Repository) Component(key string) *Component {
	for _, c := range r.Components {
		if c.EffectiveKey() == key {
			return c
		}
	}
	return nil
}

// AddComponent appends a component, rejecting duplicate keys.
func (r *Repository) AddComponent(c *Component) error {
	key := c.EffectiveKey()
	if r.Component(key) != nil {
		return fmt.Errorf("component %q already in repository", key)
	}
	r.Components = append(r.Components, c)
	return nil
}

// Standard returns the standard with the given name, or nil.
func (r *Repository) Standard(name string) *Standard {
	for _, s := range r.Standards {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Validate runs the post-construction validation pass over the whole
// repository and returns every field-level violation found.
func (r *Repository) Validate() schema.Violations {
	var v schema.Violations

	if r.Name == "" {
		v.Add("", "name", "required field missing")
	}
	if r.SchemaVersion == "" {
		v.Add("", "schema_version", "required field missing")
	}

	seenComponents := make(map[string]bool)
	for i, c := range r.Components {
		entity := fmt.Sprintf("components[%d]", i)
		if c.Name == "" {
			v.Add(entity, "name", "required field missing")
		}
		key := c.EffectiveKey()
		if seenComponents[key] {
			v.Add(entity, "key", fmt.Sprintf("duplicate component key %q", key))
		}
		seenComponents[key] = true

		seenControls := make(map[string]bool)
		for j, control := range c.Satisfies {
			centity := fmt.Sprintf("%s.satisfies[%d]", entity, j)
			if control.ControlKey == "" {
				v.Add(centity, "control_key", "required field missing")
			}
			if control.StandardKey == "" {
				v.Add(centity, "standard_key", "required field missing")
			}
			triple := control.StandardKey + "\x00" + control.ControlKey
			if seenControls[triple] {
				v.Add(centity, "control_key", fmt.Sprintf(
					"duplicate control %s %s for component %q",
					control.StandardKey, control.ControlKey, key))
			}
			seenControls[triple] = true

			for _, status := range control.ImplementationStatuses {
				if !status.IsValid() {
					v.Add(centity, "implementation_statuses",
						fmt.Sprintf("unknown status %q", status))
				}
			}
		}
	}

	seenStandards := make(map[string]bool)
	for i, s := range r.Standards {
		entity := fmt.Sprintf("standards[%d]", i)
		if s.Name == "" {
			v.Add(entity, "name", "required field missing")
		}
		if seenStandards[s.Name] {
			v.Add(entity, "name", fmt.Sprintf("duplicate standard %q", s.Name))
		}
		seenStandards[s.Name] = true
	}

	return v
}

func mappingHasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
