// Package component provides the OSCAL component-definition document: the
// components a system is built from and the control-implementation
// statements describing how each one satisfies its controls.
package component

import (
	"fmt"
	"strings"

	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

// Component types defined by the component-definition model.
const (
	TypeSoftware        = "software"
	TypeHardware        = "hardware"
	TypeService         = "service"
	TypeInterconnection = "interconnection"
	TypePolicy          = "policy"
	TypeProcess         = "process"
	TypeProcedure       = "procedure"
	TypePlan            = "plan"
	TypeGuidance        = "guidance"
	TypeStandard        = "standard"
	TypeValidation      = "validation"
)

// Definition is a component-definition document.
type Definition struct {
	UUID                       string                      `json:"uuid"`
	Metadata                   oscal.Metadata              `json:"metadata"`
	ImportComponentDefinitions []ImportComponentDefinition `json:"import-component-definitions,omitempty"`
	Components                 []*Component                `json:"components,omitempty"`
	Capabilities               []*Capability               `json:"capabilities,omitempty"`
	BackMatter                 *oscal.BackMatter           `json:"back-matter,omitempty"`

	// Extras carries root-level fields unknown to this schema version.
	Extras schema.Extras `json:"-"`
}

// ImportComponentDefinition pulls components in from another document.
type ImportComponentDefinition struct {
	Href string `json:"href"`
}

// Component is one defined component.
type Component struct {
	UUID                   string                   `json:"uuid"`
	Type                   string                   `json:"type"`
	Title                  string                   `json:"title"`
	Description            string                   `json:"description"`
	Purpose                string                   `json:"purpose,omitempty"`
	Props                  []oscal.Property         `json:"props,omitempty"`
	Links                  []oscal.Link             `json:"links,omitempty"`
	ResponsibleRoles       []oscal.ResponsibleRole  `json:"responsible-roles,omitempty"`
	ControlImplementations []*ControlImplementation `json:"control-implementations,omitempty"`
	Remarks                string                   `json:"remarks,omitempty"`

	Extras schema.Extras `json:"-"`
}

// ControlImplementation groups the requirements a component implements
// from one control source (catalog or profile).
type ControlImplementation struct {
	UUID                    string                    `json:"uuid"`
	Source                  string                    `json:"source"`
	Description             string                    `json:"description"`
	Props                   []oscal.Property          `json:"props,omitempty"`
	Links                   []oscal.Link              `json:"links,omitempty"`
	SetParameters           []oscal.SetParameter      `json:"set-parameters,omitempty"`
	ImplementedRequirements []*ImplementedRequirement `json:"implemented-requirements"`

	Extras schema.Extras `json:"-"`
}

// ImplementedRequirement describes how one control is satisfied.
type ImplementedRequirement struct {
	UUID             string                  `json:"uuid"`
	ControlID        string                  `json:"control-id"`
	Description      string                  `json:"description"`
	Props            []oscal.Property        `json:"props,omitempty"`
	Links            []oscal.Link            `json:"links,omitempty"`
	SetParameters    []oscal.SetParameter    `json:"set-parameters,omitempty"`
	ResponsibleRoles []oscal.ResponsibleRole `json:"responsible-roles,omitempty"`
	Statements       []*Statement            `json:"statements,omitempty"`
	Remarks          string                  `json:"remarks,omitempty"`

	Extras schema.Extras `json:"-"`
}

// Statement describes how one part of a control is satisfied. Its
// statement identifier may be catalog-qualified ("catalog:control_smt.a")
// or a bare statement identifier.
type Statement struct {
	StatementID      string                  `json:"statement-id"`
	UUID             string                  `json:"uuid"`
	Description      string                  `json:"description"`
	Props            []oscal.Property        `json:"props,omitempty"`
	Links            []oscal.Link            `json:"links,omitempty"`
	ResponsibleRoles []oscal.ResponsibleRole `json:"responsible-roles,omitempty"`
	Remarks          string                  `json:"remarks,omitempty"`

	Extras schema.Extras `json:"-"`
}

// Capability groups components into a larger capability.
type Capability struct {
	UUID                   string                   `json:"uuid"`
	Name                   string                   `json:"name"`
	Description            string                   `json:"description"`
	Props                  []oscal.Property         `json:"props,omitempty"`
	Links                  []oscal.Link             `json:"links,omitempty"`
	ControlImplementations []*ControlImplementation `json:"control-implementations,omitempty"`
	IncorporatesComponents []IncorporatesComponent  `json:"incorporates-components,omitempty"`
}

// IncorporatesComponent references a component included in a capability.
type IncorporatesComponent struct {
	ComponentUUID string `json:"component-uuid"`
	Description   string `json:"description"`
}

// New builds an empty component definition with fresh identifiers.
func New(title, version string) *Definition {
	return &Definition{
		UUID:     oscal.NewUUID(),
		Metadata: oscal.NewMetadata(title, version),
	}
}

// NewComponent builds a defined component of the given type.
func NewComponent(componentType, title, description string) *Component {
	return &Component{
		UUID:        oscal.NewUUID(),
		Type:        componentType,
		Title:       title,
		Description: description,
	}
}

// AddComponent appends a component, rejecting duplicate component uuids.
func (d *Definition) AddComponent(c *Component) error {
	for _, existing := range d.Components {
		if existing.UUID == c.UUID {
			return fmt.Errorf("component %s already in definition", c.UUID)
		}
	}
	d.Components = append(d.Components, c)
	return nil
}

// Component returns the component with the given uuid, or nil.
func (d *Definition) Component(uuid string) *Component {
	for _, c := range d.Components {
		if c.UUID == uuid {
			return c
		}
	}
	return nil
}

// AddControlImplementation appends a control implementation group.
func (c *Component) AddControlImplementation(ci *ControlImplementation) {
	c.ControlImplementations = append(c.ControlImplementations, ci)
}

// AddStatement appends a statement, rejecting duplicate statement ids
// within the requirement.
func (ir *ImplementedRequirement) AddStatement(s *Statement) error {
	for _, existing := range ir.Statements {
		if existing.StatementID == s.StatementID {
			return fmt.Errorf("statement %s already in requirement for %s",
				s.StatementID, ir.ControlID)
		}
	}
	ir.Statements = append(ir.Statements, s)
	return nil
}

// Validate runs the post-construction validation pass and returns every
// field-level violation found.
func (d *Definition) Validate() schema.Violations {
	return d.ValidateWith(nil)
}

// ValidateWith validates like Validate and additionally resolves every
// statement's control identifier against the resolver, flagging unresolved
// references as warnings. References are retained either way.
func (d *Definition) ValidateWith(resolver oscal.CatalogResolver) schema.Violations {
	var v schema.Violations

	if !oscal.IsUUID(d.UUID) {
		v.Add("", "uuid", "document uuid is not a valid uuid")
	}
	d.Metadata.Validate("metadata", &v)

	if len(d.Components) == 0 && len(d.Capabilities) == 0 {
		v.Add("", "components", "document defines no components or capabilities")
	}

	seenComponents := make(map[string]bool)
	for i, c := range d.Components {
		entity := fmt.Sprintf("components[%d]", i)
		if !oscal.IsUUID(c.UUID) {
			v.Add(entity, "uuid", "component uuid is not a valid uuid")
		}
		if seenComponents[c.UUID] {
			v.Add(entity, "uuid", fmt.Sprintf("duplicate component uuid %s", c.UUID))
		}
		seenComponents[c.UUID] = true
		if c.Title == "" {
			v.Add(entity, "title", "required field missing")
		}
		if c.Type == "" {
			v.Add(entity, "type", "required field missing")
		}

		for j, ci := range c.ControlImplementations {
			cientity := fmt.Sprintf("%s.control-implementations[%d]", entity, j)
			if ci.Source == "" {
				v.Add(cientity, "source", "required field missing")
			}
			for k, ir := range ci.ImplementedRequirements {
				irentity := fmt.Sprintf("%s.implemented-requirements[%d]", cientity, k)
				validateRequirement(ir, irentity, resolver, &v)
			}
		}
	}

	return v
}

func validateRequirement(ir *ImplementedRequirement, entity string, resolver oscal.CatalogResolver, v *schema.Violations) {
	if ir.ControlID == "" {
		v.Add(entity, "control-id", "required field missing")
	} else if !schema.IsWellFormedControlID(ir.ControlID) {
		v.Add(entity, "control-id", fmt.Sprintf("malformed control id %q", ir.ControlID))
	} else if resolver != nil && !resolver.ResolveControlID(ir.ControlID) {
		v.Warn(entity, "control-id", fmt.Sprintf("control id %q not found in any known catalog", ir.ControlID))
	}

	seen := make(map[string]bool)
	for _, s := range ir.Statements {
		if seen[s.StatementID] {
			v.Add(entity, "statements", fmt.Sprintf("duplicate statement id %s", s.StatementID))
		}
		seen[s.StatementID] = true
		validateStatementID(s.StatementID, entity, resolver, v)
	}
}

// validateStatementID checks the syntax of a statement identifier: either
// catalog-qualified or a bare well-formed statement id.
func validateStatementID(id, entity string, resolver oscal.CatalogResolver, v *schema.Violations) {
	if id == "" {
		v.Add(entity, "statement-id", "required field missing")
		return
	}
	if strings.Contains(id, ":") {
		q, err := schema.ParseQualifiedControlID(id)
		if err != nil {
			v.Add(entity, "statement-id", err.Error())
			return
		}
		if resolver != nil && !resolver.ResolveControlID(q.Control) {
			v.Warn(entity, "statement-id", fmt.Sprintf("control id %q not found in any known catalog", id))
		}
		return
	}
	if !schema.IsWellFormedControlID(id) {
		v.Add(entity, "statement-id", fmt.Sprintf("malformed statement id %q", id))
	}
}
