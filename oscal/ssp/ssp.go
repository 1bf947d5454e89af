// Package ssp provides the OSCAL system-security-plan document: the
// characteristics and components of one system and the statements
// describing how the system implements its controls.
package ssp

import (
	"fmt"
	"time"

	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

// ImportProfile references the control baseline the plan responds to.
type ImportProfile struct {
	Href    string `json:"href"`
	Remarks string `json:"remarks,omitempty"`
}

// Impact is a security objective impact level.
type Impact struct {
	Base                    string `json:"base"`
	Selected                string `json:"selected,omitempty"`
	AdjustmentJustification string `json:"adjustment-justification,omitempty"`
}

// Categorization ties an information type to a categorization system.
type Categorization struct {
	System             string   `json:"system"`
	InformationTypeIDs []string `json:"information-type-ids,omitempty"`
}

// InformationType describes one kind of information the system handles.
type InformationType struct {
	UUID                  string           `json:"uuid,omitempty"`
	Title                 string           `json:"title"`
	Description           string           `json:"description"`
	Categorizations       []Categorization `json:"categorizations,omitempty"`
	Props                 []oscal.Property `json:"props,omitempty"`
	Links                 []oscal.Link     `json:"links,omitempty"`
	ConfidentialityImpact Impact           `json:"confidentiality-impact"`
	IntegrityImpact       Impact           `json:"integrity-impact"`
	AvailabilityImpact    Impact           `json:"availability-impact"`
}

// SystemInformation lists the information types.
type SystemInformation struct {
	Props            []oscal.Property  `json:"props,omitempty"`
	Links            []oscal.Link      `json:"links,omitempty"`
	InformationTypes []InformationType `json:"information-types"`
}

// Diagram is one diagram attached to a network view.
type Diagram struct {
	UUID        string           `json:"uuid"`
	Description string           `json:"description,omitempty"`
	Props       []oscal.Property `json:"props,omitempty"`
	Links       []oscal.Link     `json:"links,omitempty"`
	Caption     string           `json:"caption,omitempty"`
	Remarks     string           `json:"remarks,omitempty"`
}

// NetworkDiagram is a described network view with optional diagrams.
type NetworkDiagram struct {
	Description string           `json:"description"`
	Props       []oscal.Property `json:"props,omitempty"`
	Links       []oscal.Link     `json:"links,omitempty"`
	Diagrams    []Diagram        `json:"diagrams,omitempty"`
	Remarks     string           `json:"remarks,omitempty"`
}

// SecurityImpactLevel holds the three security objective levels.
type SecurityImpactLevel struct {
	Confidentiality string `json:"security-objective-confidentiality"`
	Integrity       string `json:"security-objective-integrity"`
	Availability    string `json:"security-objective-availability"`
}

// SystemID is an externally assigned system identifier.
type SystemID struct {
	IdentifierType string `json:"identifier-type,omitempty"`
	ID             string `json:"id"`
}

// Status is an operational status marker.
type Status struct {
	State   string `json:"state"`
	Remarks string `json:"remarks,omitempty"`
}

// SystemCharacteristics describes the system itself.
type SystemCharacteristics struct {
	SystemIDs                []SystemID               `json:"system-ids"`
	SystemName               string                   `json:"system-name"`
	SystemNameShort          string                   `json:"system-name-short,omitempty"`
	Description              string                   `json:"description"`
	Props                    []oscal.Property         `json:"props,omitempty"`
	Links                    []oscal.Link             `json:"links,omitempty"`
	DateAuthorized           *time.Time               `json:"date-authorized,omitempty"`
	SecuritySensitivityLevel string                   `json:"security-sensitivity-level"`
	SystemInformation        SystemInformation        `json:"system-information"`
	SecurityImpactLevel      SecurityImpactLevel      `json:"security-impact-level"`
	Status                   Status                   `json:"status"`
	AuthorizationBoundary    NetworkDiagram           `json:"authorization-boundary"`
	NetworkArchitecture      *NetworkDiagram          `json:"network-architecture,omitempty"`
	DataFlow                 *NetworkDiagram          `json:"data-flow,omitempty"`
	ResponsibleParties       []oscal.ResponsibleParty `json:"responsible-parties,omitempty"`
	Remarks                  string                   `json:"remarks,omitempty"`
}

// User is one class of system user.
type User struct {
	UUID        string           `json:"uuid"`
	Title       string           `json:"title,omitempty"`
	ShortName   string           `json:"short-name,omitempty"`
	Description string           `json:"description,omitempty"`
	Props       []oscal.Property `json:"props,omitempty"`
	Links       []oscal.Link     `json:"links,omitempty"`
	RoleIDs     []string         `json:"role-ids,omitempty"`
	Remarks     string           `json:"remarks,omitempty"`
}

// Component is one component of the implemented system.
type Component struct {
	UUID             string                  `json:"uuid"`
	Type             string                  `json:"type"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Status           Status                  `json:"status"`
	Purpose          string                  `json:"purpose,omitempty"`
	Props            []oscal.Property        `json:"props,omitempty"`
	Links            []oscal.Link            `json:"links,omitempty"`
	ResponsibleRoles []oscal.ResponsibleRole `json:"responsible-roles,omitempty"`
	Remarks          string                  `json:"remarks,omitempty"`
}

// ImplementedComponent ties an inventory item to a component.
type ImplementedComponent struct {
	ComponentUUID      string                   `json:"component-uuid"`
	Props              []oscal.Property         `json:"props,omitempty"`
	Links              []oscal.Link             `json:"links,omitempty"`
	ResponsibleParties []oscal.ResponsibleParty `json:"responsible-parties,omitempty"`
	Remarks            string                   `json:"remarks,omitempty"`
}

// InventoryItem is one item of the system inventory.
type InventoryItem struct {
	UUID                  string                   `json:"uuid"`
	Description           string                   `json:"description"`
	Props                 []oscal.Property         `json:"props,omitempty"`
	Links                 []oscal.Link             `json:"links,omitempty"`
	ResponsibleParties    []oscal.ResponsibleParty `json:"responsible-parties,omitempty"`
	ImplementedComponents []ImplementedComponent   `json:"implemented-components,omitempty"`
	Remarks               string                   `json:"remarks,omitempty"`
}

// LeveragedAuthorization records an authorization the system inherits.
type LeveragedAuthorization struct {
	UUID           string           `json:"uuid"`
	Title          string           `json:"title"`
	Props          []oscal.Property `json:"props,omitempty"`
	Links          []oscal.Link     `json:"links,omitempty"`
	PartyUUID      string           `json:"party-uuid"`
	DateAuthorized time.Time        `json:"date-authorized"`
	Remarks        string           `json:"remarks,omitempty"`
}

// SystemImplementation lists the users, components, and inventory.
type SystemImplementation struct {
	Props                   []oscal.Property         `json:"props,omitempty"`
	Links                   []oscal.Link             `json:"links,omitempty"`
	LeveragedAuthorizations []LeveragedAuthorization `json:"leveraged-authorizations,omitempty"`
	Users                   []User                   `json:"users"`
	Components              []*Component             `json:"components"`
	InventoryItems          []InventoryItem          `json:"inventory-items,omitempty"`
	Remarks                 string                   `json:"remarks,omitempty"`
}

// AddComponent appends a component, rejecting duplicate uuids.
func (si *SystemImplementation) AddComponent(c *Component) error {
	for _, existing := range si.Components {
		if existing.UUID == c.UUID {
			return fmt.Errorf("component %s already in system implementation", c.UUID)
		}
	}
	si.Components = append(si.Components, c)
	return nil
}

// Component returns the component with the given uuid, or nil.
func (si *SystemImplementation) Component(uuid string) *Component {
	for _, c := range si.Components {
		if c.UUID == uuid {
			return c
		}
	}
	return nil
}

// ByComponent states how one component contributes to a requirement.
type ByComponent struct {
	ComponentUUID        string                  `json:"component-uuid"`
	UUID                 string                  `json:"uuid"`
	Description          string                  `json:"description"`
	Props                []oscal.Property        `json:"props,omitempty"`
	Links                []oscal.Link            `json:"links,omitempty"`
	SetParameters        []oscal.SetParameter    `json:"set-parameters,omitempty"`
	ImplementationStatus *Status                 `json:"implementation-status,omitempty"`
	ResponsibleRoles     []oscal.ResponsibleRole `json:"responsible-roles,omitempty"`
	Remarks              string                  `json:"remarks,omitempty"`
}

// Statement addresses one part of a control.
type Statement struct {
	StatementID      string                  `json:"statement-id"`
	UUID             string                  `json:"uuid"`
	Props            []oscal.Property        `json:"props,omitempty"`
	Links            []oscal.Link            `json:"links,omitempty"`
	ResponsibleRoles []oscal.ResponsibleRole `json:"responsible-roles,omitempty"`
	ByComponents     []*ByComponent          `json:"by-components,omitempty"`
	Remarks          string                  `json:"remarks,omitempty"`
}

// AddByComponent appends a by-component entry, rejecting duplicates for
// the same component.
func (s *Statement) AddByComponent(bc *ByComponent) error {
	for _, existing := range s.ByComponents {
		if existing.ComponentUUID == bc.ComponentUUID {
			return fmt.Errorf("by-component for %s already in statement %s",
				bc.ComponentUUID, s.StatementID)
		}
	}
	s.ByComponents = append(s.ByComponents, bc)
	return nil
}

// ImplementedRequirement describes how one control is implemented.
type ImplementedRequirement struct {
	UUID             string                  `json:"uuid"`
	ControlID        string                  `json:"control-id"`
	Props            []oscal.Property        `json:"props,omitempty"`
	Links            []oscal.Link            `json:"links,omitempty"`
	SetParameters    []oscal.SetParameter    `json:"set-parameters,omitempty"`
	ResponsibleRoles []oscal.ResponsibleRole `json:"responsible-roles,omitempty"`
	Statements       []*Statement            `json:"statements,omitempty"`
	ByComponents     []*ByComponent          `json:"by-components,omitempty"`
	Remarks          string                  `json:"remarks,omitempty"`

	Extras schema.Extras `json:"-"`
}

// AddStatement appends a statement, rejecting duplicate statement ids.
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

// AddParameter appends a parameter setting, rejecting duplicate ids.
func (ir *ImplementedRequirement) AddParameter(sp oscal.SetParameter) error {
	for _, existing := range ir.SetParameters {
		if existing.ParamID == sp.ParamID {
			return fmt.Errorf("parameter %s already set for %s", sp.ParamID, ir.ControlID)
		}
	}
	ir.SetParameters = append(ir.SetParameters, sp)
	return nil
}

// ControlImplementation holds every implemented requirement of the plan.
type ControlImplementation struct {
	Description             string                    `json:"description"`
	SetParameters           []oscal.SetParameter      `json:"set-parameters,omitempty"`
	ImplementedRequirements []*ImplementedRequirement `json:"implemented-requirements"`
}

// SystemSecurityPlan is a system-security-plan document.
type SystemSecurityPlan struct {
	UUID                  string                `json:"uuid"`
	Metadata              oscal.Metadata        `json:"metadata"`
	ImportProfile         ImportProfile         `json:"import-profile"`
	SystemCharacteristics SystemCharacteristics `json:"system-characteristics"`
	SystemImplementation  SystemImplementation  `json:"system-implementation"`
	ControlImplementation ControlImplementation `json:"control-implementation"`
	BackMatter            *oscal.BackMatter     `json:"back-matter,omitempty"`

	// Extras carries root-level fields unknown to this schema version.
	Extras schema.Extras `json:"-"`
}

// New builds an empty plan with fresh identifiers.
func New(title, version string) *SystemSecurityPlan {
	return &SystemSecurityPlan{
		UUID:     oscal.NewUUID(),
		Metadata: oscal.NewMetadata(title, version),
	}
}

// Validate runs the post-construction validation pass.
func (p *SystemSecurityPlan) Validate() schema.Violations {
	return p.ValidateWith(nil)
}

// ValidateWith validates like Validate and additionally resolves control
// identifiers against the resolver, flagging unresolved references as
// warnings.
func (p *SystemSecurityPlan) ValidateWith(resolver oscal.CatalogResolver) schema.Violations {
	var v schema.Violations

	if !oscal.IsUUID(p.UUID) {
		v.Add("", "uuid", "document uuid is not a valid uuid")
	}
	p.Metadata.Validate("metadata", &v)

	if p.ImportProfile.Href == "" {
		v.Add("import-profile", "href", "required field missing")
	}
	if p.SystemCharacteristics.SystemName == "" {
		v.Add("system-characteristics", "system-name", "required field missing")
	}
	if p.SystemCharacteristics.Description == "" {
		v.Add("system-characteristics", "description", "required field missing")
	}

	seenComponents := make(map[string]bool)
	for i, c := range p.SystemImplementation.Components {
		entity := fmt.Sprintf("system-implementation.components[%d]", i)
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
	}

	if len(p.ControlImplementation.ImplementedRequirements) == 0 {
		v.Add("control-implementation", "implemented-requirements",
			"plan implements no controls")
	}
	for i, ir := range p.ControlImplementation.ImplementedRequirements {
		entity := fmt.Sprintf("control-implementation.implemented-requirements[%d]", i)
		if ir.ControlID == "" {
			v.Add(entity, "control-id", "required field missing")
		} else if !schema.IsWellFormedControlID(ir.ControlID) {
			v.Add(entity, "control-id", fmt.Sprintf("malformed control id %q", ir.ControlID))
		} else if resolver != nil && !resolver.ResolveControlID(ir.ControlID) {
			v.Warn(entity, "control-id",
				fmt.Sprintf("control id %q not found in any known catalog", ir.ControlID))
		}

		for _, bc := range ir.ByComponents {
			if !seenComponents[bc.ComponentUUID] {
				v.Warn(entity, "by-components",
					fmt.Sprintf("component %s not defined in system implementation", bc.ComponentUUID))
			}
		}
		for _, s := range ir.Statements {
			for _, bc := range s.ByComponents {
				if !seenComponents[bc.ComponentUUID] {
					v.Warn(entity, "statements",
						fmt.Sprintf("component %s not defined in system implementation", bc.ComponentUUID))
				}
			}
		}
	}

	return v
}
