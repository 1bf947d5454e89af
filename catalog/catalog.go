// Package catalog reads OSCAL control catalogs and resolves control
// identifiers against them. Resolution backs the best-effort reference
// checks run when documents are validated.
package catalog

import (
	"strings"

	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

// Parameter is an assignable value slot within a control.
type Parameter struct {
	ID     string   `json:"id"`
	Class  string   `json:"class,omitempty"`
	Label  string   `json:"label,omitempty"`
	Usage  string   `json:"usage,omitempty"`
	Values []string `json:"values,omitempty"`
}

// Part is a named piece of control text. Statement parts carry the prose
// that control narratives respond to.
type Part struct {
	ID    string           `json:"id,omitempty"`
	Name  string           `json:"name"`
	Ns    string           `json:"ns,omitempty"`
	Class string           `json:"class,omitempty"`
	Title string           `json:"title,omitempty"`
	Props []oscal.Property `json:"props,omitempty"`
	Prose string           `json:"prose,omitempty"`
	Parts []Part           `json:"parts,omitempty"`
}

// Control is one catalog control, possibly with nested enhancements.
type Control struct {
	ID       string           `json:"id"`
	Class    string           `json:"class,omitempty"`
	Title    string           `json:"title"`
	Params   []Parameter      `json:"params,omitempty"`
	Props    []oscal.Property `json:"props,omitempty"`
	Links    []oscal.Link     `json:"links,omitempty"`
	Parts    []Part           `json:"parts,omitempty"`
	Controls []*Control       `json:"controls,omitempty"`
}

// Part returns the first part with the given name, searching nested
// parts depth-first, or nil.
func (c *Control) Part(name string) *Part {
	return findPart(c.Parts, name)
}

func findPart(parts []Part, name string) *Part {
	for i := range parts {
		if parts[i].Name == name {
			return &parts[i]
		}
		if p := findPart(parts[i].Parts, name); p != nil {
			return p
		}
	}
	return nil
}

// Group is a family of controls, possibly nested.
type Group struct {
	ID       string           `json:"id,omitempty"`
	Class    string           `json:"class,omitempty"`
	Title    string           `json:"title"`
	Props    []oscal.Property `json:"props,omitempty"`
	Groups   []*Group         `json:"groups,omitempty"`
	Controls []*Control       `json:"controls,omitempty"`
}

// Catalog is an OSCAL control catalog document.
type Catalog struct {
	UUID       string            `json:"uuid"`
	Metadata   oscal.Metadata    `json:"metadata"`
	Groups     []*Group          `json:"groups,omitempty"`
	Controls   []*Control        `json:"controls,omitempty"`
	BackMatter *oscal.BackMatter `json:"back-matter,omitempty"`

	// index maps control id to control, built once after load.
	index map[string]*Control
	// groupTitle maps control id to the title of its owning group.
	groupTitle map[string]string
}

// buildIndex walks the catalog once and indexes every control, including
// nested enhancements, by id.
func (c *Catalog) buildIndex() {
	c.index = make(map[string]*Control)
	c.groupTitle = make(map[string]string)
	indexControls(c.Controls, "", c)
	indexGroups(c.Groups, c)
}

func indexGroups(groups []*Group, c *Catalog) {
	for _, g := range groups {
		indexControls(g.Controls, g.Title, c)
		indexGroups(g.Groups, c)
	}
}

func indexControls(controls []*Control, groupTitle string, c *Catalog) {
	for _, ctrl := range controls {
		c.index[ctrl.ID] = ctrl
		if groupTitle != "" {
			c.groupTitle[ctrl.ID] = groupTitle
		}
		indexControls(ctrl.Controls, groupTitle, c)
	}
}

// Control returns the control with the given id, or nil. The id is
// normalized first, so source spellings like "AC-2 (1)" resolve too.
func (c *Catalog) Control(id string) *Control {
	if c.index == nil {
		c.buildIndex()
	}
	if ctrl, ok := c.index[id]; ok {
		return ctrl
	}
	return c.index[schema.OscalizeControlID(id)]
}

// ControlIDs returns every control id in document order.
func (c *Catalog) ControlIDs() []string {
	var ids []string
	var walkControls func([]*Control)
	walkControls = func(controls []*Control) {
		for _, ctrl := range controls {
			ids = append(ids, ctrl.ID)
			walkControls(ctrl.Controls)
		}
	}
	var walkGroups func([]*Group)
	walkGroups = func(groups []*Group) {
		for _, g := range groups {
			walkControls(g.Controls)
			walkGroups(g.Groups)
		}
	}
	walkControls(c.Controls)
	walkGroups(c.Groups)
	return ids
}

// GroupTitle returns the title of the group owning the control, or "".
func (c *Catalog) GroupTitle(controlID string) string {
	if c.index == nil {
		c.buildIndex()
	}
	if title, ok := c.groupTitle[controlID]; ok {
		return title
	}
	return c.groupTitle[schema.OscalizeControlID(controlID)]
}

// ResolveControlID reports whether the identifier names a control in this
// catalog. Statement suffixes such as "_smt.a" are stripped before the
// lookup, so statement identifiers resolve against their control.
func (c *Catalog) ResolveControlID(controlID string) bool {
	return c.Control(stripStatementSuffix(controlID)) != nil
}

// Title returns the catalog's metadata title.
func (c *Catalog) Title() string {
	return c.Metadata.Title
}

func stripStatementSuffix(id string) string {
	if i := strings.Index(id, "_smt"); i >= 0 {
		return id[:i]
	}
	return id
}

// Set resolves control identifiers against several catalogs at once.
type Set []*Catalog

// ResolveControlID reports whether any catalog in the set defines the
// control.
func (s Set) ResolveControlID(controlID string) bool {
	for _, c := range s {
		if c.ResolveControlID(controlID) {
			return true
		}
	}
	return false
}

// Interface checks.
var (
	_ oscal.CatalogResolver = (*Catalog)(nil)
	_ oscal.CatalogResolver = Set(nil)
)
