package component

import (
	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

// document is the single-key root object wrapping a component definition
// on disk.
type document struct {
	ComponentDefinition *Definition `json:"component-definition"`
}

// Load reads a component-definition JSON file and validates it.
func Load(path string, opts ...oscal.Option) (*Definition, error) {
	o := oscal.NewOptions(opts)

	var doc document
	if err := oscal.ReadDocument(path, &doc, o.Logger); err != nil {
		return nil, err
	}
	if doc.ComponentDefinition == nil {
		return nil, &schema.ValidationError{
			Path: path,
			Msg:  "missing component-definition root object",
		}
	}
	if err := doc.ComponentDefinition.Validate().Err(path); err != nil {
		return nil, err
	}
	return doc.ComponentDefinition, nil
}

// Save validates the definition and writes it as a single JSON file.
func (d *Definition) Save(path string, opts ...oscal.Option) error {
	o := oscal.NewOptions(opts)

	if err := d.Validate().Err(path); err != nil {
		return err
	}
	return oscal.WriteDocument(path, document{ComponentDefinition: d}, o.Logger)
}
