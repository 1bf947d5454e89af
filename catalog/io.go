package catalog

import (
	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

type document struct {
	Catalog *Catalog `json:"catalog"`
}

// Load reads an OSCAL catalog document from path and indexes its
// controls.
func Load(path string, opts ...oscal.Option) (*Catalog, error) {
	o := oscal.NewOptions(opts)

	var doc document
	if err := oscal.ReadDocument(path, &doc, o.Logger); err != nil {
		return nil, err
	}
	if doc.Catalog == nil {
		return nil, &schema.ValidationError{
			Path: path,
			Msg:  "missing catalog root object",
		}
	}
	doc.Catalog.buildIndex()
	return doc.Catalog, nil
}
