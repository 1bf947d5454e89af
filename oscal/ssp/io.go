package ssp

import (
	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

type document struct {
	SystemSecurityPlan *SystemSecurityPlan `json:"system-security-plan"`
}

// Load reads a system-security-plan document from path and validates it.
func Load(path string, opts ...oscal.Option) (*SystemSecurityPlan, error) {
	o := oscal.NewOptions(opts)

	var doc document
	if err := oscal.ReadDocument(path, &doc, o.Logger); err != nil {
		return nil, err
	}
	if doc.SystemSecurityPlan == nil {
		return nil, &schema.ValidationError{
			Path: path,
			Msg:  "missing system-security-plan root object",
		}
	}
	if err := doc.SystemSecurityPlan.Validate().Err(path); err != nil {
		return nil, err
	}
	return doc.SystemSecurityPlan, nil
}

// Save validates the plan and writes it to path as indented JSON.
func (p *SystemSecurityPlan) Save(path string, opts ...oscal.Option) error {
	o := oscal.NewOptions(opts)

	if err := p.Validate().Err(path); err != nil {
		return err
	}
	return oscal.WriteDocument(path, document{SystemSecurityPlan: p}, o.Logger)
}
