package component

import (
	"github.com/openctrl/complianceio/oscal"
)

// The document kinds preserve fields unknown to this schema version, so
// each extras-carrying type decodes through its plain alias and re-emits
// the extras after the canonical fields.

func (d *Definition) UnmarshalJSON(data []byte) error {
	type plain Definition
	var p plain
	if err := oscal.DecodeObject(data, &p); err != nil {
		return err
	}
	*d = Definition(p)
	return oscal.CollectExtras(data, &d.Extras, p)
}

func (d Definition) MarshalJSON() ([]byte, error) {
	type plain Definition
	return oscal.EncodeObject(plain(d), d.Extras)
}

func (c *Component) UnmarshalJSON(data []byte) error {
	type plain Component
	var p plain
	if err := oscal.DecodeObject(data, &p); err != nil {
		return err
	}
	*c = Component(p)
	return oscal.CollectExtras(data, &c.Extras, p)
}

func (c Component) MarshalJSON() ([]byte, error) {
	type plain Component
	return oscal.EncodeObject(plain(c), c.Extras)
}

func (ci *ControlImplementation) UnmarshalJSON(data []byte) error {
	type plain ControlImplementation
	var p plain
	if err := oscal.DecodeObject(data, &p); err != nil {
		return err
	}
	*ci = ControlImplementation(p)
	return oscal.CollectExtras(data, &ci.Extras, p)
}

func (ci ControlImplementation) MarshalJSON() ([]byte, error) {
	type plain ControlImplementation
	return oscal.EncodeObject(plain(ci), ci.Extras)
}

func (ir *ImplementedRequirement) UnmarshalJSON(data []byte) error {
	type plain ImplementedRequirement
	var p plain
	if err := oscal.DecodeObject(data, &p); err != nil {
		return err
	}
	*ir = ImplementedRequirement(p)
	return oscal.CollectExtras(data, &ir.Extras, p)
}

func (ir ImplementedRequirement) MarshalJSON() ([]byte, error) {
	type plain ImplementedRequirement
	return oscal.EncodeObject(plain(ir), ir.Extras)
}

func (s *Statement) UnmarshalJSON(data []byte) error {
	type plain Statement
	var p plain
	if err := oscal.DecodeObject(data, &p); err != nil {
		return err
	}
	*s = Statement(p)
	return oscal.CollectExtras(data, &s.Extras, p)
}

func (s Statement) MarshalJSON() ([]byte, error) {
	type plain Statement
	return oscal.EncodeObject(plain(s), s.Extras)
}
