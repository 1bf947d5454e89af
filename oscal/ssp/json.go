package ssp

import (
	"github.com/openctrl/complianceio/oscal"
)

// The extras-carrying types decode through a plain alias and re-emit
// unknown fields after the canonical ones, same as the component package.

func (p *SystemSecurityPlan) UnmarshalJSON(data []byte) error {
	type plain SystemSecurityPlan
	var pl plain
	if err := oscal.DecodeObject(data, &pl); err != nil {
		return err
	}
	*p = SystemSecurityPlan(pl)
	return oscal.CollectExtras(data, &p.Extras, pl)
}

func (p SystemSecurityPlan) MarshalJSON() ([]byte, error) {
	type plain SystemSecurityPlan
	return oscal.EncodeObject(plain(p), p.Extras)
}

func (ir *ImplementedRequirement) UnmarshalJSON(data []byte) error {
	type plain ImplementedRequirement
	var pl plain
	if err := oscal.DecodeObject(data, &pl); err != nil {
		return err
	}
	*ir = ImplementedRequirement(pl)
	return oscal.CollectExtras(data, &ir.Extras, pl)
}

func (ir ImplementedRequirement) MarshalJSON() ([]byte, error) {
	type plain ImplementedRequirement
	return oscal.EncodeObject(plain(ir), ir.Extras)
}
