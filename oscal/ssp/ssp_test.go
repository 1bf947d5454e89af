package ssp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openctrl/complianceio/oscal"
	"github.com/openctrl/complianceio/schema"
)

// testPlan builds a small valid system security plan.
func testPlan(t *testing.T) *SystemSecurityPlan {
	t.Helper()

	plan := New("Test System SSP", "1.0")
	plan.ImportProfile = ImportProfile{Href: "https://example.com/profiles/moderate.json"}
	plan.SystemCharacteristics = SystemCharacteristics{
		SystemIDs:                []SystemID{{IdentifierType: "https://ietf.org/rfc/rfc4122", ID: oscal.NewUUID()}},
		SystemName:               "Test System",
		Description:              "A system under test.",
		SecuritySensitivityLevel: "moderate",
		SystemInformation: SystemInformation{
			InformationTypes: []InformationType{
				{
					Title:                 "Operational data",
					Description:           "Telemetry and account records.",
					ConfidentialityImpact: Impact{Base: "fips-199-moderate"},
					IntegrityImpact:       Impact{Base: "fips-199-moderate"},
					AvailabilityImpact:    Impact{Base: "fips-199-low"},
				},
			},
		},
		SecurityImpactLevel: SecurityImpactLevel{
			Confidentiality: "fips-199-moderate",
			Integrity:       "fips-199-moderate",
			Availability:    "fips-199-low",
		},
		Status:                Status{State: "operational"},
		AuthorizationBoundary: NetworkDiagram{Description: "Everything in the VPC."},
	}

	comp := &Component{
		UUID:        oscal.NewUUID(),
		Type:        "software",
		Title:       "API Server",
		Description: "Serves the public API.",
		Status:      Status{State: "operational"},
	}
	require.NoError(t, plan.SystemImplementation.AddComponent(comp))

	ir := &ImplementedRequirement{
		UUID:      oscal.NewUUID(),
		ControlID: "ac-2",
	}
	smt := &Statement{StatementID: "ac-2_smt.a", UUID: oscal.NewUUID()}
	require.NoError(t, smt.AddByComponent(&ByComponent{
		ComponentUUID: comp.UUID,
		UUID:          oscal.NewUUID(),
		Description:   "Accounts are defined in the IdP.",
	}))
	require.NoError(t, ir.AddStatement(smt))
	plan.ControlImplementation = ControlImplementation{
		Description:             "Controls implemented by the test system.",
		ImplementedRequirements: []*ImplementedRequirement{ir},
	}
	return plan
}

func TestSystemImplementation_AddComponent_RejectsDuplicateUUID(t *testing.T) {
	var si SystemImplementation
	comp := &Component{UUID: oscal.NewUUID(), Title: "API Server"}

	require.NoError(t, si.AddComponent(comp))
	err := si.AddComponent(comp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in system implementation")
	assert.Equal(t, comp, si.Component(comp.UUID))
}

func TestStatement_AddByComponent_RejectsDuplicateComponent(t *testing.T) {
	smt := &Statement{StatementID: "ac-2_smt.a"}
	uuid := oscal.NewUUID()

	require.NoError(t, smt.AddByComponent(&ByComponent{ComponentUUID: uuid, UUID: oscal.NewUUID()}))
	err := smt.AddByComponent(&ByComponent{ComponentUUID: uuid, UUID: oscal.NewUUID()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in statement")
}

func TestImplementedRequirement_AddParameter_RejectsDuplicateID(t *testing.T) {
	ir := &ImplementedRequirement{UUID: oscal.NewUUID(), ControlID: "ac-2"}

	require.NoError(t, ir.AddParameter(oscal.SetParameter{ParamID: "ac-2_prm_1", Values: []string{"90 days"}}))
	err := ir.AddParameter(oscal.SetParameter{ParamID: "ac-2_prm_1", Values: []string{"30 days"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already set")
}

func TestSystemSecurityPlan_Validate(t *testing.T) {
	assert.True(t, testPlan(t).Validate().OK())
}

func TestSystemSecurityPlan_Validate_MissingRequiredFields(t *testing.T) {
	plan := testPlan(t)
	plan.ImportProfile.Href = ""
	plan.SystemCharacteristics.SystemName = ""
	plan.ControlImplementation.ImplementedRequirements = nil

	v := plan.Validate()
	require.Len(t, v.Errors(), 3)
	assert.Equal(t, "import-profile", v.Errors()[0].Entity)
	assert.Contains(t, v.Errors()[2].Msg, "implements no controls")
}

func TestSystemSecurityPlan_Validate_WarnsOnUnknownByComponent(t *testing.T) {
	plan := testPlan(t)
	stray := oscal.NewUUID()
	plan.ControlImplementation.ImplementedRequirements[0].ByComponents = []*ByComponent{
		{ComponentUUID: stray, UUID: oscal.NewUUID(), Description: "Orphaned."},
	}

	v := plan.Validate()
	assert.Empty(t, v.Errors())
	require.NotEmpty(t, v)
	assert.Equal(t, schema.SeverityWarning, v[0].Severity)
	assert.Contains(t, v[0].Msg, stray)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ssp.json")

	require.NoError(t, testPlan(t).Save(path))

	first, err := Load(path)
	require.NoError(t, err)

	again := filepath.Join(dir, "again.json")
	require.NoError(t, first.Save(again))
	second, err := Load(again)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoad_PreservesUnknownFields(t *testing.T) {
	plan := testPlan(t)
	raw, err := json.Marshal(map[string]any{"system-security-plan": plan})
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	var root map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["system-security-plan"], &root))
	root["x-ato-ticket"] = json.RawMessage(`"SEC-4411"`)
	doc["system-security-plan"], err = json.Marshal(root)
	require.NoError(t, err)
	raw, err = json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ssp.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	val, ok := loaded.Extras.Get("x-ato-ticket")
	require.True(t, ok)
	assert.JSONEq(t, `"SEC-4411"`, string(val.(json.RawMessage)))

	out := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, loaded.Save(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"x-ato-ticket"`)
}

func TestLoad_MissingRootObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := Load(path)
	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Msg, "missing system-security-plan")
}
