package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openctrl/complianceio/schema"
)

const testCatalog = `{
  "catalog": {
    "uuid": "613fca2d-704a-42e7-8e2b-b206fb92b456",
    "metadata": {
      "title": "Test Catalog",
      "last-modified": "2024-01-02T03:04:05Z",
      "version": "5.0",
      "oscal-version": "1.0.0"
    },
    "groups": [
      {
        "id": "ac",
        "class": "family",
        "title": "Access Control",
        "controls": [
          {
            "id": "ac-1",
            "title": "Policy and Procedures",
            "parts": [
              {
                "id": "ac-1_smt",
                "name": "statement",
                "parts": [
                  {"id": "ac-1_smt.a", "name": "item", "prose": "Develop the policy."},
                  {"id": "ac-1_smt.b", "name": "item", "prose": "Review the policy."}
                ]
              },
              {"id": "ac-1_gdn", "name": "guidance", "prose": "Guidance text."}
            ]
          },
          {
            "id": "ac-2",
            "title": "Account Management",
            "controls": [
              {"id": "ac-2.1", "title": "Automated System Account Management"}
            ]
          }
        ]
      },
      {
        "id": "sc",
        "class": "family",
        "title": "System and Communications Protection",
        "controls": [
          {"id": "sc-13", "title": "Cryptographic Protection"}
        ]
      }
    ]
  }
}
`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	cat, err := Load(path)
	require.NoError(t, err)
	return cat
}

func TestLoad(t *testing.T) {
	cat := loadTestCatalog(t)
	assert.Equal(t, "Test Catalog", cat.Title())
	assert.Equal(t, []string{"ac-1", "ac-2", "ac-2.1", "sc-13"}, cat.ControlIDs())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"))
	var notFound *schema.NotFoundError
	require.ErrorAs(t, err, &notFound)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0o644))
	_, err = Load(empty)
	var valErr *schema.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Msg, "missing catalog")
}

func TestCatalog_Control(t *testing.T) {
	cat := loadTestCatalog(t)

	require.NotNil(t, cat.Control("ac-2"))
	assert.Equal(t, "Account Management", cat.Control("ac-2").Title)

	// Source spellings normalize before lookup.
	require.NotNil(t, cat.Control("AC-02"))
	require.NotNil(t, cat.Control("AC-2 (1)"))
	assert.Equal(t, "Automated System Account Management", cat.Control("AC-2 (1)").Title)

	assert.Nil(t, cat.Control("zz-99"))
}

func TestCatalog_GroupTitle(t *testing.T) {
	cat := loadTestCatalog(t)
	assert.Equal(t, "Access Control", cat.GroupTitle("ac-2"))
	assert.Equal(t, "Access Control", cat.GroupTitle("ac-2.1"))
	assert.Equal(t, "System and Communications Protection", cat.GroupTitle("SC-13"))
	assert.Empty(t, cat.GroupTitle("zz-99"))
}

func TestCatalog_Part(t *testing.T) {
	cat := loadTestCatalog(t)
	ctrl := cat.Control("ac-1")
	require.NotNil(t, ctrl)

	smt := ctrl.Part("statement")
	require.NotNil(t, smt)
	assert.Equal(t, "ac-1_smt", smt.ID)

	gdn := ctrl.Part("guidance")
	require.NotNil(t, gdn)
	assert.Equal(t, "Guidance text.", gdn.Prose)

	assert.Nil(t, ctrl.Part("assessment"))
}

func TestCatalog_ResolveControlID(t *testing.T) {
	cat := loadTestCatalog(t)

	assert.True(t, cat.ResolveControlID("ac-2"))
	assert.True(t, cat.ResolveControlID("AC-2"))
	assert.True(t, cat.ResolveControlID("ac-2_smt.a"), "statement suffix strips to its control")
	assert.True(t, cat.ResolveControlID("ac-1_smt"))
	assert.False(t, cat.ResolveControlID("zz-99"))
	assert.False(t, cat.ResolveControlID("zz-99_smt.a"))
}

func TestSet_ResolveControlID(t *testing.T) {
	cat := loadTestCatalog(t)
	other := &Catalog{Controls: []*Control{{ID: "zz-99", Title: "Placeholder"}}}

	set := Set{cat, other}
	assert.True(t, set.ResolveControlID("ac-2"))
	assert.True(t, set.ResolveControlID("zz-99"))
	assert.False(t, set.ResolveControlID("yy-1"))
	assert.False(t, Set(nil).ResolveControlID("ac-2"))
}
