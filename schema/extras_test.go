package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestUnknownYAML(t *testing.T) {
	src := `
name: api-server
custom_field: custom value
nested:
  a: 1
  b: [x, y]
`
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	mapping := doc.Content[0]

	extras, err := UnknownYAML(mapping, "name")
	require.NoError(t, err)
	require.Len(t, extras, 2)
	assert.Equal(t, []string{"custom_field", "nested"}, extras.Keys())

	v, ok := extras.Get("custom_field")
	require.True(t, ok)
	assert.Equal(t, "custom value", v)
}

func TestAppendYAML_RoundTrip(t *testing.T) {
	extras := Extras{
		{Key: "custom_field", Value: "custom value"},
		{Key: "nested", Value: map[string]any{"a": 1}},
	}

	var node yaml.Node
	require.NoError(t, node.Encode(map[string]string{"name": "api-server"}))
	require.NoError(t, AppendYAML(&node, extras))

	out, err := yaml.Marshal(&node)
	require.NoError(t, err)

	var reparsed yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &reparsed))
	roundTripped, err := UnknownYAML(reparsed.Content[0], "name")
	require.NoError(t, err)
	assert.Equal(t, extras.Keys(), roundTripped.Keys())
}

func TestUnknownJSON(t *testing.T) {
	data := []byte(`{"title":"Doc","x-vendor":{"a":1},"future-field":[1,2]}`)

	extras, err := UnknownJSON(data, map[string]bool{"title": true})
	require.NoError(t, err)
	require.Len(t, extras, 2)
	assert.Equal(t, []string{"x-vendor", "future-field"}, extras.Keys())

	v, ok := extras.Get("x-vendor")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(v.(json.RawMessage)))
}

func TestAppendJSON(t *testing.T) {
	extras := Extras{{Key: "future-field", Value: json.RawMessage(`[1,2]`)}}

	out, err := AppendJSON([]byte(`{"title":"Doc"}`), extras)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Doc","future-field":[1,2]}`, string(out))

	out, err = AppendJSON([]byte(`{}`), extras)
	require.NoError(t, err)
	assert.JSONEq(t, `{"future-field":[1,2]}`, string(out))
}

func TestExtrasSet(t *testing.T) {
	var extras Extras
	extras.Set("a", 1)
	extras.Set("b", 2)
	extras.Set("a", 3)

	require.Len(t, extras, 2)
	v, _ := extras.Get("a")
	assert.Equal(t, 3, v)
}
