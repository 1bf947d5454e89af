package oscal

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/openctrl/complianceio/schema"
)

// DecodeObject decodes one JSON object into its plain (alias)
// representation. Paired with CollectExtras by every extras-carrying
// document type.
func DecodeObject(data []byte, plain any) error {
	return json.Unmarshal(data, plain)
}

// CollectExtras gathers the object's fields that the plain representation
// has no struct tag for, preserving document order.
func CollectExtras(data []byte, extras *schema.Extras, plain any) error {
	ex, err := schema.UnknownJSON(data, knownJSONKeys(plain))
	if err != nil {
		return err
	}
	*extras = ex
	return nil
}

// EncodeObject marshals the plain representation, whose field order
// defines the canonical key order, then splices the extras after it.
func EncodeObject(plain any, extras schema.Extras) ([]byte, error) {
	base, err := json.Marshal(plain)
	if err != nil {
		return nil, err
	}
	return schema.AppendJSON(base, extras)
}

// knownJSONKeys enumerates the JSON keys a struct's tags produce.
func knownJSONKeys(v any) map[string]bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			keys[name] = true
		}
	}
	return keys
}
