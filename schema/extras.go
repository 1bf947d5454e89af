package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Extra is one unrecognized key/value pair carried through a round trip.
type Extra struct {
	// Key is the unrecognized field name.
	Key string

	// Value is the raw decoded value: any Go value for YAML sources,
	// json.RawMessage for JSON sources.
	Value any
}

// Extras is an ordered bag of fields unknown to the canonical schema,
// attached to the owning entity and re-emitted verbatim at serialization.
type Extras []Extra

// Get returns the value for a key.
func (e Extras) Get(key string) (any, bool) {
	for _, extra := range e {
		if extra.Key == key {
			return extra.Value, true
		}
	}
	return nil, false
}

// Set replaces the value for a key, appending if absent.
func (e *Extras) Set(key string, value any) {
	for i, extra := range *e {
		if extra.Key == key {
			(*e)[i].Value = value
			return
		}
	}
	*e = append(*e, Extra{Key: key, Value: value})
}

// Keys returns the keys in document order.
func (e Extras) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, extra := range e {
		keys = append(keys, extra.Key)
	}
	return keys
}

// UnknownYAML collects entries of a YAML mapping node whose keys are not in
// the known set, preserving document order.
func UnknownYAML(node *yaml.Node, known ...string) (Extras, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, nil
	}
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	var extras Extras
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if knownSet[keyNode.Value] {
			continue
		}
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode unknown field %q: %w", keyNode.Value, err)
		}
		extras = append(extras, Extra{Key: keyNode.Value, Value: value})
	}
	return extras, nil
}

// AppendYAML appends extras to a YAML mapping node for serialization.
func AppendYAML(node *yaml.Node, extras Extras) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("cannot append extras to non-mapping node")
	}
	for _, extra := range extras {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: extra.Key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(extra.Value); err != nil {
			return fmt.Errorf("encode unknown field %q: %w", extra.Key, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return nil
}

// UnknownJSON scans a JSON object and returns entries whose keys are not in
// the known set, in document order, with raw values.
func UnknownJSON(data []byte, known map[string]bool) (Extras, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var extras Extras
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode field %q: %w", key, err)
		}
		if !known[key] {
			extras = append(extras, Extra{Key: key, Value: raw})
		}
	}
	return extras, nil
}

// AppendJSON splices extras into an already-marshaled JSON object so that
// unknown fields serialize after the canonical ones.
func AppendJSON(obj []byte, extras Extras) ([]byte, error) {
	if len(extras) == 0 {
		return obj, nil
	}
	trimmed := bytes.TrimRight(obj, " \n\t")
	if len(trimmed) < 2 || trimmed[len(trimmed)-1] != '}' {
		return nil, fmt.Errorf("cannot append extras to non-object JSON")
	}

	var buf bytes.Buffer
	buf.Write(trimmed[:len(trimmed)-1])
	empty := bytes.Equal(trimmed, []byte("{}"))
	for i, extra := range extras {
		if !empty || i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(extra.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		switch v := extra.Value.(type) {
		case json.RawMessage:
			buf.Write(v)
		default:
			valueJSON, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode unknown field %q: %w", extra.Key, err)
			}
			buf.Write(valueJSON)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
