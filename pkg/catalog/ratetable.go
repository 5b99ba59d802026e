package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Rate is one GPU-name keyed figure (tokens/sec, jobs/hour, price).
type Rate struct {
	Key   string
	Value float64
}

// RateTable is an ordered key -> figure table. Order is significant: the
// estimator fallback picks the last entry, so tables keep insertion order
// through YAML and JSON round trips.
type RateTable []Rate

// Get returns the figure stored for key.
func (t RateTable) Get(key string) (float64, bool) {
	for _, r := range t {
		if r.Key == key {
			return r.Value, true
		}
	}
	return 0, false
}

// Last returns the last-inserted entry.
func (t RateTable) Last() (Rate, bool) {
	if len(t) == 0 {
		return Rate{}, false
	}
	return t[len(t)-1], true
}

// Keys returns the keys in table order.
func (t RateTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for _, r := range t {
		keys = append(keys, r.Key)
	}
	return keys
}

// UnmarshalYAML decodes a mapping node, keeping document order.
func (t *RateTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rate table must be a mapping", node.Line)
	}
	out := make(RateTable, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if seen[k.Value] {
			return fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		var f float64
		if err := v.Decode(&f); err != nil {
			return fmt.Errorf("line %d: value for %q: %w", v.Line, k.Value, err)
		}
		seen[k.Value] = true
		out = append(out, Rate{Key: k.Value, Value: f})
	}
	*t = out
	return nil
}

// MarshalYAML encodes the table as an ordered mapping node.
func (t RateTable) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range t {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(r.Value, 'g', -1, 64)},
		)
	}
	return node, nil
}

// MarshalJSON encodes the table as a JSON object in table order.
func (t RateTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(r.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping document order.
func (t *RateTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("rate table must be a JSON object")
	}
	var out RateTable
	seen := make(map[string]bool)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		if seen[key] {
			return fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		out = append(out, Rate{Key: key, Value: v})
	}
	*t = out
	return nil
}
