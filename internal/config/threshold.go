package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-segment-mcp/internal/segment"
)

// Threshold is a segment.Threshold that reads and writes as a number or the
// string "off" in both YAML and JSON.
type Threshold struct {
	segment.Threshold
}

// UnmarshalYAML accepts a number, "off" or null.
func (t *Threshold) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: threshold must be a number or \"off\"", node.Line)
	}
	if node.Tag == "!!null" {
		t.Threshold = segment.Off
		return nil
	}
	v, err := segment.ParseThreshold(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	t.Threshold = v
	return nil
}

// MarshalYAML writes the threshold as a float or "off".
func (t Threshold) MarshalYAML() (interface{}, error) {
	if v, ok := t.Value(); ok {
		return v, nil
	}
	return "off", nil
}

// UnmarshalJSON accepts a number, a numeric string, "off" or null.
func (t *Threshold) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Threshold = segment.Off
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := segment.ParseThreshold(s)
	if err != nil {
		return err
	}
	t.Threshold = v
	return nil
}

// MarshalJSON writes the threshold as a number or "off".
func (t Threshold) MarshalJSON() ([]byte, error) {
	if v, ok := t.Value(); ok {
		return json.Marshal(v)
	}
	return []byte(`"off"`), nil
}

func wrap(t segment.Threshold) Threshold {
	return Threshold{Threshold: t}
}
