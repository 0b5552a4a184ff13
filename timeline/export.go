package timeline

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToJSON renders the timeline as indented JSON, the shape the editor
// frontend consumes.
func (d *TimelineData) ToJSON() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}
	return out, nil
}

// ToYAML renders the timeline as YAML for human inspection.
func (d *TimelineData) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}
	return out, nil
}
