package view

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads a saved view preset such as:
//
//	sort: priority
//	direction: desc
//	hide_completed: true
//	filters:
//	  statuses: [new, in_progress]
func LoadSpec(path string) (Spec, error) {
	file, err := os.Open(path)
	if err != nil {
		return Spec{}, fmt.Errorf("open view preset %s: %w", path, err)
	}
	defer file.Close()

	var spec Spec
	if err := yaml.NewDecoder(file).Decode(&spec); err != nil {
		return Spec{}, fmt.Errorf("parse view preset %s: %w", path, err)
	}
	return spec.Normalized(), nil
}
