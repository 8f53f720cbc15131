package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse reads a profile from YAML. Unknown keys are rejected so typos do
// not silently drop constraints.
func Parse(r io.Reader) (*Profile, error) {
	p := New()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		if err == io.EOF {
			return New(), nil
		}
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}
