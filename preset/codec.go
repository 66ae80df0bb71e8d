package preset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal renders the preset as YAML.
func Marshal(p *Preset) ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling preset: %w", err)
	}
	return data, nil
}

// Unmarshal parses a YAML preset. Structural repair happens later in
// Normalize; this only fails on YAML that cannot be parsed at all.
func Unmarshal(data []byte) (*Preset, error) {
	p := &Preset{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}
	return p, nil
}

// Save writes the preset to a YAML file.
func Save(p *Preset, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing preset file: %w", err)
	}
	return nil
}

// LoadFile reads a preset from a YAML file.
func LoadFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file: %w", err)
	}
	return Unmarshal(data)
}
