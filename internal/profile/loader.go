package profile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bobbin/internal/fileutil"
)

// Load reads, decodes, and validates a profile document.
func Load(path string) (*Profile, error) {
	path = fileutil.ExpandHome(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a profile document from raw bytes.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) normalize() {
	if p.Output.DefaultExtension == "" {
		p.Output.DefaultExtension = DefaultExtension
	}
}
