package taxonomy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a taxonomy file:
//
//	domains:
//	  - name: technical
//	    keywords: [python, golang]
type file struct {
	Domains []Domain `yaml:"domains"`
}

// Parse decodes a YAML taxonomy document. Unknown fields are rejected.
func Parse(data []byte) (*Taxonomy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	return New(f.Domains)
}

// Load reads and parses the taxonomy file at path.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Encode renders t in the same YAML layout Parse accepts.
func (t *Taxonomy) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file{Domains: t.Domains()}); err != nil {
		return nil, fmt.Errorf("encode taxonomy: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode taxonomy: %w", err)
	}
	return buf.Bytes(), nil
}
