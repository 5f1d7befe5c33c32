package roompolicy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Rooms []Policy `yaml:"rooms"`
}

// LoadFile reads a YAML policy document of the form
//
//	rooms:
//	  - name: Meeting Room
//	    allowed_roles: [STUDENT, CEO]
//
// An empty path returns the built-in defaults.
func LoadFile(path string) ([]Policy, error) {
	if path == "" {
		return DefaultPolicies(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and sanitizes a YAML policy document.
func Parse(data []byte) ([]Policy, error) {
	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse room policy file: %w", err)
	}

	policies := Sanitize(doc.Rooms)
	if len(policies) == 0 {
		return nil, errors.New("room policy file defines no usable rooms")
	}
	return policies, nil
}
