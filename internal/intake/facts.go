// Package intake produces validated case facts, either from a YAML facts file
// or from an interactive questionnaire. Facts are validated here, before they
// ever reach the engine.
package intake

import (
	"bytes"
	"fmt"
	"os"

	"github.com/steveyegge/pathway/internal/types"
	"gopkg.in/yaml.v3"
)

// LoadFacts reads and validates a YAML facts file.
func LoadFacts(path string) (types.CaseFacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.CaseFacts{}, fmt.Errorf("reading facts file: %w", err)
	}
	return ParseFacts(data)
}

// ParseFacts parses and validates facts YAML. Unknown keys are rejected so a
// misspelled field is not silently ignored.
func ParseFacts(data []byte) (types.CaseFacts, error) {
	var facts types.CaseFacts
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&facts); err != nil {
		return types.CaseFacts{}, fmt.Errorf("parsing facts file: %w", err)
	}
	if err := facts.Validate(); err != nil {
		return types.CaseFacts{}, fmt.Errorf("invalid facts: %w", err)
	}
	return facts, nil
}

// MarshalFacts renders facts as YAML.
func MarshalFacts(facts types.CaseFacts) ([]byte, error) {
	data, err := yaml.Marshal(&facts)
	if err != nil {
		return nil, fmt.Errorf("marshaling facts: %w", err)
	}
	return data, nil
}

// SaveFacts writes facts as YAML.
func SaveFacts(path string, facts types.CaseFacts) error {
	data, err := MarshalFacts(facts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing facts file: %w", err)
	}
	return nil
}
