package program

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse validates and decodes a program document, migrating older
// versions. Migration notes are logged and returned.
func Parse(data []byte) (*Program, []string, error) {
	if err := Validate(data); err != nil {
		return nil, nil, err
	}
	p := &Program{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, nil, fmt.Errorf("decoding program: %w", err)
	}
	notes := Migrate(p)
	for _, n := range notes {
		slog.Info("program migrated", "actor", p.Actor, "change", n)
	}
	return p, notes, nil
}

// Load reads a program file.
func Load(path string) (*Program, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading program: %w", err)
	}
	p, notes, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, notes, nil
}

// Marshal encodes p at the current version.
func Marshal(p *Program) ([]byte, error) {
	out := *p
	out.Version = CurrentVersion
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("marshaling program: %w", err)
	}
	return data, nil
}

// Save writes p to a YAML file.
func Save(path string, p *Program) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing program: %w", err)
	}
	return nil
}
