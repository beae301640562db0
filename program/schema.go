package program

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var programSchemaJSON string

//go:embed level.json
var levelSchemaJSON string

// ErrSchema is wrapped by every error caused by a document that does not
// match its schema.
var ErrSchema = errors.New("schema violation")

var (
	programSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return jsonschema.CompileString("program.json", programSchemaJSON)
	})
	levelSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		return jsonschema.CompileString("level.json", levelSchemaJSON)
	})
)

// Validate checks a YAML program document against the program schema.
func Validate(data []byte) error {
	return validate(programSchema, data)
}

// ValidateLevel checks a YAML level document against the level schema.
func ValidateLevel(data []byte) error {
	return validate(levelSchema, data)
}

func validate(compiled func() (*jsonschema.Schema, error), data []byte) error {
	sch, err := compiled()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	doc, err := toJSON(data)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// toJSON decodes YAML and re-decodes it as JSON so the validator sees
// the value shapes it expects.
func toJSON(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return out, nil
}
