package program

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Point is a level coordinate written as [x, y] or [x, y, z].
type Point []float64

// Vec converts p to a vector. Missing components are zero.
func (p Point) Vec() r3.Vec {
	var v r3.Vec
	if len(p) > 0 {
		v.X = p[0]
	}
	if len(p) > 1 {
		v.Y = p[1]
	}
	if len(p) > 2 {
		v.Z = p[2]
	}
	return v
}

// ThingRecord places a passive object.
type ThingRecord struct {
	Type   string  `yaml:"type"`
	Color  string  `yaml:"color,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	At     Point   `yaml:"at,flow"`
}

// ActorRecord places a programmed actor. Program is a file path relative
// to the level file.
type ActorRecord struct {
	Type    string  `yaml:"type"`
	Color   string  `yaml:"color,omitempty"`
	At      Point   `yaml:"at,flow"`
	Heading float64 `yaml:"heading,omitempty"` // degrees, 0 = east
	Program string  `yaml:"program,omitempty"`
}

// PathRecord is a colored waypoint path.
type PathRecord struct {
	Color  string  `yaml:"color,omitempty"`
	Loop   bool    `yaml:"loop,omitempty"`
	Points []Point `yaml:"points"`
}

// Level is a scenario: things, actors with their programs and paths.
type Level struct {
	Name   string        `yaml:"name,omitempty"`
	Seed   int64         `yaml:"seed,omitempty"`
	Things []ThingRecord `yaml:"things"`
	Actors []ActorRecord `yaml:"actors"`
	Paths  []PathRecord  `yaml:"paths,omitempty"`

	dir string
}

// ParseLevel validates and decodes a level document.
func ParseLevel(data []byte) (*Level, error) {
	if err := ValidateLevel(data); err != nil {
		return nil, err
	}
	l := &Level{}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decoding level: %w", err)
	}
	return l, nil
}

// LoadLevel reads a level file. Actor programs are resolved relative to
// its directory.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	l, err := ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.dir = filepath.Dir(path)
	return l, nil
}

// ProgramPath resolves an actor's program file.
func (l *Level) ProgramPath(a ActorRecord) string {
	if a.Program == "" || filepath.IsAbs(a.Program) {
		return a.Program
	}
	return filepath.Join(l.dir, a.Program)
}
