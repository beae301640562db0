// Package program persists brains as YAML records, validates them against
// a JSON schema and builds runnable tasks from them.
package program

// CurrentVersion is the record layout written by Save. Older records are
// migrated on load.
const CurrentVersion = 2

// ReflexRecord is one rule as stored on disk: tile ids by role.
type ReflexRecord struct {
	Sensor    string            `yaml:"sensor,omitempty"`
	Filters   []string          `yaml:"filters,omitempty"`
	Actuator  string            `yaml:"actuator,omitempty"`
	Selector  string            `yaml:"selector,omitempty"`
	Modifiers []string          `yaml:"modifiers,omitempty"`
	Indent    int               `yaml:"indent,omitempty"`
	Params    map[string]string `yaml:"params,omitempty"`
}

// Empty reports whether the record names no tile at all.
func (r ReflexRecord) Empty() bool {
	return r.Sensor == "" && r.Actuator == "" && r.Selector == "" &&
		len(r.Filters) == 0 && len(r.Modifiers) == 0
}

// TaskRecord is one page of rules.
type TaskRecord struct {
	Reflexes []ReflexRecord `yaml:"reflexes"`
}

// Program is a complete brain for one actor type.
type Program struct {
	Version int          `yaml:"version"`
	Actor   string       `yaml:"actor"`
	Pages   []TaskRecord `yaml:"pages"`
}
