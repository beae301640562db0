// Package tiles implements the concrete sensors, filters, selectors,
// modifiers and actuators, and the read-only registry they are loaded into.
package tiles

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/category"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrUnknownKind is returned when a catalog entry names an implementation
// that does not exist.
var ErrUnknownKind = errors.New("unknown tile kind")

// maker builds one tile instance from its prototype, validating params.
type maker func(p *brain.Prototype) (brain.Element, error)

// makers maps implementation kinds to constructors, per role.
var makers = [brain.NumRoles]map[string]maker{
	brain.RoleSensor:   sensorMakers,
	brain.RoleFilter:   filterMakers,
	brain.RoleActuator: actuatorMakers,
	brain.RoleSelector: selectorMakers,
	brain.RoleModifier: modifierMakers,
}

var roleCategories = [brain.NumRoles]category.Category{
	brain.RoleSensor:   category.Sensor,
	brain.RoleFilter:   category.Filter,
	brain.RoleActuator: category.Actuator,
	brain.RoleSelector: category.Selector,
	brain.RoleModifier: category.Modifier,
}

// tileRecord is one catalog entry.
type tileRecord struct {
	ID            string         `yaml:"id"`
	Kind          string         `yaml:"kind"`
	Categories    []string       `yaml:"categories"`
	Inclusions    []string       `yaml:"inclusions"`
	Exclusions    []string       `yaml:"exclusions"`
	Negations     []string       `yaml:"negations"`
	Input         []string       `yaml:"input"`
	Output        []string       `yaml:"output"`
	NegOutput     []string       `yaml:"neg_output"`
	ActorsAllowed []string       `yaml:"actors_allowed"`
	ActorsDenied  []string       `yaml:"actors_denied"`
	Archived      bool           `yaml:"archived"`
	Hidden        bool           `yaml:"hidden"`
	DefaultFilter string         `yaml:"default_filter"`
	Params        map[string]any `yaml:"params"`
}

type catalogFile struct {
	Sensors   []tileRecord `yaml:"sensors"`
	Filters   []tileRecord `yaml:"filters"`
	Actuators []tileRecord `yaml:"actuators"`
	Selectors []tileRecord `yaml:"selectors"`
	Modifiers []tileRecord `yaml:"modifiers"`
}

// Registry holds every tile prototype by role and id. It is immutable after
// Load and safe to share between brains.
type Registry struct {
	byID  [brain.NumRoles]map[string]*brain.Prototype
	order [brain.NumRoles][]*brain.Prototype
}

var _ brain.Registry = (*Registry)(nil)

// Default loads the embedded catalog.
func Default() (*Registry, error) {
	return Load(catalogYAML)
}

// MustDefault is like Default but panics on error.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(fmt.Sprintf("tiles: loading embedded catalog: %v", err))
	}
	return r
}

// Load parses a YAML catalog.
func Load(data []byte) (*Registry, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	reg := &Registry{}
	sections := [brain.NumRoles][]tileRecord{
		brain.RoleSensor:   cf.Sensors,
		brain.RoleFilter:   cf.Filters,
		brain.RoleActuator: cf.Actuators,
		brain.RoleSelector: cf.Selectors,
		brain.RoleModifier: cf.Modifiers,
	}
	for role, recs := range sections {
		reg.byID[role] = make(map[string]*brain.Prototype, len(recs))
		for _, rec := range recs {
			p, err := buildPrototype(brain.Role(role), rec)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", brain.Role(role), rec.ID, err)
			}
			if _, dup := reg.byID[role][p.ID]; dup {
				return nil, fmt.Errorf("%s %q: duplicate id", brain.Role(role), p.ID)
			}
			reg.byID[role][p.ID] = p
			reg.order[role] = append(reg.order[role], p)
		}
		sort.Slice(reg.order[role], func(i, j int) bool {
			return reg.order[role][i].ID < reg.order[role][j].ID
		})
	}

	for _, p := range reg.order[brain.RoleSensor] {
		if p.DefaultFilter != "" && reg.Filter(p.DefaultFilter) == nil {
			return nil, fmt.Errorf("sensor %q: default filter %q not in catalog", p.ID, p.DefaultFilter)
		}
	}
	return reg, nil
}

func buildPrototype(role brain.Role, rec tileRecord) (*brain.Prototype, error) {
	if rec.ID == "" {
		return nil, errors.New("missing id")
	}
	mk, ok := makers[role][rec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, rec.Kind)
	}

	p := &brain.Prototype{
		ID:            rec.ID,
		Role:          role,
		Kind:          rec.Kind,
		ActorsAllowed: rec.ActorsAllowed,
		ActorsDenied:  rec.ActorsDenied,
		Archived:      rec.Archived,
		Hidden:        rec.Hidden,
		DefaultFilter: rec.DefaultFilter,
		Params:        brain.Params(rec.Params),
	}
	var err error
	if p.Categories, err = category.Parse(rec.Categories); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	p.Categories = p.Categories.Add(roleCategories[role])
	if p.Inclusions, err = category.Parse(rec.Inclusions); err != nil {
		return nil, fmt.Errorf("inclusions: %w", err)
	}
	if p.Exclusions, err = category.Parse(rec.Exclusions); err != nil {
		return nil, fmt.Errorf("exclusions: %w", err)
	}
	if p.Negations, err = category.Parse(rec.Negations); err != nil {
		return nil, fmt.Errorf("negations: %w", err)
	}
	if p.Input, err = category.ParseTypes(rec.Input); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if p.Output, err = category.ParseTypes(rec.Output); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if p.NegOutput, err = category.ParseTypes(rec.NegOutput); err != nil {
		return nil, fmt.Errorf("neg_output: %w", err)
	}

	// Build once so bad params fail the load rather than a placement.
	if _, err := mk(p); err != nil {
		return nil, err
	}
	p.Make = func(p *brain.Prototype) brain.Element {
		e, _ := mk(p)
		return e
	}
	return p, nil
}

func (r *Registry) get(role brain.Role, id string) *brain.Prototype {
	return r.byID[role][id]
}

// Sensor returns the sensor prototype with the given id, or nil.
func (r *Registry) Sensor(id string) *brain.Prototype { return r.get(brain.RoleSensor, id) }

// Filter returns the filter prototype with the given id, or nil.
func (r *Registry) Filter(id string) *brain.Prototype { return r.get(brain.RoleFilter, id) }

// Selector returns the selector prototype with the given id, or nil.
func (r *Registry) Selector(id string) *brain.Prototype { return r.get(brain.RoleSelector, id) }

// Modifier returns the modifier prototype with the given id, or nil.
func (r *Registry) Modifier(id string) *brain.Prototype { return r.get(brain.RoleModifier, id) }

// Actuator returns the actuator prototype with the given id, or nil.
func (r *Registry) Actuator(id string) *brain.Prototype { return r.get(brain.RoleActuator, id) }

// All returns every prototype of a role, sorted by id.
func (r *Registry) All(role brain.Role) []*brain.Prototype {
	return r.order[role]
}

// Len returns the total number of prototypes.
func (r *Registry) Len() int {
	n := 0
	for _, m := range r.byID {
		n += len(m)
	}
	return n
}

// Compatible lists the prototypes of a role that could be added to rf.
func (r *Registry) Compatible(role brain.Role, actorType string, rf *brain.Reflex, allowArchived bool) []*brain.Prototype {
	return brain.CompatibleTiles(r.order[role], actorType, rf, allowArchived)
}

// New clones a fresh instance of the tile with the given role and id, or
// returns nil if it is not in the catalog.
func (r *Registry) New(role brain.Role, id string) brain.Element {
	return r.get(role, id).Clone()
}
