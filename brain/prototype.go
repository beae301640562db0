// Package brain evaluates WHEN/DO rules: reflexes grouped into tasks, run
// once per actor per tick.
package brain

import (
	"fmt"
	"slices"

	"github.com/pthm-cable/whendo/category"
)

// Role is the slot a tile occupies in a rule.
type Role uint8

const (
	RoleSensor Role = iota
	RoleFilter
	RoleActuator
	RoleSelector
	RoleModifier
	NumRoles
)

// Tiles are laid out WHEN (sensor, filters) then DO (actuator, selector,
// modifiers); compatibility follows this order.
var roleNames = [NumRoles]string{"sensor", "filter", "actuator", "selector", "modifier"}

func (r Role) String() string {
	if r >= NumRoles {
		return "unknown"
	}
	return roleNames[r]
}

// ParseRole maps a catalog name to a Role.
func ParseRole(s string) (Role, error) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Params are tile-specific constants from the catalog.
type Params map[string]any

// String returns a string param or def.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Float returns a numeric param or def.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Int returns an integer param or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns a boolean param or def.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Prototype is the read-only definition of a tile, loaded once into a
// registry. Rules never hold prototypes directly; they hold clones.
type Prototype struct {
	ID   string
	Role Role
	Kind string // implementation key

	Categories category.Set // what the tile is
	Inclusions category.Set // one of these must be present
	Exclusions category.Set // none of these may be present
	Negations  category.Set // cancelled for tiles placed after this one

	Input     category.Types // datatypes the tile needs
	Output    category.Types // datatypes a WHEN tile produces
	NegOutput category.Types // datatypes a DO tile consumes away

	ActorsAllowed []string // empty means every actor type
	ActorsDenied  []string

	Archived bool // only offered when archived tiles are requested
	Hidden   bool // defaults attached silently, never offered

	// DefaultFilter names a hidden filter attached when a sensor has no
	// filter of its own.
	DefaultFilter string

	Params Params

	// Make builds a fresh per-placement instance.
	Make func(p *Prototype) Element
}

// Clone returns an independent tile instance for one placement.
func (p *Prototype) Clone() Element {
	if p == nil || p.Make == nil {
		return nil
	}
	return p.Make(p)
}

// Is reports whether the tile carries category c.
func (p *Prototype) Is(c category.Category) bool {
	return p != nil && p.Categories.Has(c)
}

// Accepts tests another single tile against this tile's inclusions and
// exclusions.
func (p *Prototype) Accepts(other *Prototype) bool {
	if p == nil || other == nil {
		return false
	}
	return category.Admits(other.Categories, p.Inclusions, p.Exclusions)
}

// AllowsActor applies the per-actor-type allow and deny lists.
func (p *Prototype) AllowsActor(actorType string) bool {
	if slices.Contains(p.ActorsDenied, actorType) {
		return false
	}
	return len(p.ActorsAllowed) == 0 || slices.Contains(p.ActorsAllowed, actorType)
}

// Element is one placed tile.
type Element interface {
	Proto() *Prototype
}

// Base is embedded by every tile implementation.
type Base struct {
	P *Prototype
}

// Proto returns the prototype the tile was cloned from.
func (b *Base) Proto() *Prototype {
	return b.P
}

// Registry resolves tile ids to prototypes. Implementations are read-only
// after load and shared by every brain.
type Registry interface {
	Sensor(id string) *Prototype
	Filter(id string) *Prototype
	Selector(id string) *Prototype
	Modifier(id string) *Prototype
	Actuator(id string) *Prototype
}

// Lookup resolves id within the given role.
func Lookup(reg Registry, role Role, id string) *Prototype {
	if reg == nil || id == "" {
		return nil
	}
	switch role {
	case RoleSensor:
		return reg.Sensor(id)
	case RoleFilter:
		return reg.Filter(id)
	case RoleActuator:
		return reg.Actuator(id)
	case RoleSelector:
		return reg.Selector(id)
	case RoleModifier:
		return reg.Modifier(id)
	}
	return nil
}
