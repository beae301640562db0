package brain

import (
	"github.com/pthm-cable/whendo/category"
)

type placed struct {
	e    Element
	role Role
}

// layout lists the rule's explicit tiles in WHEN/DO order.
func (r *Reflex) layout(dst []placed) []placed {
	if r.Sensor != nil {
		dst = append(dst, placed{r.Sensor, RoleSensor})
	}
	for _, f := range r.Filters {
		dst = append(dst, placed{f, RoleFilter})
	}
	if r.Actuator != nil {
		dst = append(dst, placed{r.Actuator, RoleActuator})
	}
	if r.Selector != nil {
		dst = append(dst, placed{r.Selector, RoleSelector})
	}
	for _, m := range r.Modifiers {
		dst = append(dst, placed{m, RoleModifier})
	}
	return dst
}

// IsCompatible decides whether candidate may be placed in r for an actor
// of the given type. replaced is the tile being swapped out, or nil when
// the candidate is appended to its role's section.
//
// The candidate must pass the actor lists, find one of its required
// datatypes among those the rule produces, find one of its inclusions and
// none of its exclusions among the categories of the tiles before its slot,
// and must not carry a category any other tile in the rule excludes.
func IsCompatible(candidate *Prototype, actorType string, r *Reflex, replaced Element, allowArchived bool) bool {
	var buf [16]placed
	var tiles []placed
	if r != nil {
		tiles = r.layout(buf[:0])
	}
	slot := -1
	if replaced != nil {
		for i, t := range tiles {
			if t.e == replaced {
				slot = i
				break
			}
		}
	}
	return compatible(candidate, actorType, tiles, slot, allowArchived, true)
}

func compatible(c *Prototype, actorType string, tiles []placed, slot int, allowArchived, refuseAll bool) bool {
	if c == nil || c.Hidden {
		return false
	}
	if c.Archived && !allowArchived {
		return false
	}
	if !c.AllowsActor(actorType) {
		return false
	}

	var m category.Mask
	var refused category.Set
	hasSensor := false
	for i, t := range tiles {
		if i == slot {
			continue
		}
		p := t.e.Proto()
		if t.role == RoleSensor {
			hasSensor = true
		}
		if t.role <= RoleFilter {
			m.Output(p.Output)
		} else {
			m.Negate(p.NegOutput)
		}
		precedes := i < slot || (slot < 0 && t.role <= c.Role)
		if precedes {
			m.Contribute(p.Categories, p.Negations)
		}
		if precedes || refuseAll {
			refused = refused.Union(p.Exclusions)
		}
	}
	if !hasSensor {
		// A sensorless rule is always true.
		m.Output(category.Boolean)
	}

	if !category.AcceptsInput(m.Types(), c.Input) {
		return false
	}
	if refused.Intersects(c.Categories) {
		return false
	}
	return category.Admits(m.Categories(), c.Inclusions, c.Exclusions)
}

// CompatibleTiles lists the prototypes among candidates that may be placed
// in r without replacing anything.
func CompatibleTiles(candidates []*Prototype, actorType string, r *Reflex, allowArchived bool) []*Prototype {
	var out []*Prototype
	for _, p := range candidates {
		if IsCompatible(p, actorType, r, nil, allowArchived) {
			out = append(out, p)
		}
	}
	return out
}

// Validate drops every tile that is no longer compatible with the tiles
// before it, in layout order, and returns the dropped ids. Archived tiles
// already in a rule are kept.
func (r *Reflex) Validate(actorType string, reg Registry) []string {
	var buf [16]placed
	tiles := r.layout(buf[:0])
	var dropped []string
	for i := 0; i < len(tiles); {
		p := tiles[i].e.Proto()
		if p != nil && compatible(p, actorType, tiles, i, true, false) {
			i++
			continue
		}
		id := "<nil>"
		if p != nil {
			id = p.ID
		}
		dropped = append(dropped, id)
		tiles = append(tiles[:i], tiles[i+1:]...)
	}
	if len(dropped) == 0 {
		return nil
	}

	r.Sensor, r.Filters, r.Actuator, r.Selector, r.Modifiers = nil, r.Filters[:0], nil, nil, r.Modifiers[:0]
	for _, t := range tiles {
		switch t.role {
		case RoleSensor:
			r.Sensor = t.e.(Sensor)
		case RoleFilter:
			r.Filters = append(r.Filters, t.e.(Filter))
		case RoleActuator:
			r.Actuator = t.e.(Actuator)
		case RoleSelector:
			r.Selector = t.e.(Selector)
		case RoleModifier:
			r.Modifiers = append(r.Modifiers, t.e.(Modifier))
		}
	}
	r.Fixup(reg)
	return dropped
}
