package program

import (
	"fmt"
	"maps"

	"github.com/pthm-cable/whendo/brain"
)

// BuildReflex clones each named tile out of reg into a new rule. Unknown
// ids are skipped and reported, and tiles that do not fit the actor or the
// tiles before them are dropped.
func BuildReflex(reg brain.Registry, rec ReflexRecord, actorType string) (*brain.Reflex, []string) {
	var warnings []string
	clone := func(role brain.Role, id string) brain.Element {
		if id == "" {
			return nil
		}
		p := brain.Lookup(reg, role, id)
		if p == nil {
			warnings = append(warnings, fmt.Sprintf("unknown %s %q", role, id))
			return nil
		}
		return p.Clone()
	}

	r := brain.NewReflex()
	if e := clone(brain.RoleSensor, rec.Sensor); e != nil {
		r.Sensor = e.(brain.Sensor)
	}
	for _, id := range rec.Filters {
		if e := clone(brain.RoleFilter, id); e != nil {
			r.Filters = append(r.Filters, e.(brain.Filter))
		}
	}
	if e := clone(brain.RoleActuator, rec.Actuator); e != nil {
		r.Actuator = e.(brain.Actuator)
	}
	if e := clone(brain.RoleSelector, rec.Selector); e != nil {
		r.Selector = e.(brain.Selector)
	}
	for _, id := range rec.Modifiers {
		if e := clone(brain.RoleModifier, id); e != nil {
			r.Modifiers = append(r.Modifiers, e.(brain.Modifier))
		}
	}
	r.Indent = rec.Indent
	if len(rec.Params) > 0 {
		r.Args = maps.Clone(rec.Params)
	}

	for _, id := range r.Validate(actorType, reg) {
		warnings = append(warnings, fmt.Sprintf("dropped incompatible %s", id))
	}
	return r, warnings
}

// BuildTask builds every rule of a page. Warnings are prefixed with the
// rule index.
func BuildTask(reg brain.Registry, rec TaskRecord, actorType string) (*brain.Task, []string) {
	var warnings []string
	reflexes := make([]*brain.Reflex, 0, len(rec.Reflexes))
	for i, rr := range rec.Reflexes {
		r, w := BuildReflex(reg, rr, actorType)
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("rule %d: %s", i, msg))
		}
		reflexes = append(reflexes, r)
	}
	return brain.NewTask(reg, reflexes...), warnings
}

// Build turns every page of p into a task for p's actor type.
func (p *Program) Build(reg brain.Registry) ([]*brain.Task, []string) {
	var warnings []string
	pages := make([]*brain.Task, 0, len(p.Pages))
	for i, rec := range p.Pages {
		t, w := BuildTask(reg, rec, p.Actor)
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("page %d %s", i, msg))
		}
		pages = append(pages, t)
	}
	return pages, warnings
}

// ExtractReflex records the explicit tiles of r. Hidden defaults attached
// at build time are not part of the record.
func ExtractReflex(r *brain.Reflex) ReflexRecord {
	rec := ReflexRecord{Indent: r.Indent}
	if r.Sensor != nil {
		rec.Sensor = r.Sensor.Proto().ID
	}
	for _, f := range r.Filters {
		rec.Filters = append(rec.Filters, f.Proto().ID)
	}
	if r.Actuator != nil {
		rec.Actuator = r.Actuator.Proto().ID
	}
	if r.Selector != nil {
		rec.Selector = r.Selector.Proto().ID
	}
	for _, m := range r.Modifiers {
		rec.Modifiers = append(rec.Modifiers, m.Proto().ID)
	}
	if len(r.Args) > 0 {
		rec.Params = maps.Clone(r.Args)
	}
	return rec
}

// Extract records every rule of t in order.
func Extract(t *brain.Task) TaskRecord {
	rec := TaskRecord{Reflexes: make([]ReflexRecord, 0, t.Len())}
	for _, r := range t.Reflexes() {
		rec.Reflexes = append(rec.Reflexes, ExtractReflex(r))
	}
	return rec
}

// ExtractProgram records a brain's pages for actorType.
func ExtractProgram(actorType string, pages []*brain.Task) *Program {
	p := &Program{Version: CurrentVersion, Actor: actorType}
	for _, t := range pages {
		p.Pages = append(p.Pages, Extract(t))
	}
	return p
}
