package program

import (
	"fmt"
	"slices"
	"strings"
)

// renamed maps legacy tile ids to their current names.
var renamed = map[string]string{
	"sensor.sight":        "sensor.see",
	"sensor.sound":        "sensor.hear",
	"sensor.touch":        "sensor.bump",
	"sensor.mouse":        "sensor.pointer",
	"sensor.keys":         "sensor.keyboard",
	"selector.followpath": "selector.path",
	"selector.orbit":      "selector.circle",
	"selector.turnleft":   "selector.turn.left",
	"selector.turnright":  "selector.turn.right",
	"selector.stop":       "selector.freeze",
	"modifier.fast":       "modifier.quickly",
	"modifier.slow":       "modifier.slowly",
	"actuator.movement":   "actuator.move",
	"actuator.color":      "actuator.glow",
	"actuator.face":       "actuator.express",
	"actuator.disappear":  "actuator.vanish",
}

// removed lists legacy tiles with no current equivalent.
var removed = map[string]bool{
	"filter.sleeping":  true,
	"modifier.pattern": true,
	"actuator.hold":    true,
	"actuator.drop":    true,
}

// scoreColors are the colors that became score buckets.
var scoreColors = []string{
	"white", "black", "grey", "red", "green", "blue",
	"yellow", "orange", "purple", "pink", "brown",
}

// Migrate rewrites a program written by an older version into the
// current layout and returns one note per change. Current programs are
// left untouched.
func Migrate(p *Program) []string {
	if p.Version >= CurrentVersion {
		return nil
	}
	var notes []string
	for pi := range p.Pages {
		for ri := range p.Pages[pi].Reflexes {
			where := fmt.Sprintf("page %d rule %d", pi, ri)
			for _, n := range migrateReflex(&p.Pages[pi].Reflexes[ri]) {
				notes = append(notes, where+": "+n)
			}
		}
	}
	p.Version = CurrentVersion
	return notes
}

func migrateReflex(r *ReflexRecord) []string {
	var notes []string
	one := func(id string) string {
		if id == "" {
			return ""
		}
		if removed[id] {
			notes = append(notes, "dropped "+id)
			return ""
		}
		if to, ok := renamed[id]; ok {
			notes = append(notes, id+" -> "+to)
			return to
		}
		return id
	}
	many := func(ids []string) []string {
		out := ids[:0]
		for _, id := range ids {
			if id = one(id); id != "" {
				out = append(out, id)
			}
		}
		return out
	}

	r.Sensor = one(r.Sensor)
	r.Actuator = one(r.Actuator)
	r.Selector = one(r.Selector)
	r.Filters = many(r.Filters)
	r.Modifiers = many(r.Modifiers)

	// Scoring used to take its bucket from a color modifier.
	if r.Actuator == "actuator.score" || r.Actuator == "actuator.subtract" {
		for i, id := range r.Modifiers {
			color, ok := strings.CutPrefix(id, "modifier.")
			if !ok || !slices.Contains(scoreColors, color) {
				continue
			}
			r.Modifiers[i] = "modifier.bucket." + color
			notes = append(notes, id+" -> "+r.Modifiers[i])
		}
	}
	return notes
}
