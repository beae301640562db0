package world

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
)

// EventHit is the kind of event recorded when a missile strikes a thing.
const EventHit = "hit"

// Event is a verb that took effect, or a missile hit.
type Event struct {
	Tick  uint64
	Actor uint64 // performer, or the shooter for hits
	Verb  brain.Verb
}

// Events returns what happened during the last step. The slice is reused
// by the next step.
func (w *World) Events() []Event { return w.events }

// perform applies the verbs an actor's brain queued this tick.
func (w *World) perform(a *Actor) {
	for _, v := range a.pending {
		w.apply(a, v)
		w.events = append(w.events, Event{Tick: w.tick, Actor: a.id, Verb: v})
	}
	clear(a.pending)
	a.pending = a.pending[:0]
}

func (w *World) apply(a *Actor, v brain.Verb) {
	switch v.Kind {
	case brain.VerbShoot:
		w.shoot(a, v)
	case brain.VerbSay:
		slog.Debug("say", "actor", a.id, "tick", w.tick, "text", v.Text)
	case brain.VerbScore:
		w.scores[v.Bucket] += v.Amount
	case brain.VerbGlow:
		w.tagMap.Get(a.e).Color = v.Color
	case brain.VerbExpress:
		w.tagMap.Get(a.e).Expression = v.Expression
	case brain.VerbJump:
		w.velMap.Get(a.e).Z = w.cfg.World.JumpSpeed * strength(v)
	case brain.VerbVanish:
		w.remove(a.thing)
	default:
		slog.Debug("unhandled verb", "actor", a.id, "verb", v.Kind)
	}
}

func strength(v brain.Verb) float64 {
	if v.Strength <= 0 {
		return 1
	}
	return v.Strength
}

// shoot launches a missile from the edge of the shooter's body.
func (w *World) shoot(a *Actor, v brain.Verb) {
	dir := r3.Vec{X: v.Direction.X, Y: v.Direction.Y}
	if n := r3.Norm(dir); n > 1e-9 {
		dir = r3.Scale(1/n, dir)
	} else {
		dir = unit(a.heading)
	}
	wc := w.cfg.World
	start := r3.Add(a.pos, r3.Scale(a.radius+wc.MissileRadius, dir))
	w.Spawn(Spawn{
		Type:    "missile",
		Color:   v.Color,
		Pos:     start,
		Heading: math.Atan2(dir.Y, dir.X),
		Radius:  wc.MissileRadius,
		Vel:     r3.Scale(wc.MissileSpeed*strength(v), dir),
		Status:  Status{Missile: true, Owner: a.id, TTL: wc.MissileLife},
	})
}

// moveMissiles flies every missile and resolves hits. A hit thing dies
// and the missile is spent.
func (w *World) moveMissiles(dt float64) {
	for _, m := range w.order {
		if !m.status.Missile || !m.alive {
			continue
		}
		st := w.statusMap.Get(m.e)
		pos := w.posMap.Get(m.e)
		vel := w.velMap.Get(m.e)

		st.TTL -= dt
		next := r3.Add(pos.Vec(), r3.Scale(dt, vel.Vec()))
		pos.Set(next)
		if st.TTL <= 0 || !w.terrain.Contains(next) || w.terrain.IsSolid(next) {
			w.remove(m)
			continue
		}

		if hit := w.struck(m, next); hit != nil {
			w.statusMap.Get(hit.e).Dead = true
			w.remove(m)
			w.events = append(w.events, Event{
				Tick:  w.tick,
				Actor: st.Owner,
				Verb:  brain.Verb{Kind: EventHit, Color: m.class.Color, Target: hit.id},
			})
			slog.Debug("missile hit", "shooter", st.Owner, "target", hit.id, "tick", w.tick)
		}
	}
}

// struck returns the thing a missile at p overlaps, nearest first.
func (w *World) struck(m *thing, p r3.Vec) *thing {
	w.neighbors = w.grid.QueryRadiusInto(w.neighbors[:0], p, m.radius+w.maxRadius, m)
	var best *thing
	bestDist := math.Inf(1)
	for _, n := range w.neighbors {
		o := n.T
		if !o.solid() || o.status.Dead || o.id == m.status.Owner {
			continue
		}
		d := math.Sqrt(n.DistSq)
		if d > m.radius+o.radius || d >= bestDist {
			continue
		}
		best, bestDist = o, d
	}
	return best
}
