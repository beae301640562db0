package tiles

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/config"
	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/nav"
	"github.com/pthm-cable/whendo/sense"
)

func init() {
	config.MustInit("")
	InitTuning()
}

var testReg = MustDefault()

type thing struct {
	id    uint64
	pos   r3.Vec
	class sense.Classification
}

func (t *thing) ID() uint64                           { return t.id }
func (t *thing) Position() r3.Vec                     { return t.pos }
func (t *thing) Radius() float64                      { return 0.5 }
func (t *thing) Classification() sense.Classification { return t.class }
func (t *thing) Alive() bool                          { return true }
func (t *thing) Ignored() bool                        { return false }
func (t *thing) Dead() bool                           { return false }
func (t *thing) Squashed() bool                       { return false }
func (t *thing) Missile() bool                        { return false }

func object(id uint64, kind string, x, y float64) *thing {
	return &thing{id: id, pos: r3.Vec{X: x, Y: y}, class: sense.Classification{Type: kind}}
}

type actor struct {
	thing
	heading   float64
	caps      motion.Capabilities
	desired   motion.Desired
	performed []brain.Verb
}

func newActor() *actor {
	return &actor{
		thing: thing{id: 1, class: sense.Classification{Type: "bot"}},
		caps:  motion.Capabilities{MaxSpeed: 4, MaxTurnRate: 2, Domain: motion.Land},
	}
}

func (a *actor) Heading() float64                  { return a.heading }
func (a *actor) Velocity() r3.Vec                  { return r3.Vec{} }
func (a *actor) Capabilities() motion.Capabilities { return a.caps }
func (a *actor) Motion() *motion.Desired           { return &a.desired }

func (a *actor) Perform(v brain.Verb) bool {
	a.performed = append(a.performed, v)
	return true
}

type world struct {
	things []sense.Thing
	scores map[string]int
	paths  *nav.Graph
}

func (w *world) Things(fn func(sense.Thing) bool) {
	for _, t := range w.things {
		if !fn(t) {
			return
		}
	}
}

func (w *world) Score(bucket string) int { return w.scores[bucket] }
func (w *world) Paths() *nav.Graph       { return w.paths }

// terrain is a square level. Water covers x >= waterFrom.
type terrain struct {
	half      float64
	waterFrom float64
	blocked   bool
}

func (t *terrain) Contains(p r3.Vec) bool {
	return math.Abs(p.X) <= t.half && math.Abs(p.Y) <= t.half
}

func (t *terrain) IsWater(p r3.Vec) bool               { return p.X >= t.waterFrom }
func (t *terrain) Blocked(_, _ r3.Vec, _ float64) bool { return t.blocked }

// rule builds a reflex from catalog ids, inferring each tile's role from
// its id prefix.
func rule(t *testing.T, ids ...string) *brain.Reflex {
	t.Helper()
	r := brain.NewReflex()
	for _, id := range ids {
		prefix, _, _ := strings.Cut(id, ".")
		role, err := brain.ParseRole(prefix)
		if err != nil {
			t.Fatalf("tile %q: %v", id, err)
		}
		e := testReg.New(role, id)
		if e == nil {
			t.Fatalf("tile %q not in catalog", id)
		}
		switch role {
		case brain.RoleSensor:
			r.Sensor = e.(brain.Sensor)
		case brain.RoleFilter:
			r.Filters = append(r.Filters, e.(brain.Filter))
		case brain.RoleActuator:
			r.Actuator = e.(brain.Actuator)
		case brain.RoleSelector:
			r.Selector = e.(brain.Selector)
		case brain.RoleModifier:
			r.Modifiers = append(r.Modifiers, e.(brain.Modifier))
		}
	}
	return r
}

func newBrain(a *actor, rules ...*brain.Reflex) *brain.Brain {
	return brain.New(a, []*brain.Task{brain.NewTask(testReg, rules...)}, 1)
}

const dt = 0.25

func env(w *world, tick int) brain.Env {
	return brain.Env{Tick: uint64(tick), Time: float64(tick) * dt, DT: dt, World: w}
}

func withInput(e brain.Env, in *input.State) brain.Env {
	e.Input = in
	return e
}

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}
