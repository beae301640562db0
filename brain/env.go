package brain

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/nav"
	"github.com/pthm-cable/whendo/sense"
)

// Verb names of discrete one-shot actions. Exclusive verbs execute at most
// once per tick per task.
const (
	VerbShoot      = "shoot"
	VerbSay        = "say"
	VerbScore      = "score"
	VerbGlow       = "glow"
	VerbExpress    = "express"
	VerbJump       = "jump"
	VerbVanish     = "vanish"
	VerbSwitchPage = "switch_page"
)

// Verb is a discrete action handed to the actor.
type Verb struct {
	Kind       string
	Color      sense.Color
	Expression sense.Expression
	Text       string
	Bucket     string
	Amount     int
	Strength   float64
	Target     uint64 // thing the verb is aimed at, 0 for none
	Direction  r3.Vec
}

// Actor is the thing a brain controls.
type Actor interface {
	sense.Thing
	Heading() float64
	Velocity() r3.Vec
	Capabilities() motion.Capabilities
	Motion() *motion.Desired
	// Perform executes a verb and reports whether it took effect.
	Perform(v Verb) bool
}

// Forward returns the unit heading vector of a in the ground plane.
func Forward(a Actor) r3.Vec {
	h := a.Heading()
	return r3.Vec{X: math.Cos(h), Y: math.Sin(h)}
}

// World is the query surface over every thing in the level.
type World interface {
	// Things calls fn for each thing until fn returns false.
	Things(fn func(sense.Thing) bool)
	Score(bucket string) int
	Paths() *nav.Graph
}

// Terrain answers domain questions for wandering and orbiting.
type Terrain interface {
	Contains(p r3.Vec) bool
	IsWater(p r3.Vec) bool
	// Blocked reports whether a body of the given radius cannot travel
	// straight from a to b.
	Blocked(a, b r3.Vec, radius float64) bool
}

// Passable reports whether a destination suits an actor's domain.
func Passable(t Terrain, d motion.Domain, p r3.Vec) bool {
	if t == nil {
		return true
	}
	if !t.Contains(p) {
		return false
	}
	switch d {
	case motion.Land:
		return !t.IsWater(p)
	case motion.Water:
		return t.IsWater(p)
	}
	return true
}

// Env is the per-tick context supplied by the simulation.
type Env struct {
	Tick    uint64
	Time    float64 // seconds since level start
	DT      float64
	World   World
	Terrain Terrain
	Input   *input.State
}

// Frame is one brain's evaluation context. It owns the pools and scratch
// used during a tick, so brains never share mutable state.
type Frame struct {
	Env
	Actor   Actor
	Pools   *motion.Pools
	Targets *sense.Pool
	Rand    *rand.Rand

	verbs       map[string]struct{}
	constraints motion.Constraints
	page        int
}

// NewFrame creates an evaluation context for one actor.
func NewFrame(actor Actor, seed int64) *Frame {
	return &Frame{
		Actor:   actor,
		Pools:   motion.NewPools(),
		Targets: sense.NewPool(),
		Rand:    rand.New(rand.NewSource(seed)),
		verbs:   make(map[string]struct{}),
		page:    -1,
	}
}

func (f *Frame) begin(env Env) {
	f.Env = env
	clear(f.verbs)
	f.constraints = 0
	f.page = -1
}

// ClaimVerb reserves an exclusive verb for this tick. It reports false if
// an earlier rule already performed it. Actuators claim only once they
// have a verb to perform, so a rule with nothing to say leaves the slot
// to later rules.
func (f *Frame) ClaimVerb(verb string) bool {
	if _, used := f.verbs[verb]; used {
		return false
	}
	f.verbs[verb] = struct{}{}
	return true
}

// RequestPage asks the brain to switch task after this tick. The first
// request wins.
func (f *Frame) RequestPage(page int) {
	if f.page < 0 {
		f.page = page
	}
}

// Forward returns the actor's heading vector.
func (f *Frame) Forward() r3.Vec {
	return Forward(f.Actor)
}
