// Package world is a reference level for running brains: an ark ECS world
// of things, some of them actors, over a terrain grid.
package world

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/config"
	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/nav"
	"github.com/pthm-cable/whendo/sense"
	"github.com/pthm-cable/whendo/telemetry"
)

// World holds the level state. A tick has three phases: snapshot the ECS
// into read-only views, run every brain in parallel against the views,
// then apply verbs and motion single-threaded.
type World struct {
	cfg *config.Config
	ecs *ecs.World

	mapper    *ecs.Map6[Position, Velocity, Rotation, Body, Tag, Status]
	filter    *ecs.Filter6[Position, Velocity, Rotation, Body, Tag, Status]
	posMap    *ecs.Map1[Position]
	velMap    *ecs.Map1[Velocity]
	rotMap    *ecs.Map1[Rotation]
	tagMap    *ecs.Map1[Tag]
	statusMap *ecs.Map1[Status]

	terrain *Terrain
	grid    *Grid
	paths   *nav.Graph
	scores  map[string]int

	views     map[uint64]*thing
	order     []*thing
	actors    []*Actor
	maxRadius float64

	nextID  uint64
	tick    uint64
	time    float64
	seed    int64
	workers int

	// Paused restricts brains to input rules and freezes missiles.
	Paused bool

	events    []Event
	doomed    []*thing
	neighbors []Neighbor

	perf *telemetry.PerfCollector
}

var _ brain.World = (*World)(nil)

// New creates an empty level over terrain. A nil terrain is flat land
// of the configured size. seed offsets every brain's random stream.
func New(cfg *config.Config, terrain *Terrain, seed int64) *World {
	if terrain == nil {
		terrain = NewTerrain(cfg.World.Width, cfg.World.Height, cfg.World.CellSize)
	}
	width, height := terrain.Size()
	workers := cfg.Sim.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ew := ecs.NewWorld()
	return &World{
		cfg:       cfg,
		ecs:       ew,
		mapper:    ecs.NewMap6[Position, Velocity, Rotation, Body, Tag, Status](ew),
		filter:    ecs.NewFilter6[Position, Velocity, Rotation, Body, Tag, Status](ew),
		posMap:    ecs.NewMap1[Position](ew),
		velMap:    ecs.NewMap1[Velocity](ew),
		rotMap:    ecs.NewMap1[Rotation](ew),
		tagMap:    ecs.NewMap1[Tag](ew),
		statusMap: ecs.NewMap1[Status](ew),
		terrain:   terrain,
		grid:      NewGrid(width, height, cfg.World.GridSize),
		paths:     nav.NewGraph(),
		scores:    make(map[string]int),
		views:     make(map[uint64]*thing),
		seed:      seed,
		workers:   workers,
	}
}

// Spawn describes a new thing.
type Spawn struct {
	Type    string
	Color   sense.Color
	Pos     r3.Vec
	Heading float64
	Radius  float64
	Vel     r3.Vec
	Status  Status
}

// Spawn adds a thing and returns its id. It is visible to brains from the
// next snapshot on.
func (w *World) Spawn(s Spawn) uint64 {
	w.nextID++
	id := w.nextID
	if s.Radius <= 0 {
		s.Radius = 0.5
	}

	pos := &Position{}
	pos.Set(s.Pos)
	vel := &Velocity{}
	vel.Set(s.Vel)
	st := s.Status
	e := w.mapper.NewEntity(
		pos, vel,
		&Rotation{Heading: s.Heading},
		&Body{Radius: s.Radius},
		&Tag{ID: id, Type: s.Type, Color: s.Color},
		&st,
	)

	v := &thing{
		e:       e,
		id:      id,
		pos:     s.Pos,
		vel:     s.Vel,
		heading: s.Heading,
		radius:  s.Radius,
		class:   sense.Classification{Type: s.Type, Color: s.Color},
		status:  st,
		alive:   true,
	}
	w.views[id] = v
	w.order = append(w.order, v)
	w.maxRadius = max(w.maxRadius, s.Radius)
	return id
}

// AddActor spawns an actor of the given type running pages. Unknown
// types use the first configured archetype.
func (w *World) AddActor(actorType string, color sense.Color, pos r3.Vec, heading float64, pages []*brain.Task) *Actor {
	arch := w.cfg.Archetype(actorType)
	domain, ok := motion.ParseDomain(arch.Domain)
	if !ok {
		slog.Warn("unknown domain", "actor", actorType, "domain", arch.Domain)
	}

	id := w.Spawn(Spawn{Type: actorType, Color: color, Pos: pos, Heading: heading, Radius: arch.Radius})
	a := &Actor{
		thing: w.views[id],
		w:     w,
		caps: motion.Capabilities{
			MaxSpeed:         arch.MaxSpeed,
			MaxAccel:         arch.MaxAccel,
			MaxTurnRate:      arch.MaxTurnRate,
			MaxTurnAccel:     arch.MaxTurnAccel,
			MaxVerticalSpeed: arch.MaxVerticalSpeed,
			MaxVerticalAccel: arch.MaxVerticalAccel,
			Domain:           domain,
			CanStrafe:        arch.CanStrafe,
		},
	}
	a.thing.actor = a
	a.brain = brain.New(a, pages, w.seed+int64(id))
	w.actors = append(w.actors, a)
	return a
}

// AddPath adds a waypoint path.
func (w *World) AddPath(color sense.Color, points []r3.Vec, loop bool) {
	w.paths.AddPath(color, points, loop)
}

// Things calls fn for each thing in spawn order until fn returns false.
func (w *World) Things(fn func(sense.Thing) bool) {
	for _, t := range w.order {
		if !fn(t) {
			return
		}
	}
}

// Score returns the value of a score bucket.
func (w *World) Score(bucket string) int { return w.scores[bucket] }

// Scores returns every non-empty bucket.
func (w *World) Scores() map[string]int { return w.scores }

// Paths returns the waypoint graph.
func (w *World) Paths() *nav.Graph { return w.paths }

// Terrain returns the ground grid.
func (w *World) Terrain() *Terrain { return w.terrain }

// Actors returns every actor in spawn order. The slice must not be
// modified.
func (w *World) Actors() []*Actor { return w.actors }

// Thing returns the view of a thing by id.
func (w *World) Thing(id uint64) (sense.Thing, bool) {
	v, ok := w.views[id]
	return v, ok
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 { return w.tick }

// Time returns simulated seconds since the level started.
func (w *World) Time() float64 { return w.time }

// Len returns the number of things in the level.
func (w *World) Len() int { return len(w.order) }

// Pick returns the id of the thing under p, or 0. It reads the last
// snapshot.
func (w *World) Pick(p r3.Vec) uint64 {
	if t := w.grid.At(p, w.maxRadius, w.neighbors); t != nil {
		return t.id
	}
	return 0
}

// Step advances the level by one tick. in may be nil. A pointer without a
// hit is resolved against the level before brains run.
func (w *World) Step(ctx context.Context, in *input.State) error {
	dt := w.cfg.Sim.DT
	w.events = w.events[:0]
	w.perf.StartTick()
	defer w.perf.EndTick()

	w.perf.StartPhase(telemetry.PhaseSnapshot)
	w.snapshot()
	if in != nil && in.Pointer.Valid && in.Pointer.HitID == 0 {
		in.Pointer.HitID = w.Pick(in.Pointer.World)
	}

	env := brain.Env{
		Tick:    w.tick,
		Time:    w.time,
		DT:      dt,
		World:   w,
		Terrain: w.terrain,
		Input:   in,
	}
	w.perf.StartPhase(telemetry.PhaseThink)
	if err := w.think(ctx, env); err != nil {
		return err
	}

	w.perf.StartPhase(telemetry.PhasePerform)
	for _, a := range w.actors {
		w.perform(a)
	}
	w.perf.StartPhase(telemetry.PhaseLocomote)
	for _, a := range w.actors {
		w.locomote(a, dt)
	}
	if !w.Paused {
		w.perf.StartPhase(telemetry.PhaseMissiles)
		w.moveMissiles(dt)
		w.time += dt
	}
	w.perf.StartPhase(telemetry.PhaseReap)
	w.reap()
	w.tick++
	return nil
}

// SetPerf times each step's phases into p. nil disables timing.
func (w *World) SetPerf(p *telemetry.PerfCollector) { w.perf = p }

// Trace appends the outcome of every actor's active rules for the step
// that just ran.
func (w *World) Trace(dst []telemetry.ReflexTrace) []telemetry.ReflexTrace {
	if w.tick == 0 {
		return dst
	}
	tick := w.tick - 1
	for _, a := range w.actors {
		dst = telemetry.Trace(dst, tick, a.id, a.brain)
	}
	return dst
}

// snapshot copies component state into the views and rebuilds the grid.
func (w *World) snapshot() {
	query := w.filter.Query()
	for query.Next() {
		pos, vel, rot, body, tag, st := query.Get()
		v := w.views[tag.ID]
		if v == nil {
			continue
		}
		v.pos = pos.Vec()
		v.vel = vel.Vec()
		v.heading = rot.Heading
		v.radius = body.Radius
		v.class = sense.Classification{Type: tag.Type, Color: tag.Color, Expression: tag.Expression}
		v.status = *st
	}

	w.grid.Clear()
	for _, v := range w.order {
		w.grid.Insert(v)
	}
}

// think runs every living actor's brain. Brains only read the views and
// write their own actor, so they run concurrently.
func (w *World) think(ctx context.Context, env brain.Env) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for _, a := range w.actors {
		if a.status.Dead {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if w.Paused {
				a.brain.UpdateInput(env)
			} else {
				a.brain.Update(env)
			}
			return nil
		})
	}
	return g.Wait()
}

// remove schedules a thing for removal at the end of the tick.
func (w *World) remove(t *thing) {
	if !t.alive || slices.Contains(w.doomed, t) {
		return
	}
	w.doomed = append(w.doomed, t)
}

// reap drops doomed things from the ECS and the views.
func (w *World) reap() {
	if len(w.doomed) == 0 {
		return
	}
	for _, t := range w.doomed {
		w.mapper.Remove(t.e)
		t.alive = false
		delete(w.views, t.id)
	}
	w.order = slices.DeleteFunc(w.order, func(t *thing) bool { return !t.alive })
	w.actors = slices.DeleteFunc(w.actors, func(a *Actor) bool { return !a.alive })
	clear(w.doomed)
	w.doomed = w.doomed[:0]
}

// unit returns the ground-plane unit vector for a heading.
func unit(heading float64) r3.Vec {
	return r3.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
}
