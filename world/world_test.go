package world

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/config"
	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/program"
	"github.com/pthm-cable/whendo/sense"
	"github.com/pthm-cable/whendo/tiles"
)

func init() {
	config.MustInit("")
	tiles.InitTuning()
}

var testReg = tiles.MustDefault()

func pages(t *testing.T, actorType string, rules ...program.ReflexRecord) []*brain.Task {
	t.Helper()
	task, warnings := program.BuildTask(testReg, program.TaskRecord{Reflexes: rules}, actorType)
	if len(warnings) > 0 {
		t.Fatalf("building rules: %v", warnings)
	}
	return []*brain.Task{task}
}

func run(t *testing.T, w *World, ticks int) {
	t.Helper()
	for range ticks {
		if err := w.Step(context.Background(), nil); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
}

func TestChaseAndBump(t *testing.T) {
	w := New(config.Cfg(), nil, 1)
	w.Spawn(Spawn{Type: "apple", Color: sense.Red, Pos: r3.Vec{X: 20, Y: 10}})
	bot := w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{Sensor: "sensor.see", Filters: []string{"filter.apple"}, Actuator: "actuator.move", Selector: "selector.toward"},
		program.ReflexRecord{Sensor: "sensor.bump", Filters: []string{"filter.apple"}, Actuator: "actuator.score"},
	))

	run(t, w, 30)
	if x := bot.Position().X; x <= 10 {
		t.Fatalf("bot at x=%v after 30 ticks, want moving toward the apple", x)
	}
	if w.Score(tiles.DefaultBucket) != 0 {
		t.Fatal("scored before touching")
	}

	run(t, w, 300)
	pos := bot.Position()
	if gap := 20 - pos.X; gap < 0.99 || gap > 1.1 {
		t.Errorf("bot stopped %v from the apple center, want touching", gap)
	}
	if math.Abs(pos.Y-10) > 1e-6 {
		t.Errorf("bot drifted to y=%v", pos.Y)
	}
	if w.Score(tiles.DefaultBucket) == 0 {
		t.Error("no score after bumping the apple")
	}
}

func TestShootKillsTarget(t *testing.T) {
	w := New(config.Cfg(), nil, 1)
	rock := w.Spawn(Spawn{Type: "rock", Pos: r3.Vec{X: 16, Y: 10}})
	w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{Sensor: "sensor.see", Filters: []string{"filter.rock"}, Actuator: "actuator.shoot"},
	))

	hits, shots := 0, 0
	for range 60 {
		run(t, w, 1)
		for _, ev := range w.Events() {
			switch ev.Verb.Kind {
			case EventHit:
				hits++
				if ev.Verb.Target != rock {
					t.Errorf("hit %d, want the rock %d", ev.Verb.Target, rock)
				}
			case brain.VerbShoot:
				shots++
			}
		}
	}
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if shots != 1 {
		t.Errorf("shots = %d, want one before the rock died", shots)
	}
	th, ok := w.Thing(rock)
	if !ok || !th.Dead() {
		t.Errorf("rock dead = %v, want dead", ok && th.Dead())
	}
}

func TestVanish(t *testing.T) {
	w := New(config.Cfg(), nil, 1)
	a := w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{Sensor: "sensor.always", Actuator: "actuator.vanish"},
	))
	run(t, w, 1)

	if w.Len() != 0 || len(w.Actors()) != 0 {
		t.Errorf("level still holds %d things, %d actors", w.Len(), len(w.Actors()))
	}
	if a.Alive() {
		t.Error("vanished actor still reports alive")
	}
	run(t, w, 1)
}

func TestJumpOnlyFromGround(t *testing.T) {
	w := New(config.Cfg(), nil, 1)
	a := w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{Sensor: "sensor.always", Actuator: "actuator.jump"},
	))

	jumps, peak := 0, 0.0
	for range 10 {
		run(t, w, 1)
		jumps += len(w.Events())
		peak = max(peak, w.posMap.Get(a.e).Z)
	}
	if jumps != 1 {
		t.Errorf("jumped %d times in the air, want once", jumps)
	}
	if peak <= 0 {
		t.Error("never left the ground")
	}
}

func TestGlowAndExpress(t *testing.T) {
	w := New(config.Cfg(), nil, 1)
	a := w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{Sensor: "sensor.always", Actuator: "actuator.glow", Modifiers: []string{"modifier.blue"}},
		program.ReflexRecord{Sensor: "sensor.always", Actuator: "actuator.express", Modifiers: []string{"modifier.happy"}},
	))
	run(t, w, 2)

	c := a.Classification()
	if c.Color != sense.Blue || c.Expression != sense.Happy {
		t.Errorf("classification = %+v, want blue and happy", c)
	}
}

func TestLandActorStaysOnLand(t *testing.T) {
	cfg := config.Cfg()
	tr := NewTerrain(cfg.World.Width, cfg.World.Height, cfg.World.CellSize)
	for y := 0.0; y <= cfg.World.Height; y += cfg.World.CellSize {
		tr.SetCell(r3.Vec{X: 15, Y: y}, Water)
	}
	w := New(cfg, tr, 1)
	bot := w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{Sensor: "sensor.always", Actuator: "actuator.move", Modifiers: []string{"modifier.east"}},
	))
	run(t, w, 200)

	if x := bot.Position().X; x >= 14 || x < 12 {
		t.Errorf("bot at x=%v, want stopped at the shore", x)
	}
}

func TestPointerPick(t *testing.T) {
	w := New(config.Cfg(), nil, 1)
	apple := w.Spawn(Spawn{Type: "apple", Pos: r3.Vec{X: 30, Y: 30}})
	w.AddActor("bot", sense.NoColor, r3.Vec{X: 10, Y: 10}, 0, pages(t, "bot",
		program.ReflexRecord{
			Sensor:   "sensor.pointer",
			Filters:  []string{"filter.apple"},
			Actuator: "actuator.say",
			Params:   map[string]string{"text": "mine"},
		},
	))

	in := input.NewState()
	in.Pointer = input.Pointer{Valid: true, World: r3.Vec{X: 30.2, Y: 30}}
	in.Pointer.Buttons[input.LeftButton].Down = true
	if err := w.Step(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if in.Pointer.HitID != apple {
		t.Errorf("pointer hit %d, want the apple %d", in.Pointer.HitID, apple)
	}
	if len(w.Events()) != 1 || w.Events()[0].Verb.Text != "mine" {
		t.Errorf("events = %+v, want the actor to speak", w.Events())
	}
}

// Brains read only the snapshot, so the worker count cannot change the
// outcome.
func TestParallelMatchesSerial(t *testing.T) {
	build := func(workers int) *World {
		cfg := *config.Cfg()
		cfg.Sim.Workers = workers
		w := New(&cfg, nil, 5)
		for i := range 12 {
			w.Spawn(Spawn{Type: "apple", Pos: r3.Vec{X: float64(10 + 6*i), Y: 50}})
		}
		for i := range 16 {
			w.AddActor("bot", sense.NoColor, r3.Vec{X: float64(10 + 5*i), Y: 30}, 0, pages(t, "bot",
				program.ReflexRecord{Sensor: "sensor.see", Filters: []string{"filter.apple", "filter.nearby"}, Actuator: "actuator.move", Selector: "selector.toward"},
				program.ReflexRecord{Sensor: "sensor.always", Actuator: "actuator.move", Selector: "selector.wander"},
			))
		}
		return w
	}
	serial, parallel := build(1), build(8)
	run(t, serial, 120)
	run(t, parallel, 120)

	for i, a := range serial.Actors() {
		b := parallel.Actors()[i]
		if a.Position() != b.Position() || a.Heading() != b.Heading() {
			t.Fatalf("actor %d diverged: %v/%v vs %v/%v", i, a.Position(), a.Heading(), b.Position(), b.Heading())
		}
	}
}
