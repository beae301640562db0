package brain

import (
	"log/slog"

	"github.com/pthm-cable/whendo/category"
)

// Brain runs one actor's tasks. Only the active task is evaluated.
type Brain struct {
	pages  []*Task
	active int
	frame  *Frame

	switches int
}

// New creates a brain for actor. seed drives the brain's random choices.
func New(actor Actor, pages []*Task, seed int64) *Brain {
	return &Brain{
		pages: pages,
		frame: NewFrame(actor, seed),
	}
}

// Actor returns the controlled actor.
func (b *Brain) Actor() Actor { return b.frame.Actor }

// Frame exposes the evaluation context, mainly for pool statistics.
func (b *Brain) Frame() *Frame { return b.frame }

// Pages returns every task.
func (b *Brain) Pages() []*Task { return b.pages }

// ActivePage returns the index of the running task.
func (b *Brain) ActivePage() int { return b.active }

// Active returns the running task, or nil for an empty brain.
func (b *Brain) Active() *Task {
	if b.active >= len(b.pages) {
		return nil
	}
	return b.pages[b.active]
}

// Switches counts page switches since creation.
func (b *Brain) Switches() int { return b.switches }

// Update runs one full tick: sensors, then actuators, then pool cleanup.
// A page switch requested during the tick takes effect afterwards.
func (b *Brain) Update(env Env) {
	b.run(env, category.Set{})
}

// UpdateInput runs a tick restricted to input-device rules, for actors that
// must respond to the player while the rest of the level is paused.
func (b *Brain) UpdateInput(env Env) {
	b.run(env, category.Of(category.SensorInput))
}

func (b *Brain) run(env Env, only category.Set) {
	t := b.Active()
	if t == nil {
		return
	}
	f := b.frame
	f.begin(env)

	d := f.Actor.Motion()
	d.Reset()
	d.SetForward(f.Forward())

	t.UpdateSensors(f, only)
	t.UpdateActuators(f)
	t.release()

	if f.page >= 0 {
		b.Switch(f.page)
	}
}

// Switch makes page the active task, resetting the old and new task's
// runtime state. Out-of-range pages are ignored.
func (b *Brain) Switch(page int) bool {
	if page < 0 || page >= len(b.pages) || page == b.active {
		return false
	}
	b.pages[b.active].Reset()
	slog.Debug("page switch", "actor", b.frame.Actor.ID(), "from", b.active, "to", page)
	b.active = page
	b.pages[page].Reset()
	b.switches++
	return true
}
