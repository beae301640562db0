package brain

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/category"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/sense"
)

func TestChildRunsOnlyWhenParentFires(t *testing.T) {
	parentOn, childOn := false, true
	parent := rule(0, flag(&parentOn), nil)
	child := rule(1, flag(&childOn), shoot())
	a := newActor()
	b := New(a, []*Task{NewTask(nil, parent, child)}, 1)

	b.Update(Env{})
	if child.Snapshot().Evaluated {
		t.Errorf("child evaluated while parent was false")
	}
	if len(a.performed) != 0 {
		t.Errorf("child acted while parent was false: %v", a.performed)
	}

	parentOn = true
	b.Update(Env{})
	if s := child.Snapshot(); !s.Evaluated || !s.Fired {
		t.Errorf("child snapshot = %+v, want evaluated and fired", s)
	}
	if len(a.performed) != 1 {
		t.Errorf("performed %d verbs, want 1", len(a.performed))
	}
}

func TestFirstWriterWins(t *testing.T) {
	on := true
	first := rule(0, flag(&on), move(), forward(1))
	second := rule(0, flag(&on), move(), forward(3))
	a := newActor()
	b := New(a, []*Task{NewTask(nil, first, second)}, 1)

	b.Update(Env{})

	speed, ok := a.desired.Speed()
	if !ok || speed != 1 {
		t.Errorf("Speed = %v, %v; want 1 from the first rule", speed, ok)
	}
	if owner, kind, _ := a.desired.Owner(motion.GroupMovement); owner != 0 || kind != motion.KindSpeed {
		t.Errorf("Owner = %d %v, want rule 0 speed", owner, kind)
	}
	if !first.Snapshot().ActedOn {
		t.Errorf("first rule should be acted on")
	}
	if second.Snapshot().ActedOn {
		t.Errorf("second rule lost the write and should not be acted on")
	}
}

func TestExclusiveVerbOncePerTick(t *testing.T) {
	on := true
	a := newActor()
	b := New(a, []*Task{NewTask(nil,
		rule(0, flag(&on), shoot()),
		rule(0, flag(&on), shoot()),
	)}, 1)

	b.Update(Env{})
	b.Update(Env{})
	if len(a.performed) != 2 {
		t.Errorf("performed %d shots over two ticks, want 2", len(a.performed))
	}
}

func TestOnceRearms(t *testing.T) {
	on := true
	r := rule(0, flag(&on), shoot(), once())
	a := newActor()
	b := New(a, []*Task{NewTask(nil, r)}, 1)

	for range 3 {
		b.Update(Env{})
	}
	if len(a.performed) != 1 {
		t.Fatalf("performed %d while held true, want 1", len(a.performed))
	}

	on = false
	b.Update(Env{})
	if r.OnceCount != 0 {
		t.Errorf("OnceCount = %d after condition went false, want 0", r.OnceCount)
	}

	on = true
	b.Update(Env{})
	if len(a.performed) != 2 {
		t.Errorf("performed %d after re-arm, want 2", len(a.performed))
	}
}

func TestOnceSurvivesInputPass(t *testing.T) {
	on := true
	r := rule(0, flag(&on), shoot(), once())
	a := newActor()
	b := New(a, []*Task{NewTask(nil, r)}, 1)

	b.Update(Env{})
	b.UpdateInput(Env{})
	if r.OnceCount != 1 {
		t.Errorf("OnceCount = %d after an input pass, want 1", r.OnceCount)
	}
	b.Update(Env{})
	if len(a.performed) != 1 {
		t.Errorf("performed %d shots, want 1 while the condition held", len(a.performed))
	}
}

func TestOnceCountsExternalActedOn(t *testing.T) {
	on := true
	r := rule(0, flag(&on), nil, once())
	task := NewTask(nil, r)
	a := newActor()
	f := NewFrame(a, 1)

	fired := 0
	for range 4 {
		f.begin(Env{})
		task.UpdateSensors(f, category.Set{})
		if r.Fired() {
			fired++
		}
		r.MarkActedOn()
		task.UpdateActuators(f)
		task.release()
	}
	if fired != 1 {
		t.Errorf("fired %d times, want exactly 1", fired)
	}
	if r.OnceCount != 4 {
		t.Errorf("OnceCount = %d, want 4", r.OnceCount)
	}
}

func TestNotInvertsAfterNarrowing(t *testing.T) {
	a := newActor()
	rock := &fakeThing{id: 2, pos: r3.Vec{X: 3}, class: sense.Classification{Type: "rock"}}
	apple := &fakeThing{id: 3, pos: r3.Vec{X: 4}, class: sense.Classification{Type: "apple"}}
	w := &fakeWorld{}

	r := rule(0, see(), shoot(), ofType("apple"), &passFilter{Base{protoNot}})
	b := New(a, []*Task{NewTask(nil, r)}, 1)

	w.things = []sense.Thing{rock}
	b.Update(Env{World: w})
	if !r.Snapshot().Fired {
		t.Errorf("see not apple should fire with only a rock in view")
	}

	w.things = []sense.Thing{rock, apple}
	b.Update(Env{World: w})
	if r.Snapshot().Fired {
		t.Errorf("see not apple should not fire with an apple in view")
	}
}

func TestCountNone(t *testing.T) {
	a := newActor()
	apple := &fakeThing{id: 3, class: sense.Classification{Type: "apple"}}
	w := &fakeWorld{}
	r := rule(0, see(), shoot(), ofType("apple"), &noneFilter{Base{protoNone}})
	b := New(a, []*Task{NewTask(nil, r)}, 1)

	b.Update(Env{World: w})
	if !r.Snapshot().Fired {
		t.Errorf("see none apple should fire in an empty world")
	}
	w.things = []sense.Thing{apple}
	b.Update(Env{World: w})
	if r.Snapshot().Fired {
		t.Errorf("see none apple should not fire with an apple present")
	}
}

func TestSelectionPredicate(t *testing.T) {
	a := newActor()
	other := &fakeThing{id: 2}
	corpse := &fakeThing{id: 3, dead: true}
	w := &fakeWorld{things: []sense.Thing{a, other, corpse}}

	tests := []struct {
		name    string
		filters []any
		want    int
	}{
		{"default sees live others", nil, 1},
		{"me sees only self", []any{&passFilter{Base{protoMe}}}, 1},
		{"dead sees corpses", []any{&passFilter{Base{proto("filter.dead", RoleFilter, category.Filter, category.FilterDead)}}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rule(0, see(), nil, tt.filters...)
			task := NewTask(nil, r)
			f := NewFrame(a, 1)
			f.begin(Env{World: w})
			task.UpdateSensors(f, category.Set{})
			if got := r.TargetSet.Count(); got != tt.want {
				t.Errorf("targets = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRememberedTargetSteersWithoutFiring(t *testing.T) {
	on, childOn := true, true
	s := flag(&on)
	s.remember = true
	parent := rule(0, s, move())
	child := rule(1, flag(&childOn), shoot())
	a := newActor()
	b := New(a, []*Task{NewTask(testRegistry, parent, child)}, 1)

	b.Update(Env{})
	if !parent.Remembered().Valid {
		t.Fatalf("expected a remembered target after the click")
	}

	on = false
	b.Update(Env{})
	snap := parent.Snapshot()
	if snap.Fired || !snap.Steering || snap.ActedOn {
		t.Errorf("snapshot = %+v, want steering only", snap)
	}
	target, _, ok := a.desired.TargetLocation()
	if !ok || target.X != 5 {
		t.Errorf("TargetLocation = %v, %v; want x=5", target, ok)
	}
	if child.Snapshot().Evaluated {
		t.Errorf("a steering-only parent must not enable its children")
	}

	// Arriving clears the memory.
	a.pos = r3.Vec{X: 5}
	b.Update(Env{})
	if parent.Remembered().Valid {
		t.Errorf("remembered target should be forgotten on arrival")
	}
}

func TestNestedRememberedTargetSteersWhileParentFalse(t *testing.T) {
	parentOn, childOn := true, true
	parent := rule(0, flag(&parentOn), shoot())
	s := flag(&childOn)
	s.remember = true
	child := rule(1, s, move())
	a := newActor()
	b := New(a, []*Task{NewTask(testRegistry, parent, child)}, 1)

	b.Update(Env{})
	if !child.Remembered().Valid {
		t.Fatalf("expected the child to remember a target")
	}

	parentOn = false
	b.Update(Env{})
	snap := child.Snapshot()
	if snap.Evaluated || snap.Fired || !snap.Steering || snap.ActedOn {
		t.Errorf("child snapshot = %+v, want steering only", snap)
	}
	target, _, ok := a.desired.TargetLocation()
	if !ok || target != (r3.Vec{X: 5}) {
		t.Errorf("TargetLocation = %v, %v; want {5 0 0}", target, ok)
	}
}

func TestHiddenSelector(t *testing.T) {
	on := true
	tests := []struct {
		name string
		r    *Reflex
		want *Prototype
	}{
		{"movement defaults to auto", rule(0, flag(&on), move()), protoAuto},
		{"device direction defaults to gamepad", rule(0, &flagSensor{Base: Base{protoPad}, on: &on}, move()), protoPadSel},
		{"explicit selector wins", rule(0, flag(&on), move(), forward(1)), protoForward},
		{"verbs get none", rule(0, flag(&on), shoot()), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewTask(testRegistry, tt.r)
			sel := tt.r.EffectiveSelector()
			var got *Prototype
			if sel != nil {
				got = sel.Proto()
			}
			if got != tt.want {
				t.Errorf("EffectiveSelector = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHiddenSelectorUsesModifiers(t *testing.T) {
	on := true
	r := rule(0, flag(&on), move(), quickly())
	a := newActor()
	b := New(a, []*Task{NewTask(testRegistry, r)}, 1)
	b.Update(Env{})
	if speed, ok := a.desired.Speed(); !ok || speed != 2 {
		t.Errorf("Speed = %v, %v; want 2 from auto selector with quickly", speed, ok)
	}
}

func TestFixupIsIdempotent(t *testing.T) {
	on := true
	r := rule(0, flag(&on), move(), quickly(), quickly())
	task := NewTask(testRegistry, r)
	sel := r.EffectiveSelector()
	task.Fixup()
	task.Fixup()
	if got := r.ModifierParams().Speed; got != 4 {
		t.Errorf("Speed multiplier = %v after repeated fixups, want 4", got)
	}
	if r.EffectiveSelector() != sel {
		t.Errorf("hidden selector should be kept across fixups")
	}
}

func TestRelink(t *testing.T) {
	on := true
	rs := []*Reflex{
		rule(0, flag(&on), nil),
		rule(1, flag(&on), nil),
		rule(3, flag(&on), nil),
		rule(1, flag(&on), nil),
	}
	task := NewTask(nil, rs...)

	parents := func() []int {
		var out []int
		for _, r := range task.Reflexes() {
			out = append(out, r.Parent())
		}
		return out
	}
	if got := parents(); !slices.Equal(got, []int{-1, 0, 1, 0}) {
		t.Errorf("parents = %v", got)
	}
	if rs[2].Indent != 2 {
		t.Errorf("indent = %d, want clamped to 2", rs[2].Indent)
	}

	task.Remove(0)
	if got := parents(); !slices.Equal(got, []int{-1, 0, 0}) {
		t.Errorf("parents after remove = %v", got)
	}

	task.Insert(0, rule(0, flag(&on), nil))
	task.Reindent(3, 0)
	if got := parents(); !slices.Equal(got, []int{-1, -1, 1, -1}) {
		t.Errorf("parents after insert and reindent = %v", got)
	}

	task.Swap(0, 3)
	for i, r := range task.Reflexes() {
		if r.Index() != i {
			t.Errorf("rule %d has index %d", i, r.Index())
		}
	}
}

func TestStructuralEditsIgnoreBadIndex(t *testing.T) {
	on := true
	rs := []*Reflex{rule(0, flag(&on), nil), rule(1, flag(&on), nil)}
	task := NewTask(nil, rs...)

	task.Swap(0, 2)
	task.Swap(-1, 0)
	task.Reindent(5, 0)
	task.Reindent(-1, 0)
	if task.Remove(2) != nil {
		t.Errorf("Remove past the end returned a rule")
	}
	if task.At(0) != rs[0] || task.At(1) != rs[1] || rs[1].Parent() != 0 {
		t.Errorf("bad indices changed the task")
	}
}

type pageActuator struct {
	Base
	page int
}

func (pageActuator) AttachActionSet(*motion.ActionSet) {}

func (a *pageActuator) Update(f *Frame, r *Reflex) {
	f.RequestPage(a.page)
	r.MarkActedOn()
}

func TestPageSwitch(t *testing.T) {
	on := true
	sw := proto("actuator.switch", RoleActuator, category.Actuator, category.ActuatorSwitchPage)
	page0 := NewTask(nil, rule(0, flag(&on), &pageActuator{Base: Base{sw}, page: 1}))
	page1 := NewTask(nil, rule(0, flag(&on), shoot(), once()))
	a := newActor()
	b := New(a, []*Task{page0, page1}, 1)

	b.Update(Env{})
	if b.ActivePage() != 1 || b.Switches() != 1 {
		t.Fatalf("active page = %d after switch, want 1", b.ActivePage())
	}
	b.Update(Env{})
	if len(a.performed) != 1 {
		t.Errorf("new page should run on the next tick")
	}
	if b.Switch(7) {
		t.Errorf("switch to a missing page should be ignored")
	}
}

func TestUpdateInputOnlyRunsDeviceRules(t *testing.T) {
	on := true
	plain := rule(0, flag(&on), nil)
	device := rule(0, &flagSensor{Base: Base{protoPad}, on: &on}, nil)
	b := New(newActor(), []*Task{NewTask(nil, plain, device)}, 1)

	b.UpdateInput(Env{})
	if plain.Snapshot().Evaluated {
		t.Errorf("non-input rule evaluated during an input pass")
	}
	if !device.Snapshot().Evaluated {
		t.Errorf("input rule skipped during an input pass")
	}
}

func TestPoolsDrainEachTick(t *testing.T) {
	on := true
	a := newActor()
	w := &fakeWorld{things: []sense.Thing{
		&fakeThing{id: 2, pos: r3.Vec{X: 1}},
		&fakeThing{id: 3, pos: r3.Vec{X: 2}},
	}}
	b := New(a, []*Task{NewTask(testRegistry,
		rule(0, see(), move()),
		rule(0, flag(&on), move(), forward(1)),
	)}, 1)

	for range 5 {
		b.Update(Env{World: w})
	}
	f := b.Frame()
	if f.Targets.Allocated() != f.Targets.Available() {
		t.Errorf("targets leaked: %d allocated, %d free", f.Targets.Allocated(), f.Targets.Available())
	}
	allocated, available := f.Pools.Stats()
	if allocated != available {
		t.Errorf("actions leaked: %v allocated, %v free", allocated, available)
	}
}
