package brain

import (
	"github.com/pthm-cable/whendo/category"
)

// Task is an ordered list of rules, one page of a brain. Rule order is
// priority order: earlier rules win contested motion.
type Task struct {
	reflexes  []*Reflex
	reg       Registry
	maxIndent int
}

// NewTask builds a task and resolves parents and hidden defaults. reg may
// be nil, in which case no hidden defaults are attached.
func NewTask(reg Registry, reflexes ...*Reflex) *Task {
	t := &Task{reg: reg, reflexes: reflexes}
	t.Fixup()
	return t
}

// Reflexes returns the rules in order. The slice must not be modified.
func (t *Task) Reflexes() []*Reflex { return t.reflexes }

// Len returns the number of rules.
func (t *Task) Len() int { return len(t.reflexes) }

// At returns the i-th rule.
func (t *Task) At(i int) *Reflex { return t.reflexes[i] }

// Fixup recomputes indices, parents and each rule's derived state.
func (t *Task) Fixup() {
	t.relink()
	for _, r := range t.reflexes {
		r.Fixup(t.reg)
	}
}

// relink assigns each rule the nearest preceding rule one level up as its
// parent. An indent deeper than one past the previous rule is clamped.
func (t *Task) relink() {
	t.maxIndent = 0
	var stack []int
	for i, r := range t.reflexes {
		r.index = i
		if r.Indent < 0 {
			r.Indent = 0
		}
		if r.Indent > len(stack) {
			r.Indent = len(stack)
		}
		stack = stack[:r.Indent]
		r.parent = -1
		if r.Indent > 0 {
			r.parent = stack[r.Indent-1]
		}
		stack = append(stack, i)
		t.maxIndent = max(t.maxIndent, r.Indent)
	}
}

// Append adds r at the end.
func (t *Task) Append(r *Reflex) {
	t.reflexes = append(t.reflexes, r)
	t.Fixup()
}

// Insert places r at index i, shifting later rules down.
func (t *Task) Insert(i int, r *Reflex) {
	i = min(max(i, 0), len(t.reflexes))
	t.reflexes = append(t.reflexes, nil)
	copy(t.reflexes[i+1:], t.reflexes[i:])
	t.reflexes[i] = r
	t.Fixup()
}

// Remove deletes and returns the rule at i. Its children are re-parented.
func (t *Task) Remove(i int) *Reflex {
	if !t.inRange(i) {
		return nil
	}
	r := t.reflexes[i]
	copy(t.reflexes[i:], t.reflexes[i+1:])
	t.reflexes[len(t.reflexes)-1] = nil
	t.reflexes = t.reflexes[:len(t.reflexes)-1]
	r.Reset()
	t.Fixup()
	return r
}

// Swap exchanges the rules at i and j. Out-of-range indices are ignored.
func (t *Task) Swap(i, j int) {
	if !t.inRange(i) || !t.inRange(j) {
		return
	}
	t.reflexes[i], t.reflexes[j] = t.reflexes[j], t.reflexes[i]
	t.Fixup()
}

// Reindent changes the nesting level of the rule at i. An out-of-range
// index is ignored.
func (t *Task) Reindent(i, indent int) {
	if !t.inRange(i) {
		return
	}
	t.reflexes[i].Indent = indent
	t.Fixup()
}

func (t *Task) inRange(i int) bool { return i >= 0 && i < len(t.reflexes) }

// Reset clears the runtime state of every rule.
func (t *Task) Reset() {
	for _, r := range t.reflexes {
		r.Reset()
	}
}

// UpdateSensors clears every target set, then evaluates rules level by
// level so a child always sees its parent's result from this tick. A child
// runs only if its parent fired. A non-empty only set restricts top-level
// rules to sensors carrying one of its categories; the rules it leaves out,
// and their children, are marked skipped.
func (t *Task) UpdateSensors(f *Frame, only category.Set) {
	for _, r := range t.reflexes {
		r.clearTick()
	}
	for level := 0; level <= t.maxIndent; level++ {
		for _, r := range t.reflexes {
			if r.Indent != level {
				continue
			}
			if r.parent >= 0 && !t.reflexes[r.parent].fired {
				r.skipped = t.reflexes[r.parent].skipped
				r.steerRemembered(f)
				continue
			}
			if level == 0 && !only.Empty() {
				if r.Sensor == nil || !r.Sensor.Proto().Categories.Intersects(only) {
					r.skipped = true
					continue
				}
			}
			r.evaluate(f)
		}
	}
}

// UpdateActuators runs the DO side of every rule in priority order, applies
// gathered constraints to the desired motion and settles once counters.
func (t *Task) UpdateActuators(f *Frame) {
	for _, r := range t.reflexes {
		r.act(f)
	}
	f.Actor.Motion().Constrain(f.constraints)
	for _, r := range t.reflexes {
		r.settle()
	}
}

// release returns every pooled action set.
func (t *Task) release() {
	for _, r := range t.reflexes {
		r.release()
	}
}
