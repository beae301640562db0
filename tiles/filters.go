package tiles

import (
	"fmt"
	"math"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/category"
	"github.com/pthm-cable/whendo/input"
	"github.com/pthm-cable/whendo/sense"
)

var filterMakers = map[string]maker{
	"pass":          newPass,
	"type":          newTypeFilter,
	"color":         newColorFilter,
	"expression":    newExpressionFilter,
	"count":         newCountFilter,
	"distance":      newDistanceFilter,
	"compare":       newCompareFilter,
	"number":        newNumberFilter,
	"random":        newRandomFilter,
	"pointerphase":  newPointerPhase,
	"pointerbutton": newPointerButton,
	"stick":         newStickFilter,
	"button":        newButtonFilter,
	"key":           newKeyFilter,
}

// pass accepts everything. "not" and the selection filters (me, dead,
// squashed, missile) use it: their effect comes from their categories.
type pass struct{ brain.Base }

func newPass(p *brain.Prototype) (brain.Element, error) {
	return &pass{brain.Base{P: p}}, nil
}

func (*pass) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }
func (*pass) MatchAction(*brain.Frame, *brain.Reflex) bool  { return true }

type typeFilter struct {
	brain.Base
	want string
}

func newTypeFilter(p *brain.Prototype) (brain.Element, error) {
	want := p.Params.String("type", "")
	if want == "" {
		return nil, fmt.Errorf("missing type param")
	}
	return &typeFilter{Base: brain.Base{P: p}, want: want}, nil
}

func (f *typeFilter) MatchTarget(_ *brain.Reflex, t *sense.Target) bool {
	return t.Class.Type == f.want
}

func (*typeFilter) MatchAction(*brain.Frame, *brain.Reflex) bool { return true }

type colorFilter struct {
	brain.Base
	color sense.Color
}

func newColorFilter(p *brain.Prototype) (brain.Element, error) {
	c, ok := sense.ParseColor(p.Params.String("color", ""))
	if !ok || c == sense.NoColor {
		return nil, fmt.Errorf("bad color param %q", p.Params.String("color", ""))
	}
	return &colorFilter{Base: brain.Base{P: p}, color: c}, nil
}

func (f *colorFilter) MatchTarget(_ *brain.Reflex, t *sense.Target) bool {
	return t.Class.Color == f.color
}

func (*colorFilter) MatchAction(*brain.Frame, *brain.Reflex) bool { return true }

// Bucket names the score bucket a color selects.
func (f *colorFilter) Bucket() string { return f.color.String() }

type expressionFilter struct {
	brain.Base
	expr sense.Expression
}

func newExpressionFilter(p *brain.Prototype) (brain.Element, error) {
	e, ok := sense.ParseExpression(p.Params.String("expression", ""))
	if !ok {
		return nil, fmt.Errorf("bad expression param %q", p.Params.String("expression", ""))
	}
	return &expressionFilter{Base: brain.Base{P: p}, expr: e}, nil
}

func (f *expressionFilter) MatchTarget(_ *brain.Reflex, t *sense.Target) bool {
	return t.Class.Expression == f.expr
}

func (*expressionFilter) MatchAction(*brain.Frame, *brain.Reflex) bool { return true }

type countMode uint8

const (
	countNone countMode = iota
	countAny
	countFew
	countMany
)

var countModes = map[string]countMode{
	"none": countNone,
	"any":  countAny,
	"few":  countFew,
	"many": countMany,
}

// countFilter judges the size of the narrowed target set.
type countFilter struct {
	brain.Base
	mode countMode
}

func newCountFilter(p *brain.Prototype) (brain.Element, error) {
	m, ok := countModes[p.Params.String("count", "")]
	if !ok {
		return nil, fmt.Errorf("bad count param %q", p.Params.String("count", ""))
	}
	return &countFilter{Base: brain.Base{P: p}, mode: m}, nil
}

func (*countFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }

func (f *countFilter) MatchAction(_ *brain.Frame, r *brain.Reflex) bool {
	n := r.TargetSet.Count()
	switch f.mode {
	case countNone:
		return n == 0
	case countAny:
		return n >= 1
	case countFew:
		return n >= 1 && n <= tuning.fewMax
	default:
		return n > tuning.fewMax
	}
}

// distanceFilter keeps targets nearby or far away.
type distanceFilter struct {
	brain.Base
	far bool
}

func newDistanceFilter(p *brain.Prototype) (brain.Element, error) {
	switch rng := p.Params.String("range", ""); rng {
	case "near":
		return &distanceFilter{Base: brain.Base{P: p}}, nil
	case "far":
		return &distanceFilter{Base: brain.Base{P: p}, far: true}, nil
	default:
		return nil, fmt.Errorf("bad range param %q", rng)
	}
}

func (f *distanceFilter) MatchTarget(_ *brain.Reflex, t *sense.Target) bool {
	if f.far {
		return t.Range >= tuning.farAway
	}
	return t.Range <= tuning.nearby
}

func (*distanceFilter) MatchAction(*brain.Frame, *brain.Reflex) bool { return true }

type compareOp uint8

const (
	opAbove compareOp = iota
	opBelow
	opEqual
)

var compareOps = map[string]compareOp{"above": opAbove, "below": opBelow, "equal": opEqual}

// compareFilter tests the target set's captured param (a count or a score)
// against its own value plus any number filters in the rule.
type compareFilter struct {
	brain.Base
	op    compareOp
	value float64
}

func newCompareFilter(p *brain.Prototype) (brain.Element, error) {
	op, ok := compareOps[p.Params.String("op", "")]
	if !ok {
		return nil, fmt.Errorf("bad op param %q", p.Params.String("op", ""))
	}
	return &compareFilter{Base: brain.Base{P: p}, op: op, value: p.Params.Float("value", 0)}, nil
}

func (*compareFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }

func (f *compareFilter) MatchAction(_ *brain.Frame, r *brain.Reflex) bool {
	ts := r.TargetSet
	if !ts.HasParam {
		return false
	}
	ref := f.value + sumValues(r, category.FilterNumber)
	switch f.op {
	case opAbove:
		return ts.Param > ref
	case opBelow:
		return ts.Param < ref
	default:
		return math.Abs(ts.Param-ref) < 1e-9
	}
}

// numberFilter contributes a constant to comparisons and timers.
type numberFilter struct {
	brain.Base
	value float64
}

func newNumberFilter(p *brain.Prototype) (brain.Element, error) {
	return &numberFilter{Base: brain.Base{P: p}, value: p.Params.Float("value", 0)}, nil
}

func (*numberFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }
func (*numberFilter) MatchAction(*brain.Frame, *brain.Reflex) bool  { return true }
func (f *numberFilter) Value() float64                              { return f.value }

type randomFilter struct {
	brain.Base
	chance float64
}

func newRandomFilter(p *brain.Prototype) (brain.Element, error) {
	c := p.Params.Float("chance", -1)
	if c < 0 || c > 1 {
		return nil, fmt.Errorf("chance %v outside [0, 1]", c)
	}
	return &randomFilter{Base: brain.Base{P: p}, chance: c}, nil
}

func (*randomFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }

func (f *randomFilter) MatchAction(fr *brain.Frame, _ *brain.Reflex) bool {
	return fr.Rand.Float64() < f.chance
}

// matchPhase treats "held" as any down state so a rule holding a button
// keeps firing on the press tick too.
func matchPhase(b input.ButtonState, want input.Phase) bool {
	if want == input.Held {
		return b.IsDown()
	}
	return b.Phase() == want
}

func parsePhaseParam(p *brain.Prototype, def string) (input.Phase, error) {
	s := p.Params.String("phase", def)
	ph, ok := input.ParsePhase(s)
	if !ok {
		return 0, fmt.Errorf("bad phase param %q", s)
	}
	return ph, nil
}

type pointerPhase struct {
	brain.Base
	phase input.Phase
}

func newPointerPhase(p *brain.Prototype) (brain.Element, error) {
	ph, err := parsePhaseParam(p, "")
	if err != nil {
		return nil, err
	}
	return &pointerPhase{Base: brain.Base{P: p}, phase: ph}, nil
}

func (*pointerPhase) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }

func (f *pointerPhase) MatchAction(fr *brain.Frame, r *brain.Reflex) bool {
	if fr.Input == nil {
		return false
	}
	ptr := fr.Input.Pointer
	b := ptr.Buttons[pointerButton(r)]
	if f.phase == input.Hover {
		return ptr.Valid && ptr.HitID != 0 && !b.IsDown()
	}
	return matchPhase(b, f.phase)
}

var pointerButtons = map[string]input.PointerButton{
	"left":  input.LeftButton,
	"right": input.RightButton,
	"touch": input.Touch,
}

type pointerButtonFilter struct {
	brain.Base
	button input.PointerButton
}

func newPointerButton(p *brain.Prototype) (brain.Element, error) {
	b, ok := pointerButtons[p.Params.String("button", "")]
	if !ok {
		return nil, fmt.Errorf("bad button param %q", p.Params.String("button", ""))
	}
	return &pointerButtonFilter{Base: brain.Base{P: p}, button: b}, nil
}

func (*pointerButtonFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }
func (*pointerButtonFilter) MatchAction(*brain.Frame, *brain.Reflex) bool  { return true }
func (f *pointerButtonFilter) Button() input.PointerButton                 { return f.button }

var sticks = map[string]input.Stick{
	"left":  input.LeftStick,
	"right": input.RightStick,
	"dpad":  input.DPad,
}

// stickFilter holds while its stick is deflected past the dead zone.
type stickFilter struct {
	brain.Base
	stick input.Stick
}

func newStickFilter(p *brain.Prototype) (brain.Element, error) {
	s, ok := sticks[p.Params.String("stick", "")]
	if !ok {
		return nil, fmt.Errorf("bad stick param %q", p.Params.String("stick", ""))
	}
	return &stickFilter{Base: brain.Base{P: p}, stick: s}, nil
}

func (*stickFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }
func (f *stickFilter) Stick() input.Stick                          { return f.stick }

func (f *stickFilter) MatchAction(fr *brain.Frame, _ *brain.Reflex) bool {
	if fr.Input == nil {
		return false
	}
	return fr.Input.Pad.Sticks[f.stick].Active(tuning.deadZone)
}

var padButtons = map[string]input.Button{
	"a":              input.ButtonA,
	"b":              input.ButtonB,
	"x":              input.ButtonX,
	"y":              input.ButtonY,
	"left_shoulder":  input.LeftShoulder,
	"right_shoulder": input.RightShoulder,
	"left_trigger":   input.LeftTrigger,
	"right_trigger":  input.RightTrigger,
}

type buttonFilter struct {
	brain.Base
	button input.Button
	phase  input.Phase
}

func newButtonFilter(p *brain.Prototype) (brain.Element, error) {
	b, ok := padButtons[p.Params.String("button", "")]
	if !ok {
		return nil, fmt.Errorf("bad button param %q", p.Params.String("button", ""))
	}
	ph, err := parsePhaseParam(p, "held")
	if err != nil {
		return nil, err
	}
	return &buttonFilter{Base: brain.Base{P: p}, button: b, phase: ph}, nil
}

func (*buttonFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }

func (f *buttonFilter) MatchAction(fr *brain.Frame, _ *brain.Reflex) bool {
	if fr.Input == nil {
		return false
	}
	return matchPhase(fr.Input.Pad.Buttons[f.button], f.phase)
}

type keyFilter struct {
	brain.Base
	key   string
	phase input.Phase
}

func newKeyFilter(p *brain.Prototype) (brain.Element, error) {
	k := p.Params.String("key", "")
	if k == "" {
		return nil, fmt.Errorf("missing key param")
	}
	ph, err := parsePhaseParam(p, "held")
	if err != nil {
		return nil, err
	}
	return &keyFilter{Base: brain.Base{P: p}, key: k, phase: ph}, nil
}

func (*keyFilter) MatchTarget(*brain.Reflex, *sense.Target) bool { return true }

func (f *keyFilter) MatchAction(fr *brain.Frame, _ *brain.Reflex) bool {
	return matchPhase(fr.Input.Key(f.key), f.phase)
}
