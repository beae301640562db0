package tiles

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/sense"
)

var modifierMakers = map[string]maker{
	"speed":      newSpeedModifier,
	"direction":  newDirectionModifier,
	"vertical":   newVerticalModifier,
	"color":      newColorModifier,
	"expression": newExpressionModifier,
	"once":       newOnceModifier,
	"bucket":     newBucketModifier,
	"number":     newNumberModifier,
	"text":       newTextModifier,
	"constraint": newConstraintModifier,
	"pathcolor":  newPathColorModifier,
}

// speedModifier is quickly (factor > 1) or slowly (factor < 1). Repeats
// compound.
type speedModifier struct {
	brain.Base
	factor float64
}

func newSpeedModifier(p *brain.Prototype) (brain.Element, error) {
	f := p.Params.Float("factor", 0)
	if f <= 0 {
		return nil, fmt.Errorf("factor must be positive, got %v", f)
	}
	return &speedModifier{Base: brain.Base{P: p}, factor: f}, nil
}

func (m *speedModifier) GatherParams(p *brain.ModifierParams) {
	p.Speed *= m.factor
}

// Compass directions in the world frame; +Y is north.
var worldDirections = map[string]r3.Vec{
	"north": {Y: 1},
	"south": {Y: -1},
	"east":  {X: 1},
	"west":  {X: -1},
}

// Directions relative to the actor; +X is forward, +Y is left.
var relativeDirections = map[string]r3.Vec{
	"forward": {X: 1},
	"back":    {X: -1},
	"left":    {Y: 1},
	"right":   {Y: -1},
}

// directionModifier steers in a fixed direction, either on the compass or
// relative to the actor's heading.
type directionModifier struct {
	brain.Base
	dir      r3.Vec
	relative bool
}

func newDirectionModifier(p *brain.Prototype) (brain.Element, error) {
	name := p.Params.String("direction", "")
	switch frame := p.Params.String("frame", "world"); frame {
	case "world":
		d, ok := worldDirections[name]
		if !ok {
			return nil, fmt.Errorf("bad world direction %q", name)
		}
		return &directionModifier{Base: brain.Base{P: p}, dir: d}, nil
	case "relative":
		d, ok := relativeDirections[name]
		if !ok {
			return nil, fmt.Errorf("bad relative direction %q", name)
		}
		return &directionModifier{Base: brain.Base{P: p}, dir: d, relative: true}, nil
	default:
		return nil, fmt.Errorf("bad frame %q", frame)
	}
}

func (m *directionModifier) GatherParams(p *brain.ModifierParams) {
	p.Direction = m.dir
	p.HasDirection = true
}

// ModifyHeading replaces dir with the modifier's direction expressed in
// world space. Relative directions rotate with the actor.
func (m *directionModifier) ModifyHeading(dir r3.Vec, heading float64) r3.Vec {
	if !m.relative {
		return m.dir
	}
	sin, cos := math.Sincos(heading)
	return r3.Vec{
		X: m.dir.X*cos - m.dir.Y*sin,
		Y: m.dir.X*sin + m.dir.Y*cos,
	}
}

// clockwise reports whether a relative direction modifier turns right,
// which reverses orbiting.
func clockwise(r *brain.Reflex) bool {
	for _, m := range r.Modifiers {
		if dm, ok := m.(*directionModifier); ok && dm.relative && dm.dir.Y < 0 {
			return true
		}
	}
	return false
}

type verticalModifier struct {
	brain.Base
	sign float64
}

func newVerticalModifier(p *brain.Prototype) (brain.Element, error) {
	switch d := p.Params.String("direction", ""); d {
	case "up":
		return &verticalModifier{Base: brain.Base{P: p}, sign: 1}, nil
	case "down":
		return &verticalModifier{Base: brain.Base{P: p}, sign: -1}, nil
	default:
		return nil, fmt.Errorf("bad vertical direction %q", d)
	}
}

func (m *verticalModifier) GatherParams(p *brain.ModifierParams) {
	p.Vertical = m.sign
	p.HasVertical = true
}

type colorModifier struct {
	brain.Base
	color sense.Color
}

func newColorModifier(p *brain.Prototype) (brain.Element, error) {
	c, ok := sense.ParseColor(p.Params.String("color", ""))
	if !ok {
		return nil, fmt.Errorf("bad color param %q", p.Params.String("color", ""))
	}
	return &colorModifier{Base: brain.Base{P: p}, color: c}, nil
}

func (m *colorModifier) GatherParams(p *brain.ModifierParams) {
	p.Color = m.color
	p.HasColor = true
}

type expressionModifier struct {
	brain.Base
	expr sense.Expression
}

func newExpressionModifier(p *brain.Prototype) (brain.Element, error) {
	e, ok := sense.ParseExpression(p.Params.String("expression", ""))
	if !ok {
		return nil, fmt.Errorf("bad expression param %q", p.Params.String("expression", ""))
	}
	return &expressionModifier{Base: brain.Base{P: p}, expr: e}, nil
}

func (m *expressionModifier) GatherParams(p *brain.ModifierParams) {
	p.Expression = m.expr
	p.HasExpression = true
}

type onceModifier struct{ brain.Base }

func newOnceModifier(p *brain.Prototype) (brain.Element, error) {
	return &onceModifier{brain.Base{P: p}}, nil
}

func (*onceModifier) GatherParams(p *brain.ModifierParams) { p.Once = true }

// bucketModifier picks a lettered score bucket.
type bucketModifier struct {
	brain.Base
	bucket string
}

func newBucketModifier(p *brain.Prototype) (brain.Element, error) {
	b := p.Params.String("bucket", "")
	if b == "" {
		return nil, fmt.Errorf("missing bucket param")
	}
	return &bucketModifier{Base: brain.Base{P: p}, bucket: b}, nil
}

func (m *bucketModifier) GatherParams(p *brain.ModifierParams) {
	p.ScoreBucket = m.bucket
	p.HasScoreBucket = true
}

// numberModifier adds its value; repeated number tiles sum.
type numberModifier struct {
	brain.Base
	value int
}

func newNumberModifier(p *brain.Prototype) (brain.Element, error) {
	return &numberModifier{Base: brain.Base{P: p}, value: p.Params.Int("value", 1)}, nil
}

func (m *numberModifier) GatherParams(p *brain.ModifierParams) {
	p.Number += m.value
	p.HasNumber = true
}

type textModifier struct {
	brain.Base
	text string
}

func newTextModifier(p *brain.Prototype) (brain.Element, error) {
	return &textModifier{Base: brain.Base{P: p}, text: p.Params.String("text", "")}, nil
}

func (m *textModifier) GatherParams(p *brain.ModifierParams) {
	p.Text = m.text
	p.HasText = true
}

var constraintNames = map[string]motion.Constraints{
	"immobile":   motion.Immobile,
	"noturn":     motion.NoTurning,
	"novertical": motion.NoVertical,
	"nostrafe":   motion.NoStrafe,
}

type constraintModifier struct {
	brain.Base
	c motion.Constraints
}

func newConstraintModifier(p *brain.Prototype) (brain.Element, error) {
	c, ok := constraintNames[p.Params.String("constraint", "")]
	if !ok {
		return nil, fmt.Errorf("bad constraint param %q", p.Params.String("constraint", ""))
	}
	return &constraintModifier{Base: brain.Base{P: p}, c: c}, nil
}

func (m *constraintModifier) GatherParams(p *brain.ModifierParams) {
	p.Constraints |= m.c
}

type pathColorModifier struct {
	brain.Base
	color sense.Color
}

func newPathColorModifier(p *brain.Prototype) (brain.Element, error) {
	c, ok := sense.ParseColor(p.Params.String("color", ""))
	if !ok {
		return nil, fmt.Errorf("bad color param %q", p.Params.String("color", ""))
	}
	return &pathColorModifier{Base: brain.Base{P: p}, color: c}, nil
}

func (m *pathColorModifier) GatherParams(p *brain.ModifierParams) {
	p.PathColor = m.color
	p.HasPathColor = true
}
