package brain

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/motion"
	"github.com/pthm-cable/whendo/sense"
)

// ModifierParams is what a rule's modifiers add up to for one tick.
type ModifierParams struct {
	Speed float64 // multiplier, 1 when unmodified

	Direction    r3.Vec
	HasDirection bool

	Vertical    float64 // +1 up, -1 down
	HasVertical bool

	Color    sense.Color
	HasColor bool

	Expression    sense.Expression
	HasExpression bool

	Once bool

	ScoreBucket    string
	HasScoreBucket bool

	Number    int
	HasNumber bool

	Text    string
	HasText bool

	PathColor    sense.Color
	HasPathColor bool

	Constraints motion.Constraints
}

// Reset restores the unmodified state.
func (p *ModifierParams) Reset() {
	*p = ModifierParams{Speed: 1}
}
