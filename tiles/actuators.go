package tiles

import (
	"fmt"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/motion"
)

var actuatorMakers = map[string]maker{
	"move":               newLocomotion,
	"turn":               newLocomotion,
	brain.VerbShoot:      newVerbActuator,
	brain.VerbSay:        newVerbActuator,
	brain.VerbScore:      newVerbActuator,
	brain.VerbGlow:       newVerbActuator,
	brain.VerbExpress:    newVerbActuator,
	brain.VerbJump:       newVerbActuator,
	brain.VerbVanish:     newVerbActuator,
	brain.VerbSwitchPage: newVerbActuator,
}

// locomotion writes the attached action set into the actor's desired
// motion. Move and turn differ only in their categories.
type locomotion struct {
	brain.Base
	set *motion.ActionSet
}

func newLocomotion(p *brain.Prototype) (brain.Element, error) {
	return &locomotion{Base: brain.Base{P: p}}, nil
}

func (a *locomotion) AttachActionSet(set *motion.ActionSet) { a.set = set }

func (a *locomotion) Update(f *brain.Frame, r *brain.Reflex) {
	if a.set == nil {
		return
	}
	r.ApplyMotion(f)
}

type verbBuilder func(a *verbActuator, f *brain.Frame, r *brain.Reflex) (brain.Verb, bool)

var verbBuilders = map[string]verbBuilder{
	brain.VerbShoot:   buildShoot,
	brain.VerbSay:     buildSay,
	brain.VerbScore:   buildScore,
	brain.VerbGlow:    buildGlow,
	brain.VerbExpress: buildExpress,
	brain.VerbJump:    buildJump,
	brain.VerbVanish:  buildPlain,
}

// verbActuator performs one discrete action per tick. The verb is claimed
// once built, so a later rule using the same verb in the same tick is
// skipped, while a rule whose builder declines leaves the verb free.
type verbActuator struct {
	brain.Base
	build verbBuilder
	sign  int // score: +1 adds, -1 subtracts
}

func newVerbActuator(p *brain.Prototype) (brain.Element, error) {
	a := &verbActuator{Base: brain.Base{P: p}, sign: 1}
	if p.Kind == brain.VerbSwitchPage {
		return a, nil
	}
	b, ok := verbBuilders[p.Kind]
	if !ok {
		return nil, fmt.Errorf("no verb builder for %q", p.Kind)
	}
	a.build = b
	if p.Params.Bool("subtract", false) {
		a.sign = -1
	}
	return a, nil
}

func (*verbActuator) AttachActionSet(*motion.ActionSet) {}

func (a *verbActuator) Update(f *brain.Frame, r *brain.Reflex) {
	if a.build == nil {
		// Page numbers are one-based on the tile.
		p := r.ModifierParams()
		page := 0
		if p.HasNumber {
			page = p.Number - 1
		}
		if !f.ClaimVerb(brain.VerbSwitchPage) {
			return
		}
		f.RequestPage(page)
		r.MarkActedOn()
		return
	}
	v, ok := a.build(a, f, r)
	if !ok || !f.ClaimVerb(v.Kind) {
		return
	}
	if f.Actor.Perform(v) {
		r.MarkActedOn()
	}
}

func buildPlain(a *verbActuator, _ *brain.Frame, _ *brain.Reflex) (brain.Verb, bool) {
	return brain.Verb{Kind: a.P.Kind}, true
}

// buildShoot aims at the nearest target, or straight ahead without one.
func buildShoot(a *verbActuator, f *brain.Frame, r *brain.Reflex) (brain.Verb, bool) {
	p := r.ModifierParams()
	v := brain.Verb{Kind: a.P.Kind, Color: p.Color, Strength: p.Speed, Direction: f.Forward()}
	if t := r.TargetSet.Nearest(); t != nil {
		v.Target = t.ID()
		v.Direction = t.Direction
	}
	return v, true
}

func buildSay(a *verbActuator, _ *brain.Frame, r *brain.Reflex) (brain.Verb, bool) {
	text := r.Args["text"]
	if p := r.ModifierParams(); text == "" && p.HasText {
		text = p.Text
	}
	if text == "" {
		return brain.Verb{}, false
	}
	return brain.Verb{Kind: a.P.Kind, Text: text}, true
}

// buildScore writes to the bucket modifier's bucket, or the default one.
func buildScore(a *verbActuator, _ *brain.Frame, r *brain.Reflex) (brain.Verb, bool) {
	p := r.ModifierParams()
	bucket := DefaultBucket
	if p.HasScoreBucket {
		bucket = p.ScoreBucket
	}
	amount := 1
	if p.HasNumber {
		amount = p.Number
	}
	return brain.Verb{Kind: a.P.Kind, Bucket: bucket, Amount: a.sign * amount}, true
}

func buildGlow(a *verbActuator, _ *brain.Frame, r *brain.Reflex) (brain.Verb, bool) {
	p := r.ModifierParams()
	if !p.HasColor {
		return brain.Verb{}, false
	}
	return brain.Verb{Kind: a.P.Kind, Color: p.Color}, true
}

func buildExpress(a *verbActuator, _ *brain.Frame, r *brain.Reflex) (brain.Verb, bool) {
	p := r.ModifierParams()
	if !p.HasExpression {
		return brain.Verb{}, false
	}
	return brain.Verb{Kind: a.P.Kind, Expression: p.Expression}, true
}

func buildJump(a *verbActuator, _ *brain.Frame, r *brain.Reflex) (brain.Verb, bool) {
	return brain.Verb{Kind: a.P.Kind, Strength: r.ModifierParams().Speed}, true
}
