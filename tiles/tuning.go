package tiles

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/config"
)

// tuning caches config values read on the hot path.
var tuning struct {
	seeRange      float64
	seeCosHalfFOV float64
	hearRange     float64
	bumpSlack     float64
	nearby        float64
	farAway       float64
	fewMax        int
	deadZone      float64

	arrive         float64
	speedStep      float64
	avoidDistance  float64
	wanderRadius   float64
	wanderTimeout  float64
	wanderAttempts int
	orbitRadius    float64
	orbitMin       float64
	orbitMax       float64
	orbitExpand    float64
	orbitContract  float64
	orbitLead      float64
	pathArrive     float64
	turnFraction   float64
}

// InitTuning caches config values. Call after config.Init.
func InitTuning() {
	cfg := config.Cfg()
	tuning.seeRange = cfg.Sensing.SeeRange
	tuning.seeCosHalfFOV = cfg.Derived.SeeCosHalfFOV
	tuning.hearRange = cfg.Sensing.HearRange
	tuning.bumpSlack = cfg.Sensing.BumpSlack
	tuning.nearby = cfg.Sensing.Nearby
	tuning.farAway = cfg.Sensing.FarAway
	tuning.fewMax = cfg.Sensing.FewMax
	tuning.deadZone = cfg.Sensing.DeadZone

	s := cfg.Steering
	tuning.arrive = s.ArriveRadius
	tuning.speedStep = s.SpeedStep
	tuning.avoidDistance = s.AvoidDistance
	tuning.wanderRadius = s.WanderRadius
	tuning.wanderTimeout = s.WanderTimeout
	tuning.wanderAttempts = s.WanderAttempts
	tuning.orbitRadius = s.OrbitRadius
	tuning.orbitMin = s.OrbitMin
	tuning.orbitMax = s.OrbitMax
	tuning.orbitExpand = s.OrbitExpand
	tuning.orbitContract = s.OrbitContract
	tuning.orbitLead = s.OrbitLead
	tuning.pathArrive = s.PathArrive
	tuning.turnFraction = s.TurnFraction
}

// moveSpeed is the actor's cruising speed scaled by quickly/slowly. An
// unmodified rule moves at half of max speed with the default step.
func moveSpeed(f *brain.Frame, r *brain.Reflex) float64 {
	maxSpeed := f.Actor.Capabilities().MaxSpeed
	step := tuning.speedStep
	if step <= 0 {
		step = 1
	}
	return min(maxSpeed, maxSpeed/step*r.ModifierParams().Speed)
}

// turnRate is the actor's turn rate scaled by quickly/slowly.
func turnRate(f *brain.Frame, r *brain.Reflex) float64 {
	maxRate := f.Actor.Capabilities().MaxTurnRate
	return min(maxRate, maxRate*tuning.turnFraction*r.ModifierParams().Speed)
}

// headingOf returns the ground-plane heading of v.
func headingOf(v r3.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// flat drops the vertical component and normalises, returning the zero
// vector for degenerate input.
func flat(v r3.Vec) r3.Vec {
	v.Z = 0
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}
