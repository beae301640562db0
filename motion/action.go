package motion

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags one of the eight motion request kinds.
type Kind uint8

const (
	KindSpeed Kind = iota
	KindVelocity
	KindTargetLocation
	KindTurnSpeed
	KindHeading
	KindVerticalSpeed
	KindAltitude
	KindAvoid
	KindCount
)

var kindNames = [KindCount]string{
	"speed", "velocity", "target_location", "turn_speed",
	"heading", "vertical_speed", "altitude", "avoid",
}

func (k Kind) String() string {
	if k >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

var kindGroups = [KindCount]Group{
	KindSpeed:          GroupMovement,
	KindVelocity:       GroupMovement,
	KindTargetLocation: GroupMovement,
	KindTurnSpeed:      GroupTurning,
	KindHeading:        GroupTurning,
	KindVerticalSpeed:  GroupVertical,
	KindAltitude:       GroupVertical,
	KindAvoid:          GroupMovement,
}

// Group returns the mutual-exclusion group this kind writes.
func (k Kind) Group() Group {
	return kindGroups[k]
}

// Action is one pooled motion request. The set of implementations is closed
// to this package.
type Action interface {
	Kind() Kind
	// Apply writes the request into d on behalf of the rule with the given
	// priority. It reports false when an earlier rule already owns the group.
	Apply(d *Desired, owner int) bool
	Reset()
	release(p *Pools)
}

// SpeedAction requests a forward speed along the current heading.
type SpeedAction struct {
	Speed float64
}

func (a *SpeedAction) Kind() Kind { return KindSpeed }
func (a *SpeedAction) Reset()     { *a = SpeedAction{} }

func (a *SpeedAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupMovement, KindSpeed, owner) {
		return false
	}
	d.speed = a.Speed
	return true
}

func (a *SpeedAction) release(p *Pools) { p.speed.Free(a) }

// VelocityAction requests a world-space velocity.
type VelocityAction struct {
	Velocity r3.Vec
}

func (a *VelocityAction) Kind() Kind { return KindVelocity }
func (a *VelocityAction) Reset()     { *a = VelocityAction{} }

func (a *VelocityAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupMovement, KindVelocity, owner) {
		return false
	}
	d.velocity = a.Velocity
	return true
}

func (a *VelocityAction) release(p *Pools) { p.velocity.Free(a) }

// TargetLocationAction requests travel to a point at a given speed.
type TargetLocationAction struct {
	Target r3.Vec
	Speed  float64
}

func (a *TargetLocationAction) Kind() Kind { return KindTargetLocation }
func (a *TargetLocationAction) Reset()     { *a = TargetLocationAction{} }

func (a *TargetLocationAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupMovement, KindTargetLocation, owner) {
		return false
	}
	d.target = a.Target
	d.targetSpeed = a.Speed
	return true
}

func (a *TargetLocationAction) release(p *Pools) { p.target.Free(a) }

// TurnSpeedAction requests a signed turn rate. Positive turns left
// (counter-clockwise seen from above).
type TurnSpeedAction struct {
	Rate float64
}

func (a *TurnSpeedAction) Kind() Kind { return KindTurnSpeed }
func (a *TurnSpeedAction) Reset()     { *a = TurnSpeedAction{} }

func (a *TurnSpeedAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupTurning, KindTurnSpeed, owner) {
		return false
	}
	d.turnRate = a.Rate
	return true
}

func (a *TurnSpeedAction) release(p *Pools) { p.turn.Free(a) }

// HeadingAction requests an absolute heading in radians.
type HeadingAction struct {
	Heading float64
}

func (a *HeadingAction) Kind() Kind { return KindHeading }
func (a *HeadingAction) Reset()     { *a = HeadingAction{} }

func (a *HeadingAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupTurning, KindHeading, owner) {
		return false
	}
	d.heading = a.Heading
	return true
}

func (a *HeadingAction) release(p *Pools) { p.heading.Free(a) }

// VerticalSpeedAction requests a climb (positive) or descent rate.
type VerticalSpeedAction struct {
	Speed float64
}

func (a *VerticalSpeedAction) Kind() Kind { return KindVerticalSpeed }
func (a *VerticalSpeedAction) Reset()     { *a = VerticalSpeedAction{} }

func (a *VerticalSpeedAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupVertical, KindVerticalSpeed, owner) {
		return false
	}
	d.vertSpeed = a.Speed
	return true
}

func (a *VerticalSpeedAction) release(p *Pools) { p.vertical.Free(a) }

// AltitudeAction requests an absolute altitude.
type AltitudeAction struct {
	Altitude float64
}

func (a *AltitudeAction) Kind() Kind { return KindAltitude }
func (a *AltitudeAction) Reset()     { *a = AltitudeAction{} }

func (a *AltitudeAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupVertical, KindAltitude, owner) {
		return false
	}
	d.altitude = a.Altitude
	return true
}

func (a *AltitudeAction) release(p *Pools) { p.altitude.Free(a) }

// AvoidAction requests a velocity that carries the actor away from an
// obstacle. It shares the movement group with the other translation kinds.
type AvoidAction struct {
	Obstacle r3.Vec
	Velocity r3.Vec
}

func (a *AvoidAction) Kind() Kind { return KindAvoid }
func (a *AvoidAction) Reset()     { *a = AvoidAction{} }

func (a *AvoidAction) Apply(d *Desired, owner int) bool {
	if !d.claim(GroupMovement, KindAvoid, owner) {
		return false
	}
	d.velocity = a.Velocity
	return true
}

func (a *AvoidAction) release(p *Pools) { p.avoid.Free(a) }
