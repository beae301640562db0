package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/motion"
)

// kinematics is the state the executor integrates.
type kinematics struct {
	pos     r3.Vec
	vel     r3.Vec
	heading float64
	angVel  float64
}

// steer turns a desired-motion record into the next kinematic state,
// honoring the actor's limits. It knows nothing about terrain.
func steer(k kinematics, d *motion.Desired, caps motion.Capabilities, dt, arrive float64) kinematics {
	forward := unit(k.heading)

	var want r3.Vec
	var face float64
	faceWant, reverse := false, false
	if target, speed, ok := d.TargetLocation(); ok {
		to := r3.Vec{X: target.X - k.pos.X, Y: target.Y - k.pos.Y}
		if dist := r3.Norm(to); dist > arrive {
			// Never overshoot in one tick.
			s := math.Min(speed, dist/dt)
			want = r3.Scale(s/dist, to)
			face, faceWant = math.Atan2(to.Y, to.X), true
		}
	} else if v, ok := d.Velocity(); ok {
		want = r3.Vec{X: v.X, Y: v.Y}
		if r3.Norm(want) > 1e-9 {
			face, faceWant = math.Atan2(want.Y, want.X), true
		}
	} else if s, ok := d.Speed(); ok {
		want = r3.Scale(s, forward)
		reverse = true
	}

	// Turning: explicit rate, then explicit heading, then face the travel
	// direction for actors that cannot strafe.
	angVel := 0.0
	if r, ok := d.TurnRate(); ok {
		angVel = r
	} else if h, ok := d.Heading(); ok {
		angVel = normalizeAngle(h-k.heading) / dt
	} else if faceWant && !caps.CanStrafe {
		angVel = normalizeAngle(face-k.heading) / dt
	}
	angVel = clamp(angVel, caps.MaxTurnRate)
	if caps.MaxTurnAccel > 0 {
		angVel = k.angVel + clamp(angVel-k.angVel, caps.MaxTurnAccel*dt)
	}
	k.angVel = angVel
	k.heading = normalizeAngle(k.heading + angVel*dt)

	if !caps.CanStrafe {
		f := unit(k.heading)
		s := r3.Dot(want, f)
		if !reverse {
			s = math.Max(s, 0)
		}
		want = r3.Scale(s, f)
	}
	if n := r3.Norm(want); n > caps.MaxSpeed && n > 0 {
		want = r3.Scale(caps.MaxSpeed/n, want)
	}

	planar := r3.Vec{X: k.vel.X, Y: k.vel.Y}
	dv := r3.Sub(want, planar)
	if limit := caps.MaxAccel * dt; caps.MaxAccel > 0 {
		if n := r3.Norm(dv); n > limit {
			dv = r3.Scale(limit/n, dv)
		}
	}
	planar = r3.Add(planar, dv)

	vz := k.vel.Z
	if caps.MaxVerticalSpeed > 0 {
		wantZ := 0.0
		if vs, ok := d.VerticalSpeed(); ok {
			wantZ = vs
		} else if alt, ok := d.Altitude(); ok {
			wantZ = (alt - k.pos.Z) / dt
		}
		wantZ = clamp(wantZ, caps.MaxVerticalSpeed)
		if caps.MaxVerticalAccel > 0 {
			wantZ = vz + clamp(wantZ-vz, caps.MaxVerticalAccel*dt)
		}
		vz = wantZ
	}

	k.vel = r3.Vec{X: planar.X, Y: planar.Y, Z: vz}
	k.pos = r3.Add(k.pos, r3.Scale(dt, k.vel))
	return k
}

// locomote executes one actor's desired motion against the level: gravity
// for grounded actors, the domain, rock and other bodies.
func (w *World) locomote(a *Actor, dt float64) {
	if a.cooldown > 0 {
		a.cooldown = math.Max(a.cooldown-dt, 0)
	}
	pos := w.posMap.Get(a.e)
	vel := w.velMap.Get(a.e)
	rot := w.rotMap.Get(a.e)
	if a.status.Dead {
		vel.Set(r3.Vec{})
		rot.AngVel = 0
		return
	}

	from := pos.Vec()
	k := steer(kinematics{
		pos:     from,
		vel:     vel.Vec(),
		heading: rot.Heading,
		angVel:  rot.AngVel,
	}, &a.desired, a.caps, dt, w.cfg.Steering.ArriveRadius)

	if a.caps.MaxVerticalSpeed == 0 {
		k.vel.Z = vel.Z - w.cfg.World.Gravity*dt
		k.pos.Z = from.Z + k.vel.Z*dt
	}
	if k.pos.Z <= 0 {
		k.pos.Z = 0
		k.vel.Z = math.Max(k.vel.Z, 0)
	}

	if !w.passable(a, k.pos) {
		k.pos.X, k.pos.Y = from.X, from.Y
		k.vel.X, k.vel.Y = 0, 0
	} else {
		k.pos = w.separate(a, k.pos)
	}

	pos.Set(k.pos)
	vel.Set(k.vel)
	rot.Heading = k.heading
	rot.AngVel = k.angVel
}

// passable reports whether the actor may stand at p.
func (w *World) passable(a *Actor, p r3.Vec) bool {
	if !brain.Passable(w.terrain, a.caps.Domain, p) {
		return false
	}
	if a.caps.Domain == motion.Air {
		return true
	}
	return !w.terrain.CircleHitsRock(p, a.radius)
}

// separate pushes a grounded actor out of the solid bodies it overlaps,
// leaving it exactly touching them.
func (w *World) separate(a *Actor, p r3.Vec) r3.Vec {
	if p.Z > a.radius {
		return p
	}
	w.neighbors = w.grid.QueryRadiusInto(w.neighbors[:0], p, a.radius+w.maxRadius, a.thing)
	for _, n := range w.neighbors {
		o := n.T
		if !o.solid() || o.status.Dead || o.pos.Z > a.radius {
			continue
		}
		d := r3.Vec{X: p.X - o.pos.X, Y: p.Y - o.pos.Y}
		dist := r3.Norm(d)
		touch := a.radius + o.radius
		if dist >= touch {
			continue
		}
		if dist < 1e-9 {
			d, dist = unit(a.heading+math.Pi), 1
		}
		pushed := r3.Add(o.pos, r3.Scale(touch/dist, d))
		pushed.Z = p.Z
		if w.passable(a, pushed) {
			p = pushed
		}
	}
	return p
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// normalizeAngle wraps a into [-pi, pi).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
