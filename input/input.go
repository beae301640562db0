// Package input is a snapshot of raw device state for one tick. Device
// polling happens elsewhere; sensors and filters only read this snapshot.
package input

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Phase is the transition of a button during the current tick.
type Phase uint8

const (
	Up       Phase = iota // not pressed
	Pressed               // went down this tick
	Held                  // down this tick and the previous one
	Released              // went up this tick
	Hover                 // pointer over a thing without pressing
)

func (p Phase) String() string {
	switch p {
	case Up:
		return "up"
	case Pressed:
		return "pressed"
	case Held:
		return "held"
	case Released:
		return "released"
	case Hover:
		return "hover"
	}
	return "unknown"
}

// ParsePhase maps a catalog name to a Phase.
func ParsePhase(s string) (Phase, bool) {
	for p := Up; p <= Hover; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return Up, false
}

// ButtonState is the down flag for this tick and the previous one.
type ButtonState struct {
	Down    bool
	WasDown bool
}

// Phase derives the transition from the two samples.
func (b ButtonState) Phase() Phase {
	switch {
	case b.Down && !b.WasDown:
		return Pressed
	case b.Down:
		return Held
	case b.WasDown:
		return Released
	}
	return Up
}

// IsDown reports pressed or held.
func (b ButtonState) IsDown() bool {
	return b.Down
}

// PointerButton identifies a mouse button or a touch contact.
type PointerButton uint8

const (
	LeftButton PointerButton = iota
	RightButton
	Touch
	NumPointerButtons
)

// Pointer is the mouse or touch state resolved into world space.
type Pointer struct {
	Valid   bool   // the pointer ray hit the world
	World   r3.Vec // hit position
	HitID   uint64 // thing under the pointer, 0 for terrain
	Buttons [NumPointerButtons]ButtonState
}

// Stick identifies an analog input.
type Stick uint8

const (
	LeftStick Stick = iota
	RightStick
	DPad
	NumSticks
)

// Button identifies a gamepad button.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	LeftShoulder
	RightShoulder
	LeftTrigger
	RightTrigger
	NumButtons
)

// Axis is a 2D analog reading in [-1, 1]; Y is forward.
type Axis struct {
	X, Y float64
}

// Active reports whether the stick is outside the dead zone.
func (a Axis) Active(deadZone float64) bool {
	return a.X*a.X+a.Y*a.Y > deadZone*deadZone
}

// GamePad is one controller's state.
type GamePad struct {
	Sticks  [NumSticks]Axis
	Buttons [NumButtons]ButtonState
}

// State is the full input snapshot for one tick.
type State struct {
	Pointer Pointer
	Pad     GamePad
	Keys    map[string]ButtonState
}

// NewState creates an empty snapshot.
func NewState() *State {
	return &State{Keys: make(map[string]ButtonState)}
}

// Key returns the state of a named key.
func (s *State) Key(name string) ButtonState {
	if s == nil {
		return ButtonState{}
	}
	return s.Keys[name]
}

// SetKey records a key sample for this tick.
func (s *State) SetKey(name string, down bool) {
	k := s.Keys[name]
	k.Down = down
	s.Keys[name] = k
}

// Advance shifts this tick's samples into the "previous" slots. The driver
// calls it after every brain has run.
func (s *State) Advance() {
	for i := range s.Pointer.Buttons {
		s.Pointer.Buttons[i].WasDown = s.Pointer.Buttons[i].Down
	}
	for i := range s.Pad.Buttons {
		s.Pad.Buttons[i].WasDown = s.Pad.Buttons[i].Down
	}
	for k, b := range s.Keys {
		b.WasDown = b.Down
		s.Keys[k] = b
	}
}
