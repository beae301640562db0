package motion

// Domain is the medium an actor moves through. Wandering validates random
// destinations against it.
type Domain uint8

const (
	Land Domain = iota
	Water
	Air
	Hover // land or water surface
)

func (d Domain) String() string {
	switch d {
	case Land:
		return "land"
	case Water:
		return "water"
	case Air:
		return "air"
	case Hover:
		return "hover"
	}
	return "unknown"
}

// ParseDomain maps a config name to a Domain.
func ParseDomain(s string) (Domain, bool) {
	switch s {
	case "land", "":
		return Land, true
	case "water":
		return Water, true
	case "air":
		return Air, true
	case "hover":
		return Hover, true
	}
	return Land, false
}

// Capabilities are the locomotion limits of one actor.
type Capabilities struct {
	MaxSpeed         float64
	MaxAccel         float64
	MaxTurnRate      float64 // radians per second
	MaxTurnAccel     float64
	MaxVerticalSpeed float64
	MaxVerticalAccel float64
	Domain           Domain
	CanStrafe        bool // moves sideways without turning first
}

// Flies reports whether the actor controls its altitude.
func (c Capabilities) Flies() bool {
	return c.Domain == Air
}
