// Package config provides configuration loading and access for the rule engine.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Sim      SimConfig         `yaml:"sim"`
	World    WorldConfig       `yaml:"world"`
	Sensing  SensingConfig     `yaml:"sensing"`
	Steering SteeringConfig    `yaml:"steering"`
	Trace    TraceConfig       `yaml:"trace"`
	Actors   []ArchetypeConfig `yaml:"actors"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds tick loop settings.
type SimConfig struct {
	DT      float64 `yaml:"dt"`      // Seconds per tick
	Ticks   int     `yaml:"ticks"`   // Ticks to run headless
	Seed    int64   `yaml:"seed"`    // Base seed; each brain derives its own
	Workers int     `yaml:"workers"` // Parallel brain updates, 0 = GOMAXPROCS
}

// WorldConfig holds level dimensions and terrain resolution.
type WorldConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	CellSize float64 `yaml:"cell_size"` // Terrain grid resolution

	NoiseScale float64 `yaml:"noise_scale"` // Terrain noise frequency per cell
	WaterLevel float64 `yaml:"water_level"` // Noise above this is water
	RockLevel  float64 `yaml:"rock_level"`  // Noise below this is rock
	GridSize   float64 `yaml:"grid_size"`   // Spatial index cell size

	Gravity       float64 `yaml:"gravity"`
	JumpSpeed     float64 `yaml:"jump_speed"`
	MissileSpeed  float64 `yaml:"missile_speed"`
	MissileLife   float64 `yaml:"missile_life"`   // Seconds before a missile expires
	MissileRadius float64 `yaml:"missile_radius"`
	ShootCooldown float64 `yaml:"shoot_cooldown"` // Seconds between shots per actor
}

// SensingConfig holds perception tuning.
type SensingConfig struct {
	SeeRange   float64 `yaml:"see_range"`
	SeeFOV     float64 `yaml:"see_fov"` // Full field of view in degrees
	HearRange  float64 `yaml:"hear_range"`
	BumpSlack  float64 `yaml:"bump_slack"` // Extra distance counted as touching
	Nearby     float64 `yaml:"nearby"`     // At or under this range is nearby
	FarAway    float64 `yaml:"far_away"`   // At or over this range is far away
	FewMax     int     `yaml:"few_max"`    // Largest count that is still "few"
	DeadZone   float64 `yaml:"dead_zone"`  // Stick deflection ignored
	HoverSlack float64 `yaml:"hover_slack"`
}

// SteeringConfig holds selector tuning.
type SteeringConfig struct {
	ArriveRadius     float64 `yaml:"arrive_radius"`
	SpeedStep        float64 `yaml:"speed_step"`     // Multiplier per quickly / divisor per slowly
	AvoidDistance    float64 `yaml:"avoid_distance"` // Obstacles further away are ignored
	WanderRadius     float64 `yaml:"wander_radius"`
	WanderTimeout    float64 `yaml:"wander_timeout"` // Seconds before a new wander target is picked
	WanderAttempts   int     `yaml:"wander_attempts"`
	OrbitRadius      float64 `yaml:"orbit_radius"`
	OrbitMin         float64 `yaml:"orbit_min"`
	OrbitMax         float64 `yaml:"orbit_max"`
	OrbitExpand      float64 `yaml:"orbit_expand"`   // Radius gained per blocked tick
	OrbitContract    float64 `yaml:"orbit_contract"` // Radius regained per second when clear
	OrbitLead        float64 `yaml:"orbit_lead"`     // Radians ahead on the circle to steer at
	PathArrive       float64 `yaml:"path_arrive"`
	TurnFraction     float64 `yaml:"turn_fraction"` // Share of max turn rate used by turn left/right
	HeadingTolerance float64 `yaml:"heading_tolerance"`
}

// TraceConfig holds telemetry output settings.
type TraceConfig struct {
	Dir     string `yaml:"dir"`     // CSV output directory, empty disables
	Every   int    `yaml:"every"`   // Record every N ticks
	Summary bool   `yaml:"summary"` // Log fire-rate statistics at the end
}

// ArchetypeConfig defines the motion capabilities of one actor type.
type ArchetypeConfig struct {
	Type             string  `yaml:"type"`
	Radius           float64 `yaml:"radius"`
	MaxSpeed         float64 `yaml:"max_speed"`
	MaxAccel         float64 `yaml:"max_accel"`
	MaxTurnRate      float64 `yaml:"max_turn_rate"`
	MaxTurnAccel     float64 `yaml:"max_turn_accel"`
	MaxVerticalSpeed float64 `yaml:"max_vertical_speed"`
	MaxVerticalAccel float64 `yaml:"max_vertical_accel"`
	Domain           string  `yaml:"domain"`
	CanStrafe        bool    `yaml:"can_strafe"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	SeeCosHalfFOV  float64        // cos(SeeFOV/2), compared against direction dot products
	ArchetypeIndex map[string]int // type -> index into Actors
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.SeeCosHalfFOV = math.Cos(c.Sensing.SeeFOV * math.Pi / 360)

	if len(c.Actors) == 0 {
		c.Actors = []ArchetypeConfig{{Type: "bot", Radius: 0.5, MaxSpeed: 4, MaxTurnRate: math.Pi, Domain: "land"}}
	}
	for i := range c.Actors {
		a := &c.Actors[i]
		if a.Radius == 0 {
			a.Radius = 0.5
		}
		if a.MaxAccel == 0 {
			a.MaxAccel = a.MaxSpeed * 2
		}
		if a.MaxTurnAccel == 0 {
			a.MaxTurnAccel = a.MaxTurnRate * 4
		}
		if a.Domain == "" {
			a.Domain = "land"
		}
	}

	c.Derived.ArchetypeIndex = make(map[string]int, len(c.Actors))
	for i, a := range c.Actors {
		c.Derived.ArchetypeIndex[a.Type] = i
	}
}

// Archetype returns the capabilities entry for an actor type, falling back
// to the first entry.
func (c *Config) Archetype(actorType string) ArchetypeConfig {
	if i, ok := c.Derived.ArchetypeIndex[actorType]; ok {
		return c.Actors[i]
	}
	return c.Actors[0]
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
