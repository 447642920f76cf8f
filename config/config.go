// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Forces    ForcesConfig    `yaml:"forces"`
	Grouping  GroupingConfig  `yaml:"grouping"`
	Steering  SteeringConfig  `yaml:"steering"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`
	Observer  ObserverConfig  `yaml:"observer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds integration settings.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`      // Fixed step used by the headless driver
	MaxDT   float64 `yaml:"max_dt"`  // Upper clamp on frame time in graphical mode
	Epsilon float64 `yaml:"epsilon"` // Below this a displacement or distance counts as zero
}

// SpawnConfig holds initial population settings.
type SpawnConfig struct {
	NPCCount int     `yaml:"npc_count"`
	Radius   float64 `yaml:"radius"` // NPCs are scattered uniformly in a disc of this radius
}

// ForcesConfig holds the flocking force constants.
type ForcesConfig struct {
	Preset                string  `yaml:"preset"` // Preset the values were expanded from: classic, grouped, or empty
	MaxSpeed              float64 `yaml:"max_speed"`
	Friction              float64 `yaml:"friction"`
	Cohesion              float64 `yaml:"cohesion"`
	SeparationStrength    float64 `yaml:"separation_strength"`
	SeparationRadius      float64 `yaml:"separation_radius"`
	Alignment             float64 `yaml:"alignment"`
	Wander                float64 `yaml:"wander"`
	SuppressGroupedWander bool    `yaml:"suppress_grouped_wander"` // Fish that belong to a group do not wander
}

// GroupingConfig holds group formation settings.
type GroupingConfig struct {
	Enabled       bool    `yaml:"enabled"` // false: cohesion/alignment/separation act over the whole population
	Mode          string  `yaml:"mode"`    // proximity or contacts
	GroupDistance float64 `yaml:"group_distance"`
}

// SteeringConfig holds click-to-move settings.
type SteeringConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
	PlaneZ   float64 `yaml:"plane_z"` // Height of the plane the pointer ray is cast onto
}

// CameraConfig holds framing camera settings.
type CameraConfig struct {
	DistanceScale float64 `yaml:"distance_scale"` // Distance per unit of school spread
	MinDistance   float64 `yaml:"min_distance"`
	Zoom          float64 `yaml:"zoom"`
	Lerp          float64 `yaml:"lerp"` // Blend factor toward the target each tick
	MinZoom       float64 `yaml:"min_zoom"`
	MaxZoom       float64 `yaml:"max_zoom"`
	StartDistance float64 `yaml:"start_distance"`
}

// TelemetryConfig holds telemetry and stats collection settings.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Window duration in seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Rolling average window in ticks
}

// AudioConfig holds join cue settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // beep volume exponent (base 2); 0 is unchanged
}

// ObserverConfig holds the websocket frame feed settings.
type ObserverConfig struct {
	Addr string `yaml:"addr"` // Empty disables the feed
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32 // Physics.DT as float32
	ScreenW32        float32 // Screen.Width as float32
	ScreenH32        float32 // Screen.Height as float32
	GroupDistanceSq  float64 // Grouping.GroupDistance squared
	SensorRadius     float64 // Contact sensor sphere radius (half the group distance)
	StatsWindowTicks int32   // Telemetry.StatsWindow in ticks at Physics.DT
}

// Grouping modes.
const (
	ModeProximity = "proximity"
	ModeContacts  = "contacts"
)

// Presets holds the built-in force tunings, keyed by name.
// "classic" steers the whole population as one flock; "grouped" drives the
// group-forming variant where wandering fish collect into schools.
var Presets = map[string]ForcesConfig{
	"classic": {
		MaxSpeed:              20,
		Friction:              0.01,
		Cohesion:              0.75,
		SeparationStrength:    50,
		SeparationRadius:      2,
		Alignment:             0.1,
		Wander:                0,
		SuppressGroupedWander: false,
	},
	"grouped": {
		MaxSpeed:              20,
		Friction:              0.05,
		Cohesion:              0.5,
		SeparationStrength:    50,
		SeparationRadius:      2,
		Alignment:             0.25,
		Wander:                15,
		SuppressGroupedWander: true,
	},
}

// PresetNames returns the names of the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
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

// Set replaces the global configuration.
func Set(cfg *Config) {
	global = cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. A preset named in the
// file is expanded before the file's own force values are read, so explicit
// values always win over the preset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := cfg.ApplyPreset(cfg.Forces.Preset); err != nil {
		return nil, fmt.Errorf("embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		var named struct {
			Forces struct {
				Preset *string `yaml:"preset"`
			} `yaml:"forces"`
		}
		if err := yaml.Unmarshal(data, &named); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if named.Forces.Preset != nil {
			if err := cfg.ApplyPreset(*named.Forces.Preset); err != nil {
				return nil, err
			}
		}

		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Prepare(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prepare validates and recomputes derived values.
// Call it again after editing a loaded config in code.
func (c *Config) Prepare() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// ApplyPreset overwrites the force constants with the named preset.
// An empty name keeps the current values and only clears the preset label.
func (c *Config) ApplyPreset(name string) error {
	if name == "" {
		c.Forces.Preset = ""
		return nil
	}
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown force preset %q (have %v)", name, PresetNames())
	}
	p.Preset = name
	c.Forces = p
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Physics.MaxDT < c.Physics.DT {
		return fmt.Errorf("physics.max_dt (%v) must be >= physics.dt (%v)", c.Physics.MaxDT, c.Physics.DT)
	}
	if c.Physics.Epsilon <= 0 {
		return fmt.Errorf("physics.epsilon must be positive, got %v", c.Physics.Epsilon)
	}
	if _, ok := Presets[c.Forces.Preset]; c.Forces.Preset != "" && !ok {
		return fmt.Errorf("unknown force preset %q (have %v)", c.Forces.Preset, PresetNames())
	}
	if c.Spawn.NPCCount < 0 {
		return fmt.Errorf("spawn.npc_count must be >= 0, got %d", c.Spawn.NPCCount)
	}

	f := c.Forces
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"forces.max_speed", f.MaxSpeed},
		{"forces.friction", f.Friction},
		{"forces.cohesion", f.Cohesion},
		{"forces.separation_strength", f.SeparationStrength},
		{"forces.alignment", f.Alignment},
		{"forces.wander", f.Wander},
		{"grouping.group_distance", c.Grouping.GroupDistance},
		{"steering.max_speed", c.Steering.MaxSpeed},
	} {
		if v.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", v.name, v.value)
		}
	}
	if f.SeparationRadius <= 0 {
		return fmt.Errorf("forces.separation_radius must be positive, got %v", f.SeparationRadius)
	}

	switch c.Grouping.Mode {
	case ModeProximity, ModeContacts:
	default:
		return fmt.Errorf("grouping.mode must be %q or %q, got %q", ModeProximity, ModeContacts, c.Grouping.Mode)
	}

	if c.Camera.Lerp < 0 || c.Camera.Lerp > 1 {
		return fmt.Errorf("camera.lerp must be in [0,1], got %v", c.Camera.Lerp)
	}
	if c.Camera.MinZoom <= 0 || c.Camera.MaxZoom < c.Camera.MinZoom {
		return fmt.Errorf("camera zoom bounds invalid: min %v max %v", c.Camera.MinZoom, c.Camera.MaxZoom)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.GroupDistanceSq = c.Grouping.GroupDistance * c.Grouping.GroupDistance
	c.Derived.SensorRadius = c.Grouping.GroupDistance / 2

	ticks := int32(c.Telemetry.StatsWindow / c.Physics.DT)
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTicks = ticks
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
