// Package config provides configuration loading and validation for the simulation.
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

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Sheep      SheepConfig      `yaml:"sheep"`
	Predator   PredatorConfig   `yaml:"predator"`
	Robot      RobotConfig      `yaml:"robot"`
	Obstacle   ObstacleConfig   `yaml:"obstacle"`
	Formation  FormationConfig  `yaml:"formation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Stream     StreamConfig     `yaml:"stream"`
	Layout     LayoutConfig     `yaml:"layout"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  float64 `yaml:"width"`  // World width in world units (0 = use screen width)
	Height float64 `yaml:"height"` // World height in world units (0 = use screen height)
}

// PopulationConfig holds the number of agents of each kind created at reset.
type PopulationConfig struct {
	Sheep     int `yaml:"sheep"`
	Predators int `yaml:"predators"`
	Robots    int `yaml:"robots"`
	Obstacles int `yaml:"obstacles"`
}

// SheepConfig holds flocking, threat response and health parameters.
type SheepConfig struct {
	MaxSpeed            float64 `yaml:"max_speed"`
	MaxHealth           float64 `yaml:"max_health"`
	NeighborRadius      float64 `yaml:"neighbor_radius"`
	SeparationRadius    float64 `yaml:"separation_radius"`
	PredatorAvoidRadius float64 `yaml:"predator_avoid_radius"`
	PanicRadius         float64 `yaml:"panic_radius"`
	PanicJitter         float64 `yaml:"panic_jitter"`       // Magnitude of the random kick while panicking
	PanicSpeedFactor    float64 `yaml:"panic_speed_factor"` // Speed cap multiplier while panicking
	AlignmentWeight     float64 `yaml:"alignment_weight"`
	CohesionWeight      float64 `yaml:"cohesion_weight"`
	SeparationWeight    float64 `yaml:"separation_weight"`
	AvoidWeight         float64 `yaml:"avoid_weight"` // Shared by predator and obstacle avoidance
}

// PredatorConfig holds pursuit and predation parameters.
type PredatorConfig struct {
	Speed         float64 `yaml:"speed"`
	ContactRadius float64 `yaml:"contact_radius"`
	Damage        float64 `yaml:"damage"`
}

// RobotConfig holds defender parameters.
type RobotConfig struct {
	Speed           float64 `yaml:"speed"`
	DefenseRadius   float64 `yaml:"defense_radius"`
	PushRadius      float64 `yaml:"push_radius"`
	PushStrength    float64 `yaml:"push_strength"`    // Predator displacement per push
	InterceptLead   float64 `yaml:"intercept_lead"`   // Extrapolation beyond the predator along robot->predator
	InterceptWeight float64 `yaml:"intercept_weight"` // Pull toward the extrapolated point
}

// ObstacleConfig holds obstacle geometry.
type ObstacleConfig struct {
	Radius      float64 `yaml:"radius"`
	AvoidRadius float64 `yaml:"avoid_radius"`
}

// FormationConfig holds V formation geometry.
type FormationConfig struct {
	Spacing  float64 `yaml:"spacing"`
	AngleDeg float64 `yaml:"angle_deg"` // Half-angle of the V
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow      int `yaml:"stats_window"` // ticks
	PerfWindow       int `yaml:"perf_window"`
	BookmarkHistory  int `yaml:"bookmark_history"`
	HeavyLossesKills int `yaml:"heavy_losses_kills"`
	ShieldWindows    int `yaml:"shield_windows"`
}

// StreamConfig holds spectator stream parameters.
type StreamConfig struct {
	PublishEvery int `yaml:"publish_every"`
	ClientBuffer int `yaml:"client_buffer"`
}

// Point is a world position in a layout.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// LayoutConfig holds explicit placements. A non-empty list replaces random
// placement for that kind.
type LayoutConfig struct {
	Sheep     []Point `yaml:"sheep"`
	Predators []Point `yaml:"predators"`
	Robots    []Point `yaml:"robots"`
	Obstacles []Point `yaml:"obstacles"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW            float64 // Effective world width
	WorldH            float64 // Effective world height
	FormationAngleRad float64
	NumSheep          int // Layout length when a layout is given, else population count
	NumPredators      int
	NumRobots         int
	NumObstacles      int
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.ComputeDerived()
	return cfg, nil
}

// MustDefaults is like Defaults but panics on error.
func MustDefaults() *Config {
	cfg, err := Defaults()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Layout = LayoutConfig{
		Sheep:     append([]Point(nil), c.Layout.Sheep...),
		Predators: append([]Point(nil), c.Layout.Predators...),
		Robots:    append([]Point(nil), c.Layout.Robots...),
		Obstacles: append([]Point(nil), c.Layout.Obstacles...),
	}
	return &out
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating a config in code.
func (c *Config) ComputeDerived() {
	// World dimensions default to screen size if not specified
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = float64(c.Screen.Width)
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = float64(c.Screen.Height)
	}

	c.Derived.FormationAngleRad = c.Formation.AngleDeg * math.Pi / 180

	c.Derived.NumSheep = countOrLayout(c.Population.Sheep, c.Layout.Sheep)
	c.Derived.NumPredators = countOrLayout(c.Population.Predators, c.Layout.Predators)
	c.Derived.NumRobots = countOrLayout(c.Population.Robots, c.Layout.Robots)
	c.Derived.NumObstacles = countOrLayout(c.Population.Obstacles, c.Layout.Obstacles)
}

func countOrLayout(n int, pts []Point) int {
	if len(pts) > 0 {
		return len(pts)
	}
	return n
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
