// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Arena   ArenaConfig   `yaml:"arena"`
	Agent   AgentConfig   `yaml:"agent"`
	Levers  LeversConfig  `yaml:"levers"`
	Energy  EnergyConfig  `yaml:"energy"`
	Episode EpisodeConfig `yaml:"episode"`
	Run     RunConfig     `yaml:"run"`
	Render  RenderConfig  `yaml:"render"`
	GIF     GIFConfig     `yaml:"gif"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ArenaConfig holds the box dimensions in arena units.
type ArenaConfig struct {
	Width      float64 `yaml:"width"`       // extent along x
	Depth      float64 `yaml:"depth"`       // extent along y
	Height     float64 `yaml:"height"`      // extent along z
	WallMargin float64 `yaml:"wall_margin"` // agent x,y stay this far from the walls
}

// AgentConfig holds the rat's movement and collision parameters.
type AgentConfig struct {
	FloorZ        float64 `yaml:"floor_z"`
	StepSize      float64 `yaml:"step_size"`      // upper bound of a random move
	FootprintHalf float64 `yaml:"footprint_half"` // half-length of the collision square
	BodySize      float64 `yaml:"body_size"`      // edge of the cube drawn for the agent
}

// LeverPos is a lever center on the floor plane.
type LeverPos struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// LeversConfig holds the geometry of the two contact zones.
type LeversConfig struct {
	Length float64  `yaml:"length"` // along x
	Width  float64  `yaml:"width"`  // along y
	Height float64  `yaml:"height"` // along z, drawing only
	MountZ float64  `yaml:"mount_z"`
	Left   LeverPos `yaml:"left"`
	Right  LeverPos `yaml:"right"`
}

// EnergyConfig holds the energy budget.
type EnergyConfig struct {
	Initial float64 `yaml:"initial"`
	Decay   float64 `yaml:"decay"` // subtracted every step
	Bonus   float64 `yaml:"bonus"` // added on a step with any lever contact
}

// EpisodeConfig controls reset semantics.
type EpisodeConfig struct {
	FullReset bool `yaml:"full_reset"`
}

// RunConfig holds driver parameters.
type RunConfig struct {
	Steps     int    `yaml:"steps"`
	Seed      int64  `yaml:"seed"` // 0 = time-based
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"` // CSV, summary and config snapshot; empty disables
}

// RenderConfig holds frame rendering parameters.
type RenderConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ImageDir     string  `yaml:"image_dir"`
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	PanelPadding float64 `yaml:"panel_padding"`
}

// GIFConfig holds animation assembly parameters.
type GIFConfig struct {
	Enabled       bool    `yaml:"enabled"`
	OutputPath    string  `yaml:"output_path"`
	FrameDuration float64 `yaml:"frame_duration"` // seconds per frame
	Width         int     `yaml:"width"`          // 0 = keep frame size
}

// StoreConfig holds the run index location. Empty path disables indexing.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Format string `yaml:"format"` // json or text
	Level  string `yaml:"level"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxX     float64 // Arena.Width - WallMargin
	MaxY     float64 // Arena.Depth - WallMargin
	LogLevel slog.Level
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

// Default returns the embedded defaults. It panics if they do not parse,
// which would be a build defect.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the environment cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Arena.Width <= 2*c.Arena.WallMargin || c.Arena.Depth <= 2*c.Arena.WallMargin {
		errs = append(errs, fmt.Errorf("arena %gx%g too small for wall margin %g",
			c.Arena.Width, c.Arena.Depth, c.Arena.WallMargin))
	}
	if c.Agent.StepSize < 0 {
		errs = append(errs, fmt.Errorf("agent.step_size must be >= 0, got %g", c.Agent.StepSize))
	}
	if c.Agent.FootprintHalf < 0 {
		errs = append(errs, fmt.Errorf("agent.footprint_half must be >= 0, got %g", c.Agent.FootprintHalf))
	}
	if c.Levers.Length < 0 || c.Levers.Width < 0 {
		errs = append(errs, fmt.Errorf("lever size must be >= 0, got %gx%g", c.Levers.Length, c.Levers.Width))
	}
	if c.Run.Steps < 0 {
		errs = append(errs, fmt.Errorf("run.steps must be >= 0, got %d", c.Run.Steps))
	}
	if c.GIF.FrameDuration < 0 {
		errs = append(errs, fmt.Errorf("gif.frame_duration must be >= 0, got %g", c.GIF.FrameDuration))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxX = c.Arena.Width - c.Arena.WallMargin
	c.Derived.MaxY = c.Arena.Depth - c.Arena.WallMargin
	c.Derived.LogLevel, _ = ParseLevel(c.Log.Level)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
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
