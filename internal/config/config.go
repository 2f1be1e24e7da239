package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gestured/internal/gesture"
)

// Config holds all gestured configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Recognition thresholds and basic gesture enablement
	Engine EngineConfig `yaml:"engine"`

	// Pressure bands
	Force ForceConfig `yaml:"force"`

	// Circular gesture acceptance
	Circular CircularConfig `yaml:"circular"`

	// Edge swipe zones
	Edge EdgeConfig `yaml:"edge"`

	// Multi-finger, force, circular and edge enablement plus debounce
	Advanced AdvancedConfig `yaml:"advanced"`

	// Sequence library
	Sequence SequenceConfig `yaml:"sequences"`

	// Template library
	Template TemplateConfig `yaml:"templates"`

	// Session persistence
	Store StoreConfig `yaml:"store"`

	// Logging (read by internal/logging via its own mirror struct)
	Logging LogConfig `yaml:"logging"`

	// Terminal front end
	UI UIConfig `yaml:"ui"`
}

// EngineConfig configures the basic classifier. Distances are surface
// pixels; durations are strings like "500ms" parsed on demand.
type EngineConfig struct {
	PanThreshold      float64 `yaml:"pan_threshold"`
	SwipeThreshold    float64 `yaml:"swipe_threshold"`
	PinchThreshold    float64 `yaml:"pinch_threshold"`
	LongPressDelay    string  `yaml:"long_press_delay"`
	DoubleTapInterval string  `yaml:"double_tap_interval"`
	TapSlop           float64 `yaml:"tap_slop"`
	SwipeMaxDuration  string  `yaml:"swipe_max_duration"`
	VelocityWindow    string  `yaml:"velocity_window"`
	MaxPathPoints     int     `yaml:"max_path_points"`

	RecognitionThreshold float64 `yaml:"recognition_threshold"`

	EnableTap       bool `yaml:"enable_tap"`
	EnableDoubleTap bool `yaml:"enable_double_tap"`
	EnableTripleTap bool `yaml:"enable_triple_tap"`
	EnableLongPress bool `yaml:"enable_long_press"`
	EnablePan       bool `yaml:"enable_pan"`
	EnableSwipe     bool `yaml:"enable_swipe"`
	EnablePinch     bool `yaml:"enable_pinch"`
	EnableRotate    bool `yaml:"enable_rotate"`
}

// ForceConfig holds the ascending pressure band thresholds.
type ForceConfig struct {
	Light  float64 `yaml:"light"`
	Medium float64 `yaml:"medium"`
	Heavy  float64 `yaml:"heavy"`
}

// CircularConfig bounds circular gesture acceptance.
type CircularConfig struct {
	MinRadius         float64 `yaml:"min_radius"`
	MaxRadius         float64 `yaml:"max_radius"`
	AngleThreshold    float64 `yaml:"angle_threshold"`
	MaxDeviationRatio float64 `yaml:"max_deviation_ratio"`
	MinSamples        int     `yaml:"min_samples"`
}

// EdgeConfig controls edge swipe zones.
type EdgeConfig struct {
	Width  float64 `yaml:"width"`
	Left   bool    `yaml:"left"`
	Right  bool    `yaml:"right"`
	Top    bool    `yaml:"top"`
	Bottom bool    `yaml:"bottom"`
}

// AdvancedConfig configures the advanced classifier families.
type AdvancedConfig struct {
	EnableThreeFinger bool `yaml:"enable_three_finger"`
	EnableFourFinger  bool `yaml:"enable_four_finger"`
	EnableFiveFinger  bool `yaml:"enable_five_finger"`
	EnableForceTouch  bool `yaml:"enable_force_touch"`
	EnableCircular    bool `yaml:"enable_circular"`
	EnableEdgeSwipe   bool `yaml:"enable_edge_swipe"`

	DebounceDelay string `yaml:"debounce_delay"`
}

// SequenceConfig configures the sequence library.
type SequenceConfig struct {
	LibraryPath string `yaml:"library_path"`

	// Timeout is the MaxDuration applied to definitions that omit one.
	Timeout string `yaml:"timeout"`
}

// TemplateConfig configures the custom template library.
type TemplateConfig struct {
	LibraryPath string `yaml:"library_path"`
}

// StoreConfig configures session persistence.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LogConfig mirrors the logging section consumed by internal/logging.
type LogConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// UIConfig configures the terminal visualizer.
type UIConfig struct {
	Theme     string `yaml:"theme"` // auto, dark, light
	FeedLines int    `yaml:"feed_lines"`
	TickRate  string `yaml:"tick_rate"`
}

// DefaultConfig returns the default configuration. Library and
// database paths are bare names; Load resolves them against the
// config file's directory.
func DefaultConfig() *Config {
	return &Config{
		Name:    "gestured",
		Version: "1.0.0",

		Engine: EngineConfig{
			PanThreshold:      10,
			SwipeThreshold:    50,
			PinchThreshold:    0.1,
			LongPressDelay:    "500ms",
			DoubleTapInterval: "300ms",
			TapSlop:           30,
			SwipeMaxDuration:  "300ms",
			VelocityWindow:    "100ms",
			MaxPathPoints:     256,

			RecognitionThreshold: 0.7,

			EnableTap:       true,
			EnableDoubleTap: true,
			EnableTripleTap: true,
			EnableLongPress: true,
			EnablePan:       true,
			EnableSwipe:     true,
			EnablePinch:     true,
			EnableRotate:    true,
		},

		Force: ForceConfig{
			Light:  0.25,
			Medium: 0.5,
			Heavy:  0.75,
		},

		Circular: CircularConfig{
			MinRadius:         30,
			MaxRadius:         200,
			AngleThreshold:    270,
			MaxDeviationRatio: 0.3,
			MinSamples:        8,
		},

		Edge: EdgeConfig{
			Width:  20,
			Left:   true,
			Right:  true,
			Top:    true,
			Bottom: true,
		},

		Advanced: AdvancedConfig{
			EnableThreeFinger: true,
			EnableFourFinger:  true,
			EnableFiveFinger:  true,
			EnableForceTouch:  true,
			EnableCircular:    true,
			EnableEdgeSwipe:   true,
			DebounceDelay:     "0s",
		},

		Sequence: SequenceConfig{
			LibraryPath: "sequences.yaml",
			Timeout:     "5s",
		},

		Template: TemplateConfig{
			LibraryPath: "templates.yaml",
		},

		Store: StoreConfig{
			DatabasePath: "gestured.db",
		},

		Logging: LogConfig{
			Level: "info",
			Categories: map[string]bool{
				"engine":   true,
				"touch":    true,
				"classify": true,
				"template": true,
				"sequence": true,
				"store":    true,
				"watch":    true,
				"replay":   true,
				"ui":       true,
			},
		},

		UI: UIConfig{
			Theme:     "auto",
			FeedLines: 12,
			TickRate:  "16ms",
		},
	}
}

// DefaultHome returns the gestured home directory (~/.gestured).
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gestured"
	}
	return filepath.Join(home, ".gestured")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultHome(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields
// the defaults. Relative library and database paths are resolved
// against the config file's directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			cfg.resolvePaths(filepath.Dir(path))
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("GESTURED_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if path := os.Getenv("GESTURED_TEMPLATES"); path != "" {
		c.Template.LibraryPath = path
	}
	if path := os.Getenv("GESTURED_SEQUENCES"); path != "" {
		c.Sequence.LibraryPath = path
	}
	if theme := os.Getenv("GESTURED_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if os.Getenv("GESTURED_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
}

// resolvePaths anchors relative file paths at dir.
func (c *Config) resolvePaths(dir string) {
	c.Store.DatabasePath = resolve(dir, c.Store.DatabasePath)
	c.Template.LibraryPath = resolve(dir, c.Template.LibraryPath)
	c.Sequence.LibraryPath = resolve(dir, c.Sequence.LibraryPath)
}

func resolve(dir, path string) string {
	if path == "" || dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// GetLongPressDelay returns the long-press dwell as a duration.
func (c *Config) GetLongPressDelay() time.Duration {
	d, err := time.ParseDuration(c.Engine.LongPressDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// GetDoubleTapInterval returns the tap chaining window as a duration.
func (c *Config) GetDoubleTapInterval() time.Duration {
	d, err := time.ParseDuration(c.Engine.DoubleTapInterval)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// GetSwipeMaxDuration returns the swipe time limit as a duration.
func (c *Config) GetSwipeMaxDuration() time.Duration {
	d, err := time.ParseDuration(c.Engine.SwipeMaxDuration)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// GetVelocityWindow returns the velocity sampling window as a duration.
func (c *Config) GetVelocityWindow() time.Duration {
	d, err := time.ParseDuration(c.Engine.VelocityWindow)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// GetDebounceDelay returns the discrete-gesture debounce window.
func (c *Config) GetDebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.Advanced.DebounceDelay)
	if err != nil {
		return 0
	}
	return d
}

// GetSequenceTimeout returns the MaxDuration applied to sequence
// definitions that omit one.
func (c *Config) GetSequenceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Sequence.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetTickRate returns the UI tick interval as a duration.
func (c *Config) GetTickRate() time.Duration {
	d, err := time.ParseDuration(c.UI.TickRate)
	if err != nil {
		return 16 * time.Millisecond
	}
	return d
}

// GestureConfig builds the engine configuration. Unparsable duration
// strings fall back to the defaults, so this cannot fail; Validate
// reports them instead.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		PanThreshold:      c.Engine.PanThreshold,
		SwipeThreshold:    c.Engine.SwipeThreshold,
		PinchThreshold:    c.Engine.PinchThreshold,
		LongPressDelay:    c.GetLongPressDelay(),
		DoubleTapInterval: c.GetDoubleTapInterval(),
		TapSlop:           c.Engine.TapSlop,
		SwipeMaxDuration:  c.GetSwipeMaxDuration(),
		VelocityWindow:    c.GetVelocityWindow(),
		MaxPathPoints:     c.Engine.MaxPathPoints,

		EnableTap:         c.Engine.EnableTap,
		EnableDoubleTap:   c.Engine.EnableDoubleTap,
		EnableTripleTap:   c.Engine.EnableTripleTap,
		EnableLongPress:   c.Engine.EnableLongPress,
		EnablePan:         c.Engine.EnablePan,
		EnableSwipe:       c.Engine.EnableSwipe,
		EnablePinch:       c.Engine.EnablePinch,
		EnableRotate:      c.Engine.EnableRotate,
		EnableThreeFinger: c.Advanced.EnableThreeFinger,
		EnableFourFinger:  c.Advanced.EnableFourFinger,
		EnableFiveFinger:  c.Advanced.EnableFiveFinger,
		EnableForceTouch:  c.Advanced.EnableForceTouch,
		EnableCircular:    c.Advanced.EnableCircular,
		EnableEdgeSwipe:   c.Advanced.EnableEdgeSwipe,

		Force: gesture.ForceConfig{
			Light:  c.Force.Light,
			Medium: c.Force.Medium,
			Heavy:  c.Force.Heavy,
		},
		Circular: gesture.CircularConfig{
			MinRadius:         c.Circular.MinRadius,
			MaxRadius:         c.Circular.MaxRadius,
			AngleThreshold:    c.Circular.AngleThreshold,
			MaxDeviationRatio: c.Circular.MaxDeviationRatio,
			MinSamples:        c.Circular.MinSamples,
		},
		Edge: gesture.EdgeConfig{
			Width:  c.Edge.Width,
			Left:   c.Edge.Left,
			Right:  c.Edge.Right,
			Top:    c.Edge.Top,
			Bottom: c.Edge.Bottom,
		},

		DebounceDelay:        c.GetDebounceDelay(),
		RecognitionThreshold: c.Engine.RecognitionThreshold,
	}
}

// ValidThemes lists the supported UI themes.
var ValidThemes = []string{"auto", "dark", "light"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"engine.long_press_delay":    c.Engine.LongPressDelay,
		"engine.double_tap_interval": c.Engine.DoubleTapInterval,
		"engine.swipe_max_duration":  c.Engine.SwipeMaxDuration,
		"engine.velocity_window":     c.Engine.VelocityWindow,
		"advanced.debounce_delay":    c.Advanced.DebounceDelay,
		"sequences.timeout":          c.Sequence.Timeout,
		"ui.tick_rate":               c.UI.TickRate,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if !(c.Force.Light < c.Force.Medium && c.Force.Medium < c.Force.Heavy) {
		return fmt.Errorf("force bands must ascend: light %.2f medium %.2f heavy %.2f",
			c.Force.Light, c.Force.Medium, c.Force.Heavy)
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	engineCfg := c.GestureConfig()
	if err := engineCfg.Validate(); err != nil {
		return err
	}

	return nil
}
