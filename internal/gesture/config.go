package gesture

import (
	"fmt"
	"time"

	"gestured/internal/touch"
)

// ===== ENGINE CONFIGURATION =====

// Config carries every tunable of the recognition pipeline. Distances
// are in surface pixels, angles in degrees, pressures normalized 0..1.
type Config struct {
	// Basic thresholds
	PanThreshold      float64       // movement slop before a contact counts as panning
	SwipeThreshold    float64       // minimum displacement for a swipe at release
	PinchThreshold    float64       // relative inter-contact distance change before pinch reports
	LongPressDelay    time.Duration // stationary dwell before long-press fires
	DoubleTapInterval time.Duration // max gap between chained taps
	TapSlop           float64       // max distance between chained tap positions
	SwipeMaxDuration  time.Duration // swipes must finish within this
	VelocityWindow    time.Duration // trailing window for pan velocity
	MaxPathPoints     int           // per-contact path retention cap

	// Gesture family enablement
	EnableTap         bool
	EnableDoubleTap   bool
	EnableTripleTap   bool
	EnableLongPress   bool
	EnablePan         bool
	EnableSwipe       bool
	EnablePinch       bool
	EnableRotate      bool
	EnableThreeFinger bool
	EnableFourFinger  bool
	EnableFiveFinger  bool
	EnableForceTouch  bool
	EnableCircular    bool
	EnableEdgeSwipe   bool

	Force    ForceConfig
	Circular CircularConfig
	Edge     EdgeConfig

	// DebounceDelay suppresses a discrete gesture repeating within the
	// window, before it reaches the handler or the sequence log. Zero
	// disables debouncing.
	DebounceDelay time.Duration

	// RecognitionThreshold is the confidence floor for custom template
	// matches.
	RecognitionThreshold float64
}

// ForceConfig holds the ascending pressure band thresholds.
type ForceConfig struct {
	Light  float64
	Medium float64
	Heavy  float64
}

// CircularConfig bounds circular gesture acceptance.
type CircularConfig struct {
	MinRadius         float64
	MaxRadius         float64
	AngleThreshold    float64 // degrees of total sweep required
	MaxDeviationRatio float64 // radial deviation allowed, as a fraction of mean radius
	MinSamples        int     // path samples required before evaluation
}

// EdgeConfig controls edge-swipe classification.
type EdgeConfig struct {
	Width  float64 // px from an edge that counts as starting on it
	Left   bool
	Right  bool
	Top    bool
	Bottom bool
}

// DefaultConfig returns the config used when nothing is tuned.
func DefaultConfig() Config {
	return Config{
		PanThreshold:      10,
		SwipeThreshold:    50,
		PinchThreshold:    0.1,
		LongPressDelay:    500 * time.Millisecond,
		DoubleTapInterval: 300 * time.Millisecond,
		TapSlop:           30,
		SwipeMaxDuration:  300 * time.Millisecond,
		VelocityWindow:    100 * time.Millisecond,
		MaxPathPoints:     touch.DefaultMaxPathPoints,

		EnableTap:         true,
		EnableDoubleTap:   true,
		EnableTripleTap:   true,
		EnableLongPress:   true,
		EnablePan:         true,
		EnableSwipe:       true,
		EnablePinch:       true,
		EnableRotate:      true,
		EnableThreeFinger: true,
		EnableFourFinger:  true,
		EnableFiveFinger:  true,
		EnableForceTouch:  true,
		EnableCircular:    true,
		EnableEdgeSwipe:   true,

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

		DebounceDelay:        0,
		RecognitionThreshold: 0.7,
	}
}

// Validate rejects configs the pipeline cannot run with.
func (c Config) Validate() error {
	if c.PanThreshold <= 0 {
		return fmt.Errorf("pan threshold must be positive, got %v", c.PanThreshold)
	}
	if c.SwipeThreshold <= 0 {
		return fmt.Errorf("swipe threshold must be positive, got %v", c.SwipeThreshold)
	}
	if c.PinchThreshold <= 0 {
		return fmt.Errorf("pinch threshold must be positive, got %v", c.PinchThreshold)
	}
	if c.LongPressDelay <= 0 {
		return fmt.Errorf("long-press delay must be positive, got %v", c.LongPressDelay)
	}
	if c.DoubleTapInterval <= 0 {
		return fmt.Errorf("double-tap interval must be positive, got %v", c.DoubleTapInterval)
	}
	if c.Force.Light >= c.Force.Medium || c.Force.Medium >= c.Force.Heavy {
		return fmt.Errorf("force thresholds must ascend: %v/%v/%v",
			c.Force.Light, c.Force.Medium, c.Force.Heavy)
	}
	if c.Circular.MinRadius < 0 || c.Circular.MaxRadius <= c.Circular.MinRadius {
		return fmt.Errorf("circular radius band invalid: [%v, %v]",
			c.Circular.MinRadius, c.Circular.MaxRadius)
	}
	if c.Circular.AngleThreshold <= 0 || c.Circular.AngleThreshold > 1080 {
		return fmt.Errorf("circular angle threshold out of range: %v", c.Circular.AngleThreshold)
	}
	if c.RecognitionThreshold < 0 || c.RecognitionThreshold > 1 {
		return fmt.Errorf("recognition threshold must be in [0,1], got %v", c.RecognitionThreshold)
	}
	return nil
}

// fingerEnabled reports whether exactly-n-finger gestures are enabled.
func (c Config) fingerEnabled(n int) bool {
	switch n {
	case 3:
		return c.EnableThreeFinger
	case 4:
		return c.EnableFourFinger
	case 5:
		return c.EnableFiveFinger
	default:
		return false
	}
}
