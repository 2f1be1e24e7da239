package template

import (
	"fmt"

	"gestured/internal/geometry"
)

// ===== STROKE TEMPLATES =====

// strokeSamples is the point count both paths are resampled to before
// comparison, so templates and observations align regardless of how
// densely either was sampled.
const strokeSamples = 64

// DefaultStrokeTolerance is the normalized path distance a stroke may
// show and still match when the template leaves Tolerance zero.
const DefaultStrokeTolerance = 0.35

// Stroke is a single-contact shape template: the drawn path is
// resampled, normalized to a unit box, and compared point for point
// against the recorded shape.
type Stroke struct {
	Name   string           `yaml:"name"`
	Points []geometry.Point `yaml:"points"`

	// Tolerance is the maximum normalized distance accepted as a
	// match. Zero uses DefaultStrokeTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Validate rejects strokes the matcher cannot compare.
func (s Stroke) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("stroke has no name")
	}
	if len(s.Points) < 2 {
		return fmt.Errorf("stroke %q needs at least 2 points, has %d", s.Name, len(s.Points))
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("stroke %q has negative tolerance", s.Name)
	}
	return nil
}

// score compares the stroke against a single-contact interaction.
// Confidence is 1/(1+distance), so a perfect trace scores 1.0 and
// degrades smoothly with shape error.
func (s Stroke) score(obs []observation) (float64, bool) {
	if len(obs) != 1 || len(obs[0].path) < 2 {
		return 0, false
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = DefaultStrokeTolerance
	}

	drawn := geometry.NormalizeUnit(geometry.Resample(obs[0].path, strokeSamples))
	shape := geometry.NormalizeUnit(geometry.Resample(s.Points, strokeSamples))
	d := geometry.DTW(drawn, shape)
	if d > tol {
		return 0, false
	}
	return 1 / (1 + d), true
}
