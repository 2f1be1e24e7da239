// Package template matches finished interactions against user-defined
// gesture templates. Descriptor templates constrain per-contact motion
// (static, linear, circular); stroke templates compare the drawn path
// against a recorded shape.
package template

import (
	"fmt"
	"math"
	"sort"

	"gestured/internal/geometry"
	"gestured/internal/logging"
	"gestured/internal/touch"
)

// ===== DESCRIPTOR TEMPLATES =====

// PatternType classifies the motion one contact must perform.
type PatternType string

const (
	PatternStatic   PatternType = "static"
	PatternLinear   PatternType = "linear"
	PatternCircular PatternType = "circular"
)

// Default tolerances applied when a template leaves them zero.
const (
	DefaultPositionTolerance  = 20.0 // px a static contact may drift
	DefaultDirectionTolerance = 45.0 // degrees a linear contact may deviate
)

// Penalty multipliers applied per violated constraint. Confidence
// starts at 1.0 and each violation scales it down.
const (
	penaltyTouchCount    = 0.5
	penaltyStaticMoved   = 0.7
	penaltyDirection     = 0.6
	penaltyDistanceRatio = 0.8
	penaltyNotCircular   = 0.5
	penaltyWrongRotation = 0.7
)

// distanceRatioMin/Max bound the observed/expected travel ratio a
// linear pattern accepts without penalty.
const (
	distanceRatioMin = 0.5
	distanceRatioMax = 2.0
)

// Pattern constrains one contact of a descriptor template. Contacts
// are paired with patterns in the order the fingers landed.
type Pattern struct {
	Type PatternType `yaml:"type"`

	// Direction applies to linear (up, down, left, right) and
	// circular (clockwise, counterclockwise) patterns.
	Direction string `yaml:"direction,omitempty"`

	// Distance is the expected travel in px for linear patterns.
	// Zero accepts any distance.
	Distance float64 `yaml:"distance,omitempty"`
}

// Template is one named multi-contact gesture descriptor.
type Template struct {
	Name     string    `yaml:"name"`
	Patterns []Pattern `yaml:"patterns"`

	// PositionTolerance is how far a static contact may stray from
	// its start before the static penalty applies. Zero uses
	// DefaultPositionTolerance.
	PositionTolerance float64 `yaml:"position_tolerance,omitempty"`

	// DirectionTolerance is the angular error in degrees a linear
	// contact may show before the direction penalty applies. Zero
	// uses DefaultDirectionTolerance.
	DirectionTolerance float64 `yaml:"direction_tolerance,omitempty"`
}

// TouchCount returns the number of contacts the template describes.
func (t Template) TouchCount() int { return len(t.Patterns) }

// Validate rejects templates the matcher cannot score.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template has no name")
	}
	if len(t.Patterns) == 0 {
		return fmt.Errorf("template %q has no patterns", t.Name)
	}
	for i, p := range t.Patterns {
		switch p.Type {
		case PatternStatic:
		case PatternLinear:
			switch p.Direction {
			case "up", "down", "left", "right", "":
			default:
				return fmt.Errorf("template %q pattern %d: bad linear direction %q", t.Name, i, p.Direction)
			}
		case PatternCircular:
			switch p.Direction {
			case "clockwise", "counterclockwise", "":
			default:
				return fmt.Errorf("template %q pattern %d: bad rotation %q", t.Name, i, p.Direction)
			}
		default:
			return fmt.Errorf("template %q pattern %d: unknown type %q", t.Name, i, p.Type)
		}
	}
	return nil
}

// ===== MATCHER =====

// Match is one template that scored at or above the recognition
// threshold.
type Match struct {
	Name       string
	Confidence float64
	Stroke     bool // matched by path shape rather than descriptor
}

// Matcher scores finished interactions against its registered
// templates. Not safe for concurrent use.
type Matcher struct {
	threshold float64
	templates []Template
	strokes   []Stroke
}

// NewMatcher creates a matcher that reports matches scoring at least
// threshold.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// SetThreshold changes the recognition threshold for later matches.
func (m *Matcher) SetThreshold(v float64) { m.threshold = v }

// Add registers a descriptor template.
func (m *Matcher) Add(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.templates = append(m.templates, t)
	logging.Template("registered template %q (%d contacts)", t.Name, t.TouchCount())
	return nil
}

// AddStroke registers a stroke template.
func (m *Matcher) AddStroke(s Stroke) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.strokes = append(m.strokes, s)
	logging.Template("registered stroke %q (%d points)", s.Name, len(s.Points))
	return nil
}

// SetLibrary replaces all registered templates with the library's.
func (m *Matcher) SetLibrary(lib Library) error {
	for _, t := range lib.Templates {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, s := range lib.Strokes {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	m.templates = append([]Template(nil), lib.Templates...)
	m.strokes = append([]Stroke(nil), lib.Strokes...)
	return nil
}

// Templates returns the registered descriptor templates.
func (m *Matcher) Templates() []Template {
	return append([]Template(nil), m.templates...)
}

// Strokes returns the registered stroke templates.
func (m *Matcher) Strokes() []Stroke {
	return append([]Stroke(nil), m.strokes...)
}

// Match scores every registered template against the finished
// contacts and returns those at or above the threshold, best first.
func (m *Matcher) Match(contacts []*touch.Contact) []Match {
	if len(contacts) == 0 || len(m.templates)+len(m.strokes) == 0 {
		return nil
	}
	obs := observe(contacts)

	var out []Match
	for _, t := range m.templates {
		conf := scoreTemplate(t, obs)
		logging.TemplateDebug("template %q scored %.3f against %d contacts",
			t.Name, conf, len(obs))
		if conf >= m.threshold {
			out = append(out, Match{Name: t.Name, Confidence: conf})
		}
	}
	for _, s := range m.strokes {
		conf, ok := s.score(obs)
		if !ok {
			continue
		}
		logging.TemplateDebug("stroke %q scored %.3f", s.Name, conf)
		if conf >= m.threshold {
			out = append(out, Match{Name: s.Name, Confidence: conf, Stroke: true})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// ===== OBSERVATIONS =====

// observation is the motion summary of one finished contact.
type observation struct {
	start        geometry.Point
	end          geometry.Point
	path         []geometry.Point
	displacement float64 // straight-line start to end
	maxDrift     float64 // farthest the contact strayed from start
	angle        float64 // radians, start toward end
}

// observe summarizes each contact, ordered by when the fingers landed
// so pattern pairing is deterministic.
func observe(contacts []*touch.Contact) []observation {
	sorted := append([]*touch.Contact(nil), contacts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := make([]observation, len(sorted))
	for i, c := range sorted {
		pts := c.PathPoints()
		o := observation{
			start:        c.StartPosition,
			end:          c.Position,
			path:         pts,
			displacement: c.Displacement(),
			angle:        geometry.Angle(c.StartPosition, c.Position),
		}
		for _, p := range pts {
			if d := geometry.Distance(c.StartPosition, p); d > o.maxDrift {
				o.maxDrift = d
			}
		}
		out[i] = o
	}
	return out
}

// ===== SCORING =====

// scoreTemplate computes the multiplicative confidence of a template
// against the observed contacts. 1.0 means every constraint held.
func scoreTemplate(t Template, obs []observation) float64 {
	conf := 1.0
	if len(obs) != len(t.Patterns) {
		conf *= penaltyTouchCount
	}

	n := len(obs)
	if len(t.Patterns) < n {
		n = len(t.Patterns)
	}
	for i := 0; i < n; i++ {
		conf *= scorePattern(t, t.Patterns[i], obs[i])
	}
	return conf
}

func scorePattern(t Template, p Pattern, o observation) float64 {
	conf := 1.0
	switch p.Type {
	case PatternStatic:
		tol := t.PositionTolerance
		if tol <= 0 {
			tol = DefaultPositionTolerance
		}
		if o.maxDrift > tol {
			conf *= penaltyStaticMoved
		}

	case PatternLinear:
		if p.Direction != "" {
			tol := t.DirectionTolerance
			if tol <= 0 {
				tol = DefaultDirectionTolerance
			}
			want := directionAngle(p.Direction)
			errDeg := math.Abs(geometry.AngleDelta(want, o.angle)) * 180 / math.Pi
			if errDeg > tol {
				conf *= penaltyDirection
			}
		}
		if p.Distance > 0 {
			ratio := o.displacement / p.Distance
			if ratio < distanceRatioMin || ratio > distanceRatioMax {
				conf *= penaltyDistanceRatio
			}
		}

	case PatternCircular:
		sweep, circular := circularSweep(o.path)
		if !circular {
			conf *= penaltyNotCircular
			break
		}
		switch p.Direction {
		case "clockwise":
			if sweep < 0 {
				conf *= penaltyWrongRotation
			}
		case "counterclockwise":
			if sweep > 0 {
				conf *= penaltyWrongRotation
			}
		}
	}
	return conf
}

// directionAngle maps a named direction to its screen angle in
// radians, with Y growing downward.
func directionAngle(dir string) float64 {
	switch dir {
	case "right":
		return 0
	case "down":
		return math.Pi / 2
	case "left":
		return math.Pi
	case "up":
		return -math.Pi / 2
	}
	return 0
}

// circularSweep reports the signed sweep of a path and whether the
// path is round enough to treat as circular at all. The matcher's
// roundness test is looser than the engine classifier's; templates
// declare intent, the penalty model handles sloppiness.
func circularSweep(path []geometry.Point) (float64, bool) {
	if len(path) < 6 {
		return 0, false
	}
	stats := geometry.Radial(path)
	if stats.MeanRadius <= 0 || stats.Deviation > 0.35*stats.MeanRadius {
		return 0, false
	}
	sweep := geometry.Sweep(path, stats.Center)
	if math.Abs(sweep) < math.Pi {
		return sweep, false
	}
	return sweep, true
}
