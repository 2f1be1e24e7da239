package sequence

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gestured/internal/logging"
)

// ===== LIBRARY FILE =====

// stepFile mirrors Step with durations as strings, the way they read
// naturally in yaml ("400ms", "2s").
type stepFile struct {
	Kind              string  `yaml:"kind"`
	MaxInterval       string  `yaml:"max_interval,omitempty"`
	PositionTolerance float64 `yaml:"position_tolerance,omitempty"`
}

type definitionFile struct {
	Name        string     `yaml:"name"`
	MaxDuration string     `yaml:"max_duration,omitempty"`
	Steps       []stepFile `yaml:"steps"`
}

type libraryFile struct {
	Sequences []definitionFile `yaml:"sequences"`
}

// Load reads sequence definitions from a yaml library file. A missing
// file is not an error; it just yields no definitions.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.SequenceDebug("no sequence library at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sequence library: %w", err)
	}

	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing sequence library %s: %w", path, err)
	}

	defs := make([]Definition, 0, len(file.Sequences))
	for _, df := range file.Sequences {
		d, err := df.toDefinition()
		if err != nil {
			return nil, fmt.Errorf("sequence library %s: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("sequence library %s: %w", path, err)
		}
		defs = append(defs, d)
	}
	logging.Sequence("loaded %d sequences from %s", len(defs), path)
	return defs, nil
}

// WithDefaultMaxDuration fills in MaxDuration for definitions that
// omit one. Definitions that set their own keep it.
func WithDefaultMaxDuration(defs []Definition, d time.Duration) []Definition {
	if d <= 0 {
		return defs
	}
	for i := range defs {
		if defs[i].MaxDuration == 0 {
			defs[i].MaxDuration = d
		}
	}
	return defs
}

func (df definitionFile) toDefinition() (Definition, error) {
	d := Definition{Name: df.Name}
	if df.MaxDuration != "" {
		v, err := time.ParseDuration(df.MaxDuration)
		if err != nil {
			return d, fmt.Errorf("sequence %q max_duration: %w", df.Name, err)
		}
		d.MaxDuration = v
	}
	for i, sf := range df.Steps {
		s := Step{Kind: sf.Kind, PositionTolerance: sf.PositionTolerance}
		if sf.MaxInterval != "" {
			v, err := time.ParseDuration(sf.MaxInterval)
			if err != nil {
				return d, fmt.Errorf("sequence %q step %d max_interval: %w", df.Name, i, err)
			}
			s.MaxInterval = v
		}
		d.Steps = append(d.Steps, s)
	}
	return d, nil
}
