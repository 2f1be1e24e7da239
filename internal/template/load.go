package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gestured/internal/logging"
)

// ===== LIBRARY FILE =====

// Library is the on-disk template collection.
type Library struct {
	Templates []Template `yaml:"templates"`
	Strokes   []Stroke   `yaml:"strokes,omitempty"`
}

// Load reads a template library from a yaml file. A missing file is
// not an error; it just yields an empty library.
func Load(path string) (Library, error) {
	var lib Library
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.TemplateDebug("no template library at %s", path)
		return lib, nil
	}
	if err != nil {
		return lib, fmt.Errorf("reading template library: %w", err)
	}

	if err := yaml.Unmarshal(data, &lib); err != nil {
		return lib, fmt.Errorf("parsing template library %s: %w", path, err)
	}
	for _, t := range lib.Templates {
		if err := t.Validate(); err != nil {
			return Library{}, fmt.Errorf("template library %s: %w", path, err)
		}
	}
	for _, s := range lib.Strokes {
		if err := s.Validate(); err != nil {
			return Library{}, fmt.Errorf("template library %s: %w", path, err)
		}
	}
	logging.Template("loaded %d templates and %d strokes from %s",
		len(lib.Templates), len(lib.Strokes), path)
	return lib, nil
}

// Save writes the library back to disk, for template recording flows.
func Save(path string, lib Library) error {
	data, err := yaml.Marshal(lib)
	if err != nil {
		return fmt.Errorf("encoding template library: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing template library: %w", err)
	}
	return nil
}
