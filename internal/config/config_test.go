package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gestured/internal/gesture"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	t.Setenv("GESTURED_DB", "")
	t.Setenv("GESTURED_TEMPLATES", "")
	t.Setenv("GESTURED_SEQUENCES", "")
	t.Setenv("GESTURED_THEME", "")
	t.Setenv("GESTURED_DEBUG", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "gestured" {
		t.Errorf("expected Name=gestured, got %s", cfg.Name)
	}
	if cfg.Engine.PanThreshold != 10 {
		t.Errorf("expected PanThreshold=10, got %v", cfg.Engine.PanThreshold)
	}
	if cfg.Engine.RecognitionThreshold != 0.7 {
		t.Errorf("expected RecognitionThreshold=0.7, got %v", cfg.Engine.RecognitionThreshold)
	}
	if !cfg.Advanced.EnableCircular {
		t.Error("expected circular gestures enabled by default")
	}
}

// The file defaults and the engine defaults must describe the same
// pipeline, or a config file round-trip would silently retune it.
func TestDefaultsMatchEngineDefaults(t *testing.T) {
	built := DefaultConfig().GestureConfig()
	want := gesture.DefaultConfig()

	if diff := cmp.Diff(want, built); diff != "" {
		t.Errorf("defaults diverge from engine defaults (-want +got):\n%s", diff)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnvOverrides(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load defaults failed: %v", err)
	}
	cfg.Engine.PanThreshold = 24
	cfg.Engine.LongPressDelay = "750ms"
	cfg.UI.Theme = "dark"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round-trip changed config (-saved +loaded):\n%s", diff)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnvOverrides(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.PanThreshold != 10 {
		t.Errorf("expected default PanThreshold, got %v", cfg.Engine.PanThreshold)
	}
	if got := filepath.Dir(cfg.Store.DatabasePath); got != tmpDir {
		t.Errorf("expected database resolved under %s, got %s", tmpDir, cfg.Store.DatabasePath)
	}
	if got := filepath.Dir(cfg.Template.LibraryPath); got != tmpDir {
		t.Errorf("expected template library resolved under %s, got %s", tmpDir, cfg.Template.LibraryPath)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnvOverrides(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	partial := "engine:\n  pan_threshold: 24\nforce:\n  heavy: 0.9\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.PanThreshold != 24 {
		t.Errorf("expected PanThreshold=24, got %v", cfg.Engine.PanThreshold)
	}
	if cfg.Force.Heavy != 0.9 {
		t.Errorf("expected Heavy=0.9, got %v", cfg.Force.Heavy)
	}
	if cfg.Engine.SwipeThreshold != 50 {
		t.Errorf("expected untouched SwipeThreshold=50, got %v", cfg.Engine.SwipeThreshold)
	}
	if !cfg.Engine.EnableTap {
		t.Error("expected untouched EnableTap=true")
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv("GESTURED_DB", "/elsewhere/traces.db")
	t.Setenv("GESTURED_THEME", "light")
	t.Setenv("GESTURED_DEBUG", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.DatabasePath != "/elsewhere/traces.db" {
		t.Errorf("expected env database path, got %s", cfg.Store.DatabasePath)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("expected env theme, got %s", cfg.UI.Theme)
	}
	if !cfg.Logging.DebugMode {
		t.Error("expected GESTURED_DEBUG to enable debug mode")
	}
}

func TestConfig_Validate(t *testing.T) {
	clearEnvOverrides(t)

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Engine.LongPressDelay = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad duration")
	}

	cfg = DefaultConfig()
	cfg.Force.Medium = 0.9
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-ascending force bands")
	}

	cfg = DefaultConfig()
	cfg.UI.Theme = "solarized"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown theme")
	}

	cfg = DefaultConfig()
	cfg.Engine.PanThreshold = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative pan threshold")
	}
}

func TestDurationGettersFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.LongPressDelay = "bogus"
	cfg.Engine.DoubleTapInterval = ""
	cfg.Advanced.DebounceDelay = "???"
	cfg.Sequence.Timeout = "nope"

	if got := cfg.GetLongPressDelay(); got != 500*time.Millisecond {
		t.Errorf("expected long-press fallback 500ms, got %v", got)
	}
	if got := cfg.GetDoubleTapInterval(); got != 300*time.Millisecond {
		t.Errorf("expected double-tap fallback 300ms, got %v", got)
	}
	if got := cfg.GetDebounceDelay(); got != 0 {
		t.Errorf("expected debounce fallback 0, got %v", got)
	}
	if got := cfg.GetSequenceTimeout(); got != 5*time.Second {
		t.Errorf("expected sequence timeout fallback 5s, got %v", got)
	}
}

func TestGestureConfigCarriesEnablement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.EnableDoubleTap = false
	cfg.Advanced.EnableFourFinger = false

	built := cfg.GestureConfig()
	if built.EnableDoubleTap {
		t.Error("expected EnableDoubleTap carried through as false")
	}
	if built.EnableFourFinger {
		t.Error("expected EnableFourFinger carried through as false")
	}
	if !built.EnableTripleTap {
		t.Error("expected EnableTripleTap still true")
	}
}
