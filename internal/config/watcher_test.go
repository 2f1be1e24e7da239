package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gestured/internal/template"
)

// startWatcher spins up a watcher over a fresh home dir with a short
// debounce so tests settle quickly.
func startWatcher(t *testing.T) (*Watcher, *Config, string) {
	t.Helper()
	clearEnvOverrides(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Save(configPath))

	w, err := NewWatcher(configPath, cfg)
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond

	require.NoError(t, w.Start(context.Background()))

	return w, cfg, tmpDir
}

// awaitReload drains the reload channel until pred accepts one.
func awaitReload(t *testing.T, w *Watcher, pred func(Reload) bool) Reload {
	t.Helper()
	var got Reload
	found := false
	require.Eventually(t, func() bool {
		select {
		case r := <-w.Reloads():
			if pred(r) {
				got = r
				found = true
			}
		default:
		}
		return found
	}, 3*time.Second, 20*time.Millisecond, "no matching reload delivered")
	return got
}

func TestWatcher_ReloadsConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, cfg, _ := startWatcher(t)
	defer w.Stop()

	changed := *cfg
	changed.Engine.PanThreshold = 42
	require.NoError(t, changed.Save(w.configPath))

	r := awaitReload(t, w, func(r Reload) bool {
		return r.Config != nil && r.Config.Engine.PanThreshold == 42
	})
	require.NoError(t, r.Err)
	require.Equal(t, 42.0, w.Config().Engine.PanThreshold)
}

func TestWatcher_InvalidConfigDeliversError(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, _, _ := startWatcher(t)
	defer w.Stop()

	require.NoError(t, os.WriteFile(w.configPath, []byte("engine: [broken"), 0644))

	r := awaitReload(t, w, func(r Reload) bool { return r.Err != nil })
	require.Nil(t, r.Config)
	// The previous config stays in effect.
	require.Equal(t, 10.0, w.Config().Engine.PanThreshold)
}

func TestWatcher_ReloadsTemplates(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, cfg, _ := startWatcher(t)
	defer w.Stop()

	lib := template.Library{Templates: []template.Template{{
		Name:     "two-finger-hold",
		Patterns: []template.Pattern{{Type: template.PatternStatic}, {Type: template.PatternStatic}},
	}}}
	require.NoError(t, template.Save(cfg.Template.LibraryPath, lib))

	r := awaitReload(t, w, func(r Reload) bool { return r.Templates != nil })
	require.NoError(t, r.Err)
	require.Len(t, r.Templates.Templates, 1)
	require.Equal(t, "two-finger-hold", r.Templates.Templates[0].Name)
}

func TestWatcher_SequencesGetDefaultTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, cfg, _ := startWatcher(t)
	defer w.Stop()

	library := `sequences:
  - name: combo
    steps:
      - kind: tap
      - kind: swipe
        max_interval: 400ms
`
	require.NoError(t, os.WriteFile(cfg.Sequence.LibraryPath, []byte(library), 0644))

	r := awaitReload(t, w, func(r Reload) bool { return r.Sequences != nil })
	require.NoError(t, r.Err)
	require.Len(t, r.Sequences, 1)
	require.Equal(t, cfg.GetSequenceTimeout(), r.Sequences[0].MaxDuration)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, _, _ := startWatcher(t)
	require.True(t, w.IsWatching())

	w.Stop()
	w.Stop()
	require.False(t, w.IsWatching())
}
