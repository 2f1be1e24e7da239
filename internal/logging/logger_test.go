package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetForTest clears package state so each test initializes cleanly.
func resetForTest(t *testing.T) {
	t.Helper()
	t.Setenv("GESTURED_DEBUG", "")
	CloseAll()
	CloseJournal()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	homeDir = ""
	config = loggingConfig{}
	configLoaded = false
	journalLogger = nil
}

func writeTestConfig(t *testing.T, home, content string) {
	t.Helper()
	if err := os.MkdirAll(home, 0755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestAllCategoriesLog(t *testing.T) {
	resetForTest(t)
	home := t.TempDir()
	writeTestConfig(t, home, `
logging:
  debug_mode: true
  level: debug
`)

	if err := Initialize(home); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("expected debug mode enabled")
	}

	categories := []Category{
		CategoryEngine,
		CategoryTouch,
		CategoryClassify,
		CategoryTemplate,
		CategorySequence,
		CategoryStore,
		CategoryWatch,
		CategoryReplay,
		CategoryUI,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		l := Get(cat)
		l.Info("info for %s", cat)
		l.Debug("debug for %s", cat)
		l.Warn("warn for %s", cat)
		l.Error("error for %s", cat)
	}
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(home, "logs"))
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	found := make(map[string]bool)
	for _, e := range entries {
		for _, cat := range categories {
			if strings.HasSuffix(e.Name(), "_"+string(cat)+".log") {
				found[string(cat)] = true
			}
		}
	}
	for _, cat := range categories {
		if !found[string(cat)] {
			t.Errorf("no log file written for category %s", cat)
		}
	}
}

func TestDisabledCategorySilent(t *testing.T) {
	resetForTest(t)
	home := t.TempDir()
	writeTestConfig(t, home, `
logging:
  debug_mode: true
  level: debug
  categories:
    classify: false
`)

	if err := Initialize(home); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if IsCategoryEnabled(CategoryClassify) {
		t.Fatal("classify should be disabled")
	}
	// Other categories default to enabled.
	if !IsCategoryEnabled(CategoryEngine) {
		t.Fatal("engine should default to enabled")
	}

	Classify("this should go nowhere")
	CloseAll()

	entries, _ := os.ReadDir(filepath.Join(home, "logs"))
	for _, e := range entries {
		if strings.Contains(e.Name(), "classify") {
			t.Fatalf("disabled category produced file %s", e.Name())
		}
	}
}

func TestNoConfigMeansNoLogging(t *testing.T) {
	resetForTest(t)
	home := t.TempDir()

	if err := Initialize(home); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if IsDebugMode() {
		t.Fatal("missing config should disable debug mode")
	}

	Engine("nothing should be written")
	if _, err := os.Stat(filepath.Join(home, "logs")); !os.IsNotExist(err) {
		t.Fatal("logs directory should not exist without debug mode")
	}
}

func TestDebugEnvOverride(t *testing.T) {
	resetForTest(t)
	home := t.TempDir()
	t.Setenv("GESTURED_DEBUG", "1")

	if err := Initialize(home); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("GESTURED_DEBUG=1 should force debug mode")
	}
}

func TestJournalRoundtrip(t *testing.T) {
	resetForTest(t)
	home := t.TempDir()
	writeTestConfig(t, home, `
logging:
  debug_mode: true
  level: debug
`)

	if err := Initialize(home); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := InitJournal(); err != nil {
		t.Fatalf("InitJournal: %v", err)
	}

	j := JournalWithSession("abc123")
	j.SessionStart("abc123")
	j.GestureRecognized("tap", 1, 1.0)
	j.SequenceCompleted("quick-taps", 3, 450)
	j.TemplateMatched("z-stroke", 0.83)

	ScopeJournal("abc123")
	Journal().PerfSample("classify", 12, 10)
	CloseJournal()

	entries, err := os.ReadDir(filepath.Join(home, "logs"))
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	var journalPath string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_journal.log") {
			journalPath = filepath.Join(home, "logs", e.Name())
		}
	}
	if journalPath == "" {
		t.Fatal("journal file not written")
	}

	f, err := os.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var events []JournalEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		var ev JournalEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad journal line %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) != 5 {
		t.Fatalf("got %d journal events, want 5", len(events))
	}
	if events[0].EventType != JournalSessionStart {
		t.Errorf("first event = %s, want session_start", events[0].EventType)
	}
	if events[1].Kind != "tap" || events[1].SessionID != "abc123" {
		t.Errorf("gesture event = %+v, want kind=tap session=abc123", events[1])
	}
	if events[3].Confidence != 0.83 {
		t.Errorf("template confidence = %v, want 0.83", events[3].Confidence)
	}
	if events[4].EventType != JournalPerfSlow || events[4].SessionID != "abc123" {
		t.Errorf("perf event = %+v, want perf_slow scoped to abc123", events[4])
	}
}
