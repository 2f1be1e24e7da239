// Package logging provides config-driven categorized file-based logging.
// Logs are written to <home>/logs/ with separate files per category.
// Logging is controlled by logging.debug_mode in config.yaml; when false,
// nothing is written. GESTURED_DEBUG=1 forces debug mode on.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Category represents a log category/subsystem
type Category string

const (
	CategoryEngine   Category = "engine"   // Recognition pipeline orchestration
	CategoryTouch    Category = "touch"    // Contact tracking, id anomalies
	CategoryClassify Category = "classify" // Basic/advanced classifier decisions
	CategoryTemplate Category = "template" // Custom template matching
	CategorySequence Category = "sequence" // Sequence log and completions
	CategoryStore    Category = "store"    // Session store operations
	CategoryWatch    Category = "watch"    // Config/library file watching
	CategoryReplay   Category = "replay"   // Trace record and playback
	CategoryUI       Category = "ui"       // Terminal front end
)

// loggingConfig mirrors the logging section of config.Config to avoid
// a circular import with the config package.
type loggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

type configFile struct {
	Logging loggingConfig `yaml:"logging"`
}

// StructuredLogEntry is the JSON form of one log line.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"` // Unix milliseconds
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	Session   string                 `json:"session,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers      = make(map[Category]*Logger)
	loggersMu    sync.RWMutex
	logsDir      string
	homeDir      string
	config       loggingConfig
	configLoaded bool
	configMu     sync.RWMutex
	logLevel     int
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and loads config. Call once
// at startup with the gestured home directory (usually ~/.gestured).
func Initialize(home string) error {
	if home == "" {
		return fmt.Errorf("home path required")
	}

	homeDir = home
	logsDir = filepath.Join(homeDir, "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] config load failed: %v\n", err)
		config.DebugMode = false
	}

	if os.Getenv("GESTURED_DEBUG") == "1" {
		configMu.Lock()
		config.DebugMode = true
		logLevel = LevelDebug
		configMu.Unlock()
	}

	if !IsDebugMode() {
		return nil // Silent no-op when debugging is off
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryEngine)
	boot.Info("=== gestured logging initialized ===")
	boot.Info("Home: %s", homeDir)
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", config.Level)
	return nil
}

// loadConfig reads the logging section from <home>/config.yaml
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	data, err := os.ReadFile(filepath.Join(homeDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			// No config file means production mode. Stay silent.
			config.DebugMode = false
			configLoaded = true
			return nil
		}
		return err
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	config = cf.Logging
	configLoaded = true
	logLevel = parseLevel(config.Level)
	return nil
}

func parseLevel(s string) int {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ReloadConfig reloads the config from disk. Call when the config file
// changes at runtime.
func ReloadConfig() error {
	return loadConfig()
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Categories not mentioned in the config default to enabled.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category. Returns a
// no-op logger when debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	l, ok := loggers[category]
	loggersMu.RUnlock()
	if ok {
		return l
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	// One file per category per day keeps rotation trivial.
	name := time.Now().Format("2006-01-02") + "_" + string(category) + ".log"
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] open %s: %v\n", name, err)
		return &Logger{category: category}
	}

	l = &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// emit is the shared core of the leveled methods.
func (l *Logger) emit(level int, name, format string, args ...interface{}) {
	if l.logger == nil || logLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON(name, msg)
		return
	}
	l.logger.Printf("[%s] %s", strings.ToUpper(name), msg)
}

func (l *Logger) logJSON(level, msg string) {
	data, err := json.Marshal(StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
	})
	if err != nil {
		l.logger.Printf("[%s] %s", strings.ToUpper(level), msg)
		return
	}
	l.logger.Printf("%s", data)
}

// Debug logs at debug level
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LevelDebug, "debug", format, args...)
}

// Info logs at info level
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, "info", format, args...)
}

// Warn logs at warn level
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LevelWarn, "warn", format, args...)
}

// Error always logs when the category is open
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LevelError, "error", format, args...)
}

// CloseAll closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for cat, l := range loggers {
		if l.file != nil {
			if err := l.file.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "[logging] close %s: %v\n", cat, err)
			}
		}
		delete(loggers, cat)
	}
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Engine logs to the engine category
func Engine(format string, args ...interface{}) {
	Get(CategoryEngine).Info(format, args...)
}

// EngineDebug logs debug to the engine category
func EngineDebug(format string, args ...interface{}) {
	Get(CategoryEngine).Debug(format, args...)
}

// EngineWarn logs warning to the engine category
func EngineWarn(format string, args ...interface{}) {
	Get(CategoryEngine).Warn(format, args...)
}

// EngineError logs error to the engine category
func EngineError(format string, args ...interface{}) {
	Get(CategoryEngine).Error(format, args...)
}

// Touch logs to the touch category
func Touch(format string, args ...interface{}) {
	Get(CategoryTouch).Info(format, args...)
}

// TouchDebug logs debug to the touch category
func TouchDebug(format string, args ...interface{}) {
	Get(CategoryTouch).Debug(format, args...)
}

// TouchWarn logs warning to the touch category
func TouchWarn(format string, args ...interface{}) {
	Get(CategoryTouch).Warn(format, args...)
}

// Classify logs to the classify category
func Classify(format string, args ...interface{}) {
	Get(CategoryClassify).Info(format, args...)
}

// ClassifyDebug logs debug to the classify category
func ClassifyDebug(format string, args ...interface{}) {
	Get(CategoryClassify).Debug(format, args...)
}

// Template logs to the template category
func Template(format string, args ...interface{}) {
	Get(CategoryTemplate).Info(format, args...)
}

// TemplateDebug logs debug to the template category
func TemplateDebug(format string, args ...interface{}) {
	Get(CategoryTemplate).Debug(format, args...)
}

// TemplateWarn logs warning to the template category
func TemplateWarn(format string, args ...interface{}) {
	Get(CategoryTemplate).Warn(format, args...)
}

// Sequence logs to the sequence category
func Sequence(format string, args ...interface{}) {
	Get(CategorySequence).Info(format, args...)
}

// SequenceDebug logs debug to the sequence category
func SequenceDebug(format string, args ...interface{}) {
	Get(CategorySequence).Debug(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// StoreWarn logs warning to the store category
func StoreWarn(format string, args ...interface{}) {
	Get(CategoryStore).Warn(format, args...)
}

// StoreError logs error to the store category
func StoreError(format string, args ...interface{}) {
	Get(CategoryStore).Error(format, args...)
}

// Watch logs to the watch category
func Watch(format string, args ...interface{}) {
	Get(CategoryWatch).Info(format, args...)
}

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...interface{}) {
	Get(CategoryWatch).Debug(format, args...)
}

// WatchWarn logs warning to the watch category
func WatchWarn(format string, args ...interface{}) {
	Get(CategoryWatch).Warn(format, args...)
}

// Replay logs to the replay category
func Replay(format string, args ...interface{}) {
	Get(CategoryReplay).Info(format, args...)
}

// ReplayDebug logs debug to the replay category
func ReplayDebug(format string, args ...interface{}) {
	Get(CategoryReplay).Debug(format, args...)
}

// ReplayError logs error to the replay category
func ReplayError(format string, args ...interface{}) {
	Get(CategoryReplay).Error(format, args...)
}

// UI logs to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Info(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}

// UIWarn logs warning to the ui category
func UIWarn(format string, args ...interface{}) {
	Get(CategoryUI).Warn(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer measures one operation for a category's log.
type Timer struct {
	category  Category
	op        string
	start     time.Time
	threshold time.Duration
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// WarnOver arms a threshold. Stop logs a warning instead of a debug
// line when the elapsed time exceeds it.
func (t *Timer) WarnOver(threshold time.Duration) *Timer {
	t.threshold = threshold
	return t
}

// Stop logs the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.threshold > 0 && elapsed > t.threshold {
		Get(t.category).Warn("%s took %v (over %v)", t.op, elapsed, t.threshold)
		return elapsed
	}
	Get(t.category).Debug("%s took %v", t.op, elapsed)
	return elapsed
}
