package main

import (
	"fmt"
	"path/filepath"

	"gestured/internal/config"
	"gestured/internal/gesture"
	"gestured/internal/logging"
	"gestured/internal/sequence"
	"gestured/internal/template"
)

// app bundles the pieces every recognizing command starts from: the
// effective config and an engine with both libraries loaded.
type app struct {
	cfg     *config.Config
	cfgPath string
	engine  *gesture.Engine
}

// configFile resolves the --config override or the default location.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// loadConfig reads and validates the effective configuration.
func loadConfig() (*config.Config, string, error) {
	path := configFile()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, path, nil
}

// newApp boots file logging, the journal, and a fully loaded engine.
func newApp() (*app, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// File logging is best effort; recognition works without it.
	if err := logging.Initialize(filepath.Dir(path)); err == nil {
		_ = logging.InitJournal()
	}

	engine, err := gesture.NewEngine(cfg.GestureConfig())
	if err != nil {
		return nil, err
	}

	lib, err := template.Load(cfg.Template.LibraryPath)
	if err != nil {
		return nil, err
	}
	if err := engine.Matcher().SetLibrary(lib); err != nil {
		return nil, err
	}

	defs, err := sequence.Load(cfg.Sequence.LibraryPath)
	if err != nil {
		return nil, err
	}
	defs = sequence.WithDefaultMaxDuration(defs, cfg.GetSequenceTimeout())
	if err := engine.Sequences().SetDefinitions(defs); err != nil {
		return nil, err
	}

	return &app{cfg: cfg, cfgPath: path, engine: engine}, nil
}

func (a *app) close() {
	logging.CloseJournal()
	logging.CloseAll()
}
