package main

import (
	"context"
	"fmt"
	"time"

	"gestured/cmd/gestured/ui"
	"gestured/internal/config"
	"gestured/internal/gesture"
	"gestured/internal/logging"
	"gestured/internal/replay"
	"gestured/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	runRecordPath string
	runPersist    bool
	runNoWatch    bool
)

// runCmd opens the interactive touch surface
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive touch surface",
	Long: `Opens a fullscreen surface where the terminal mouse acts as a touch
contact: press starts it, dragging moves it, release ends it. Recognized
gestures stream into the feed pane; tab shows live engine stats.

Config, template, and sequence files are watched while the surface is
open, so edits apply without restarting.

Examples:
  gestured run
  gestured run --record trace.jsonl
  gestured run --session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSurface(runOptions{
			recordPath: runRecordPath,
			persist:    runPersist,
			watch:      !runNoWatch,
		})
	},
}

func init() {
	runCmd.Flags().StringVar(&runRecordPath, "record", "", "Record raw contacts and gestures to a trace file")
	runCmd.Flags().BoolVar(&runPersist, "session", false, "Persist recognized gestures as a session in the store")
	runCmd.Flags().BoolVar(&runNoWatch, "no-watch", false, "Disable hot reload of config and libraries")
}

type runOptions struct {
	recordPath string
	persist    bool
	watch      bool
}

// runSurface boots the engine and runs the visualizer program.
func runSurface(opts runOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	feed := ui.NewEventLog(512)

	var recorder *replay.Recorder
	if opts.recordPath != "" {
		recorder, err = replay.NewRecorder(opts.recordPath)
		if err != nil {
			return fmt.Errorf("opening trace for recording: %w", err)
		}
		defer recorder.Close()
	}

	var st *store.Store
	var sessionID string
	if opts.persist {
		st, err = store.NewStore(a.cfg.Store.DatabasePath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		started := time.Now()
		sessionID, err = st.BeginSession(started)
		if err != nil {
			return fmt.Errorf("starting session: %w", err)
		}
		logging.ScopeJournal(sessionID)
		logging.Journal().SessionStart(sessionID)
		defer func() {
			if err := st.EndSession(sessionID, time.Now()); err != nil {
				logging.StoreError("ending session %s: %v", sessionID, err)
				return
			}
			count := a.engine.Metrics().TotalEvents
			logging.Journal().SessionEnd(sessionID, int(count), time.Since(started).Milliseconds())
		}()
	}

	a.engine.SetHandler(func(ev gesture.Event) {
		feed.Add(ev)
		if recorder != nil {
			recorder.Gesture(ev)
		}
		if st != nil {
			if err := st.RecordEvent(sessionID, ev); err != nil {
				logging.StoreError("recording %s: %v", ev.Kind, err)
			}
		}
	})

	var watcher *config.Watcher
	if opts.watch {
		watcher, err = config.NewWatcher(a.cfgPath, a.cfg)
		if err != nil {
			logging.WatchWarn("hot reload unavailable: %v", err)
			watcher = nil
		} else if err := watcher.Start(context.Background()); err != nil {
			logging.WatchWarn("hot reload unavailable: %v", err)
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	m := ui.New(ui.Options{
		Config:   a.cfg,
		Engine:   a.engine,
		Log:      feed,
		Watcher:  watcher,
		Recorder: recorder,
		Session:  sessionID,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
