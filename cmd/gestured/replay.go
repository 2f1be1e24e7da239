package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestured/internal/gesture"
	"gestured/internal/logging"
	"gestured/internal/replay"
	"gestured/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	replaySpeed   float64
	replayJSON    bool
	replayPersist bool
)

// replayCmd feeds a recorded trace back through the engine
var replayCmd = &cobra.Command{
	Use:   "replay [trace]",
	Short: "Replay a recorded trace through the engine",
	Long: `Reads a trace recorded with 'gestured run --record' and feeds its
contacts back through the recognition engine. The engine runs on the
recorded timeline, so the same trace always produces the same gestures
regardless of playback speed.

Speed scales the pauses between contacts: 1 replays in real time, 2 at
double speed, 0 with no pacing at all.

Examples:
  gestured replay trace.jsonl
  gestured replay trace.jsonl --speed 0 --json
  gestured replay trace.jsonl --session`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1, "Playback speed multiplier (0 = no pacing)")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print recognized gestures as JSON lines")
	replayCmd.Flags().BoolVar(&replayPersist, "session", false, "Persist recognized gestures as a session in the store")
}

func runReplay(cmd *cobra.Command, args []string) error {
	tracePath := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info("replaying trace",
		zap.String("path", tracePath),
		zap.Float64("speed", replaySpeed))

	var st *store.Store
	var sessionID string
	if replayPersist {
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

	enc := json.NewEncoder(os.Stdout)
	a.engine.SetHandler(func(ev gesture.Event) {
		if replayJSON {
			if err := enc.Encode(ev); err != nil {
				logger.Warn("encoding gesture", zap.Error(err))
			}
		} else {
			fmt.Println(ev.String())
		}
		if st != nil {
			if err := st.RecordEvent(sessionID, ev); err != nil {
				logging.StoreError("recording %s: %v", ev.Kind, err)
			}
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ecfg := a.engine.Config()
	player := replay.NewPlayer(a.engine, replaySpeed).
		SettleAfter(ecfg.DoubleTapInterval + ecfg.LongPressDelay)
	stats, err := player.Play(ctx, tracePath)
	if err != nil {
		return err
	}

	metrics := a.engine.Metrics()
	if !replayJSON {
		fmt.Println()
		fmt.Printf("trace:     %s over %v\n", tracePath, stats.TraceDuration)
		fmt.Printf("contacts:  %d fed, %d annotations in trace\n", stats.ContactsFed, stats.AnnotationsSeen)
		fmt.Printf("gestures:  %d recognized in %v\n", metrics.TotalEvents, stats.WallDuration.Truncate(time.Millisecond))
		if sessionID != "" {
			fmt.Printf("session:   %s\n", sessionID)
		}
	}

	logger.Info("replay finished",
		zap.Int("contacts", stats.ContactsFed),
		zap.Int64("gestures", metrics.TotalEvents),
		zap.Duration("trace", stats.TraceDuration),
		zap.Duration("wall", stats.WallDuration))
	return nil
}
