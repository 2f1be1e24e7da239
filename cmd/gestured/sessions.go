package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"gestured/internal/gesture"
	"gestured/internal/store"

	"github.com/spf13/cobra"
)

var sessionsShowJSON bool

// sessionsCmd inspects recorded gesture sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect recorded gesture sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions, newest first",
	RunE:  listSessions,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session and its recognized gestures",
	Args:  cobra.ExactArgs(1),
	RunE:  showSession,
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a session and its gestures",
	Args:  cobra.ExactArgs(1),
	RunE:  removeSession,
}

func init() {
	sessionsShowCmd.Flags().BoolVar(&sessionsShowJSON, "json", false, "Print the session as JSON")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
}

// openStore opens the configured session store.
func openStore() (*store.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.Store.DatabasePath)
}

func listSessions(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.Sessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions recorded")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-9s  %s\n", "ID", "STARTED", "DURATION", "EVENTS")
	for _, s := range sessions {
		dur := "open"
		if s.Ended() {
			dur = s.EndedAt.Sub(s.StartedAt).Truncate(time.Second).String()
		}
		fmt.Printf("%-36s  %-19s  %-9s  %d\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), dur, s.EventCount)
	}
	return nil
}

func showSession(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := st.Session(args[0])
	if err != nil {
		return err
	}
	events, err := st.Events(s.ID)
	if err != nil {
		return err
	}

	if sessionsShowJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Session store.Session   `json:"session"`
			Events  []gesture.Event `json:"events"`
		}{s, events})
	}

	fmt.Printf("session %s\n", s.ID)
	fmt.Printf("started %s\n", s.StartedAt.Format(time.RFC3339))
	if s.Ended() {
		fmt.Printf("ended   %s (%v)\n", s.EndedAt.Format(time.RFC3339),
			s.EndedAt.Sub(s.StartedAt).Truncate(time.Second))
	} else {
		fmt.Println("ended   still open")
	}
	fmt.Printf("events  %d\n", s.EventCount)

	if len(events) > 0 {
		fmt.Println()
		for _, ev := range events {
			fmt.Printf("%s  %s\n", ev.Timestamp.Format("15:04:05.000"), ev.String())
		}
	}

	counts, err := st.KindCounts(s.ID)
	if err != nil || len(counts) == 0 {
		return err
	}
	fmt.Println()
	for _, kc := range sortedCounts(counts) {
		fmt.Printf("%-20s %d\n", kc.kind, kc.n)
	}
	return nil
}

func removeSession(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := st.Session(args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteSession(s.ID); err != nil {
		return err
	}
	fmt.Printf("deleted session %s (%d events)\n", s.ID, s.EventCount)
	return nil
}

type kindCount struct {
	kind string
	n    int64
}

// sortedCounts orders kind counts by frequency, then name.
func sortedCounts(counts map[string]int64) []kindCount {
	out := make([]kindCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, kindCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].kind < out[j].kind
	})
	return out
}
