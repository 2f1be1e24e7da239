package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	statsSession string
	statsJSON    bool
)

// statsCmd summarizes recognition counts across the store
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recognized gestures across sessions",
	Long: `Prints gesture counts by kind, aggregated over every recorded
session or a single one.

Examples:
  gestured stats
  gestured stats --session 8f3a2b1c-... --json`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsSession, "session", "", "Restrict to one session id")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print stats as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if statsSession != "" {
		// Fail loudly on a typo rather than printing empty counts.
		if _, err := st.Session(statsSession); err != nil {
			return err
		}
	}

	counts, err := st.KindCounts(statsSession)
	if err != nil {
		return err
	}
	sessions, err := st.Sessions()
	if err != nil {
		return err
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Sessions int              `json:"sessions"`
			Gestures int64            `json:"gestures"`
			ByKind   map[string]int64 `json:"by_kind"`
		}{len(sessions), total, counts})
	}

	if statsSession == "" {
		fmt.Printf("%d sessions, %d gestures\n", len(sessions), total)
	} else {
		fmt.Printf("session %s: %d gestures\n", statsSession, total)
	}
	if total == 0 {
		return nil
	}
	fmt.Println()
	for _, kc := range sortedCounts(counts) {
		fmt.Printf("%-20s %d\n", kc.kind, kc.n)
	}
	return nil
}
