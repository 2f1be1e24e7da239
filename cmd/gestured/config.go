package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gestured/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

// configCmd manages the configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the gestured configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and sample libraries",
	Long: `Creates the config directory with a default config.yaml plus sample
templates.yaml and sequences.yaml library files. Existing files are
left alone unless --force is given.`,
	RunE: initConfig,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  showConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(configFile())
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file for errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := loadConfig(); err != nil {
			return err
		}
		fmt.Printf("%s is valid\n", configFile())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite existing files")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
}

// Sample library files written by config init. Kept as literals so the
// samples carry comments a generated marshal would lose.
const sampleTemplates = `# Custom gesture templates.
#
# A template names one pattern per touch. Pattern types:
#   static   - the contact stays put (position_tolerance px of drift allowed)
#   linear   - the contact travels in a direction: up, down, left, right
#   circular - the contact orbits: clockwise or counterclockwise
#
# Strokes match a single contact's path against a normalized point
# sequence, location and scale independent.
templates:
  - name: two-finger-hold
    patterns:
      - type: static
      - type: static

  - name: spread-up
    patterns:
      - type: linear
        direction: up
      - type: linear
        direction: up

strokes:
  - name: check
    points:
      - {x: 0.0, y: 0.6}
      - {x: 0.35, y: 1.0}
      - {x: 1.0, y: 0.0}
`

const sampleSequences = `# Gesture sequences.
#
# A sequence completes when its steps are recognized in order. A step's
# kind is a gesture name ("tap", "swipe", "long-press", ...) or the
# name of a custom template. max_interval bounds the gap from the
# previous step; max_duration bounds the whole chain and falls back to
# the configured sequence timeout when omitted.
sequences:
  - name: tap-tap-hold
    max_duration: 3s
    steps:
      - kind: tap
      - kind: tap
        max_interval: 800ms
      - kind: long-press
        max_interval: 1s
`

func initConfig(cmd *cobra.Command, args []string) error {
	path := configFile()
	home := filepath.Dir(path)

	cfg := config.DefaultConfig()
	wrote := make([]string, 0, 3)

	if configInitForce || !fileExists(path) {
		if err := cfg.Save(path); err != nil {
			return err
		}
		wrote = append(wrote, path)
	}

	samples := []struct {
		path string
		body string
	}{
		{filepath.Join(home, "templates.yaml"), sampleTemplates},
		{filepath.Join(home, "sequences.yaml"), sampleSequences},
	}
	for _, s := range samples {
		if !configInitForce && fileExists(s.path) {
			continue
		}
		if err := os.WriteFile(s.path, []byte(s.body), 0644); err != nil {
			return err
		}
		wrote = append(wrote, s.path)
	}

	if len(wrote) == 0 {
		fmt.Printf("nothing to do, %s already initialized\n", home)
		return nil
	}
	for _, p := range wrote {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n", path)
	fmt.Print(string(data))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
