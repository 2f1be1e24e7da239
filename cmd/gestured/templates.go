package main

import (
	"fmt"
	"strings"

	"gestured/internal/template"

	"github.com/spf13/cobra"
)

// templatesCmd inspects the custom gesture template library
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the custom gesture template library",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates and strokes in the library",
	RunE:  listTemplates,
}

var templatesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the template library file",
	RunE:  checkTemplates,
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesCheckCmd)
}

func loadLibrary() (template.Library, string, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return template.Library{}, "", err
	}
	lib, err := template.Load(cfg.Template.LibraryPath)
	return lib, cfg.Template.LibraryPath, err
}

func listTemplates(cmd *cobra.Command, args []string) error {
	lib, path, err := loadLibrary()
	if err != nil {
		return err
	}
	if len(lib.Templates) == 0 && len(lib.Strokes) == 0 {
		fmt.Printf("no templates in %s\n", path)
		return nil
	}

	for _, t := range lib.Templates {
		parts := make([]string, len(t.Patterns))
		for i, p := range t.Patterns {
			if p.Direction != "" {
				parts[i] = fmt.Sprintf("%s %s", p.Type, p.Direction)
			} else {
				parts[i] = string(p.Type)
			}
		}
		fmt.Printf("%-20s %d touches: %s\n", t.Name, t.TouchCount(), strings.Join(parts, ", "))
	}
	for _, s := range lib.Strokes {
		fmt.Printf("%-20s stroke, %d points\n", s.Name, len(s.Points))
	}
	return nil
}

func checkTemplates(cmd *cobra.Command, args []string) error {
	lib, path, err := loadLibrary()
	if err != nil {
		return err
	}
	fmt.Printf("%s is valid: %d templates, %d strokes\n", path, len(lib.Templates), len(lib.Strokes))
	return nil
}
