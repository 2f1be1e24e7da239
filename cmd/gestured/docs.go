package main

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docsFS embed.FS

// docsCmd renders the built-in documentation
var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Render built-in documentation",
	Long: `Renders a documentation topic in the terminal. Without a topic,
lists what is available.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocs,
}

func docTopics() []string {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		topics = append(topics, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics
}

func runDocs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("topics:")
		for _, t := range docTopics() {
			fmt.Printf("  %s\n", t)
		}
		fmt.Println("\nusage: gestured docs [topic]")
		return nil
	}

	body, err := docsFS.ReadFile("docs/" + args[0] + ".md")
	if err != nil {
		return fmt.Errorf("unknown topic %q, run 'gestured docs' for the list", args[0])
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(string(body))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
