// Package ui provides the visual styling and interactive surface for the
// gestured terminal visualizer. Light/dark palettes with auto-detection.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors, shared by both palettes.
var (
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#66bb6a")
	Warning     = lipgloss.Color("#ffb300")
	Info        = lipgloss.Color("#42a5f5")
)

// Gesture family colors used by the event feed and the canvas so a kind
// is recognizable at a glance across pages.
var (
	ColorTap      = lipgloss.Color("#4dd0e1") // taps, double/triple taps
	ColorMotion   = lipgloss.Color("#ffd54f") // pan, swipe, edge swipe
	ColorShape    = lipgloss.Color("#ba68c8") // pinch, rotate, circular
	ColorPress    = lipgloss.Color("#ff8a65") // long press, force touch
	ColorCompound = lipgloss.Color("#81c784") // sequences, templates, multi-finger
)

// KindColor maps a gesture kind name to its family color.
func KindColor(kind string) lipgloss.Color {
	switch {
	case strings.Contains(kind, "tap"):
		return ColorTap
	case strings.Contains(kind, "press") || strings.Contains(kind, "force"):
		return ColorPress
	case strings.Contains(kind, "pinch") || strings.Contains(kind, "rotate") || strings.Contains(kind, "circular"):
		return ColorShape
	case strings.Contains(kind, "pan") || strings.Contains(kind, "swipe"):
		return ColorMotion
	default:
		return ColorCompound
	}
}

// Theme is the resolved color scheme the styles are built from.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme is ink on paper with a cyan accent.
func LightTheme() Theme {
	return Theme{
		Background: lipgloss.Color("#f6f7f8"),
		Foreground: lipgloss.Color("#17202e"),
		Primary:    lipgloss.Color("#17202e"),
		Accent:     lipgloss.Color("#00acc1"),
		Muted:      lipgloss.Color("#9aa1ab"),
		Border:     lipgloss.Color("#d9dce1"),
		IsDark:     false,
	}
}

// DarkTheme flips to cyan on slate.
func DarkTheme() Theme {
	return Theme{
		Background: lipgloss.Color("#10151f"),
		Foreground: lipgloss.Color("#eceef1"),
		Primary:    lipgloss.Color("#26c6da"),
		Accent:     lipgloss.Color("#4dd0e1"),
		Muted:      lipgloss.Color("#5d6a7c"),
		Border:     lipgloss.Color("#2c3646"),
		IsDark:     true,
	}
}

// DetectTheme resolves the palette from the environment. GESTURED_DARK_MODE=1
// forces dark; otherwise COLORFGBG ("fg;bg", ANSI background indices 0-6 and
// 8 are dark in practice) decides, defaulting to light.
// TODO: background detection via muesli/termenv would beat the COLORFGBG heuristic.
func DetectTheme() Theme {
	if os.Getenv("GESTURED_DARK_MODE") == "1" {
		return DarkTheme()
	}
	if _, bg, ok := strings.Cut(os.Getenv("COLORFGBG"), ";"); ok {
		if idx, err := strconv.Atoi(bg); err == nil && ((idx >= 0 && idx <= 6) || idx == 8) {
			return DarkTheme()
		}
	}
	return LightTheme()
}

// ThemeByName resolves a configured theme name. "auto" (or anything
// unrecognized) falls back to detection.
func ThemeByName(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		return DetectTheme()
	}
}

// Styles holds the styled components for every page.
type Styles struct {
	Theme Theme

	// page chrome
	Header lipgloss.Style
	Footer lipgloss.Style
	Title  lipgloss.Style
	Muted  lipgloss.Style

	// status
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// touch surface
	Canvas       lipgloss.Style
	ContactDot   lipgloss.Style
	ContactTrail lipgloss.Style

	// event feed
	FeedTime lipgloss.Style
	FeedLine lipgloss.Style

	// stats page
	StatKey   lipgloss.Style
	StatValue lipgloss.Style

	Divider lipgloss.Style
	Badge   lipgloss.Style
}

// NewStyles builds the component styles for a theme.
func NewStyles(theme Theme) Styles {
	s := Styles{Theme: theme}

	s.Header = lipgloss.NewStyle().
		Background(theme.Accent).
		Foreground(theme.Background).
		Bold(true).
		Padding(0, 1)
	s.Footer = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Padding(0, 1)
	s.Title = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)
	s.Muted = lipgloss.NewStyle().
		Foreground(theme.Muted)

	s.Success = lipgloss.NewStyle().Foreground(Success)
	s.Warning = lipgloss.NewStyle().Foreground(Warning)
	s.Error = lipgloss.NewStyle().Foreground(Destructive).Bold(true)
	s.Info = lipgloss.NewStyle().Foreground(Info)

	// The canvas border is load-bearing: mouse coordinates are mapped
	// through its one-cell frame, so it stays padding-free.
	s.Canvas = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
	s.ContactDot = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)
	s.ContactTrail = lipgloss.NewStyle().
		Foreground(theme.Muted)

	s.FeedTime = lipgloss.NewStyle().Foreground(theme.Muted)
	s.FeedLine = lipgloss.NewStyle().Foreground(theme.Foreground)

	s.StatKey = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Width(24)
	s.StatValue = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Bold(true)

	s.Divider = lipgloss.NewStyle().Foreground(theme.Border)
	s.Badge = lipgloss.NewStyle().
		Background(theme.Primary).
		Foreground(theme.Background).
		Bold(true).
		Padding(0, 1)

	return s
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}

// KindBadge renders an event kind in its family color.
func (s Styles) KindBadge(kind string) string {
	return lipgloss.NewStyle().Foreground(KindColor(kind)).Bold(true).Render(kind)
}
