package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gestured/internal/gesture"

	"github.com/charmbracelet/lipgloss"
)

// ===== VIEW =====

// View renders the current page.
func (m Model) View() string {
	if !m.ready {
		return "initializing touch surface..."
	}
	switch m.page {
	case pageStats:
		return m.viewStats()
	default:
		return m.viewCanvas()
	}
}

func (m Model) viewCanvas() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("surface"))
	b.WriteString("\n")
	b.WriteString(m.renderCanvas())
	b.WriteString("\n")
	b.WriteString(m.styles.RenderDivider(m.width))
	b.WriteString("\n")
	b.WriteString(m.feed.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) viewStats() string {
	var b strings.Builder
	b.WriteString(m.renderHeader("stats"))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader(pageName string) string {
	title := fmt.Sprintf("gestured · %s", pageName)
	return m.styles.Header.Width(m.width).Render(title)
}

func (m Model) renderFooter() string {
	parts := []string{"q quit", "tab page", "c clear"}
	if n := m.engine.Metrics().TotalEvents; n > 0 {
		parts = append(parts, fmt.Sprintf("%d gestures", n))
	}
	if m.recorder != nil {
		parts = append(parts, m.styles.Badge.Render("REC"))
	}
	if m.session != "" {
		parts = append(parts, "session "+shortID(m.session))
	}
	if m.lastErr != nil {
		parts = append(parts, m.styles.Error.Render("reload: "+m.lastErr.Error()))
	} else if m.reloadNote != "" {
		parts = append(parts, m.styles.Info.Render(m.reloadNote))
	}
	return m.styles.Footer.Width(m.width).Render(strings.Join(parts, " · "))
}

// shortID truncates a session uuid for the footer.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ===== CANVAS =====

type cellKey struct {
	col int
	row int
}

// renderCanvas draws active contacts and their trails onto a character
// grid sized to the canvas.
func (m Model) renderCanvas() string {
	contacts := m.engine.ActiveContacts()
	if len(contacts) == 0 {
		hint := m.styles.Muted.Render("press and drag to gesture")
		body := lipgloss.Place(m.canvasCols, m.canvasRows, lipgloss.Center, lipgloss.Center, hint)
		return m.styles.Canvas.Render(body)
	}

	dots := make(map[cellKey]struct{})
	trail := make(map[cellKey]struct{})
	for _, c := range contacts {
		for _, smp := range c.Path {
			trail[m.cellOf(smp.Position.X, smp.Position.Y)] = struct{}{}
		}
		k := m.cellOf(c.Position.X, c.Position.Y)
		delete(trail, k)
		dots[k] = struct{}{}
	}

	dot := m.styles.ContactDot.Render("●")
	tr := m.styles.ContactTrail.Render("·")

	rows := make([]string, m.canvasRows)
	for row := 0; row < m.canvasRows; row++ {
		var line strings.Builder
		for col := 0; col < m.canvasCols; col++ {
			k := cellKey{col, row}
			if _, ok := dots[k]; ok {
				line.WriteString(dot)
				continue
			}
			if _, ok := trail[k]; ok {
				line.WriteString(tr)
				continue
			}
			line.WriteByte(' ')
		}
		rows[row] = line.String()
	}
	return m.styles.Canvas.Render(strings.Join(rows, "\n"))
}

// cellOf maps surface coordinates back to a canvas cell.
func (m Model) cellOf(x, y float64) cellKey {
	col := int(x / cellWidth)
	row := int(y / cellHeight)
	if col < 0 {
		col = 0
	}
	if col >= m.canvasCols {
		col = m.canvasCols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= m.canvasRows {
		row = m.canvasRows - 1
	}
	return cellKey{col, row}
}

// ===== FEED =====

// refreshFeed rebuilds the feed pane when new events arrived.
func (m *Model) refreshFeed(force bool) {
	if !m.ready {
		return
	}
	v := m.log.Version()
	if !force && v == m.feedSeen {
		return
	}
	m.feedSeen = v

	events := m.log.Events()
	if len(events) == 0 {
		m.feed.SetContent(m.styles.Muted.Render("no gestures yet"))
		return
	}
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = m.feedLineFor(ev)
	}
	m.feed.SetContent(strings.Join(lines, "\n"))
	m.feed.GotoBottom()
}

func (m Model) feedLineFor(ev gesture.Event) string {
	ts := m.styles.FeedTime.Render(ev.Timestamp.Format("15:04:05.000"))
	kind := m.styles.KindBadge(ev.Kind.String())
	detail := m.styles.FeedLine.Render(eventDetail(ev))
	return ts + " " + kind + " " + detail
}

// eventDetail renders the per-kind fields a reader cares about.
func eventDetail(ev gesture.Event) string {
	parts := []string{fmt.Sprintf("x%d", ev.TouchCount)}
	switch ev.Kind {
	case gesture.KindSwipe, gesture.KindMultiFingerSwipe:
		parts = append(parts, ev.Direction.String())
		if s := speed(ev); s != "" {
			parts = append(parts, s)
		}
	case gesture.KindEdgeSwipe:
		parts = append(parts, ev.Edge.String(), ev.Direction.String())
	case gesture.KindPan:
		parts = append(parts, fmt.Sprintf("Δ(%.0f,%.0f)", ev.Delta.X, ev.Delta.Y))
	case gesture.KindPinch:
		parts = append(parts, fmt.Sprintf("scale %.2f", ev.Scale))
	case gesture.KindRotate:
		parts = append(parts, fmt.Sprintf("%.0f°", ev.Rotation*180/math.Pi))
	case gesture.KindForceTouch:
		parts = append(parts, ev.Force.String())
	case gesture.KindCircular:
		if ev.Clockwise {
			parts = append(parts, "cw")
		} else {
			parts = append(parts, "ccw")
		}
	case gesture.KindCustom, gesture.KindSequence:
		parts = append(parts, ev.Name)
	}
	parts = append(parts, fmt.Sprintf("conf %.2f", ev.Confidence))
	return strings.Join(parts, " ")
}

func speed(ev gesture.Event) string {
	mag := math.Hypot(ev.Velocity.X, ev.Velocity.Y)
	if mag <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0fpt/s", mag)
}

// ===== STATS =====

func (m Model) renderStats() string {
	metrics := m.engine.Metrics()

	row := func(k, v string) string {
		return m.styles.StatKey.Render(k) + m.styles.StatValue.Render(v)
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("recognition"))
	b.WriteString("\n")
	b.WriteString(row("uptime", time.Since(m.started).Truncate(time.Second).String()))
	b.WriteString("\n")
	b.WriteString(row("gestures", fmt.Sprintf("%d", metrics.TotalEvents)))
	b.WriteString("\n")
	b.WriteString(row("contact events", fmt.Sprintf("%d", metrics.ContactEvents)))
	b.WriteString("\n")
	b.WriteString(row("debounced", fmt.Sprintf("%d", metrics.DebouncedEvents)))
	b.WriteString("\n")
	b.WriteString(row("unknown contacts", fmt.Sprintf("%d", metrics.UnknownContacts)))
	b.WriteString("\n")
	b.WriteString(row("sequences completed", fmt.Sprintf("%d", metrics.SequencesCompleted)))
	b.WriteString("\n")
	b.WriteString(row("templates matched", fmt.Sprintf("%d", metrics.TemplatesMatched)))
	b.WriteString("\n")
	b.WriteString(row("classification passes", fmt.Sprintf("%d", metrics.Passes)))
	b.WriteString("\n")
	b.WriteString(row("avg pass", metrics.AvgPassDuration().String()))
	b.WriteString("\n")
	b.WriteString(row("max pass", metrics.MaxPassDuration.String()))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Title.Render("by kind"))
	b.WriteString("\n")
	if len(metrics.EventsByKind) == 0 {
		b.WriteString(m.styles.Muted.Render("nothing recognized yet"))
		b.WriteString("\n")
	} else {
		kinds := make([]gesture.Kind, 0, len(metrics.EventsByKind))
		for k := range metrics.EventsByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool {
			return metrics.EventsByKind[kinds[i]] > metrics.EventsByKind[kinds[j]]
		})
		for _, k := range kinds {
			b.WriteString(row(k.String(), fmt.Sprintf("%d", metrics.EventsByKind[k])))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("libraries"))
	b.WriteString("\n")
	b.WriteString(row("templates", fmt.Sprintf("%d", len(m.engine.Matcher().Templates()))))
	b.WriteString("\n")
	b.WriteString(row("strokes", fmt.Sprintf("%d", len(m.engine.Matcher().Strokes()))))
	b.WriteString("\n")
	b.WriteString(row("sequences", fmt.Sprintf("%d", len(m.engine.Sequences().Definitions()))))
	return b.String()
}
