package ui

import (
	"fmt"
	"time"

	"gestured/internal/config"
	"gestured/internal/geometry"
	"gestured/internal/gesture"
	"gestured/internal/logging"
	"gestured/internal/replay"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ===== SURFACE GEOMETRY =====

// Surface points per terminal cell. Terminal cells are roughly twice as
// tall as wide, so a row spans twice the points of a column; this keeps
// on-screen distances isotropic and puts the default thresholds within
// reach of an 80x24 canvas.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

// ===== MODEL =====

type page int

const (
	pageCanvas page = iota
	pageStats
)

type (
	tickMsg   time.Time
	sizeMsg   tea.WindowSizeMsg
	reloadMsg config.Reload
)

// Options wires the visualizer to the rest of the daemon. Engine and
// Config are required; everything else is optional.
type Options struct {
	Config   *config.Config
	Engine   *gesture.Engine
	Log      *EventLog
	Watcher  *config.Watcher  // hot reload source
	Recorder *replay.Recorder // raw contact tee
	Session  string           // persisted session id, shown in the footer
}

// Model is the bubbletea model for the interactive touch surface. The
// terminal mouse acts as a single contact: press starts it, dragging
// moves it, release ends it. Recognized gestures stream into the feed.
type Model struct {
	styles Styles
	cfg    *config.Config

	engine   *gesture.Engine
	log      *EventLog
	watcher  *config.Watcher
	recorder *replay.Recorder
	session  string

	feed  viewport.Model
	ready bool

	width      int
	height     int
	canvasCols int
	canvasRows int

	page     page
	sizeDeb  *SizeDebouncer
	tickRate time.Duration

	pressed    bool
	contactID  int
	feedSeen   uint64
	lastErr    error
	reloadNote string
	started    time.Time
}

// New builds the visualizer model.
func New(opts Options) Model {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = NewEventLog(256)
	}
	return Model{
		styles:   NewStyles(ThemeByName(cfg.UI.Theme)),
		cfg:      cfg,
		engine:   opts.Engine,
		log:      log,
		watcher:  opts.Watcher,
		recorder: opts.Recorder,
		session:  opts.Session,
		sizeDeb:  NewSizeDebouncer(DefaultResizeDuration),
		tickRate: cfg.GetTickRate(),
		started:  time.Now(),
	}
}

// ===== LIFECYCLE =====

// Init starts the tick loop and the background listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		m.tick(),
		m.waitForResize(),
		m.waitForReload(),
	)
}

// tick drives engine deadlines so dwell gestures fire without input.
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForResize listens for debounced window sizes
func (m Model) waitForResize() tea.Cmd {
	return func() tea.Msg {
		return sizeMsg(<-m.sizeDeb.Settled())
	}
}

// waitForReload listens for hot-reloaded config, templates, sequences
func (m Model) waitForReload() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-m.watcher.Reloads()
		if !ok {
			return nil
		}
		return reloadMsg(r)
	}
}

// ===== UPDATE =====

// Update is the bubbletea message loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.sizeDeb.Cancel()
			return m, tea.Quit

		case "tab":
			if m.page == pageCanvas {
				m.page = pageStats
			} else {
				m.page = pageCanvas
			}
			return m, nil

		case "c":
			m.log.Clear()
			m.feedSeen = 0
			if m.ready {
				m.feed.SetContent("")
			}
			return m, nil

		case "esc":
			if m.page == pageStats {
				m.page = pageCanvas
				return m, nil
			}
			m.sizeDeb.Cancel()
			return m, tea.Quit
		}

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		// The first size arrives at startup and must apply at once;
		// later bursts from interactive resizing get debounced.
		if !m.ready {
			m.layout(msg.Width, msg.Height)
			return m, nil
		}
		m.sizeDeb.Put(msg)
		return m, nil

	case sizeMsg:
		if msg.Width <= 0 || msg.Height <= 0 {
			return m, nil
		}
		m.layout(msg.Width, msg.Height)
		return m, m.waitForResize()

	case tickMsg:
		m.engine.Tick(time.Time(msg))
		m.refreshFeed(false)
		return m, m.tick()

	case reloadMsg:
		m.applyReload(config.Reload(msg))
		return m, m.waitForReload()
	}

	// Everything else (scroll keys and the like) goes to the feed pane.
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	return m, cmd
}

// handleMouse translates terminal mouse input into contact events.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.feed, cmd = m.feed.Update(msg)
		return m, cmd
	}

	now := time.Now()
	pos := m.surfacePoint(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.pressed {
			return m, nil
		}
		m.pressed = true
		m.contactID++
		m.feedContact(gesture.ContactEvent{Op: gesture.OpStart, ID: m.contactID, Position: pos, Time: now})

	case tea.MouseActionMotion:
		if !m.pressed {
			return m, nil
		}
		m.feedContact(gesture.ContactEvent{Op: gesture.OpMove, ID: m.contactID, Position: pos, Time: now})

	case tea.MouseActionRelease:
		if !m.pressed {
			return m, nil
		}
		m.pressed = false
		m.feedContact(gesture.ContactEvent{Op: gesture.OpEnd, ID: m.contactID, Position: pos, Time: now})
	}

	m.refreshFeed(false)
	return m, nil
}

// feedContact tees the raw contact to the trace recorder and hands it
// to the engine.
func (m *Model) feedContact(ev gesture.ContactEvent) {
	if m.recorder != nil {
		m.recorder.Contact(ev)
	}
	m.engine.Handle(ev)
}

// applyReload swaps in hot-reloaded state. Invalid reloads keep the
// previous state and only surface the error in the footer.
func (m *Model) applyReload(r config.Reload) {
	if r.Err != nil {
		m.lastErr = r.Err
		m.reloadNote = ""
		logging.UIWarn("reload failed for %s: %v", r.Path, r.Err)
		return
	}
	m.lastErr = nil

	switch {
	case r.Config != nil:
		if err := m.engine.SetConfig(r.Config.GestureConfig()); err != nil {
			m.lastErr = err
			return
		}
		m.cfg = r.Config
		m.styles = NewStyles(ThemeByName(r.Config.UI.Theme))
		m.tickRate = r.Config.GetTickRate()
		m.reloadNote = "config reloaded"
		if m.ready {
			m.layout(m.width, m.height)
		}
		logging.UI("config reloaded from %s", r.Path)

	case r.Templates != nil:
		if err := m.engine.Matcher().SetLibrary(*r.Templates); err != nil {
			m.lastErr = err
			return
		}
		m.reloadNote = fmt.Sprintf("templates reloaded (%d)", len(r.Templates.Templates))
		logging.UI("template library reloaded from %s", r.Path)

	case r.Sequences != nil:
		if err := m.engine.Sequences().SetDefinitions(r.Sequences); err != nil {
			m.lastErr = err
			return
		}
		m.reloadNote = fmt.Sprintf("sequences reloaded (%d)", len(r.Sequences))
		logging.UI("sequence definitions reloaded from %s", r.Path)
	}
}

// ===== LAYOUT =====

// layout sizes the canvas and the feed pane for a terminal size and
// tells the engine how big the surface is.
func (m *Model) layout(w, h int) {
	m.width, m.height = w, h

	feedLines := m.cfg.UI.FeedLines
	if feedLines < 3 {
		feedLines = 3
	}

	// header + canvas border + feed divider + feed + footer
	rows := h - 1 - 2 - 1 - feedLines - 1
	if rows < 4 {
		rows = 4
	}
	cols := w - 2
	if cols < 10 {
		cols = 10
	}
	m.canvasCols, m.canvasRows = cols, rows
	m.engine.SetSurfaceSize(float64(cols)*cellWidth, float64(rows)*cellHeight)

	if !m.ready {
		m.feed = viewport.New(w, feedLines)
		m.ready = true
	} else {
		m.feed.Width = w
		m.feed.Height = feedLines
	}
	m.refreshFeed(true)
}

// surfacePoint maps a window cell to surface coordinates. The canvas
// interior starts below the header inside the border; positions are
// taken at cell centers and clamped to the surface.
func (m Model) surfacePoint(x, y int) geometry.Point {
	col := float64(x - 1)
	row := float64(y - 2)
	maxX := float64(m.canvasCols) * cellWidth
	maxY := float64(m.canvasRows) * cellHeight

	px := (col + 0.5) * cellWidth
	py := (row + 0.5) * cellHeight
	px = clamp(px, 0, maxX)
	py = clamp(py, 0, maxY)
	return geometry.Point{X: px, Y: py}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
