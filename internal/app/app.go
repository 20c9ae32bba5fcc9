// Package app is the terminal simulator: a Bubble Tea model that draws the
// frames the animation loop produces, next to the list of tracked beacons.
package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/color"
	"ble2wled.klederson.com/internal/led"
	"ble2wled.klederson.com/internal/mqtt"
	"ble2wled.klederson.com/internal/strip"
	"ble2wled.klederson.com/internal/ui"
)

const (
	refreshInterval = 250 * time.Millisecond
	historySize     = 30
)

// Options configures the simulator model.
type Options struct {
	Store    *beacon.Store
	Color    color.Model
	MQTT     *mqtt.Stats // nil unless telemetry comes from MQTT
	Source   string
	LEDCount int
	Rows     int
	Cols     int
	Duration time.Duration // quit after this long; 0 runs until the user quits
	Now      func() time.Time
}

// shared holds state shared between the Bubble Tea model copies.
type shared struct {
	history map[string]*SignalHistory
}

// Model is the root Bubble Tea model for the simulator.
type Model struct {
	width  int
	height int

	opts   Options
	view   strip.View
	paused bool
	help   help.Model

	frame    led.Frame
	frames   int
	start    time.Time
	lastTick time.Time
	fps      float64
	elapsed  time.Duration
	rows     []ui.BeaconRow
	err      error

	shared *shared
}

// New creates the simulator model.
func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	start := opts.Now()
	return Model{
		opts:     opts,
		help:     help.New(),
		frame:    led.NewFrame(opts.LEDCount),
		start:    start,
		lastTick: start,
		shared: &shared{
			history: make(map[string]*SignalHistory),
		},
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FrameMsg:
		if !m.paused {
			m.frame = msg.Frame
			m.frames++
		}
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		if span := now.Sub(m.lastTick).Seconds(); span > 0 {
			m.fps = float64(m.frames) / span
		}
		m.frames = 0
		m.lastTick = now
		m.elapsed = now.Sub(m.start)
		if !m.paused {
			m.refreshRows(now)
		}
		if m.opts.Duration > 0 && m.elapsed >= m.opts.Duration {
			return m, tea.Quit
		}
		return m, tickCmd()

	case LoopDoneMsg:
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.View):
		m.view = m.view.Next()
	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, keys.Clear):
		m.opts.Store.Clear()
		m.shared.history = make(map[string]*SignalHistory)
		m.rows = nil
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) refreshRows(now time.Time) {
	entries := m.opts.Store.Snapshot(now)
	seen := make(map[string]struct{}, len(entries))
	rows := make([]ui.BeaconRow, 0, len(entries))

	for _, e := range entries {
		seen[e.ID] = struct{}{}
		h, ok := m.shared.history[e.ID]
		if !ok {
			h = NewSignalHistory(historySize)
			m.shared.history[e.ID] = h
		}
		h.Push(float64(e.Signal))

		rows = append(rows, ui.BeaconRow{
			ID:       e.ID,
			Signal:   e.Signal,
			Distance: m.opts.Color.Distance(e.Signal),
			Life:     e.Life,
			Color:    strip.Hex(m.opts.Color.BeaconColor(e.ID, e.Signal, 1)),
			History:  h.Values(),
		})
	}

	for id := range m.shared.history {
		if _, ok := seen[id]; !ok {
			delete(m.shared.history, id)
		}
	}
	m.rows = rows
}

// Err reports the animation loop error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

// Paused reports whether the display is frozen.
func (m Model) Paused() bool {
	return m.paused
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing simulator..."
	}

	menuH := 1
	statusH := 1
	helpH := 1
	if m.help.ShowAll {
		helpH = 3
	}
	bodyH := m.height - menuH - statusH - helpH
	if bodyH < 5 {
		bodyH = 5
	}

	stripW := m.width * 2 / 3
	if stripW < 30 {
		stripW = 30
	}
	listW := m.width - stripW
	if listW < 20 {
		listW = 20
		stripW = m.width - listW
	}

	menuBar := ui.RenderMenuBar(m.width, m.opts.Source, m.view.String(), m.paused)

	innerW := stripW - 4
	innerH := bodyH - 2
	if innerW < 5 {
		innerW = 5
	}
	if innerH < 3 {
		innerH = 3
	}
	content := strip.Render(m.view, m.frame, m.opts.Rows, m.opts.Cols, innerW, innerH)
	title := fmt.Sprintf("LED STRIP [%d]", len(m.frame))
	stripPanel := ui.RenderStripPanel(stripW, bodyH, title, content)

	beaconList := ui.RenderBeaconList(m.rows, listW, bodyH)

	status := ui.Status{
		Paused:  m.paused,
		Beacons: len(m.rows),
		FPS:     m.fps,
		Level:   m.frame.Brightness(),
		Elapsed: m.elapsed,
	}
	if m.opts.MQTT != nil {
		snap := m.opts.MQTT.Snapshot()
		status.ShowMQTT = true
		status.MQTTMsgs = snap.Total
		status.MQTTRate = snap.Rate
	}
	statusBar := ui.RenderStatusBar(m.width, status)

	return ui.ComposeLayout(menuBar, stripPanel, beaconList, statusBar, m.help.View(keys))
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
