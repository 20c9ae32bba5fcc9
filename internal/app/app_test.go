package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/color"
	"ble2wled.klederson.com/internal/led"
	"ble2wled.klederson.com/internal/strip"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestModel(store *beacon.Store, duration time.Duration) Model {
	return New(Options{
		Store:    store,
		Color:    color.DefaultModel(),
		Source:   "mock",
		LEDCount: 60,
		Rows:     10,
		Cols:     6,
		Duration: duration,
		Now:      func() time.Time { return t0 },
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

func TestSignalHistory(t *testing.T) {
	h := NewSignalHistory(3)
	assert.Nil(t, h.Values())
	assert.Equal(t, 0.0, h.Last())

	h.Push(1)
	h.Push(2)
	assert.Equal(t, []float64{1, 2}, h.Values())

	h.Push(3)
	h.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, h.Values())
	assert.Equal(t, 4.0, h.Last())
	assert.Equal(t, 3, h.Len())
}

func TestProgramSinkSendsCopy(t *testing.T) {
	s := &fakeSender{}
	sink := NewProgramSink(s)
	sink.now = func() time.Time { return t0 }

	frame := led.NewFrame(3)
	frame[1] = led.RGB{R: 200}
	require.NoError(t, sink.Update(context.Background(), frame))
	frame[1] = led.RGB{}

	require.Len(t, s.msgs, 1)
	msg, ok := s.msgs[0].(FrameMsg)
	require.True(t, ok)
	assert.Equal(t, led.RGB{R: 200}, msg.Frame[1])
	assert.Equal(t, t0, msg.At)
}

func TestFramesIgnoredWhilePaused(t *testing.T) {
	m := newTestModel(beacon.NewStore(5*time.Second, time.Second), 0)

	lit := led.NewFrame(60)
	lit[0] = led.RGB{G: 255}
	m, _ = update(t, m, FrameMsg{Frame: lit, At: t0})
	assert.Equal(t, led.RGB{G: 255}, m.frame[0])

	m, _ = update(t, m, press("p"))
	assert.True(t, m.Paused())

	m, _ = update(t, m, FrameMsg{Frame: led.NewFrame(60), At: t0})
	assert.Equal(t, led.RGB{G: 255}, m.frame[0])
}

func TestViewToggle(t *testing.T) {
	m := newTestModel(beacon.NewStore(5*time.Second, time.Second), 0)
	assert.Equal(t, strip.ViewGrid, m.view)

	m, _ = update(t, m, press("v"))
	assert.Equal(t, strip.ViewRing, m.view)
	m, _ = update(t, m, press("v"))
	assert.Equal(t, strip.ViewGrid, m.view)
}

func TestTickRefreshesRowsAndFPS(t *testing.T) {
	store := beacon.NewStore(5*time.Second, time.Second)
	store.Update("beacon_0", 10, -50, t0)
	store.Update("beacon_1", 20, -80, t0)
	m := newTestModel(store, 0)

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, FrameMsg{Frame: led.NewFrame(60), At: t0})
	}
	m, cmd := update(t, m, TickMsg(t0.Add(time.Second)))
	assert.NotNil(t, cmd)

	assert.InDelta(t, 5.0, m.fps, 1e-9)
	assert.Equal(t, time.Second, m.elapsed)
	require.Len(t, m.rows, 2)
	assert.Equal(t, "beacon_0", m.rows[0].ID)
	assert.Equal(t, []float64{-50}, m.rows[0].History)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, m.rows[0].Color)
}

func TestHistoryDroppedWithBeacon(t *testing.T) {
	store := beacon.NewStore(time.Second, time.Second)
	store.Update("beacon_0", 10, -50, t0)
	m := newTestModel(store, 0)

	m, _ = update(t, m, TickMsg(t0.Add(100*time.Millisecond)))
	assert.Len(t, m.shared.history, 1)

	store.Cleanup(t0.Add(3 * time.Second))
	m, _ = update(t, m, TickMsg(t0.Add(3*time.Second)))
	assert.Empty(t, m.rows)
	assert.Empty(t, m.shared.history)
}

func TestClearEmptiesStore(t *testing.T) {
	store := beacon.NewStore(5*time.Second, time.Second)
	store.Update("beacon_0", 10, -50, t0)
	m := newTestModel(store, 0)
	m, _ = update(t, m, TickMsg(t0.Add(time.Second)))
	require.Len(t, m.rows, 1)

	m, _ = update(t, m, press("c"))
	assert.Equal(t, 0, store.Count())
	assert.Empty(t, m.rows)
}

func TestDurationDeadlineQuits(t *testing.T) {
	m := newTestModel(beacon.NewStore(5*time.Second, time.Second), 2*time.Second)

	m, cmd := update(t, m, TickMsg(t0.Add(time.Second)))
	require.NotNil(t, cmd)

	_, cmd = update(t, m, TickMsg(t0.Add(2*time.Second)))
	assert.True(t, isQuit(cmd))
}

func TestQuitKeyAndLoopDone(t *testing.T) {
	m := newTestModel(beacon.NewStore(5*time.Second, time.Second), 0)

	_, cmd := update(t, m, press("q"))
	assert.True(t, isQuit(cmd))

	boom := errors.New("boom")
	m, cmd = update(t, m, LoopDoneMsg{Err: boom})
	assert.True(t, isQuit(cmd))
	assert.ErrorIs(t, m.Err(), boom)
}

func TestViewRendersPanels(t *testing.T) {
	store := beacon.NewStore(5*time.Second, time.Second)
	store.Update("beacon_0", 10, -50, t0)
	m := newTestModel(store, 0)

	assert.Equal(t, "Initializing simulator...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, TickMsg(t0.Add(time.Second)))
	out := m.View()
	assert.Contains(t, out, "LED STRIP [60]")
	assert.Contains(t, out, "beacon_0")
	assert.Contains(t, out, "source: mock")
}

func TestStatusBarShowsFrameLevel(t *testing.T) {
	m := newTestModel(beacon.NewStore(5*time.Second, time.Second), 0)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "Level: 0%")

	lit := led.NewFrame(60)
	for i := range lit {
		lit[i] = led.RGB{R: 255, G: 255, B: 255}
	}
	m, _ = update(t, m, FrameMsg{Frame: lit, At: t0})
	assert.Contains(t, m.View(), "Level: 100%")
}
