package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/state"
)

func newTestModel(t *testing.T) (Model, *globe.Engine, *state.Manager) {
	t.Helper()
	cfg := globe.DefaultConfig()
	cfg.Camera.AutoRotate = false
	e := globe.New(cfg)
	mgr := state.NewManager(state.DefaultConfig())
	m := New(e, mgr, Settings{Braille: true})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return updated.(Model), e, mgr
}

func loadBundled(t *testing.T, mgr *state.Manager) state.Snapshot {
	t.Helper()
	res := entity.NewSource("").Load(context.Background())
	if res.Error != nil {
		t.Fatalf("load bundled roster: %v", res.Error)
	}
	mgr.Update(res.Roster, res.Duration, nil)
	return mgr.Snapshot()
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModel_InitialView(t *testing.T) {
	cfg := globe.DefaultConfig()
	m := New(globe.New(cfg), nil, Settings{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}
	if m.Init() == nil {
		t.Error("Init should start the tick commands")
	}
}

func TestModel_RosterUpdate(t *testing.T) {
	m, e, mgr := newTestModel(t)
	snap := loadBundled(t, mgr)

	m, _ = send(m, RosterUpdateMsg{Snapshot: snap})
	if got := e.Summary(); got != (entity.Summary{Online: 6, Total: 8}) {
		t.Errorf("engine summary = %+v, want 6/8", got)
	}
	if m.applied != snap.Roster {
		t.Error("roster should be recorded as applied")
	}
	if !strings.Contains(m.statusMsg, "+6") {
		t.Errorf("statusMsg = %q, want the added count", m.statusMsg)
	}

	// The same roster again is not re-applied
	e.SelectByID("1")
	m, _ = send(m, RosterUpdateMsg{Snapshot: snap})
	if _, ok := e.Selected(); !ok {
		t.Error("re-sending the same roster should leave the selection alone")
	}

	out := m.View()
	if !strings.Contains(out, "6 online professionals") {
		t.Errorf("view missing legend:\n%s", out)
	}
}

func TestModel_RosterRemovalClearsSelection(t *testing.T) {
	m, e, mgr := newTestModel(t)
	m, _ = send(m, RosterUpdateMsg{Snapshot: loadBundled(t, mgr)})
	e.SelectByID("3")

	next := &entity.Roster{Origin: "test", Entities: []entity.Entity{
		{ID: "1", Name: "Alex Rivera", Online: true, Location: entity.Location{Lat: 40.7128, Lng: -74.006}},
	}}
	mgr.Update(next, 0, nil)
	send(m, RosterUpdateMsg{Snapshot: mgr.Snapshot()})

	if got := e.Selection(); got.Kind != globe.Idle {
		t.Errorf("selection = %v, want idle after removal", got)
	}
}

func TestModel_DismissRecordsEvent(t *testing.T) {
	m, _, mgr := newTestModel(t)
	send(m, DismissMsg{ID: "3", Name: "Sam Taylor"})

	events := mgr.RecentEvents(1)
	if len(events) != 1 || events[0].Type != state.EventDismissed || events[0].EntityID != "3" {
		t.Errorf("events = %+v, want one DISMISSED for 3", events)
	}
}

func TestModel_CollaborateCallsHandler(t *testing.T) {
	cfg := globe.DefaultConfig()
	mgr := state.NewManager(state.DefaultConfig())

	var got entity.Entity
	m := New(globe.New(cfg), mgr, Settings{}, WithCollaborate(func(e entity.Entity) { got = e }))

	ent := entity.Entity{ID: "5", Name: "Riley Park"}
	m, _ = send(m, CollaborateMsg{Entity: ent})

	if got.ID != "5" {
		t.Errorf("handler got %+v, want entity 5", got)
	}
	if !strings.Contains(m.statusMsg, "Riley Park") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
	events := mgr.RecentEvents(1)
	if len(events) != 1 || events[0].Type != state.EventCollaboration {
		t.Errorf("events = %+v, want one COLLABORATION", events)
	}
}

func TestModel_ViewSwitching(t *testing.T) {
	m, _, _ := newTestModel(t)

	if m.viewMode != ViewGlobe {
		t.Fatalf("initial view = %d, want globe", m.viewMode)
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.viewMode != ViewActivity {
		t.Errorf("after tab = %d, want activity", m.viewMode)
	}
	if !strings.Contains(m.View(), "Activity") {
		t.Error("activity view not rendered")
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.viewMode != ViewGlobe {
		t.Errorf("tab should wrap to globe, got %d", m.viewMode)
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.viewMode != ViewActivity {
		t.Errorf("'2' = %d, want activity", m.viewMode)
	}
}

func TestModel_MouseIgnoredOutsideGlobe(t *testing.T) {
	m, e, mgr := newTestModel(t)
	m, _ = send(m, RosterUpdateMsg{Snapshot: loadBundled(t, mgr)})
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyTab})

	start := e.Camera().Distance
	m, _ = send(m, tea.MouseMsg{X: 10, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	send(m, FrameMsg{})

	if got := e.Camera().Distance; got != start {
		t.Errorf("wheel on the activity view zoomed the globe: %v -> %v", start, got)
	}
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_ErrorShownInFooter(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = send(m, ErrorMsg{Error: errors.New("connection refused")})

	if !strings.Contains(m.View(), "ERROR: connection refused") {
		t.Error("footer should show the load error")
	}
}

func TestModel_FrameFillsTerminal(t *testing.T) {
	m, _, mgr := newTestModel(t)
	m, _ = send(m, RosterUpdateMsg{Snapshot: loadBundled(t, mgr)})

	if h := lipgloss.Height(m.View()); h != 50 {
		t.Errorf("frame height = %d, want 50", h)
	}

	// Short terminals drop the logo
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 20})
	if h := lipgloss.Height(m.renderHeader()); h != 1 {
		t.Errorf("compact header height = %d, want 1", h)
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 3); got != "#2DD4BF" {
		t.Errorf("start color = %s, want #2DD4BF", got)
	}
	for col := 0; col < 40; col++ {
		c := gradientColor(col, 2, 40, 3)
		if len(c) != 7 || c[0] != '#' {
			t.Errorf("gradientColor(%d) = %q, not a hex color", col, c)
		}
	}
}

func TestSendCommands(t *testing.T) {
	m, e, mgr := newTestModel(t)
	snap := loadBundled(t, mgr)

	msg := SendRosterUpdate(snap)()
	if _, ok := msg.(RosterUpdateMsg); !ok {
		t.Fatalf("SendRosterUpdate produced %T", msg)
	}
	m, _ = send(m, msg)
	if e.Summary().Online != 6 {
		t.Errorf("online = %d after SendRosterUpdate, want 6", e.Summary().Online)
	}

	msg = SendError(errors.New("timeout"))()
	m, _ = send(m, msg)
	if m.snapshot.LastError == nil {
		t.Error("SendError should set the last error")
	}
}
