// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/state"
	"github.com/litescript/ls-globe/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewGlobe ViewMode = iota
	ViewActivity
)

// compactHeight is the terminal height below which the logo is dropped.
const compactHeight = 30

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// RosterUpdateMsg signals a newly loaded roster.
	RosterUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a roster load error.
	ErrorMsg struct {
		Error error
	}
)

// Settings holds the rendering options.
type Settings struct {
	FrameInterval time.Duration
	CellAspect    float64 // terminal cell height/width
	Braille       bool
}

func (s Settings) normalize() Settings {
	if s.FrameInterval <= 0 {
		s.FrameInterval = time.Second / 30
	}
	if s.CellAspect <= 0 {
		s.CellAspect = 2
	}
	return s
}

// Option configures the root model.
type Option func(*Model)

// WithLogger sets the UI logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// WithCollaborate sets the handler for "start collaboration".
func WithCollaborate(fn func(entity.Entity)) Option {
	return func(m *Model) {
		m.onCollaborate = fn
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	engine        *globe.Engine
	state         *state.Manager
	log           *logging.Logger
	onCollaborate func(entity.Entity)

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string // Last roster change or collaboration notice
	animTick  int    // Animation tick for shimmer effects

	// Sub-models
	globeView GlobeViewModel
	activity  ActivityModel

	// Data snapshot (updated on RosterUpdateMsg)
	snapshot state.Snapshot
	applied  *entity.Roster // roster last handed to the engine
}

// New creates a new root UI model.
func New(engine *globe.Engine, stateMgr *state.Manager, settings Settings, opts ...Option) Model {
	m := Model{
		engine:    engine,
		state:     stateMgr,
		viewMode:  ViewGlobe,
		globeView: NewGlobeViewModel(engine, settings),
		activity:  NewActivityModel(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		m.globeView.Init(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "g":
			m.viewMode = ViewGlobe
		case "2", "a":
			m.viewMode = ViewActivity

		case "tab":
			// Cycle through views
			m.viewMode = (m.viewMode + 1) % 2

		default:
			// Pass to active view
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.MouseMsg:
		if m.viewMode == ViewGlobe {
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case FrameMsg:
		// The engine keeps animating while another view is shown.
		var cmd tea.Cmd
		m.globeView, cmd = m.globeView.Update(msg)
		cmds = append(cmds, cmd)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		// Request fresh snapshot
		if m.state != nil {
			m.snapshot = m.state.Snapshot()
			m.activity = m.activity.UpdateData(m.snapshot)
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case RosterUpdateMsg:
		m.snapshot = msg.Snapshot
		m.activity = m.activity.UpdateData(m.snapshot)
		m.applyRoster(msg.Snapshot.Roster)

	case DismissMsg:
		if m.state != nil {
			m.state.Record(state.EventDismissed, msg.ID, msg.Name)
		}

	case CollaborateMsg:
		m.statusMsg = "Starting collaboration with " + msg.Entity.Name
		if m.state != nil {
			m.state.Record(state.EventCollaboration, msg.Entity.ID, msg.Entity.Name)
		}
		if m.onCollaborate != nil {
			m.onCollaborate(msg.Entity)
		}

	case ErrorMsg:
		m.log.Warn("roster load failed: %v", msg.Error)
		m.snapshot.LastError = msg.Error

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// applyRoster hands a roster to the engine once.
func (m *Model) applyRoster(r *entity.Roster) {
	if r == nil || r == m.applied {
		return
	}
	m.applied = r

	report := m.engine.SetEntities(r.Entities)
	for _, w := range r.Warnings {
		m.log.Warn("roster %s: %s", r.Origin, w)
	}
	if report.Changed() {
		m.log.Info("roster %s: %d added, %d removed, %d markers",
			r.Origin, len(report.Added), len(report.Removed), m.engine.Summary().Online)
		m.statusMsg = fmt.Sprintf("roster: +%d −%d", len(report.Added), len(report.Removed))
	}
}

// layout sizes the sub-models around the header and footer.
func (m *Model) layout() {
	headerHeight := lipgloss.Height(m.renderHeader())
	contentHeight := m.height - headerHeight - 1 // footer
	if contentHeight < 0 {
		contentHeight = 0
	}

	m.globeView = m.globeView.SetOrigin(0, headerHeight).SetSize(m.width, contentHeight)
	m.activity = m.activity.SetSize(m.width, contentHeight)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewGlobe:
		m.globeView, cmd = m.globeView.Update(msg)
	case ViewActivity:
		m.activity, cmd = m.activity.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewGlobe:
		content = m.globeView.View()
	case ViewActivity:
		content = m.activity.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	// Pad so the footer stays on the last line.
	contentHeight := m.height - lipgloss.Height(header) - 1
	if gap := contentHeight - lipgloss.Height(content); gap > 0 {
		content += strings.Repeat("\n", gap)
	}

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	if m.height < compactHeight {
		return m.renderTabs()
	}
	return m.renderLogo() + m.renderTabs()
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ╻   ┏━┓     ┏━╸ ╻   ┏━┓ ┏┓  ┏━╸`,
		`  ┃   ┗━┓ ╺━╸ ┃╺┓ ┃   ┃ ┃ ┣┻┓ ┣╸ `,
		`  ┗━╸ ┗━┛     ┗━┛ ┗━╸ ┗━┛ ┗━┛ ┗━╸`,
	}

	var b strings.Builder

	// Render each line with a horizontal truecolor gradient
	for row, line := range logo {
		runes := []rune(line)
		lineLen := len(runes)

		for col, r := range runes {
			color := gradientColor(col, row, lineLen, len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	tagline := fmt.Sprintf("  Professionals around the world · litescript.net · v%s", version.Version)
	b.WriteString(muted.Render(tagline))
	b.WriteString("\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// teal -> green -> blue, darker toward the bottom rows.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Teal (#2DD4BF) -> Green (#A5F3AD) -> Blue (#3B82F6)
	var r, g, b float64
	if xRatio < 0.5 {
		t := xRatio / 0.5
		r = 45 + t*(165-45)
		g = 212 + t*(243-212)
		b = 191 + t*(173-191)
	} else {
		t := (xRatio - 0.5) / 0.5
		r = 165 + t*(59-165)
		g = 243 + t*(130-243)
		b = 173 + t*(246-173)
	}

	brightness := 1.0 - (yRatio * 0.4)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Globe", "[2] Activity"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case m.applied != nil:
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+m.globeView.statusLine())
		if m.statusMsg != "" {
			status += dimStyle.Render(" · " + m.statusMsg)
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Loading roster...")
	}

	// View-specific help hints
	var help string
	switch m.viewMode {
	case ViewActivity:
		help = dimStyle.Render("j/k: scroll | tab: switch view | q: quit")
	default:
		help = dimStyle.Render("j/k: select | +/-: zoom | r: rotate | c: recenter | tab: switch view | q: quit")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendRosterUpdate creates a command that sends a roster update message.
func SendRosterUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return RosterUpdateMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.animTick % (textLen + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 200, 250, 205
		case dist <= 3:
			r8, g8, b8 = 150, 210, 160
		case dist <= 5:
			r8, g8, b8 = 110, 160, 125
		default:
			r8, g8, b8 = 80, 110, 95
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
