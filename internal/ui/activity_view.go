package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/state"
)

// SparklineWidth is the maximum width of the online trend sparkline.
const SparklineWidth = 48

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// eventColors tints each event type in the log.
var eventColors = map[state.EventType]lipgloss.Color{
	state.EventSelected:      "229",
	state.EventDismissed:     "244",
	state.EventCollaboration: "#9D4EDD",
	state.EventOnline:        colorMarker,
	state.EventOffline:       "#E84A27",
	state.EventMoved:         "#3B82F6",
}

// ActivityModel shows the event log and the online count over time.
type ActivityModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	offset   int // events scrolled past, newest first
}

// NewActivityModel creates an empty activity view.
func NewActivityModel() ActivityModel {
	return ActivityModel{}
}

// SetSize updates the viewport size.
func (m ActivityModel) SetSize(width, height int) ActivityModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new state snapshot.
func (m ActivityModel) UpdateData(snapshot state.Snapshot) ActivityModel {
	m.snapshot = snapshot
	if m.offset >= len(snapshot.Events) {
		m.offset = 0
	}
	return m
}

// Update handles messages.
func (m ActivityModel) Update(msg tea.Msg) (ActivityModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "down", "j":
			if m.offset < len(m.snapshot.Events)-1 {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "home":
			m.offset = 0
		}
	}
	return m, nil
}

// View renders the activity view.
func (m ActivityModel) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var b strings.Builder

	b.WriteString(headerStyle.Render("Online"))
	b.WriteString("\n")
	b.WriteString(m.renderTrend())
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Activity"))
	b.WriteString("\n")

	events := m.snapshot.Events
	if len(events) == 0 {
		b.WriteString(dimStyle.Render("No activity yet"))
		return b.String()
	}

	rows := m.height - 5
	if rows < 1 {
		rows = 1
	}
	// Newest first
	for i := len(events) - 1 - m.offset; i >= 0 && rows > 0; i-- {
		b.WriteString(formatEvent(events[i], m.width))
		b.WriteString("\n")
		rows--
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatEvent(e state.Event, width int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	typeStyle := lipgloss.NewStyle().Foreground(eventColors[e.Type]).Width(15)

	name := e.Name
	if name == "" {
		name = e.EntityID
	}
	line := dimStyle.Render(e.Timestamp.Format("15:04:05")) + "  " +
		typeStyle.Render(string(e.Type)) + " " + name
	if e.Detail != "" {
		line += dimStyle.Render("  " + e.Detail)
	}
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

// renderTrend renders the online history as a sparkline with the latest count.
func (m ActivityModel) renderTrend() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	hist := m.snapshot.History
	if len(hist) == 0 {
		return dimStyle.Render("Waiting for roster...")
	}
	counts := make([]int, len(hist))
	for i, h := range hist {
		counts[i] = h.Summary.Online
	}

	last := hist[len(hist)-1].Summary
	spark := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMarker)).Render(sparkline(counts, SparklineWidth))
	return spark + dimStyle.Render(fmt.Sprintf("  %d/%d online", last.Online, last.Total))
}

// sparkline scales values to block characters, keeping the newest width values.
func sparkline(values []int, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	for _, v := range values {
		idx := len(sparklineBlocks) - 1
		if hi > lo {
			idx = (v - lo) * (len(sparklineBlocks) - 1) / (hi - lo)
		}
		b.WriteRune(sparklineBlocks[idx])
	}
	return b.String()
}
