package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/globe"
)

// panelWidth is the width of the side panel, border included.
const panelWidth = 36

var (
	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#7B2CBF")).
				Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	avatarStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#1A1A2E")).
			Background(lipgloss.Color("#9D4EDD")).
			Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMarker))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	ratingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	tagStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0D7FF")).
			Background(lipgloss.Color("#3C2A5C"))
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
)

// Overlay binds the engine's hover and selection slots to the tooltip,
// detail panel and legend. It only reads from the engine; every change
// goes through engine calls made by the globe view.
type Overlay struct {
	engine *globe.Engine
}

// NewOverlay creates an overlay for the engine.
func NewOverlay(e *globe.Engine) Overlay {
	return Overlay{engine: e}
}

// Tooltip returns the label of the hovered marker.
func (o Overlay) Tooltip() (string, bool) {
	id, ok := o.engine.Hovered()
	if !ok {
		return "", false
	}
	ent, ok := o.engine.Entity(id)
	if !ok {
		return "", false
	}
	return placeLabel(ent.Location), true
}

// Selected returns the entity behind the open detail panel.
func (o Overlay) Selected() (entity.Entity, bool) {
	id, ok := o.engine.Selected()
	if !ok {
		return entity.Entity{}, false
	}
	return o.engine.Entity(id)
}

// Detail renders the detail panel for the selection, or nothing.
func (o Overlay) Detail(width int) string {
	ent, ok := o.Selected()
	if !ok {
		return ""
	}
	return renderDetail(ent, width)
}

// Legend renders the online count, the marker key and the gesture help.
func (o Overlay) Legend(width int) string {
	var b strings.Builder
	b.WriteString(onlineStyle.Render("● "))
	b.WriteString(nameStyle.Render(globe.LegendText(o.engine.Summary())))
	b.WriteString("\n")
	b.WriteString(onlineStyle.Render("●") + mutedStyle.Render(" online  "))
	b.WriteString(offlineStyle.Render("○") + mutedStyle.Render(" offline"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("drag: rotate · scroll: zoom"))
	b.WriteString("\n")

	rot := "off"
	if o.engine.AutoRotateEnabled() {
		rot = "on"
	}
	b.WriteString(mutedStyle.Render("auto-rotate: " + rot + " ("))
	b.WriteString(keyStyle.Render("r"))
	b.WriteString(mutedStyle.Render(")"))

	return panelBorderStyle.Width(width - 2).Render(b.String())
}

// LegendLine is the single-line legend used when there is no room for the panel.
func (o Overlay) LegendLine() string {
	s := onlineStyle.Render("● ") + nameStyle.Render(globe.LegendText(o.engine.Summary()))
	if ent, ok := o.Selected(); ok {
		s += mutedStyle.Render("  |  ") + nameStyle.Render(ent.Name) +
			mutedStyle.Render(" · "+placeLabel(ent.Location)+" · enter: collaborate · esc: close")
	} else {
		s += mutedStyle.Render("  |  drag: rotate · scroll: zoom")
	}
	return s
}

func renderDetail(ent entity.Entity, width int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	var b strings.Builder

	b.WriteString(avatarStyle.Render(ent.Initials()))
	b.WriteString(" ")
	b.WriteString(nameStyle.Render(ent.Name))
	b.WriteString("\n")

	if ent.Online {
		b.WriteString(onlineStyle.Render("● online"))
	} else {
		b.WriteString(offlineStyle.Render("○ offline"))
	}
	b.WriteString(mutedStyle.Render("  " + placeLabel(ent.Location)))
	b.WriteString("\n")

	attrs := ent.Attributes
	b.WriteString(ratingStyle.Render(fmt.Sprintf("★ %.1f", attrs.Rating)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" · %d projects", attrs.Projects)))
	if attrs.Rate != "" {
		b.WriteString(mutedStyle.Render(" · " + attrs.Rate))
	}
	b.WriteString("\n")

	if attrs.Bio != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(attrs.Bio))
		b.WriteString("\n")
	}

	if len(attrs.Expertise) > 0 {
		b.WriteString("\n")
		b.WriteString(renderTags(attrs.Expertise, inner))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(keyStyle.Render("enter") + mutedStyle.Render(": start collaboration"))
	b.WriteString("\n")
	b.WriteString(keyStyle.Render("esc") + mutedStyle.Render(": close"))

	return panelBorderStyle.Width(width - 2).Render(b.String())
}

// renderTags lays the expertise tags out in rows no wider than width.
func renderTags(tags []string, width int) string {
	var (
		lines []string
		line  []string
		used  int
	)
	for _, t := range tags {
		w := lipgloss.Width(t) + 2
		if used > 0 && used+1+w > width {
			lines = append(lines, strings.Join(line, " "))
			line, used = nil, 0
		}
		if used > 0 {
			used++
		}
		line = append(line, tagStyle.Render(" "+t+" "))
		used += w
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return strings.Join(lines, "\n")
}

func placeLabel(l entity.Location) string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.City != "":
		return l.City
	case l.Country != "":
		return l.Country
	default:
		return fmt.Sprintf("%.2f, %.2f", l.Lat, l.Lng)
	}
}
