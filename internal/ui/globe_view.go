package ui

import (
	"fmt"
	"math"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/globe"
)

const (
	// Marker glyphs
	glyphMarker         = '•'
	glyphMarkerHovered  = '●'
	glyphMarkerSelected = '◉'

	// Marker colors
	colorMarker         = "#A5F3AD"
	colorMarkerHovered  = "#E4FFE7"
	colorMarkerSelected = "229" // bright gold

	// Wireframe colors
	colorGraticule = "60"  // muted purple
	colorEquator   = "97"  // lighter purple
	colorLimb      = "#7B2CBF"
	colorTooltip   = "255"

	graticuleStepDeg = 30.0

	// zoomStep is the camera distance change per wheel notch or +/- key.
	zoomStep = 0.5

	// maxFrameStep caps dt after a stall so inertia and rotation don't jump.
	maxFrameStep = 250 * time.Millisecond

	// minSplitWidth is the narrowest view that gets a side panel.
	minSplitWidth = 72
)

// FrameMsg advances the globe engine by one animation frame.
type FrameMsg time.Time

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// GlobeViewModel draws the globe and feeds it terminal mouse and key input.
type GlobeViewModel struct {
	engine  *globe.Engine
	overlay Overlay

	width  int
	height int

	// Top-left of the canvas in terminal cells.
	originX int
	originY int

	cellAspect float64
	braille    bool
	interval   time.Duration
	lastFrame  time.Time

	// Mouse tracking
	inside  bool
	pressed bool

	lastEvents []globe.Event
}

// NewGlobeViewModel creates a globe view for the engine.
func NewGlobeViewModel(e *globe.Engine, settings Settings) GlobeViewModel {
	settings = settings.normalize()
	return GlobeViewModel{
		engine:     e,
		overlay:    NewOverlay(e),
		cellAspect: settings.CellAspect,
		braille:    settings.Braille,
		interval:   settings.FrameInterval,
	}
}

// Init starts the frame loop.
func (m GlobeViewModel) Init() tea.Cmd {
	return frameCmd(m.interval)
}

// SetSize updates the view area and the engine viewport.
func (m GlobeViewModel) SetSize(width, height int) GlobeViewModel {
	m.width = width
	m.height = height
	m.syncViewport()
	return m
}

// SetOrigin sets where the canvas starts on the terminal.
func (m GlobeViewModel) SetOrigin(x, y int) GlobeViewModel {
	m.originX = x
	m.originY = y
	return m
}

// canvasSize returns the canvas dimensions for the current layout.
func (m GlobeViewModel) canvasSize() (w, h int) {
	if m.split() {
		return m.width - panelWidth - 1, m.height
	}
	return m.width, m.height - 1 // legend line
}

func (m GlobeViewModel) split() bool {
	return m.width >= minSplitWidth
}

func (m GlobeViewModel) syncViewport() {
	w, h := m.canvasSize()
	if w < 1 || h < 1 {
		m.engine.SetViewport(globe.Viewport{})
		return
	}
	m.engine.SetViewport(globe.Viewport{
		Width:      float64(w),
		Height:     float64(h),
		CellAspect: m.cellAspect,
	})
}

// DismissMsg reports that the detail panel was closed.
type DismissMsg struct {
	ID   string
	Name string
}

// CollaborateMsg asks the host to start a collaboration with an entity.
type CollaborateMsg struct {
	Entity entity.Entity
}

// Update handles messages.
func (m GlobeViewModel) Update(msg tea.Msg) (GlobeViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		return m.advance(time.Time(msg)), frameCmd(m.interval)

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// advance runs one engine frame for the time elapsed since the last one.
func (m GlobeViewModel) advance(now time.Time) GlobeViewModel {
	dt := m.interval
	if !m.lastFrame.IsZero() {
		dt = now.Sub(m.lastFrame)
	}
	if dt > maxFrameStep {
		dt = maxFrameStep
	}
	m.lastFrame = now

	res := m.engine.Frame(dt)
	m.lastEvents = res.Events
	return m
}

// handleMouse converts a terminal mouse event into engine input. Cells are
// addressed by their centers.
func (m GlobeViewModel) handleMouse(msg tea.MouseMsg) GlobeViewModel {
	x := float64(msg.X-m.originX) + 0.5
	y := float64(msg.Y-m.originY) + 0.5
	inside := m.engine.Viewport().Contains(x, y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if inside {
			m.engine.Enqueue(globe.Scroll(-zoomStep))
		}
	case msg.Button == tea.MouseButtonWheelDown:
		if inside {
			m.engine.Enqueue(globe.Scroll(zoomStep))
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			m.engine.Enqueue(globe.PointerDown(x, y))
			m.pressed = true
		}

	case msg.Action == tea.MouseActionRelease:
		if m.pressed {
			m.engine.Enqueue(globe.PointerUp(x, y))
			m.pressed = false
		}

	case msg.Action == tea.MouseActionMotion:
		// A drag keeps going when it leaves the canvas.
		if inside || m.pressed {
			m.engine.Enqueue(globe.PointerMove(x, y))
		} else if m.inside {
			m.engine.Enqueue(globe.PointerLeave())
		}
	}

	m.inside = inside
	return m
}

func (m GlobeViewModel) handleKey(msg tea.KeyMsg) (GlobeViewModel, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.engine.SetAutoRotate(!m.engine.AutoRotateEnabled())
	case "c":
		m.engine.ResetCamera()
	case "esc":
		ent, ok := m.overlay.Selected()
		if m.engine.Dismiss() && ok {
			return m, func() tea.Msg {
				return DismissMsg{ID: ent.ID, Name: ent.Name}
			}
		}
	case "enter":
		if ent, ok := m.overlay.Selected(); ok {
			return m, func() tea.Msg {
				return CollaborateMsg{Entity: ent}
			}
		}
	case "down", "j":
		m.engine.CycleSelection(1)
	case "up", "k":
		m.engine.CycleSelection(-1)
	case "+", "=":
		m.engine.Enqueue(globe.Scroll(-zoomStep))
	case "-", "_":
		m.engine.Enqueue(globe.Scroll(zoomStep))
	}
	return m, nil
}

// LastEvents returns the events of the most recent frame.
func (m GlobeViewModel) LastEvents() []globe.Event {
	return m.lastEvents
}

// View renders the globe view.
func (m GlobeViewModel) View() string {
	w, h := m.canvasSize()
	if w < 10 || h < 5 {
		return "Globe view requires larger terminal"
	}

	c := m.renderCanvas(w, h)
	if !m.split() {
		return c + "\n" + m.overlay.LegendLine()
	}

	side := m.overlay.Legend(panelWidth)
	if detail := m.overlay.Detail(panelWidth); detail != "" {
		side += "\n" + detail
	}
	side = lipgloss.NewStyle().MaxHeight(h).Render(side)

	return lipgloss.JoinHorizontal(lipgloss.Top, c, " ", side)
}

func (m GlobeViewModel) renderCanvas(width, height int) string {
	c := newCanvas(width, height, m.braille)
	view := m.engine.View()
	radius := m.engine.Config().GlobeRadius

	drawLimb(c, view, radius)
	drawGraticule(c, view, radius)
	m.drawMarkers(c)

	return c.String()
}

// drawMarkers draws visible markers far to near, then the hovered marker's tooltip.
func (m GlobeViewModel) drawMarkers(c *canvas) {
	markers := m.engine.Markers()
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Depth > markers[j].Depth
	})

	var hovered *globe.MarkerView
	for i := range markers {
		mv := &markers[i]
		if !mv.Visible {
			continue
		}
		x, y := int(mv.ScreenX), int(mv.ScreenY)
		switch {
		case mv.Selected:
			c.set(x, y, glyphMarkerSelected, colorMarkerSelected)
		case mv.Hovered:
			c.set(x, y, glyphMarkerHovered, colorMarkerHovered)
		default:
			c.set(x, y, glyphMarker, colorMarker)
		}
		if mv.Hovered {
			hovered = mv
		}
	}

	if hovered == nil {
		return
	}
	label, ok := m.overlay.Tooltip()
	if !ok {
		return
	}
	x, y := int(hovered.ScreenX), int(hovered.ScreenY)
	n := len([]rune(label))
	tx := x + 2
	if tx+n > c.width {
		tx = x - 1 - n
	}
	c.text(tx, y, label, colorTooltip)
}

// facing reports whether a point on the globe surface is on the
// hemisphere turned towards the eye.
func facing(p, eye geo.Vec3, radius float64) bool {
	return p.Dot(eye) > radius*radius
}

// drawGraticule plots the parallels and meridians on the visible hemisphere.
func drawGraticule(c *canvas, view globe.View, radius float64) {
	eye := view.Camera.Eye()
	sample := 2.0
	if c.braille {
		sample = 0.5
	}

	for lat := -90 + graticuleStepDeg; lat < 90; lat += graticuleStepDeg {
		color := lipgloss.Color(colorGraticule)
		if lat == 0 {
			color = colorEquator
		}
		for lng := -180.0; lng < 180; lng += sample {
			plotSurface(c, view, eye, radius, lat, lng, color)
		}
	}
	for lng := -180.0; lng < 180; lng += graticuleStepDeg {
		for lat := -90.0; lat <= 90; lat += sample {
			plotSurface(c, view, eye, radius, lat, lng, colorGraticule)
		}
	}
}

func plotSurface(c *canvas, view globe.View, eye geo.Vec3, radius, lat, lng float64, color lipgloss.Color) {
	p, err := geo.Project(lat, lng, radius)
	if err != nil || !facing(p, eye, radius) {
		return
	}
	if x, y, ok := view.ProjectToScreen(p); ok {
		c.plot(x, y, color)
	}
}

// drawLimb plots the globe's silhouette: the circle where lines of sight
// from the eye graze the sphere.
func drawLimb(c *canvas, view globe.View, radius float64) {
	eye := view.Camera.Eye()
	d := eye.Norm()
	if d <= radius {
		return
	}
	n := eye.Scale(1 / d)
	center := n.Scale(radius * radius / d)
	r := radius * math.Sqrt(1-(radius*radius)/(d*d))

	u := n.Cross(geo.Vec3{Y: 1}).Normalized()
	if u.Norm() == 0 {
		u = geo.Vec3{X: 1}
	}
	w := u.Cross(n)

	steps := 4 * (c.width + c.height)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		p := center.Add(u.Scale(r * math.Cos(a))).Add(w.Scale(r * math.Sin(a)))
		if x, y, ok := view.ProjectToScreen(p); ok {
			c.plot(x, y, colorLimb)
		}
	}
}

// statusLine summarizes the camera and selection for the footer.
func (m GlobeViewModel) statusLine() string {
	cam := m.engine.Camera()
	return fmt.Sprintf("az %.0f° el %.0f° · %s",
		geo.RadToDeg(cam.Azimuth), geo.RadToDeg(cam.Elevation), m.engine.Selection())
}
