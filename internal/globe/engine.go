// Package globe is the visualization engine: it places online entities on a
// sphere, orbits a camera around it and turns pointer input into hover,
// click and selection state for an overlay to read.
//
// The engine is frame driven and single threaded. Hosts queue input with
// Enqueue and call Frame once per animation frame; each frame drains input,
// ticks the camera, picks under the pointer and applies selection
// transitions, in that order.
package globe

import (
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/logging"
)

// DefaultGlobeRadius matches the sphere of the web component (markers at 2.1).
const DefaultGlobeRadius = 2.0

// Config holds the engine settings.
type Config struct {
	GlobeRadius float64
	SurfaceLift float64
	Camera      CameraConfig
	Pick        PickConfig
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		GlobeRadius: DefaultGlobeRadius,
		SurfaceLift: DefaultSurfaceLift,
		Camera:      DefaultCameraConfig(),
		Pick:        DefaultPickConfig(),
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithOnSelect sets the callback fired once per transition into Selected.
func WithOnSelect(fn func(id string)) Option {
	return func(e *Engine) {
		e.onSelect = fn
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id uuid.UUID) Option {
	return func(e *Engine) {
		e.session = id
	}
}

// FrameResult is what happened during one frame.
type FrameResult struct {
	Frame  uint64
	Events []Event
}

// MarkerView is the read-only projection of a marker for renderers and the overlay.
type MarkerView struct {
	ID       string
	Name     string
	Serial   uint64
	Online   bool
	Location entity.Location
	Position geo.Vec3

	// Screen hint in host coordinates; meaningful when OnScreen.
	ScreenX, ScreenY float64
	Depth            float64
	OnScreen         bool // in front of the camera and inside the viewport
	Visible          bool // OnScreen and not hidden behind the globe

	Hovered  bool
	Selected bool
}

// Engine ties the registry, camera, picker and selection together.
type Engine struct {
	cfg      Config
	log      *logging.Logger
	session  uuid.UUID
	onSelect func(id string)

	registry  *Registry
	rig       *CameraRig
	picker    *Picker
	selection Selection

	viewport Viewport
	entities map[string]entity.Entity
	queue    []InputEvent
	frame    uint64
}

// New creates an engine with no entities.
func New(cfg Config, opts ...Option) *Engine {
	if !finite(cfg.GlobeRadius) || cfg.GlobeRadius <= 0 {
		cfg.GlobeRadius = DefaultGlobeRadius
	}

	e := &Engine{
		session:  uuid.New(),
		entities: make(map[string]entity.Entity),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logging.Discard()
	}
	e.log = e.log.With("session", e.session.String())

	e.rig = NewCameraRig(cfg.Camera)
	cfg.Camera = e.rig.Config()
	e.picker = NewPicker(cfg.Pick)
	e.registry = NewRegistry(cfg.SurfaceLift, e.log)
	cfg.SurfaceLift = e.registry.surfaceLift
	e.cfg = cfg
	return e
}

// Config returns the normalized configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SessionID identifies this visualization session in logs and exports.
func (e *Engine) SessionID() string {
	return e.session.String()
}

// SetOnSelect replaces the select callback.
func (e *Engine) SetOnSelect(fn func(id string)) {
	e.onSelect = fn
}

// SetViewport sets the host surface size.
func (e *Engine) SetViewport(vp Viewport) {
	e.viewport = vp
}

// Viewport returns the host surface size.
func (e *Engine) Viewport() Viewport {
	return e.viewport
}

// SetEntities rebuilds the markers from a complete entity list. Markers
// that disappear are dropped from the hover and selection slots.
func (e *Engine) SetEntities(entities []entity.Entity) RebuildReport {
	report := e.registry.Rebuild(entities, e.cfg.GlobeRadius)
	e.entities = entity.Index(entities)

	for _, id := range report.Removed {
		e.picker.forget(id)
		if e.selection.Remove(id) {
			e.log.Info("selection %s cleared: marker removed", id)
		}
	}
	for _, s := range report.Skipped {
		e.log.Debug("entity %s has no marker: %v", s.ID, s.Err)
	}

	zl := e.log.Zerolog()
	zl.Debug().
		Int("added", len(report.Added)).
		Int("removed", len(report.Removed)).
		Int("retained", len(report.Retained)).
		Int("online", report.Summary.Online).
		Int("total", report.Summary.Total).
		Msg("markers rebuilt")
	return report
}

// Enqueue queues a host input event for the next frame.
func (e *Engine) Enqueue(ev InputEvent) {
	e.queue = append(e.queue, ev)
}

// Frame advances the engine by dt.
func (e *Engine) Frame(dt time.Duration) FrameResult {
	e.frame++
	res := FrameResult{Frame: e.frame}

	e.drainInput()
	e.rig.Tick(dt)

	for _, ev := range e.picker.update(e.registry, e.View()) {
		res.Events = append(res.Events, ev)
		switch ev.Kind {
		case EventHoverEnter:
			e.selection.HoverEnter(ev.ID)
		case EventHoverExit:
			if err := e.selection.HoverExit(ev.ID); err != nil {
				e.log.Debug("hover exit ignored: %v", err)
			}
		case EventClick:
			if e.selection.Click(ev.ID) {
				res.Events = append(res.Events, Event{Kind: EventSelect, ID: ev.ID})
				e.fireSelect(ev.ID)
			}
		}
	}
	return res
}

func (e *Engine) drainInput() {
	for _, ev := range e.queue {
		switch ev.Kind {
		case InputPointerMove:
			if dx, dy, ok := e.picker.pointerMove(ev.X, ev.Y); ok {
				e.rig.Drag(dx, dy)
			}
		case InputPointerDown:
			if e.picker.pointerDown(ev.X, ev.Y) {
				e.rig.BeginDrag()
			}
		case InputPointerUp:
			if e.picker.pointerUp() {
				e.rig.EndDrag()
			}
		case InputPointerLeave:
			e.picker.pointerLeave()
		case InputScroll:
			e.rig.Scroll(ev.Delta)
		}
	}
	e.queue = e.queue[:0]
}

func (e *Engine) fireSelect(id string) {
	e.log.Info("selected %s", id)
	if e.onSelect != nil {
		e.onSelect(id)
	}
}

// Dismiss closes the detail panel. It reports whether a selection was open.
func (e *Engine) Dismiss() bool {
	id, _ := e.selection.Selected()
	if !e.selection.Dismiss() {
		return false
	}
	e.log.Info("dismissed %s", id)
	return true
}

// SelectByID selects a marker without the pointer, as a click would.
// It reports whether the selection changed.
func (e *Engine) SelectByID(id string) bool {
	if _, ok := e.registry.Marker(id); !ok {
		return false
	}
	if !e.selection.Click(id) {
		return false
	}
	e.fireSelect(id)
	return true
}

// CycleSelection selects the marker step places after the current selection
// in marker order, wrapping around. It returns the newly selected id.
func (e *Engine) CycleSelection(step int) (string, bool) {
	markers := e.registry.markers
	if len(markers) == 0 || step == 0 {
		return "", false
	}

	i := -1
	if id, ok := e.selection.Selected(); ok {
		i = e.registry.index[id]
	} else if step < 0 {
		i = 0
	}
	n := len(markers)
	next := ((i+step)%n + n) % n
	id := markers[next].ID
	if !e.SelectByID(id) {
		return "", false
	}
	return id, true
}

// SetAutoRotate toggles idle rotation.
func (e *Engine) SetAutoRotate(on bool) {
	e.rig.SetAutoRotate(on)
}

// AutoRotateEnabled reports the idle rotation toggle.
func (e *Engine) AutoRotateEnabled() bool {
	return e.rig.AutoRotateEnabled()
}

// ResetCamera returns the camera to its initial orbit.
func (e *Engine) ResetCamera() {
	e.rig.Reset()
}

// Camera returns the current camera state.
func (e *Engine) Camera() CameraState {
	return e.rig.State()
}

// Selection returns the current selection state.
func (e *Engine) Selection() SelectionState {
	return e.selection.State()
}

// Hovered returns the id under the pointer, if any.
func (e *Engine) Hovered() (string, bool) {
	return e.selection.Hovered()
}

// Selected returns the selected id, if any.
func (e *Engine) Selected() (string, bool) {
	return e.selection.Selected()
}

// Summary returns the online/total legend count.
func (e *Engine) Summary() entity.Summary {
	return e.registry.Summary()
}

// Entity returns the entity with the given id from the last entity list.
func (e *Engine) Entity(id string) (entity.Entity, bool) {
	ent, ok := e.entities[id]
	return ent, ok
}

// View returns the current camera view.
func (e *Engine) View() View {
	return View{
		Camera:   e.rig.State(),
		FOV:      e.cfg.Camera.FOV,
		Viewport: e.viewport,
	}
}

// Markers returns the live marker list with screen hints for the current view.
func (e *Engine) Markers() []MarkerView {
	view := e.View()
	selected, _ := e.selection.Selected()

	out := make([]MarkerView, 0, e.registry.Len())
	for _, m := range e.registry.markers {
		mv := MarkerView{
			ID:       m.ID,
			Serial:   m.Serial,
			Online:   true,
			Position: m.Position,
			Hovered:  m.Hovered,
			Selected: m.ID == selected,
		}
		if ent, ok := e.entities[m.ID]; ok {
			mv.Name = ent.Name
			mv.Location = ent.Location
			mv.Online = ent.Online
		}
		if view.Viewport.Valid() {
			if n, depth, ok := view.Project(m.Position); ok {
				mv.ScreenX, mv.ScreenY = view.Viewport.FromNDC(n)
				mv.Depth = depth
				mv.OnScreen = view.Viewport.Contains(mv.ScreenX, mv.ScreenY)
				mv.Visible = mv.OnScreen && !view.Occluded(m.Position, e.cfg.GlobeRadius)
			}
		}
		out = append(out, mv)
	}
	return out
}
