package globe

import (
	"math"

	"github.com/litescript/ls-globe/internal/geo"
)

// PickConfig controls hit testing and click/drag disambiguation.
type PickConfig struct {
	PickRadius     float64 // marker bounding sphere, world units
	DragThreshold  float64 // cumulative pointer travel, host units
	OccludeByGlobe bool    // markers behind the globe cannot be picked
}

// DefaultPickConfig returns the stock picking settings.
func DefaultPickConfig() PickConfig {
	return PickConfig{
		PickRadius:     0.1,
		DragThreshold:  4,
		OccludeByGlobe: true,
	}
}

// Picker turns pointer input into hover and click events. It owns the
// markers' Hovered flags.
type Picker struct {
	cfg PickConfig

	over bool // pointer is on the render surface
	x, y float64

	down     bool
	dragging bool
	travel   float64
	anchorX  float64
	anchorY  float64

	// Press and release seen since the last update, with their order.
	seq            uint64
	pressPending   bool
	pressSeq       uint64
	releasePending bool
	releaseSeq     uint64
	releaseWasDrag bool

	pressedID string // marker under the pointer at press
	hovered   string
}

// NewPicker creates a picker. Non-positive settings fall back to defaults.
func NewPicker(cfg PickConfig) *Picker {
	def := DefaultPickConfig()
	if !finite(cfg.PickRadius) || cfg.PickRadius <= 0 {
		cfg.PickRadius = def.PickRadius
	}
	if !finite(cfg.DragThreshold) || cfg.DragThreshold < 0 {
		cfg.DragThreshold = def.DragThreshold
	}
	return &Picker{cfg: cfg}
}

// Hovered returns the id currently under the pointer.
func (p *Picker) Hovered() string {
	return p.hovered
}

// Pointer returns the last pointer position and whether it is on the surface.
func (p *Picker) Pointer() (x, y float64, over bool) {
	return p.x, p.y, p.over
}

// Pick casts a ray through n and returns the nearest marker whose bounding
// sphere it hits. Equal distances go to the lowest id.
func (p *Picker) Pick(n NDC, markers []Marker, view View, globeRadius float64) (string, bool) {
	ray := view.Ray(n)

	var (
		best  string
		bestT = math.Inf(1)
	)
	for _, m := range markers {
		t, ok := intersectSphere(ray, m.Position, p.cfg.PickRadius)
		if !ok {
			continue
		}
		if p.cfg.OccludeByGlobe && globeRadius > 0 {
			if tg, hit := intersectSphere(ray, geo.Vec3{}, globeRadius); hit && tg < t {
				continue
			}
		}
		if t < bestT || (t == bestT && m.ID < best) {
			best, bestT = m.ID, t
		}
	}
	return best, best != ""
}

// pointerMove tracks the pointer. When a press has turned into a drag it
// returns the delta to hand to the camera; the movement inside the dead
// zone is delivered in one piece when the threshold is crossed.
func (p *Picker) pointerMove(x, y float64) (dx, dy float64, drag bool) {
	if !finite(x) || !finite(y) {
		return 0, 0, false
	}
	prevX, prevY := p.x, p.y
	p.x, p.y = x, y
	p.over = true

	if !p.down {
		return 0, 0, false
	}
	p.travel += math.Hypot(x-prevX, y-prevY)
	if !p.dragging && p.travel > p.cfg.DragThreshold {
		p.dragging = true
	}
	if !p.dragging {
		return 0, 0, false
	}
	dx, dy = x-p.anchorX, y-p.anchorY
	p.anchorX, p.anchorY = x, y
	return dx, dy, true
}

// pointerDown starts a gesture. It reports false for a repeated press.
func (p *Picker) pointerDown(x, y float64) bool {
	if finite(x) && finite(y) {
		p.x, p.y = x, y
		p.over = true
	}
	if p.down {
		return false
	}
	p.down = true
	p.dragging = false
	p.travel = 0
	p.anchorX, p.anchorY = p.x, p.y

	p.seq++
	p.pressPending = true
	p.pressSeq = p.seq
	return true
}

// pointerUp ends a gesture. It reports whether a gesture was in progress.
func (p *Picker) pointerUp() bool {
	if !p.down {
		return false
	}
	p.down = false

	p.seq++
	p.releasePending = true
	p.releaseSeq = p.seq
	p.releaseWasDrag = p.dragging
	p.dragging = false
	return true
}

func (p *Picker) pointerLeave() {
	p.over = false
}

// forget drops references to a marker that no longer exists, without
// producing a hover exit for it.
func (p *Picker) forget(id string) {
	if p.hovered == id {
		p.hovered = ""
	}
	if p.pressedID == id {
		p.pressedID = ""
	}
}

// update runs once per frame after the camera has moved. It picks under the
// pointer, moves the hover flag and resolves any completed click.
func (p *Picker) update(reg *Registry, view View) []Event {
	var events []Event

	next := ""
	if p.over && view.Viewport.Valid() {
		next, _ = p.Pick(view.Viewport.ToNDC(p.x, p.y), reg.markers, view, reg.GlobeRadius())
	}
	if next != p.hovered {
		if p.hovered != "" {
			reg.setHovered(p.hovered, false)
			events = append(events, Event{Kind: EventHoverExit, ID: p.hovered})
		}
		if next != "" {
			reg.setHovered(next, true)
			events = append(events, Event{Kind: EventHoverEnter, ID: next})
		}
		p.hovered = next
	}

	// A press that came before a release in the same frame is a complete
	// click; a release that came first belongs to the previous press.
	if p.pressPending && p.releasePending && p.pressSeq < p.releaseSeq {
		p.resolvePress()
		events = p.resolveRelease(events)
	} else {
		if p.releasePending {
			events = p.resolveRelease(events)
		}
		if p.pressPending {
			p.resolvePress()
		}
	}
	return events
}

func (p *Picker) resolvePress() {
	p.pressPending = false
	p.pressedID = p.hovered
}

func (p *Picker) resolveRelease(events []Event) []Event {
	p.releasePending = false
	if !p.releaseWasDrag && p.hovered != "" && p.hovered == p.pressedID {
		events = append(events, Event{Kind: EventClick, ID: p.hovered})
	}
	p.pressedID = ""
	p.releaseWasDrag = false
	return events
}
