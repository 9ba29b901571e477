package globe

import (
	"fmt"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/logging"
)

// DefaultSurfaceLift raises markers 5% above the globe so they never
// z-fight with it (radius 2 puts markers at 2.1).
const DefaultSurfaceLift = 0.05

// Marker is the rendered anchor of one online entity.
type Marker struct {
	ID       string
	Serial   uint64 // assigned on first creation, kept while the id stays online
	Position geo.Vec3
	Hovered  bool // written only by the Picker
}

// SkippedEntity records an online entity that produced no marker.
type SkippedEntity struct {
	ID  string
	Err error
}

// RebuildReport describes what a Rebuild changed.
type RebuildReport struct {
	Added    []string
	Removed  []string
	Retained []string
	Skipped  []SkippedEntity
	Summary  entity.Summary
}

// Changed reports whether the set of markers differs from before.
func (r RebuildReport) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Registry derives the marker set from the entity list.
type Registry struct {
	log         *logging.Logger
	surfaceLift float64
	globeRadius float64

	markers    []Marker
	index      map[string]int
	summary    entity.Summary
	nextSerial uint64
}

// NewRegistry creates an empty registry. A negative or NaN lift falls back
// to DefaultSurfaceLift.
func NewRegistry(surfaceLift float64, logger *logging.Logger) *Registry {
	if !finite(surfaceLift) || surfaceLift < 0 {
		surfaceLift = DefaultSurfaceLift
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{
		log:         logger,
		surfaceLift: surfaceLift,
		index:       make(map[string]int),
	}
}

// Rebuild replaces the marker set with one marker per online entity, in
// input order. Identical input yields identical positions.
func (r *Registry) Rebuild(entities []entity.Entity, radius float64) RebuildReport {
	report := RebuildReport{Summary: entity.Summarize(entities)}
	markerRadius := radius * (1 + r.surfaceLift)

	next := make([]Marker, 0, report.Summary.Online)
	nextIndex := make(map[string]int, report.Summary.Online)

	for _, e := range entities {
		if !e.Online {
			continue
		}
		if _, dup := nextIndex[e.ID]; dup {
			report.Skipped = append(report.Skipped, SkippedEntity{
				ID:  e.ID,
				Err: fmt.Errorf("%w: duplicate id", entity.ErrInvalidEntity),
			})
			continue
		}

		pos, err := geo.ProjectLocation(e.Location.Geo(), markerRadius)
		if err != nil {
			r.log.Warn("marker %s skipped: %v", e.ID, err)
			report.Skipped = append(report.Skipped, SkippedEntity{ID: e.ID, Err: err})
			continue
		}

		m := Marker{ID: e.ID, Position: pos}
		if i, ok := r.index[e.ID]; ok {
			prev := r.markers[i]
			m.Serial = prev.Serial
			m.Hovered = prev.Hovered
			report.Retained = append(report.Retained, e.ID)
		} else {
			r.nextSerial++
			m.Serial = r.nextSerial
			report.Added = append(report.Added, e.ID)
		}

		nextIndex[e.ID] = len(next)
		next = append(next, m)
	}

	for _, m := range r.markers {
		if _, ok := nextIndex[m.ID]; !ok {
			report.Removed = append(report.Removed, m.ID)
		}
	}

	r.markers = next
	r.index = nextIndex
	r.summary = report.Summary
	r.globeRadius = radius

	r.log.Debug("rebuild: %d markers (+%d -%d), %d skipped",
		len(next), len(report.Added), len(report.Removed), len(report.Skipped))
	return report
}

// Markers returns a copy of the current markers.
func (r *Registry) Markers() []Marker {
	out := make([]Marker, len(r.markers))
	copy(out, r.markers)
	return out
}

// Marker looks up a marker by id.
func (r *Registry) Marker(id string) (Marker, bool) {
	i, ok := r.index[id]
	if !ok {
		return Marker{}, false
	}
	return r.markers[i], true
}

// Len returns the number of markers.
func (r *Registry) Len() int {
	return len(r.markers)
}

// Summary returns the online/total count from the last rebuild.
func (r *Registry) Summary() entity.Summary {
	return r.summary
}

// GlobeRadius returns the radius passed to the last rebuild.
func (r *Registry) GlobeRadius() float64 {
	return r.globeRadius
}

func (r *Registry) setHovered(id string, hovered bool) {
	if i, ok := r.index[id]; ok {
		r.markers[i].Hovered = hovered
	}
}
