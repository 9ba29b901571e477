// Package entity provides the roster of professionals shown on the globe and
// the loaders that read it from YAML, JSON or GeoJSON.
package entity

import (
	"errors"

	"github.com/litescript/ls-globe/internal/geo"
)

// ErrInvalidEntity marks a roster record that cannot be keyed (no id).
var ErrInvalidEntity = errors.New("invalid entity")

// Location is where a professional is based.
type Location struct {
	Lat     float64
	Lng     float64
	City    string
	Country string
}

// Geo returns the geographic part of the location.
func (l Location) Geo() geo.Location {
	return geo.Location{Lat: l.Lat, Lng: l.Lng}
}

// DisplayAttributes are shown by the overlay and never interpreted by the engine.
type DisplayAttributes struct {
	Rating    float64
	Projects  int
	Rate      string // e.g., "$50/hr"
	Expertise []string
	Bio       string
	Avatar    string
}

// Entity is one professional. The engine only reads entities.
type Entity struct {
	ID         string
	Name       string
	Location   Location
	Online     bool
	Attributes DisplayAttributes
}

// Initials returns the avatar fallback, e.g. "AR" for "Alex Rivera".
func (e Entity) Initials() string {
	var out []rune
	start := true
	for _, r := range e.Name {
		if r == ' ' {
			start = true
			continue
		}
		if start {
			out = append(out, r)
			start = false
		}
	}
	return string(out)
}

// Roster is a complete entity list as supplied on each change.
type Roster struct {
	Origin   string // file path, URL or "bundled"
	Entities []Entity
	Warnings []string // Non-fatal problems found while loading
}

// Summary is the legend count: online vs. total.
type Summary struct {
	Online int `json:"online"`
	Total  int `json:"total"`
}

// Summarize counts online entities.
func Summarize(entities []Entity) Summary {
	s := Summary{Total: len(entities)}
	for _, e := range entities {
		if e.Online {
			s.Online++
		}
	}
	return s
}

// Index returns entities keyed by id. The first occurrence of a duplicate id wins.
func Index(entities []Entity) map[string]Entity {
	idx := make(map[string]Entity, len(entities))
	for _, e := range entities {
		if _, dup := idx[e.ID]; dup {
			continue
		}
		idx[e.ID] = e
	}
	return idx
}
