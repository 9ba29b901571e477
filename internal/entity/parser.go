package entity

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-globe/internal/geo"
)

// ErrUnsupportedFormat is returned for roster files we cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported roster format")

// Format identifies a roster encoding.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
)

// DetectFormat picks a format from a file name or URL path, falling back to
// an HTTP content type when the extension says nothing.
func DetectFormat(name, contentType string) (Format, error) {
	// Strip query strings so "roster.geojson?v=2" still matches.
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".geojson":
		return FormatGeoJSON, nil
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "geo+json"):
		return FormatGeoJSON, nil
	case strings.Contains(ct, "json"):
		return FormatJSON, nil
	case strings.Contains(ct, "yaml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// record is the on-disk shape of one professional, flat like the directory's mock data.
type record struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Online    bool     `yaml:"online"`
	Location  location `yaml:"location"`
	Rating    float64  `yaml:"rating"`
	Projects  int      `yaml:"projects"`
	Rate      string   `yaml:"rate"`
	Expertise []string `yaml:"expertise"`
	Bio       string   `yaml:"bio"`
	Avatar    string   `yaml:"avatar"`
}

type location struct {
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
	City    string  `yaml:"city"`
	Country string  `yaml:"country"`
}

type document struct {
	Professionals []record `yaml:"professionals"`
}

func (r record) toEntity() Entity {
	return Entity{
		ID:     r.ID,
		Name:   r.Name,
		Online: r.Online,
		Location: Location{
			Lat:     r.Location.Lat,
			Lng:     r.Location.Lng,
			City:    r.Location.City,
			Country: r.Location.Country,
		},
		Attributes: DisplayAttributes{
			Rating:    r.Rating,
			Projects:  r.Projects,
			Rate:      r.Rate,
			Expertise: r.Expertise,
			Bio:       r.Bio,
			Avatar:    r.Avatar,
		},
	}
}

// Parse decodes a roster. YAML and JSON share the YAML decoder (JSON is valid
// YAML); both accept either {"professionals": [...]} or a bare list.
func Parse(data []byte, format Format) (*Roster, error) {
	switch format {
	case FormatYAML, FormatJSON:
		return parseRecords(data)
	case FormatGeoJSON:
		return parseGeoJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseRecords(data []byte) (*Roster, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var list []record
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			return nil, fmt.Errorf("decode roster: %w", err)
		}
		doc.Professionals = list
	}

	roster := &Roster{}
	for i, r := range doc.Professionals {
		roster.add(i, r.toEntity())
	}
	return roster, nil
}

func parseGeoJSON(data []byte) (*Roster, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson roster: %w", err)
	}

	roster := &Roster{}
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			roster.Warnings = append(roster.Warnings,
				fmt.Sprintf("feature %d: geometry %T is not a Point, skipped", i, f.Geometry))
			continue
		}

		props := f.Properties
		id := props.MustString("id", "")
		if id == "" && f.ID != nil {
			id = fmt.Sprint(f.ID)
		}
		loc := geo.LocationFromPoint(pt)

		roster.add(i, Entity{
			ID:     id,
			Name:   props.MustString("name", ""),
			Online: props.MustBool("online", false),
			Location: Location{
				Lat:     loc.Lat,
				Lng:     loc.Lng,
				City:    props.MustString("city", ""),
				Country: props.MustString("country", ""),
			},
			Attributes: DisplayAttributes{
				Rating:    props.MustFloat64("rating", 0),
				Projects:  props.MustInt("projects", 0),
				Rate:      props.MustString("rate", ""),
				Expertise: stringList(props["expertise"]),
				Bio:       props.MustString("bio", ""),
				Avatar:    props.MustString("avatar", ""),
			},
		})
	}
	return roster, nil
}

// add appends an entity, recording problems as warnings. Entities with bad
// coordinates are kept: the engine rejects them at projection time.
func (r *Roster) add(i int, e Entity) {
	if e.ID == "" {
		r.Warnings = append(r.Warnings, fmt.Sprintf("record %d: %v: missing id, skipped", i, ErrInvalidEntity))
		return
	}
	if err := e.Location.Geo().Validate(); err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("entity %s: %v", e.ID, err))
	}
	r.Entities = append(r.Entities, e)
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
