package globe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-globe/internal/entity"
	"github.com/litescript/ls-globe/internal/geo"
)

// SnapshotExport is the JSON-serializable state of one visualization session.
type SnapshotExport struct {
	Session   string         `json:"session"`
	Timestamp time.Time      `json:"timestamp"`
	Origin    string         `json:"origin,omitempty"`
	Summary   entity.Summary `json:"summary"`
	Camera    CameraExport   `json:"camera"`
	Selection string         `json:"selection"`
	Markers   []MarkerExport `json:"markers"`
}

// CameraExport is the camera in degrees.
type CameraExport struct {
	Azimuth      float64 `json:"azimuth_deg"`
	Elevation    float64 `json:"elevation_deg"`
	Distance     float64 `json:"distance"`
	AutoRotating bool    `json:"auto_rotating"`
}

// MarkerExport is a JSON-friendly marker with its entity details.
type MarkerExport struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	City     string     `json:"city,omitempty"`
	Country  string     `json:"country,omitempty"`
	Lat      float64    `json:"lat"`
	Lng      float64    `json:"lng"`
	Position [3]float64 `json:"position"`
	Visible  bool       `json:"visible"`
}

// ExportSnapshot captures the engine's current state.
func ExportSnapshot(e *Engine, origin string, at time.Time) *SnapshotExport {
	cam := e.Camera()
	export := &SnapshotExport{
		Session:   e.SessionID(),
		Timestamp: at,
		Origin:    origin,
		Summary:   e.Summary(),
		Camera: CameraExport{
			Azimuth:      geo.RadToDeg(cam.Azimuth),
			Elevation:    geo.RadToDeg(cam.Elevation),
			Distance:     cam.Distance,
			AutoRotating: cam.AutoRotating,
		},
		Selection: e.Selection().String(),
		Markers:   []MarkerExport{},
	}

	for _, m := range e.Markers() {
		export.Markers = append(export.Markers, MarkerExport{
			ID:       m.ID,
			Name:     m.Name,
			City:     m.Location.City,
			Country:  m.Location.Country,
			Lat:      m.Location.Lat,
			Lng:      m.Location.Lng,
			Position: [3]float64{m.Position.X, m.Position.Y, m.Position.Z},
			Visible:  m.Visible,
		})
	}
	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// LegendText is the overlay's count line, e.g. "6 online professionals".
func LegendText(s entity.Summary) string {
	return fmt.Sprintf("%d online professionals", s.Online)
}

// WriteSummaryTable writes the legend and a marker table.
func WriteSummaryTable(w io.Writer, e *Engine, timestamp time.Time) {
	summary := e.Summary()

	fmt.Fprintf(w, "Globe @ %s\n", timestamp.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 78))
	fmt.Fprintf(w, "%s (%d total)\n", LegendText(summary), summary.Total)

	markers := e.Markers()
	if len(markers) == 0 {
		fmt.Fprintln(w, "No online professionals")
		return
	}

	fmt.Fprintln(w, strings.Repeat("─", 78))
	fmt.Fprintf(w, "%-6s %-20s %-16s %-12s %8s %9s %-7s\n",
		"ID", "Name", "City", "Country", "Lat", "Lng", "Visible")
	fmt.Fprintln(w, strings.Repeat("─", 78))

	for _, m := range markers {
		vis := "no"
		if m.Visible {
			vis = "yes"
		}
		fmt.Fprintf(w, "%-6s %-20s %-16s %-12s %8.3f %9.3f %-7s\n",
			truncateStr(m.ID, 6),
			truncateStr(m.Name, 20),
			truncateStr(m.Location.City, 16),
			truncateStr(m.Location.Country, 12),
			m.Location.Lat,
			m.Location.Lng,
			vis,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d markers\n", len(markers))
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
