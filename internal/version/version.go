// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.2.0"

// Milestones:
// 0.2.0 - Activity view, roster reload loop, GeoJSON rosters, JSON snapshot export
// 0.1.0 - Initial release: braille globe, mouse picking, detail overlay, headless summary
