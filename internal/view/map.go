// Package view shapes filtered events into map and statistics payloads.
package view

import (
	"fmt"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// Map defaults centered on Tokyo.
const (
	DefaultCenterLat = 35.6895
	DefaultCenterLon = 139.6917
	DefaultZoom      = 5
	MarkerRadiusM    = 20000
)

const popupTimeLayout = "2006/01/02 15:04:05"

// MapView is a renderable marker set.
type MapView struct {
	Center  LatLon        `json:"center"`
	Zoom    int           `json:"zoom"`
	Markers []Marker      `json:"markers"`
	Skipped int           `json:"skipped"`
	Legend  []LegendEntry `json:"legend"`
}

// LatLon is a map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Marker is one circle on the map. Severity and Color are empty when the
// event has no magnitude.
type Marker struct {
	ID        string           `json:"id"`
	Lat       float64          `json:"lat"`
	Lon       float64          `json:"lon"`
	RadiusM   int              `json:"radius_m"`
	Magnitude *float64         `json:"magnitude"`
	Severity  *domain.Severity `json:"severity,omitempty"`
	Color     string           `json:"color,omitempty"`
	Popup     string           `json:"popup"`
	Address   string           `json:"address,omitempty"`
}

// LegendEntry describes one magnitude band.
type LegendEntry struct {
	Severity domain.Severity `json:"severity"`
	Color    string          `json:"color"`
	Label    string          `json:"label"`
}

// BuildMap creates one marker per event with both coordinates, in input
// order. Events missing either coordinate are counted in Skipped.
func BuildMap(events []domain.QuakeEvent) MapView {
	v := MapView{
		Center:  LatLon{Lat: DefaultCenterLat, Lon: DefaultCenterLon},
		Zoom:    DefaultZoom,
		Markers: make([]Marker, 0, len(events)),
		Legend:  Legend(),
	}

	for _, e := range events {
		if !e.HasCoordinates() {
			v.Skipped++
			continue
		}
		m := Marker{
			ID:        e.ID,
			Lat:       *e.Latitude,
			Lon:       *e.Longitude,
			RadiusM:   MarkerRadiusM,
			Magnitude: e.Magnitude,
			Popup:     Popup(e),
		}
		if sev := e.Severity(); sev != nil {
			m.Severity = sev
			m.Color = sev.Color()
		}
		if e.Place != nil {
			m.Address = e.Place.FormattedAddress
		}
		v.Markers = append(v.Markers, m)
	}
	return v
}

// Popup formats the marker label: occurrence time, epicenter, magnitude.
// A missing magnitude is shown as "-".
func Popup(e domain.QuakeEvent) string {
	mag := "-"
	if e.Magnitude != nil {
		mag = fmt.Sprintf("%.1f", *e.Magnitude)
	}
	return fmt.Sprintf("%s %s マグニチュード: %s", e.OccurredAt.Format(popupTimeLayout), e.EpicenterName, mag)
}

// Legend returns the three magnitude bands in ascending order.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(domain.Severities))
	for _, s := range domain.Severities {
		out = append(out, LegendEntry{Severity: s, Color: s.Color(), Label: s.Label()})
	}
	return out
}
