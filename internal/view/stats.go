package view

import (
	"math"
	"sort"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBins is the bin count for magnitude and depth histograms.
const HistogramBins = 30

// SeverityUnknown counts events without a magnitude.
const SeverityUnknown = "unknown"

// StatsView aggregates a filtered event set for charting.
type StatsView struct {
	Count          int            `json:"count"`
	Magnitude      Distribution   `json:"magnitude"`
	Depth          Distribution   `json:"depth_km"`
	HourOfDay      [24]int        `json:"hour_of_day"`
	MagnitudeDepth Relation       `json:"magnitude_vs_depth"`
	Geo            []GeoPoint     `json:"geo"`
	Severity       map[string]int `json:"severity"`
}

// Distribution is a histogram plus summary over the non-missing values of
// one field. Summary is nil when no value is present.
type Distribution struct {
	Summary   *Summary `json:"summary"`
	Histogram []Bin    `json:"histogram"`
}

// Summary holds descriptive statistics. StdDev is the sample standard
// deviation and is 0 for a single value. Mean and StdDev are nil when they
// overflow float64.
type Summary struct {
	Count  int      `json:"count"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Mean   *float64 `json:"mean"`
	StdDev *float64 `json:"stddev"`
	Median float64  `json:"median"`
}

// Bin is a half-open histogram interval [Lower, Upper); the last bin also
// includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Relation pairs magnitude with depth for events where both are present.
// Pearson, Slope, and Intercept are nil for fewer than two points or when
// either variable has zero variance.
type Relation struct {
	Points    []MagnitudeDepth `json:"points"`
	Pearson   *float64         `json:"pearson_r"`
	Slope     *float64         `json:"slope"`
	Intercept *float64         `json:"intercept"`
}

// MagnitudeDepth is one scatter point.
type MagnitudeDepth struct {
	Magnitude float64 `json:"magnitude"`
	DepthKm   float64 `json:"depth_km"`
}

// GeoPoint is one epicenter for the geographic scatter.
type GeoPoint struct {
	Lon       float64          `json:"lon"`
	Lat       float64          `json:"lat"`
	Magnitude *float64         `json:"magnitude"`
	Severity  *domain.Severity `json:"severity,omitempty"`
}

// BuildStats computes the chart payload for events. Missing values are
// excluded per field, never substituted.
func BuildStats(events []domain.QuakeEvent) StatsView {
	v := StatsView{
		Count:    len(events),
		Geo:      make([]GeoPoint, 0, len(events)),
		Severity: map[string]int{SeverityUnknown: 0},
	}
	for _, s := range domain.Severities {
		v.Severity[string(s)] = 0
	}

	var mags, depths, relMag, relDepth []float64
	for _, e := range events {
		v.HourOfDay[e.OccurredAt.Hour()]++

		if e.Magnitude != nil {
			mags = append(mags, *e.Magnitude)
		}
		if e.DepthKm != nil {
			depths = append(depths, *e.DepthKm)
		}
		if e.Magnitude != nil && e.DepthKm != nil {
			relMag = append(relMag, *e.Magnitude)
			relDepth = append(relDepth, *e.DepthKm)
		}

		sev := e.Severity()
		if sev == nil {
			v.Severity[SeverityUnknown]++
		} else {
			v.Severity[string(*sev)]++
		}

		if e.HasCoordinates() {
			v.Geo = append(v.Geo, GeoPoint{
				Lon:       *e.Longitude,
				Lat:       *e.Latitude,
				Magnitude: e.Magnitude,
				Severity:  sev,
			})
		}
	}

	v.Magnitude = distribution(mags)
	v.Depth = distribution(depths)
	v.MagnitudeDepth = relation(relMag, relDepth)
	return v
}

func distribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{Histogram: []Bin{}}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Distribution{
		Summary:   summarize(sorted),
		Histogram: histogram(sorted, HistogramBins),
	}
}

// summarize expects sorted, non-empty input.
func summarize(sorted []float64) *Summary {
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		std = 0
	}
	return &Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   finite(mean),
		StdDev: finite(std),
		Median: median(sorted),
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1]/2 + sorted[n/2]/2
}

// histogram splits [min, max] into equal-width bins. A single distinct value
// gets a unit-wide span centered on it, or one zero-width bin when that span
// is below float64 resolution. A range wider than float64 yields no bins.
func histogram(sorted []float64, bins int) []Bin {
	lo, hi := floats.Min(sorted), floats.Max(sorted)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := hi - lo
	if math.IsInf(width, 0) {
		return []Bin{}
	}
	if width == 0 {
		return []Bin{{Lower: lo, Upper: hi, Count: len(sorted)}}
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	// stat.Histogram treats the last divider as exclusive.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return out
}

func relation(mags, depths []float64) Relation {
	r := Relation{Points: make([]MagnitudeDepth, len(mags))}
	for i := range mags {
		r.Points[i] = MagnitudeDepth{Magnitude: mags[i], DepthKm: depths[i]}
	}
	if len(mags) < 2 {
		return r
	}

	r.Pearson = finite(stat.Correlation(mags, depths, nil))
	if r.Pearson == nil {
		return r
	}
	intercept, slope := stat.LinearRegression(mags, depths, nil, false)
	r.Slope = finite(slope)
	r.Intercept = finite(intercept)
	return r
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
