package domain

import "time"

// Column positions of the fixed source schema. Every source line, header
// included, carries exactly ColumnCount fields.
const (
	ColOccurredAt = iota
	ColLatitude
	ColLongitude
	ColDepth
	ColMagnitude
	ColEpicenterName
	ColEventName
	ColStation
	ColEpicentralDistance
	ColPeakAccelNS
	ColPeakAccelEW
	ColPeakAccelUD
	ColPSINS
	ColPSIEW
	ColPSIUD
	ColRecordID
	ColWaveformOriginal
	ColWaveformCorrected
	ColWaveformSMAC

	ColumnCount
)

// Columns holds the header label of each column, indexed by the Col* constants.
// The header row of the source is skipped, so these labels are only used to
// name columns in warnings and summaries.
var Columns = [ColumnCount]string{
	"発震日時",
	"緯度",
	"経度",
	"深さ(Km)",
	"マグニチュード",
	"震源地名",
	"地震名",
	"観測地点",
	"震央距離(Km)",
	"最大加速度南北(Gal)",
	"最大加速度東西(Gal)",
	"最大加速度上下(Gal)",
	"ＰＳＩ値南北(cm・s^-1/2)",
	"ＰＳＩ値東西(cm・s^-1/2)",
	"ＰＳＩ値上下(cm・s^-1/2)",
	"記録番号",
	"記録（波形）データ（オリジナル）",
	"記録（波形）データ（補正）",
	"記録（波形）データ（ＳＭＡＣ相当）",
}

// RawRow is one source line as read, addressed by the Col* constants.
type RawRow struct {
	Line   int
	Fields []string
}

// Field returns the raw value at col, or "" when out of range.
func (r RawRow) Field(col int) string {
	if col < 0 || col >= len(r.Fields) {
		return ""
	}
	return r.Fields[col]
}

// Axes holds a three-component strong-motion measurement.
type Axes struct {
	NS *float64 `json:"ns"`
	EW *float64 `json:"ew"`
	UD *float64 `json:"ud"`
}

// WaveformRefs are the waveform data references, passed through unused.
type WaveformRefs struct {
	Original  string `json:"original,omitempty"`
	Corrected string `json:"corrected,omitempty"`
	SMAC      string `json:"smac,omitempty"`
}

// Place is reverse-geocoding enrichment for an epicenter.
type Place struct {
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Source           string  `json:"source"` // "reverse", "original", "failed"
}

// QuakeEvent is the typed, query-ready form of one source row.
//
// Latitude, Longitude, DepthKm and Magnitude are nil when the source value
// could not be parsed. Latitude and Longitude are parsed independently, so
// consumers must check both (see HasCoordinates).
type QuakeEvent struct {
	ID         string    `json:"id"`
	Line       int       `json:"line"`
	OccurredAt time.Time `json:"occurred_at"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	DepthKm   *float64 `json:"depth_km"`
	DepthRaw  string   `json:"depth_raw,omitempty"`
	Magnitude *float64 `json:"magnitude"`

	EpicenterName        string       `json:"epicenter_name"`
	EventName            string       `json:"event_name,omitempty"`
	StationName          string       `json:"station_name"`
	EpicentralDistanceKm *float64     `json:"epicentral_distance_km"`
	PeakAcceleration     Axes         `json:"peak_acceleration_gal"`
	PSI                  Axes         `json:"psi"`
	RecordID             string       `json:"record_id,omitempty"`
	Waveform             WaveformRefs `json:"waveform"`

	Place *Place `json:"place,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude were parsed.
func (e QuakeEvent) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Severity classifies the event magnitude; nil when the magnitude is missing.
func (e QuakeEvent) Severity() *Severity {
	return ClassifySeverity(e.Magnitude)
}

// RowWarning records a non-fatal per-field parse failure. The affected field
// is nil on the event; the row itself is kept unless Column is the timestamp.
type RowWarning struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// LoadResult is the outcome of reading a whole source.
type LoadResult struct {
	Events   []QuakeEvent
	Warnings []RowWarning
	// Rows counts data rows read, including dropped ones.
	Rows int
	// Dropped counts rows excluded because their timestamp was unusable.
	Dropped int
}
