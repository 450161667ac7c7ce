package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	degreeMark = "°"
	minuteMark = "’"
)

// ErrInvalidTimestamp marks a row whose occurrence datetime is empty or unparseable.
var ErrInvalidTimestamp = errors.New("invalid occurrence timestamp")

// occurredAtLayouts are tried in order. Single-digit month/day/hour layouts
// also accept zero-padded values, and Go accepts a fractional second after
// the seconds field even when the layout omits it.
var occurredAtLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	"2006/1/2",
	"2006-1-2",
}

// ParseRawRow converts one source row into a QuakeEvent. Timestamps without a
// zone are interpreted in loc.
//
// Coordinate and numeric failures never fail the row: the field is left nil
// and a RowWarning is returned. Only an unusable timestamp returns an error
// (wrapping ErrInvalidTimestamp), since a record without a time cannot take
// part in date filtering.
func ParseRawRow(row RawRow, loc *time.Location) (QuakeEvent, []RowWarning, error) {
	rawTime := strings.TrimSpace(row.Field(ColOccurredAt))
	occurredAt, err := ParseOccurredAt(rawTime, loc)
	if err != nil {
		return QuakeEvent{}, []RowWarning{{
			Line:   row.Line,
			Column: Columns[ColOccurredAt],
			Value:  rawTime,
			Reason: err.Error(),
		}}, err
	}

	var warnings []RowWarning
	warn := func(col int, reason string) {
		warnings = append(warnings, RowWarning{
			Line:   row.Line,
			Column: Columns[col],
			Value:  row.Field(col),
			Reason: reason,
		})
	}

	coord := func(col int) *float64 {
		v := ParseCoordinate(row.Field(col))
		if v == nil && strings.TrimSpace(row.Field(col)) != "" {
			warn(col, "not a D°M’ coordinate")
		}
		return v
	}
	number := func(col int, report bool) *float64 {
		v := CoerceFloat(row.Field(col))
		if v == nil && report && strings.TrimSpace(row.Field(col)) != "" {
			warn(col, "not numeric")
		}
		return v
	}

	event := QuakeEvent{
		Line:       row.Line,
		OccurredAt: occurredAt,
		Latitude:   coord(ColLatitude),
		Longitude:  coord(ColLongitude),
		DepthKm:    number(ColDepth, true),
		DepthRaw:   row.Field(ColDepth),
		Magnitude:  number(ColMagnitude, true),

		EpicenterName:        row.Field(ColEpicenterName),
		EventName:            row.Field(ColEventName),
		StationName:          row.Field(ColStation),
		EpicentralDistanceKm: number(ColEpicentralDistance, false),
		PeakAcceleration: Axes{
			NS: number(ColPeakAccelNS, false),
			EW: number(ColPeakAccelEW, false),
			UD: number(ColPeakAccelUD, false),
		},
		PSI: Axes{
			NS: number(ColPSINS, false),
			EW: number(ColPSIEW, false),
			UD: number(ColPSIUD, false),
		},
		RecordID: row.Field(ColRecordID),
		Waveform: WaveformRefs{
			Original:  row.Field(ColWaveformOriginal),
			Corrected: row.Field(ColWaveformCorrected),
			SMAC:      row.Field(ColWaveformSMAC),
		},
	}
	event.ID = generateID(event)

	return event, warnings, nil
}

// ParseCoordinate converts a "<degrees>°<minutes>’" string to decimal degrees.
// It returns nil when either delimiter is missing or either part is not a
// finite number. The result is always degrees + minutes/60, so "-35°30’" is
// -34.5. Minutes are not range-checked.
func ParseCoordinate(raw string) *float64 {
	if !strings.Contains(raw, degreeMark) || !strings.Contains(raw, minuteMark) {
		return nil
	}

	degPart, rest, _ := strings.Cut(raw, degreeMark)
	if strings.Contains(rest, degreeMark) {
		return nil
	}
	minPart := strings.ReplaceAll(rest, minuteMark, "")

	degrees := CoerceFloat(degPart)
	minutes := CoerceFloat(minPart)
	if degrees == nil || minutes == nil {
		return nil
	}

	v := *degrees + *minutes/60
	return &v
}

// CoerceFloat parses a decimal number, returning nil for empty, non-numeric,
// out-of-range, NaN, or infinite input.
func CoerceFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseOccurredAt parses the free-text occurrence datetime. RFC 3339 values
// keep their own offset; everything else is read in loc.
func ParseOccurredAt(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range occurredAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// generateID produces a deterministic ID from the event's identifying fields,
// so re-exporting the same source yields the same message keys.
func generateID(e QuakeEvent) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		e.OccurredAt.UTC().Format(time.RFC3339Nano),
		e.StationName,
		e.RecordID,
		formatOptional(e.Latitude),
		formatOptional(e.Longitude),
	)
	hash := sha256.Sum256([]byte(input))
	return "eq-" + hex.EncodeToString(hash[:8])
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
