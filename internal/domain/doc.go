// Package domain models strong-motion seismic event records.
//
// # Data Source
//
// Records come from a strong-motion observation CSV export: one row per
// (earthquake, station) observation, UTF-8 or Shift-JIS, with a header row
// that is skipped. The schema is fixed at 19 columns addressed by position
// (see the Col* constants and [Columns]).
//
// # Field Conventions
//
// Coordinates:
//
//	"<degrees>°<minutes>’"  →  e.g. "35°41’" = 35 + 41/60 = 35.6833…
//	The minute tick is U+2019 (right single quotation mark), not ASCII "'".
//	Minutes are always added: "-35°30’" = -35 + 30/60 = -34.5.
//	Hemisphere letters (N/S/E/W) are not part of the format and fail parsing.
//
// Occurrence time:
//
//	"2024/01/01 16:10:09" (slashes or dashes, optional seconds and fraction,
//	optional leading zeros). Zone-less values are read in the configured
//	source time zone (Asia/Tokyo by default). RFC 3339 values keep their offset.
//
// Magnitude, depth, distance, acceleration, PSI:
//
//	Decimal numbers. Placeholders such as "-", "不明" or "" are common for
//	magnitude and are read as missing, never as zero.
//
// # Missing Data
//
// A malformed coordinate or number never fails a row: the field becomes nil
// and a [RowWarning] is recorded. Only a missing or unparseable timestamp
// excludes a row, because it cannot take part in date filtering. A wrong
// column count anywhere is fatal ([SourceLoadError]) since positional mapping
// cannot degrade safely.
//
// # Date Windows
//
// [DateRange] is inclusive on calendar dates: the end date is extended to the
// end of that day. Start after end is an [InvalidRangeError], never swapped.
//
// # Severity
//
//	magnitude <= 3      low       (green)
//	3 < magnitude <= 5  moderate  (orange)
//	magnitude > 5       high      (red)
//
// Events without a magnitude have no severity.
//
// # ID Generation
//
// Event IDs are deterministic SHA-256 hashes of time|station|record|lat|lon,
// giving stable message keys across repeated exports. See [generateID].
package domain
