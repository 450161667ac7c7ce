package domain

// Severity is an ordinal band derived from magnitude.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Severities lists the bands in ascending order.
var Severities = []Severity{SeverityLow, SeverityModerate, SeverityHigh}

// ClassifySeverity maps a magnitude to its band using inclusive upper bounds:
//   - magnitude <= 3: low
//   - magnitude <= 5: moderate
//   - otherwise: high
//
// A nil magnitude has no severity; callers must not default it to a band.
func ClassifySeverity(magnitude *float64) *Severity {
	if magnitude == nil {
		return nil
	}

	var s Severity
	switch m := *magnitude; {
	case m <= 3:
		s = SeverityLow
	case m <= 5:
		s = SeverityModerate
	default:
		s = SeverityHigh
	}
	return &s
}

// Color is the marker color for the band.
func (s Severity) Color() string {
	switch s {
	case SeverityLow:
		return "green"
	case SeverityModerate:
		return "orange"
	case SeverityHigh:
		return "red"
	default:
		return ""
	}
}

// Label is the legend text for the band.
func (s Severity) Label() string {
	switch s {
	case SeverityLow:
		return "マグニチュード3以下"
	case SeverityModerate:
		return "マグニチュード3を超え5以下"
	case SeverityHigh:
		return "マグニチュード5を超える"
	default:
		return ""
	}
}
