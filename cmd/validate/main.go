// Command validate performs data integrity checks on a seismic event CSV
// before it is served: schema, timestamp coverage, per-column parse failures,
// coordinate bounds, and duplicate event IDs. It exits non-zero when a phase
// fails.
//
// Usage:
//
//	go run ./cmd/validate -csv data/zishin.csv -max-warning-ratio 0.05
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/couchcryptid/quake-data-etl/internal/source"
)

// Approximate bounding box of Japan and its surrounding seas.
const (
	minLat, maxLat = 20.0, 50.0
	minLon, maxLon = 120.0, 155.0
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	csvPath := flag.String("csv", cfg.CSVPath, "path to the seismic event CSV")
	maxWarningRatio := flag.Float64("max-warning-ratio", 0.05, "largest tolerated share of rows with a field warning")
	maxDropRatio := flag.Float64("max-drop-ratio", 0.01, "largest tolerated share of rows dropped for a bad timestamp")
	flag.Parse()

	logger := observability.NewLoggerTo(os.Stderr, cfg)
	loader := source.NewLoader(*csvPath, cfg.SourceEncoding, cfg.Location, logger)

	fmt.Println("=== Seismic Data Integrity Validation ===")
	fmt.Println()

	result, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	os.Exit(report(os.Stdout, result, *maxWarningRatio, *maxDropRatio))
}

// report runs every phase, prints the outcome, and returns the exit code.
func report(w io.Writer, result domain.LoadResult, maxWarningRatio, maxDropRatio float64) int {
	phases := []*phase{
		validateTimestamps(result, maxDropRatio),
		validateFieldWarnings(result, maxWarningRatio),
		validateCoordinates(result.Events),
		validateUniqueIDs(result.Events),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d read, %d kept, %d dropped, %d field warnings\n",
		result.Rows, len(result.Events), result.Dropped, len(result.Warnings))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Fprintf(w, "  ... and %d more\n", len(p.errors)-i)
				break
			}
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func validateTimestamps(result domain.LoadResult, maxRatio float64) *phase {
	p := &phase{name: "Timestamps parse"}
	r := ratio(result.Dropped, result.Rows)
	if r <= maxRatio {
		return p
	}
	p.errorf("%d of %d rows dropped (%.1f%% > %.1f%%)", result.Dropped, result.Rows, r*100, maxRatio*100)
	for _, wn := range result.Warnings {
		if wn.Column == domain.Columns[domain.ColOccurredAt] {
			p.errorf("line %d: %q %s", wn.Line, wn.Value, wn.Reason)
		}
	}
	return p
}

func validateFieldWarnings(result domain.LoadResult, maxRatio float64) *phase {
	p := &phase{name: "Field values parse"}
	lines := map[int]bool{}
	for _, wn := range result.Warnings {
		if wn.Column != domain.Columns[domain.ColOccurredAt] {
			lines[wn.Line] = true
		}
	}
	if r := ratio(len(lines), result.Rows); r > maxRatio {
		p.errorf("%d of %d rows have field warnings (%.1f%% > %.1f%%)", len(lines), result.Rows, r*100, maxRatio*100)
	}
	return p
}

func validateCoordinates(events []domain.QuakeEvent) *phase {
	p := &phase{name: "Epicenters within Japan region"}
	for _, e := range events {
		if !e.HasCoordinates() {
			continue
		}
		lat, lon := *e.Latitude, *e.Longitude
		if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
			p.errorf("line %d: (%.4f, %.4f) outside [%g..%g]x[%g..%g]", e.Line, lat, lon, minLat, maxLat, minLon, maxLon)
		}
	}
	return p
}

func validateUniqueIDs(events []domain.QuakeEvent) *phase {
	p := &phase{name: "Event IDs unique"}
	seen := make(map[string]int, len(events))
	for _, e := range events {
		if first, ok := seen[e.ID]; ok {
			p.errorf("line %d: id %s duplicates line %d", e.Line, e.ID, first)
			continue
		}
		seen[e.ID] = e.Line
	}
	return p
}
