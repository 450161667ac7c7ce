// Command quakestats loads the seismic event CSV, filters it to a date range,
// and prints a summary of the selection: row accounting, parse warnings by
// column, severity bands, and magnitude/depth statistics.
//
// Usage:
//
//	go run ./cmd/quakestats -csv data/zishin.csv -start 2024-04-01 -end 2024-04-30
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/couchcryptid/quake-data-etl/internal/pipeline"
	"github.com/couchcryptid/quake-data-etl/internal/source"
	"github.com/couchcryptid/quake-data-etl/internal/view"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	csvPath := flag.String("csv", cfg.CSVPath, "path to the seismic event CSV")
	start := flag.String("start", "", "first date (YYYY-MM-DD); blank with -end blank selects the default range")
	end := flag.String("end", "", "last date (YYYY-MM-DD), inclusive")
	flag.Parse()

	dr, err := domain.ParseDateRange(*start, *end, cfg.Location, cfg.DefaultRangeDays)
	if err != nil {
		return fmt.Errorf("%s (%w)", domain.InvalidRangeMessage, err)
	}

	logger := observability.NewLoggerTo(os.Stderr, cfg)
	loader := source.NewLoader(*csvPath, cfg.SourceEncoding, cfg.Location, logger)
	p := pipeline.New(loader, nil, logger, observability.NewMetrics())

	res, err := p.Run(context.Background(), dr)
	if err != nil {
		return err
	}

	printStats(os.Stdout, res)
	return nil
}

func printStats(w io.Writer, res *pipeline.Result) {
	stats := view.BuildStats(res.Events)
	m := view.BuildMap(res.Events)

	fmt.Fprintf(w, "=== Seismic events %s (%d days) ===\n", res.Range, res.Range.Days())
	fmt.Fprintf(w, "Rows read: %d, dropped: %d, warnings: %d\n", res.Rows, res.Dropped, len(res.Warnings))
	fmt.Fprintf(w, "Events in range: %d (mapped %d, no coordinates %d)\n", stats.Count, len(m.Markers), m.Skipped)
	fmt.Fprintf(w, "By severity: low=%d, moderate=%d, high=%d, unknown=%d\n",
		stats.Severity[string(domain.SeverityLow)], stats.Severity[string(domain.SeverityModerate)],
		stats.Severity[string(domain.SeverityHigh)], stats.Severity[view.SeverityUnknown])

	printSummary(w, "Magnitude", stats.Magnitude.Summary)
	printSummary(w, "Depth (km)", stats.Depth.Summary)

	if r := stats.MagnitudeDepth.Pearson; r != nil {
		fmt.Fprintf(w, "Magnitude vs depth: n=%d, r=%.3f\n", len(stats.MagnitudeDepth.Points), *r)
	} else {
		fmt.Fprintf(w, "Magnitude vs depth: n=%d, r=n/a\n", len(stats.MagnitudeDepth.Points))
	}

	busiest, count := 0, 0
	for h, n := range stats.HourOfDay {
		if n > count {
			busiest, count = h, n
		}
	}
	if count > 0 {
		fmt.Fprintf(w, "Busiest hour: %02d:00 (%d events)\n", busiest, count)
	}

	printWarnings(w, res.Warnings)
}

func printSummary(w io.Writer, name string, s *view.Summary) {
	if s == nil {
		fmt.Fprintf(w, "%s: no values\n", name)
		return
	}
	fmt.Fprintf(w, "%s: n=%d min=%.1f max=%.1f mean=%s median=%.2f sd=%s\n",
		name, s.Count, s.Min, s.Max, optional(s.Mean), s.Median, optional(s.StdDev))
}

func optional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func printWarnings(w io.Writer, warnings []domain.RowWarning) {
	if len(warnings) == 0 {
		return
	}
	byColumn := map[string]int{}
	for _, wn := range warnings {
		byColumn[wn.Column]++
	}
	columns := make([]string, 0, len(byColumn))
	for c := range byColumn {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	fmt.Fprintln(w, "\nWarnings by column:")
	for _, c := range columns {
		fmt.Fprintf(w, "  %-24s %d\n", c, byColumn[c])
	}
}
