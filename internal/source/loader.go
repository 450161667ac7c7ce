// Package source reads the seismic event CSV into typed domain records.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported source encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 1024

// Loader reads a CSV file under the fixed column schema.
// It implements pipeline.Source.
type Loader struct {
	path     string
	encoding string
	location *time.Location
	logger   *slog.Logger
}

// NewLoader creates a Loader for path. Zone-less timestamps are read in loc.
func NewLoader(path, encoding string, loc *time.Location, logger *slog.Logger) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{
		path:     path,
		encoding: encoding,
		location: loc,
		logger:   logger,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// Load opens the file and reads every row. A missing file, an empty file, or
// any line with the wrong number of columns is a *domain.SourceLoadError.
func (l *Loader) Load(ctx context.Context) (domain.LoadResult, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.LoadResult{}, &domain.SourceLoadError{Path: l.path, Reason: "open source", Err: err}
	}
	defer f.Close()

	return l.Read(ctx, f)
}

// Read parses an already-open source. The header row is skipped.
func (l *Loader) Read(ctx context.Context, r io.Reader) (domain.LoadResult, error) {
	decoded, err := decodeReader(r, l.encoding)
	if err != nil {
		return domain.LoadResult{}, &domain.SourceLoadError{Path: l.path, Reason: "decode source", Err: err}
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = domain.ColumnCount

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.LoadResult{}, &domain.SourceLoadError{Path: l.path, Reason: "missing header row"}
		}
		return domain.LoadResult{}, l.readError(err)
	}

	var result domain.LoadResult
	for {
		if result.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return domain.LoadResult{}, err
			}
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.LoadResult{}, l.readError(err)
		}

		line, _ := reader.FieldPos(0)
		result.Rows++

		event, warnings, err := domain.ParseRawRow(domain.RawRow{Line: line, Fields: fields}, l.location)
		result.Warnings = append(result.Warnings, warnings...)
		if err != nil {
			result.Dropped++
			l.logger.Debug("row dropped", "line", line, "error", err)
			continue
		}
		for _, w := range warnings {
			l.logger.Debug("row field unparsed", "line", w.Line, "column", w.Column, "value", w.Value)
		}
		result.Events = append(result.Events, event)
	}

	return result, nil
}

// readError converts a csv failure into a fatal load error, keeping the line.
func (l *Loader) readError(err error) error {
	loadErr := &domain.SourceLoadError{Path: l.path, Reason: "read csv", Err: err}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		loadErr.Line = parseErr.Line
		if errors.Is(parseErr.Err, csv.ErrFieldCount) {
			loadErr.Reason = fmt.Sprintf("schema mismatch: expected %d columns", domain.ColumnCount)
			loadErr.Err = parseErr.Err
		}
	}
	return loadErr
}

// ParseEncoding maps an encoding name or common alias to EncodingUTF8 or
// EncodingShiftJIS. Blank means UTF-8.
func ParseEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return EncodingUTF8, nil
	case EncodingShiftJIS, "sjis", "shift-jis", "cp932":
		return EncodingShiftJIS, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q: want %s or %s", name, EncodingUTF8, EncodingShiftJIS)
	}
}

// decodeReader wraps r so the csv reader always sees UTF-8 without a BOM.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	enc, err := ParseEncoding(encoding)
	if err != nil {
		return nil, err
	}
	if enc == EncodingShiftJIS {
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	}
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
}
