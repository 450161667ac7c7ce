package main

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestReport_Passes(t *testing.T) {
	result := domain.LoadResult{
		Events: []domain.QuakeEvent{
			{ID: "eq-1", Line: 2, Latitude: ptr(35.68), Longitude: ptr(139.76)},
			{ID: "eq-2", Line: 3},
		},
		Rows: 2,
	}

	var buf bytes.Buffer
	code := report(&buf, result, 0.05, 0.01)

	assert.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "Rows: 2 read, 2 kept, 0 dropped, 0 field warnings")
	assert.NotContains(t, buf.String(), "FAIL")
}

func TestReport_Failures(t *testing.T) {
	result := domain.LoadResult{
		Events: []domain.QuakeEvent{
			{ID: "eq-1", Line: 2, Latitude: ptr(-35.68), Longitude: ptr(139.76)},
			{ID: "eq-1", Line: 3},
		},
		Warnings: []domain.RowWarning{
			{Line: 3, Column: domain.Columns[domain.ColMagnitude], Value: "x", Reason: "not numeric"},
			{Line: 4, Column: domain.Columns[domain.ColOccurredAt], Value: "不明", Reason: "unparseable timestamp"},
		},
		Rows:    3,
		Dropped: 1,
	}

	var buf bytes.Buffer
	code := report(&buf, result, 0.05, 0.01)
	out := buf.String()

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "--- Timestamps parse ---")
	assert.Contains(t, out, `line 4: "不明" unparseable timestamp`)
	assert.Contains(t, out, "--- Field values parse ---")
	assert.Contains(t, out, "--- Epicenters within Japan region ---")
	assert.Contains(t, out, "line 3: id eq-1 duplicates line 2")
}

func TestRatio(t *testing.T) {
	assert.Zero(t, ratio(3, 0))
	assert.InDelta(t, 0.5, ratio(1, 2), 1e-9)
}
