package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	samplePath = "testdata/sample.csv"
	testHeader = "発震日時,緯度,経度,深さ(Km),マグニチュード,震源地名,地震名,観測地点,震央距離(Km),最大加速度南北(Gal),最大加速度東西(Gal),最大加速度上下(Gal),ＰＳＩ値南北(cm・s^-1/2),ＰＳＩ値東西(cm・s^-1/2),ＰＳＩ値上下(cm・s^-1/2),記録番号,記録（波形）データ（オリジナル）,記録（波形）データ（補正）,記録（波形）データ（ＳＭＡＣ相当）"
	validRow   = "2024/04/01 10:30:00,35°41’,139°46’,62,4.6,千葉県北西部,,東京都千代田区大手町,38.5,12.3,10.1,5.0,0.8,0.7,0.3,R001,,,"
)

var jst = time.FixedZone("JST", 9*3600)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLoader(path string) *Loader {
	return NewLoader(path, EncodingUTF8, jst, discardLogger())
}

func readString(t *testing.T, content string) (domain.LoadResult, error) {
	t.Helper()
	return newTestLoader("inline.csv").Read(context.Background(), strings.NewReader(content))
}

func TestLoad_SampleFile(t *testing.T) {
	result, err := newTestLoader(samplePath).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.Rows)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Events, 5)

	records := make([]string, 0, len(result.Events))
	for _, e := range result.Events {
		records = append(records, e.RecordID)
	}
	assert.Equal(t, []string{"R001", "R002", "R003", "R004", "R006"}, records)

	first := result.Events[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, time.Date(2024, 4, 1, 10, 30, 0, 0, jst), first.OccurredAt)
	require.True(t, first.HasCoordinates())
	assert.InDelta(t, 35.6833, *first.Latitude, 1e-4)
	assert.Equal(t, "千葉県北西部", first.EpicenterName)
	assert.Equal(t, "R001_smac.zip", first.Waveform.SMAC)

	fractional := result.Events[1]
	assert.Equal(t, time.Date(2024, 4, 16, 2, 14, 33, 200_000_000, jst), fractional.OccurredAt)
	require.NotNil(t, fractional.Magnitude)
	assert.Equal(t, 6.6, *fractional.Magnitude)

	noMagnitude := result.Events[2]
	assert.Nil(t, noMagnitude.Magnitude)
	assert.True(t, noMagnitude.HasCoordinates())

	quoted := result.Events[3]
	assert.Equal(t, "石川県能登地方, 沖合", quoted.EpicenterName)
	assert.Equal(t, "令和6年能登半島地震", quoted.EventName)
	assert.Nil(t, quoted.Latitude)
	assert.Nil(t, quoted.Longitude)
	assert.Nil(t, quoted.DepthKm)
	assert.Equal(t, "ごく浅い", quoted.DepthRaw)
	require.NotNil(t, quoted.Magnitude)
	assert.Equal(t, 2.1, *quoted.Magnitude)

	columnsByLine := map[int][]string{}
	for _, w := range result.Warnings {
		columnsByLine[w.Line] = append(columnsByLine[w.Line], w.Column)
	}
	assert.Equal(t, map[int][]string{
		4: {"マグニチュード"},
		5: {"緯度", "経度", "深さ(Km)"},
		6: {"発震日時"},
	}, columnsByLine)
}

func TestRead_MalformedCoordinateRowRetained(t *testing.T) {
	row := strings.Replace(validRow, "35°41’,139°46’", "35.68,139.77", 1)
	result, err := readString(t, testHeader+"\n"+row+"\n")

	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	event := result.Events[0]
	assert.Nil(t, event.Latitude)
	assert.Nil(t, event.Longitude)
	require.NotNil(t, event.Magnitude)
	assert.Equal(t, 4.6, *event.Magnitude)
	require.NotNil(t, event.DepthKm)
	assert.Equal(t, 62.0, *event.DepthKm)
	assert.Equal(t, "東京都千代田区大手町", event.StationName)
	assert.Len(t, result.Warnings, 2)
}

func TestRead_HeaderOnly(t *testing.T) {
	result, err := readString(t, testHeader+"\n")

	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Zero(t, result.Rows)
}

func TestRead_UTF8BOM(t *testing.T) {
	result, err := readString(t, "\ufeff"+testHeader+"\n"+validRow+"\n")

	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, time.Date(2024, 4, 1, 10, 30, 0, 0, jst), result.Events[0].OccurredAt)
}

func TestRead_ShiftJIS(t *testing.T) {
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), testHeader+"\n"+validRow+"\n")
	require.NoError(t, err)

	loader := NewLoader("sjis.csv", EncodingShiftJIS, jst, discardLogger())
	result, err := loader.Read(context.Background(), strings.NewReader(encoded))

	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "千葉県北西部", result.Events[0].EpicenterName)
	assert.True(t, result.Events[0].HasCoordinates())
}

func TestRead_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"short data row", testHeader + "\n" + validRow + "\n2024/04/02 00:00,35°41’,139°46’\n", 3},
		{"extra column", testHeader + "\n" + validRow + ",extra\n", 2},
		{"short header", "発震日時,緯度,経度\n" + validRow + "\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readString(t, tt.content)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSourceLoad)
			var loadErr *domain.SourceLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.line, loadErr.Line)
			assert.Contains(t, loadErr.Reason, "schema mismatch")
		})
	}
}

func TestRead_Empty(t *testing.T) {
	_, err := readString(t, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceLoad)
	assert.Contains(t, err.Error(), "missing header row")
}

func TestRead_UnsupportedEncoding(t *testing.T) {
	loader := NewLoader("x.csv", "ebcdic", jst, discardLogger())
	_, err := loader.Read(context.Background(), strings.NewReader(testHeader))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceLoad)
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", EncodingUTF8},
		{"UTF-8", EncodingUTF8},
		{"utf8", EncodingUTF8},
		{"shift_jis", EncodingShiftJIS},
		{" SJIS ", EncodingShiftJIS},
		{"cp932", EncodingShiftJIS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEncoding(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseEncoding("latin-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latin-1")
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := newTestLoader(path).Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), path)
}

func TestRead_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader("inline.csv").Read(ctx, strings.NewReader(testHeader+"\n"+validRow+"\n"))

	assert.ErrorIs(t, err, context.Canceled)
}
