package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/pipeline"
	"github.com/couchcryptid/quake-data-etl/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "../source/testdata/sample.csv"

type stubGeocoder struct{}

func (stubGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{
		Lat:              lat,
		Lon:              lon,
		FormattedAddress: "Japan",
		PlaceName:        "Japan",
		Confidence:       1,
	}, nil
}

func TestPipeline_WithSampleCSV(t *testing.T) {
	loader := source.NewLoader(sampleCSV, source.EncodingUTF8, jst, discardLogger())
	p, _ := newTestPipeline(loader, nil)

	april := mustRange(t,
		time.Date(2024, time.April, 1, 0, 0, 0, 0, jst),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, jst),
	)
	result, err := p.Run(context.Background(), april)
	require.NoError(t, err)

	records := make([]string, 0, len(result.Events))
	for _, e := range result.Events {
		records = append(records, e.RecordID)
	}
	assert.Equal(t, []string{"R001", "R002", "R003", "R004"}, records)
	assert.Equal(t, 6, result.Rows)
	assert.Equal(t, 1, result.Dropped)
}

func TestPipeline_WithSampleCSV_EndDateIsInclusive(t *testing.T) {
	loader := source.NewLoader(sampleCSV, source.EncodingUTF8, jst, discardLogger())
	p, _ := newTestPipeline(loader, nil)

	// R003 occurred at 23:59:59 on the end date.
	day := time.Date(2024, time.April, 20, 0, 0, 0, 0, jst)
	result, err := p.Run(context.Background(), mustRange(t, day, day))
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "R003", result.Events[0].RecordID)
}

func TestPipeline_WithSampleCSV_Geocoding(t *testing.T) {
	loader := source.NewLoader(sampleCSV, source.EncodingUTF8, jst, discardLogger())
	p, _ := newTestPipeline(loader, pipeline.NewEnricher(stubGeocoder{}, discardLogger()))

	april := mustRange(t,
		time.Date(2024, time.April, 1, 0, 0, 0, 0, jst),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, jst),
	)
	result, err := p.Run(context.Background(), april)
	require.NoError(t, err)

	sources := map[string]string{}
	for _, e := range result.Events {
		require.NotNil(t, e.Place, e.RecordID)
		sources[e.RecordID] = e.Place.Source
	}
	assert.Equal(t, "reverse", sources["R001"])
	assert.Equal(t, "original", sources["R004"], "row without coordinates is not looked up")
}

func TestPipeline_WithMissingCSV(t *testing.T) {
	loader := source.NewLoader("testdata/does-not-exist.csv", source.EncodingUTF8, jst, discardLogger())
	p, _ := newTestPipeline(loader, nil)

	_, err := p.Run(context.Background(), domain.DefaultDateRange(jst, 30))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceLoad)
}
