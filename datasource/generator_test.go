package datasource

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherforecast/models"
)

func TestGenerateProperties(t *testing.T) {
	start := time.Date(2026, time.February, 26, 22, 30, 0, 0, time.UTC)

	for seed := uint64(0); seed < 50; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*7+1))
		entries := Generate(r, start, 5)

		require.Len(t, entries, 5)
		assert.Equal(t, time.Date(2026, time.February, 26, 0, 0, 0, 0, time.UTC), entries[0].Date)
		for i, e := range entries {
			if i > 0 {
				assert.Equal(t, entries[i-1].Date.AddDate(0, 0, 1), e.Date, "gap at %d", i)
			}
			assert.GreaterOrEqual(t, e.TemperatureC, models.MinTemperatureC)
			assert.Less(t, e.TemperatureC, models.MaxTemperatureC)
			assert.True(t, models.IsKnownSummary(e.Summary), e.Summary)
			assert.Equal(t, models.FahrenheitFromCelsius(e.TemperatureC), e.TemperatureF())
		}
	}
}

func TestGenerateCrossesMonthBoundary(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	entries := Generate(r, time.Date(2028, time.February, 27, 0, 0, 0, 0, time.UTC), 4)

	var dates []string
	for _, e := range entries {
		dates = append(dates, e.Date.Format(models.DateLayout))
	}
	assert.Equal(t, []string{"2028-02-27", "2028-02-28", "2028-02-29", "2028-03-01"}, dates)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	start := time.Now()
	a := Generate(rand.New(rand.NewPCG(42, 42)), start, 5)
	b := Generate(rand.New(rand.NewPCG(42, 42)), start, 5)
	assert.Equal(t, a, b)
}

func TestGeneratorDefaultsAndCaps(t *testing.T) {
	assert.Equal(t, DefaultForecastDays, NewGenerator(0).Days())
	assert.Equal(t, MaxForecastDays, NewGenerator(100).Days())

	g := NewGenerator(5)
	g.now = func() time.Time { return time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC) }

	assert.Len(t, g.GetForecast(), 5)

	entries, err := g.FetchForecast(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Equal(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), entries[0].Date)

	entries, err = g.FetchForecast(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = g.FetchForecast(context.Background(), 99)
	require.NoError(t, err)
	assert.Len(t, entries, MaxForecastDays)
}
