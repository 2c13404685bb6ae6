package datasource

import (
	"context"
	"math/rand/v2"
	"time"

	"weatherforecast/models"
)

// DefaultForecastDays is the forecast length when none is configured
const DefaultForecastDays = 5

// MaxForecastDays caps any requested forecast length
const MaxForecastDays = 14

// Generator produces randomized forecasts locally. It holds no mutable state,
// so a single Generator can serve concurrent requests.
type Generator struct {
	days int
	now  func() time.Time
}

// NewGenerator creates a generator with the given default length
func NewGenerator(days int) *Generator {
	if days <= 0 {
		days = DefaultForecastDays
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}
	return &Generator{
		days: days,
		now:  time.Now,
	}
}

// Name returns the source name
func (g *Generator) Name() string {
	return "Generator"
}

// Days returns the default forecast length
func (g *Generator) Days() int {
	return g.days
}

// GetForecast generates a fresh forecast of the default length
func (g *Generator) GetForecast() []models.ForecastEntry {
	return g.generate(g.days)
}

// FetchForecast implements ForecastSource. It never fails.
func (g *Generator) FetchForecast(_ context.Context, days int) ([]models.ForecastEntry, error) {
	if days <= 0 {
		days = g.days
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}
	return g.generate(days), nil
}

func (g *Generator) generate(days int) []models.ForecastEntry {
	// Per-call source seeded from the runtime's concurrency-safe generator
	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return Generate(r, g.now(), days)
}

// Generate builds days entries starting at start's calendar date (UTC),
// one per day, with temperatures and summaries drawn from r.
func Generate(r *rand.Rand, start time.Time, days int) []models.ForecastEntry {
	start = start.UTC()
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	span := models.MaxTemperatureC - models.MinTemperatureC
	entries := make([]models.ForecastEntry, 0, days)
	for i := 0; i < days; i++ {
		entries = append(entries, models.ForecastEntry{
			Date:         first.AddDate(0, 0, i),
			TemperatureC: models.MinTemperatureC + r.IntN(span),
			Summary:      models.Summaries[r.IntN(len(models.Summaries))],
		})
	}
	return entries
}

var _ ForecastSource = (*Generator)(nil)
