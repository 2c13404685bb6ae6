package datasource

import (
	"context"

	"weatherforecast/models"
)

// ForecastSource defines the interface for anything that can produce a forecast
type ForecastSource interface {
	// FetchForecast returns a forecast of the given number of days.
	// days <= 0 asks for the source's default length.
	FetchForecast(ctx context.Context, days int) ([]models.ForecastEntry, error)

	// Name returns the source's name
	Name() string
}
