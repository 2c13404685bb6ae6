package datasource

import (
	"context"
	"errors"
	"fmt"

	"weatherforecast/models"

	"golang.org/x/time/rate"
)

// RateLimitedForecastSource wraps a ForecastSource with rate limiting
type RateLimitedForecastSource struct {
	source  ForecastSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedForecastSource creates a new rate limited forecast source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedForecastSource(source ForecastSource, rps float64, burst int) *RateLimitedForecastSource {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedForecastSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchForecast fetches forecast data, respecting rate limits
func (r *RateLimitedForecastSource) FetchForecast(ctx context.Context, days int) ([]models.ForecastEntry, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%s: rate limit wait canceled: %w", r.name, ctx.Err())
		}
		return nil, &FetchError{Kind: KindTimeout, Source: r.name, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}

	// Forward to the underlying source
	return r.source.FetchForecast(ctx, days)
}

// Name returns the source name
func (r *RateLimitedForecastSource) Name() string {
	return r.name
}

var _ ForecastSource = (*RateLimitedForecastSource)(nil)
