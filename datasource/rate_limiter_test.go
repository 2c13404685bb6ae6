package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitedForecastSourceForwards(t *testing.T) {
	src := NewRateLimitedForecastSource(NewGenerator(5), 100, 1)

	assert.Equal(t, "Generator [Rate Limited]", src.Name())

	entries, err := src.FetchForecast(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRateLimitedForecastSourceTimesOutWaiting(t *testing.T) {
	// One token per minute: the second call cannot be served within the deadline
	src := NewRateLimitedForecastSource(NewGenerator(5), 1.0/60, 1)

	_, err := src.FetchForecast(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = src.FetchForecast(ctx, 0)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, kind)
}

func TestRateLimitedForecastSourceCallerCancel(t *testing.T) {
	src := NewRateLimitedForecastSource(NewGenerator(5), 1.0/60, 1)

	_, err := src.FetchForecast(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err = src.FetchForecast(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	_, classified := KindOf(err)
	assert.False(t, classified)
}
