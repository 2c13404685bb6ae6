package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherforecast/config"
	"weatherforecast/logger"
)

func TestUpstreamCheckDoesNotSpendPageTokens(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("[]"))
	}))
	defer upstream.Close()

	cfg := config.DefaultClient()
	cfg.ServiceBaseURL = upstream.URL
	cfg.RequestTimeout = time.Second
	cfg.RateLimitRPS = 1.0 / 60
	cfg.RateLimitBurst = 1

	source, serviceSource, err := newSources(cfg, logger.Discard())
	require.NoError(t, err)
	check := newUpstreamCheck(cfg, serviceSource, logger.Discard())
	require.NotNil(t, check)

	for i := 0; i < 3; i++ {
		assert.True(t, check.ProbeOnce(context.Background()).Reachable)
	}

	// The single burst token must still be there for the page
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = source.FetchForecast(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestUpstreamCheckDisabled(t *testing.T) {
	cfg := config.DefaultClient()
	cfg.ProbeInterval = 0

	_, serviceSource, err := newSources(cfg, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, newUpstreamCheck(cfg, serviceSource, logger.Discard()))
}
