package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherforecast/datasource"
	"weatherforecast/logger"
	"weatherforecast/models"
)

// switchSource fails until up is set
type switchSource struct {
	mutex sync.Mutex
	up    bool
	calls int
}

func (s *switchSource) Name() string { return "switch" }

func (s *switchSource) FetchForecast(ctx context.Context, days int) ([]models.ForecastEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls++
	if !s.up {
		return nil, &datasource.FetchError{Kind: datasource.KindNetworkUnreachable, Source: "switch", Err: errors.New("connection refused")}
	}
	return []models.ForecastEntry{}, nil
}

func (s *switchSource) setUp(up bool) {
	s.mutex.Lock()
	s.up = up
	s.mutex.Unlock()
}

func TestProbeOnceTracksTransitions(t *testing.T) {
	src := &switchSource{}
	p := NewProber(src, time.Minute, logger.Discard())

	st := p.ProbeOnce(context.Background())
	assert.False(t, st.Reachable)
	assert.Contains(t, st.LastError, "connection refused")
	assert.Equal(t, 1, st.Attempts)

	src.setUp(true)
	st = p.ProbeOnce(context.Background())
	assert.True(t, st.Reachable)
	assert.Empty(t, st.LastError)
	assert.Equal(t, 2, st.Attempts)
	assert.Equal(t, st, p.Status())
}

func TestStartProbesUntilStopped(t *testing.T) {
	src := &switchSource{}
	p := NewProber(src, 10*time.Millisecond, logger.Discard())

	stop := p.Start(context.Background())
	require.Eventually(t, func() bool { return p.Status().Attempts >= 2 }, time.Second, 5*time.Millisecond)
	assert.False(t, p.Status().Reachable)

	src.setUp(true)
	require.Eventually(t, func() bool { return p.Status().Reachable }, time.Second, 5*time.Millisecond)

	stop()
	attempts := p.Status().Attempts
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, attempts, p.Status().Attempts)
}

func TestZeroIntervalProbesOnce(t *testing.T) {
	src := &switchSource{up: true}
	p := NewProber(src, 0, logger.Discard())

	stop := p.Start(context.Background())
	require.Eventually(t, func() bool { return p.Status().Attempts == 1 }, time.Second, 5*time.Millisecond)
	stop()
	assert.True(t, p.Status().Reachable)
}
