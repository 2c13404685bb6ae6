package collector

import (
	"context"
	"sync"
	"time"

	"weatherforecast/datasource"
	"weatherforecast/logger"
)

// Status is the prober's latest view of the upstream
type Status struct {
	Reachable   bool      `json:"reachable"`
	LastChecked time.Time `json:"lastChecked,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	Attempts    int       `json:"attempts"`
}

// Prober periodically checks that a forecast source answers.
// It only observes; page requests never wait on it.
type Prober struct {
	source       datasource.ForecastSource
	interval     time.Duration
	fetchTimeout time.Duration
	log          *logger.Logger

	mutex  sync.RWMutex
	status Status
}

// NewProber creates a prober for source checking every interval
func NewProber(source datasource.ForecastSource, interval time.Duration, log *logger.Logger) *Prober {
	return &Prober{
		source:       source,
		interval:     interval,
		fetchTimeout: 10 * time.Second, // Default timeout
		log:          log,
	}
}

// SetFetchTimeout changes the timeout for each probe
func (p *Prober) SetFetchTimeout(timeout time.Duration) {
	p.fetchTimeout = timeout
}

// Status returns a snapshot of the latest probe result
func (p *Prober) Status() Status {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.status
}

// Start probes immediately and then on every interval until stopped.
// The returned function stops probing and waits for the loop to exit.
func (p *Prober) Start(ctx context.Context) func() {
	probeCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go p.run(probeCtx, &wg)

	return func() {
		cancel()
		wg.Wait()
	}
}

func (p *Prober) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	// Do an initial probe immediately
	p.ProbeOnce(ctx)
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.ProbeOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ProbeOnce performs a single check and records the result
func (p *Prober) ProbeOnce(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	_, err := p.source.FetchForecast(probeCtx, 1)

	p.mutex.Lock()
	wasReachable := p.status.Reachable
	first := p.status.Attempts == 0
	p.status.Attempts++
	p.status.LastChecked = time.Now()
	if err != nil {
		p.status.Reachable = false
		p.status.LastError = err.Error()
	} else {
		p.status.Reachable = true
		p.status.LastError = ""
	}
	snapshot := p.status
	p.mutex.Unlock()

	switch {
	case snapshot.Reachable && (first || !wasReachable):
		p.log.Infof("Upstream %s is reachable", p.source.Name())
	case !snapshot.Reachable && (first || wasReachable):
		p.log.Warnf("Upstream %s is unavailable: %v", p.source.Name(), err)
	case !snapshot.Reachable:
		p.log.Debugf("Upstream %s still unavailable: %v", p.source.Name(), err)
	}

	return snapshot
}
