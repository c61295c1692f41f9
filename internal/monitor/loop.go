// Package monitor runs the periodic polling loop that pulls fresh signal
// observations from the external source collaborator and feeds them through
// the engine pipeline. It is the only concurrency-bearing component: one
// goroutine, non-overlapping ticks.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/quantpulse/signal-monitor/internal/engine"
	"github.com/quantpulse/signal-monitor/internal/metrics"
	"github.com/quantpulse/signal-monitor/internal/models"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

// Observation pairs a symbol with one fetched signal
type Observation struct {
	Symbol string
	Source string // signal-source registry ID, may be empty
	Signal models.Signal
}

// SignalFetcher is the external signal-source collaborator consumed on every
// tick. It returns zero or more observations per call.
type SignalFetcher interface {
	FetchSignals(ctx context.Context) ([]Observation, error)
}

// Config holds monitoring loop tunables
type Config struct {
	Interval     time.Duration // tick interval (default 30s)
	FetchTimeout time.Duration // bound on the fetch call so a slow source cannot stall ticks (default 10s)
}

// DefaultConfig returns the default loop configuration
func DefaultConfig() Config {
	return Config{
		Interval:     30 * time.Second,
		FetchTimeout: 10 * time.Second,
	}
}

// Loop is the monitoring state machine: Stopped → Running → Stopped.
// Start and Stop are both idempotent.
type Loop struct {
	config  Config
	engine  *engine.Engine
	fetcher SignalFetcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewLoop creates a monitoring loop in the Stopped state
func NewLoop(config Config, eng *engine.Engine, fetcher SignalFetcher) *Loop {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	return &Loop{
		config:  config,
		engine:  eng,
		fetcher: fetcher,
	}
}

// Start begins ticking. A no-op when already running.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	logger.Info("Starting monitoring loop",
		logger.Duration("interval", l.config.Interval),
		logger.Duration("fetch_timeout", l.config.FetchTimeout),
	)

	l.wg.Add(1)
	go l.run(ctx)
}

// Stop cancels the loop. Idempotent; after Stop returns no further tick
// fires, though a tick already in flight runs to completion.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	l.mu.Unlock()

	cancel()
	l.wg.Wait()
	logger.Info("Monitoring loop stopped")
}

// IsRunning reports whether the loop is in the Running state
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) run(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick runs one fetch-and-process cycle. Exported for tests. Fetch and
// per-observation failures are logged and do not stop the loop.
func (l *Loop) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(start).Seconds())
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, l.config.FetchTimeout)
	observations, err := l.fetcher.FetchSignals(fetchCtx)
	cancel()
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("fetch").Inc()
		logger.Warn("Signal fetch failed", logger.ErrorField(err))
		return
	}

	for _, obs := range observations {
		_, err := l.engine.ProcessSignal(obs.Symbol, obs.Signal)
		if obs.Source != "" {
			if err != nil {
				l.engine.Sources().RecordError(obs.Source)
			} else {
				l.engine.Sources().RecordSuccess(obs.Source)
			}
		}
		if err != nil {
			logger.Warn("Failed to process observation",
				logger.ErrorField(err),
				logger.String("symbol", obs.Symbol),
			)
		}
	}

	logger.Debug("Monitoring tick complete",
		logger.Int("observations", len(observations)),
		logger.Duration("took", time.Since(start)),
	)
}
