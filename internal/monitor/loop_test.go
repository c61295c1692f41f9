package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/signal-monitor/internal/engine"
	"github.com/quantpulse/signal-monitor/internal/models"
)

func feedSignal(signalType models.SignalType, strength float64) models.Signal {
	return models.Signal{
		Type:       signalType,
		Strength:   strength,
		Price:      100,
		Confidence: 0.8,
		Source:     "technical",
		Timestamp:  time.Now(),
	}
}

func TestLoop_StartStopIdempotent(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	loop := NewLoop(Config{Interval: time.Hour}, eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		return nil, nil
	}))

	assert.False(t, loop.IsRunning())

	loop.Start()
	loop.Start()
	assert.True(t, loop.IsRunning())

	loop.Stop()
	loop.Stop()
	assert.False(t, loop.IsRunning())

	// Can be restarted after a stop
	loop.Start()
	assert.True(t, loop.IsRunning())
	loop.Stop()
}

func TestTick_ProcessesObservations(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	loop := NewLoop(DefaultConfig(), eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		return []Observation{
			{Symbol: "AAPL", Source: "technical", Signal: feedSignal(models.SignalBuy, 0.5)},
			{Symbol: "MSFT", Source: "sentiment", Signal: feedSignal(models.SignalSell, 0.4)},
		}, nil
	}))

	loop.Tick(context.Background())

	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, eng.TrackedSymbols())
}

func TestTick_ClassifiesAcrossTicks(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())

	var tick atomic.Int32
	loop := NewLoop(DefaultConfig(), eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		signalType := models.SignalBuy
		if tick.Add(1) > 1 {
			signalType = models.SignalSell
		}
		return []Observation{{Symbol: "AAPL", Signal: feedSignal(signalType, 0.5)}}, nil
	}))

	loop.Tick(context.Background())
	loop.Tick(context.Background())

	changes := eng.GetChangesForSymbol("AAPL", 0)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeBuyToSell, changes[0].ChangeType)
}

func TestTick_FetchFailureIsNonFatal(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	loop := NewLoop(DefaultConfig(), eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		return nil, errors.New("feed unavailable")
	}))

	loop.Tick(context.Background())
	assert.Empty(t, eng.TrackedSymbols())
}

func TestTick_BadObservationDoesNotBlockOthers(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	loop := NewLoop(DefaultConfig(), eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		bad := feedSignal(models.SignalBuy, 0.5)
		bad.Price = -1
		return []Observation{
			{Symbol: "BAD", Signal: bad},
			{Symbol: "AAPL", Signal: feedSignal(models.SignalBuy, 0.5)},
		}, nil
	}))

	loop.Tick(context.Background())

	assert.Equal(t, []string{"AAPL"}, eng.TrackedSymbols())
}

func TestTick_RecordsSourceErrorOnBadObservation(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	loop := NewLoop(DefaultConfig(), eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		bad := feedSignal(models.SignalBuy, 0.5)
		bad.Price = -1
		return []Observation{
			{Symbol: "BAD", Source: "sentiment", Signal: bad},
			{Symbol: "AAPL", Source: "sentiment", Signal: feedSignal(models.SignalBuy, 0.5)},
		}, nil
	}))

	loop.Tick(context.Background())

	src := eng.Sources().Get("sentiment")
	require.NotNil(t, src)
	assert.Equal(t, int64(1), src.ErrorCount)
	assert.InDelta(t, 0.5, src.SuccessRate, 1e-9)
}

func TestTick_RecordsSourceSuccess(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	loop := NewLoop(DefaultConfig(), eng, FetcherFunc(func(ctx context.Context) ([]Observation, error) {
		return []Observation{{Symbol: "AAPL", Source: "ai", Signal: feedSignal(models.SignalBuy, 0.5)}}, nil
	}))

	loop.Tick(context.Background())

	src := eng.Sources().Get("ai")
	require.NotNil(t, src)
	assert.Equal(t, int64(0), src.ErrorCount)
	assert.Equal(t, 1.0, src.SuccessRate)
}
