package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/signal-monitor/internal/models"
)

func testSignal(strength float64) models.Signal {
	return models.Signal{
		Type:       models.SignalBuy,
		Strength:   strength,
		Price:      100.0,
		Confidence: 0.8,
		Source:     "technical",
		Timestamp:  time.Now(),
	}
}

func TestSignalStore_FirstObservation(t *testing.T) {
	store := NewSignalStore(100)

	previous := store.RecordAndGetPrevious("AAPL", testSignal(0.5))
	assert.Nil(t, previous)
	assert.Equal(t, 1, store.Count("AAPL"))
}

func TestSignalStore_ReturnsPrevious(t *testing.T) {
	store := NewSignalStore(100)

	store.RecordAndGetPrevious("AAPL", testSignal(0.1))
	previous := store.RecordAndGetPrevious("AAPL", testSignal(0.9))

	require.NotNil(t, previous)
	assert.Equal(t, 0.1, previous.Strength)

	previous = store.RecordAndGetPrevious("AAPL", testSignal(0.5))
	require.NotNil(t, previous)
	assert.Equal(t, 0.9, previous.Strength)
}

func TestSignalStore_CapEvictsOldestFirst(t *testing.T) {
	store := NewSignalStore(100)

	for i := 0; i < 150; i++ {
		store.RecordAndGetPrevious("AAPL", testSignal(float64(i)/1000))
	}

	assert.Equal(t, 100, store.Count("AAPL"))

	signals := store.Signals("AAPL")
	require.Len(t, signals, 100)
	// Oldest retained entry is observation 50 (0..49 evicted)
	assert.InDelta(t, 0.050, signals[0].Strength, 1e-9)
	assert.InDelta(t, 0.149, signals[99].Strength, 1e-9)
}

func TestSignalStore_SymbolsAreIndependent(t *testing.T) {
	store := NewSignalStore(100)

	for i := 0; i < 10; i++ {
		symbol := fmt.Sprintf("SYM%d", i)
		store.RecordAndGetPrevious(symbol, testSignal(0.5))
	}

	assert.Len(t, store.Symbols(), 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, store.Count(fmt.Sprintf("SYM%d", i)))
	}
}

func TestSignalStore_Latest(t *testing.T) {
	store := NewSignalStore(100)

	assert.Nil(t, store.Latest("AAPL"))

	store.RecordAndGetPrevious("AAPL", testSignal(0.3))
	store.RecordAndGetPrevious("AAPL", testSignal(0.7))

	latest := store.Latest("AAPL")
	require.NotNil(t, latest)
	assert.Equal(t, 0.7, latest.Strength)
}
