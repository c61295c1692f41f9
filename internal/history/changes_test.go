package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/signal-monitor/internal/models"
)

func testChange(id, symbol string, ts time.Time) *models.SignalChange {
	return &models.SignalChange{
		ID:         id,
		Symbol:     symbol,
		ChangeType: models.ChangeBuyToSell,
		Timestamp:  ts,
		Confidence: 0.8,
	}
}

func TestChangeLog_AppendAndGet(t *testing.T) {
	log := NewChangeLog()
	change := testChange("c1", "AAPL", time.Now())

	log.Append(change)

	assert.Equal(t, 1, log.Count())
	assert.Equal(t, change, log.Get("c1"))
	assert.Nil(t, log.Get("unknown"))
}

func TestChangeLog_ForSymbolMostRecentFirst(t *testing.T) {
	log := NewChangeLog()
	base := time.Now()

	for i := 0; i < 5; i++ {
		log.Append(testChange(fmt.Sprintf("c%d", i), "AAPL", base.Add(time.Duration(i)*time.Minute)))
	}
	log.Append(testChange("other", "MSFT", base))

	changes := log.ForSymbol("AAPL", 0)
	require.Len(t, changes, 5)
	assert.Equal(t, "c4", changes[0].ID)
	assert.Equal(t, "c0", changes[4].ID)

	limited := log.ForSymbol("AAPL", 3)
	require.Len(t, limited, 3)
	assert.Equal(t, "c4", limited[0].ID)
}

func TestChangeLog_AcknowledgeIsMonotonic(t *testing.T) {
	log := NewChangeLog()
	log.Append(testChange("c1", "AAPL", time.Now()))

	ok := log.Acknowledge("c1", "user-1")
	require.True(t, ok)

	change := log.Get("c1")
	require.NotNil(t, change.AcknowledgedAt)
	firstActor := change.AcknowledgedBy
	firstTime := *change.AcknowledgedAt

	// Second call is a strict no-op
	ok = log.Acknowledge("c1", "user-2")
	assert.False(t, ok)
	assert.Equal(t, firstActor, log.Get("c1").AcknowledgedBy)
	assert.Equal(t, firstTime, *log.Get("c1").AcknowledgedAt)
}

func TestChangeLog_AcknowledgeUnknown(t *testing.T) {
	log := NewChangeLog()
	assert.False(t, log.Acknowledge("missing", "user-1"))
}

func TestChangeLog_SinceIsInclusive(t *testing.T) {
	log := NewChangeLog()
	cutoff := time.Now()

	log.Append(testChange("old", "AAPL", cutoff.Add(-time.Hour)))
	log.Append(testChange("exact", "AAPL", cutoff))
	log.Append(testChange("new", "AAPL", cutoff.Add(time.Hour)))

	recent := log.Since(cutoff)
	require.Len(t, recent, 2)
	assert.Equal(t, "new", recent[0].ID)
	assert.Equal(t, "exact", recent[1].ID)
}

func TestChangeLog_ReturnedChangesAreIsolated(t *testing.T) {
	log := NewChangeLog()
	change := testChange("c1", "AAPL", time.Now())
	change.Metadata = map[string]interface{}{"source": "technical"}
	log.Append(change)

	// Mutating the appended value never reaches the log
	change.Symbol = "HACKED"
	assert.Equal(t, "AAPL", log.Get("c1").Symbol)

	// A slice handed out before an acknowledgement keeps its snapshot
	before := log.ForSymbol("AAPL", 0)
	require.True(t, log.Acknowledge("c1", "user-1"))
	assert.False(t, before[0].Acknowledged)
	assert.True(t, log.Get("c1").Acknowledged)

	// Mutating a returned copy never reaches the log
	got := log.Get("c1")
	got.AcknowledgedBy = "someone-else"
	got.Metadata["source"] = "tampered"
	assert.Equal(t, "user-1", log.Get("c1").AcknowledgedBy)
	assert.Equal(t, "technical", log.Get("c1").Metadata["source"])
}

func TestChangeLog_SymbolsByFirstSeen(t *testing.T) {
	log := NewChangeLog()
	now := time.Now()

	log.Append(testChange("c1", "MSFT", now))
	log.Append(testChange("c2", "AAPL", now))
	log.Append(testChange("c3", "MSFT", now))

	assert.Equal(t, []string{"MSFT", "AAPL"}, log.SymbolsByFirstSeen())
	assert.Equal(t, map[string]int{"MSFT": 2, "AAPL": 1}, log.CountBySymbol())
}
