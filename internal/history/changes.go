package history

import (
	"sort"
	"sync"
	"time"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// ChangeLog owns all classified signal changes. Changes are immutable after
// creation except for the acknowledgement fields, which are monotonic: once
// acknowledged, a change never reverts.
type ChangeLog struct {
	mu       sync.RWMutex
	byID     map[string]*models.SignalChange
	bySymbol map[string][]*models.SignalChange // append order = chronological
	order    []*models.SignalChange            // global append order
}

// NewChangeLog creates an empty change log
func NewChangeLog() *ChangeLog {
	return &ChangeLog{
		byID:     make(map[string]*models.SignalChange),
		bySymbol: make(map[string][]*models.SignalChange),
	}
}

// Append records a newly classified change. The log stores its own copy so
// the caller's pointer never aliases logged state.
func (l *ChangeLog) Append(change *models.SignalChange) {
	if change == nil {
		return
	}
	stored := change.Clone()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.byID[stored.ID] = stored
	l.bySymbol[stored.Symbol] = append(l.bySymbol[stored.Symbol], stored)
	l.order = append(l.order, stored)
}

// Get returns a copy of the change with the given ID, or nil if unknown
func (l *ChangeLog) Get(id string) *models.SignalChange {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byID[id].Clone()
}

// Acknowledge marks a change acknowledged by the given actor. Returns false
// if the change is unknown or already acknowledged; a second call is a
// strict no-op and leaves the actor and timestamp untouched.
func (l *ChangeLog) Acknowledge(id, actorID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	change, exists := l.byID[id]
	if !exists || change.Acknowledged {
		return false
	}

	now := time.Now()
	change.Acknowledged = true
	change.AcknowledgedBy = actorID
	change.AcknowledgedAt = &now
	return true
}

// ForSymbol returns the symbol's changes, most recent first, limited to
// limit entries (all if limit <= 0)
func (l *ChangeLog) ForSymbol(symbol string, limit int) []*models.SignalChange {
	l.mu.RLock()
	defer l.mu.RUnlock()

	changes := l.bySymbol[symbol]
	n := len(changes)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*models.SignalChange, n)
	for i := 0; i < n; i++ {
		out[i] = changes[len(changes)-1-i].Clone()
	}
	return out
}

// Since returns all changes with a timestamp at or after the cutoff,
// most recent first
func (l *ChangeLog) Since(cutoff time.Time) []*models.SignalChange {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.SignalChange, 0)
	for _, c := range l.order {
		if !c.Timestamp.Before(cutoff) {
			out = append(out, c.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// All returns copies of all changes in global append order
func (l *ChangeLog) All() []*models.SignalChange {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.SignalChange, len(l.order))
	for i, c := range l.order {
		out[i] = c.Clone()
	}
	return out
}

// Count returns the total number of recorded changes
func (l *ChangeLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// SymbolsByFirstSeen returns the symbols with at least one change, ordered
// by when their first change was recorded. Used for deterministic
// most-active tie-breaking.
func (l *ChangeLog) SymbolsByFirstSeen() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool)
	symbols := make([]string, 0, len(l.bySymbol))
	for _, c := range l.order {
		if !seen[c.Symbol] {
			seen[c.Symbol] = true
			symbols = append(symbols, c.Symbol)
		}
	}
	return symbols
}

// CountBySymbol returns per-symbol change counts
func (l *ChangeLog) CountBySymbol() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[string]int, len(l.bySymbol))
	for symbol, changes := range l.bySymbol {
		counts[symbol] = len(changes)
	}
	return counts
}
