package history

import (
	"sync"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// DefaultMaxSignals is the per-symbol cap on retained raw signals
const DefaultMaxSignals = 100

// SignalStore keeps a bounded per-symbol sequence of the most recent raw
// signal observations. Oldest entries are evicted first.
type SignalStore struct {
	mu         sync.RWMutex
	signals    map[string][]models.Signal
	maxSignals int
}

// NewSignalStore creates a new signal history store
func NewSignalStore(maxSignals int) *SignalStore {
	if maxSignals <= 0 {
		maxSignals = DefaultMaxSignals
	}
	return &SignalStore{
		signals:    make(map[string][]models.Signal),
		maxSignals: maxSignals,
	}
}

// RecordAndGetPrevious appends the signal to the symbol's sequence and
// returns the signal that occupied the most-recent slot before the append,
// or nil for the first observation of a symbol. A first observation is a
// normal, silent case.
func (s *SignalStore) RecordAndGetPrevious(symbol string, signal models.Signal) *models.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.signals[symbol]

	var previous *models.Signal
	if len(seq) > 0 {
		prev := seq[len(seq)-1]
		previous = &prev
	}

	seq = append(seq, signal)
	if len(seq) > s.maxSignals {
		seq = seq[len(seq)-s.maxSignals:]
	}
	s.signals[symbol] = seq

	return previous
}

// Latest returns the most recent signal for a symbol, or nil if none
func (s *SignalStore) Latest(symbol string) *models.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.signals[symbol]
	if len(seq) == 0 {
		return nil
	}
	latest := seq[len(seq)-1]
	return &latest
}

// Signals returns a copy of the symbol's retained signals, oldest first
func (s *SignalStore) Signals(symbol string) []models.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.signals[symbol]
	out := make([]models.Signal, len(seq))
	copy(out, seq)
	return out
}

// Count returns the number of retained signals for a symbol
func (s *SignalStore) Count(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.signals[symbol])
}

// Symbols returns all symbols with at least one retained signal
func (s *SignalStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.signals))
	for symbol := range s.signals {
		symbols = append(symbols, symbol)
	}
	return symbols
}
