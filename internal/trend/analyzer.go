// Package trend derives rolling directional summaries per symbol from its
// recent classified changes.
package trend

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantpulse/signal-monitor/internal/history"
	"github.com/quantpulse/signal-monitor/internal/models"
)

const (
	// analyzeWindow is the number of most recent changes considered by Analyze
	analyzeWindow = 10
	// maxTrendChanges caps a trend's contributing-changes list
	maxTrendChanges = 20
	// minChanges is the minimum history required before a trend can form
	minChanges = 2
)

var bearishTypes = map[models.ChangeType]bool{
	models.ChangeBuyToSell:        true,
	models.ChangeHoldToSell:       true,
	models.ChangeStrengthDecrease: true,
}

var bullishTypes = map[models.ChangeType]bool{
	models.ChangeSellToBuy:        true,
	models.ChangeHoldToBuy:        true,
	models.ChangeStrengthIncrease: true,
}

// Analyzer owns the per-symbol trend state. One active trend per symbol.
type Analyzer struct {
	mu      sync.RWMutex
	trends  map[string]*models.SignalTrend
	changes *history.ChangeLog
}

// NewAnalyzer creates a trend analyzer reading from the given change log
func NewAnalyzer(changes *history.ChangeLog) *Analyzer {
	return &Analyzer{
		trends:  make(map[string]*models.SignalTrend),
		changes: changes,
	}
}

// Analyze recomputes the symbol's trend from its most recent changes.
// Requires at least two historical changes; returns nil otherwise. If an
// active trend already exists for the symbol it is refreshed in place,
// otherwise a new one is created.
func (a *Analyzer) Analyze(symbol string) *models.SignalTrend {
	sample := a.changes.ForSymbol(symbol, analyzeWindow) // most recent first
	if len(sample) < minChanges {
		return nil
	}

	direction, strength := deriveDirection(sample)
	confidence := meanConfidence(sample)
	duration := spanHours(sample)

	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	trend, exists := a.trends[symbol]
	if exists && trend.IsActive {
		trend.Direction = direction
		trend.Strength = strength
		trend.Confidence = confidence
		trend.DurationHours = duration
		trend.Changes = sample
		trend.LastUpdated = now
		return copyTrend(trend)
	}

	trend = &models.SignalTrend{
		ID:            uuid.New().String(),
		Symbol:        symbol,
		Direction:     direction,
		Strength:      strength,
		DurationHours: duration,
		Changes:       sample,
		Confidence:    confidence,
		StartedAt:     now,
		LastUpdated:   now,
		IsActive:      true,
	}
	a.trends[symbol] = trend
	return copyTrend(trend)
}

// OnChangeClassified is the cheap per-change hook. If an active trend exists
// for the symbol the new change is prepended to its contributing list
// (capped, oldest dropped) and the directional summary is refreshed from
// that list, so a stored trend never goes stale relative to its changes.
func (a *Analyzer) OnChangeClassified(change *models.SignalChange) {
	if change == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	trend, exists := a.trends[change.Symbol]
	if !exists || !trend.IsActive {
		return
	}

	trend.Changes = append([]*models.SignalChange{change.Clone()}, trend.Changes...)
	if len(trend.Changes) > maxTrendChanges {
		trend.Changes = trend.Changes[:maxTrendChanges]
	}

	trend.Direction, trend.Strength = deriveDirection(trend.Changes)
	trend.Confidence = meanConfidence(trend.Changes)
	trend.DurationHours = spanHours(trend.Changes)
	trend.LastUpdated = time.Now()
}

// Get returns the symbol's trend, or nil if none exists
func (a *Analyzer) Get(symbol string) *models.SignalTrend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyTrend(a.trends[symbol])
}

// ActiveTrends returns all active trends ordered by symbol
func (a *Analyzer) ActiveTrends() []*models.SignalTrend {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*models.SignalTrend, 0, len(a.trends))
	for _, trend := range a.trends {
		if trend.IsActive {
			out = append(out, copyTrend(trend))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// ActiveCount returns the number of active trends
func (a *Analyzer) ActiveCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0
	for _, trend := range a.trends {
		if trend.IsActive {
			count++
		}
	}
	return count
}

// deriveDirection counts bearish vs bullish change types in the sample.
// Majority wins, tie reads neutral. Strength is the normalized margin.
func deriveDirection(sample []*models.SignalChange) (models.TrendDirection, float64) {
	bullish, bearish := 0, 0
	for _, c := range sample {
		if bullishTypes[c.ChangeType] {
			bullish++
		} else if bearishTypes[c.ChangeType] {
			bearish++
		}
	}

	var direction models.TrendDirection
	switch {
	case bullish > bearish:
		direction = models.TrendBullish
	case bearish > bullish:
		direction = models.TrendBearish
	default:
		direction = models.TrendNeutral
	}

	strength := 0.0
	if len(sample) > 0 {
		strength = float64(abs(bullish-bearish)) / float64(len(sample))
	}
	return direction, strength
}

func meanConfidence(sample []*models.SignalChange) float64 {
	if len(sample) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range sample {
		sum += c.Confidence
	}
	return sum / float64(len(sample))
}

// spanHours returns the hours between the oldest and newest change in the
// sample (most recent first)
func spanHours(sample []*models.SignalChange) float64 {
	if len(sample) < 2 {
		return 0
	}
	newest := sample[0].Timestamp
	oldest := sample[len(sample)-1].Timestamp
	return newest.Sub(oldest).Hours()
}

func copyTrend(trend *models.SignalTrend) *models.SignalTrend {
	if trend == nil {
		return nil
	}
	copied := *trend
	copied.Changes = make([]*models.SignalChange, len(trend.Changes))
	for i, c := range trend.Changes {
		copied.Changes[i] = c.Clone()
	}
	return &copied
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
