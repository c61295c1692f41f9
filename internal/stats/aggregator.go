// Package stats computes global counters over all classified changes.
package stats

import (
	"time"

	"github.com/quantpulse/signal-monitor/internal/history"
	"github.com/quantpulse/signal-monitor/internal/models"
	"github.com/quantpulse/signal-monitor/internal/trend"
)

// AccuracyEstimator supplies the backtested accuracy-rate metric. Accuracy
// is not derivable from in-memory state alone, so it is injected.
type AccuracyEstimator interface {
	AccuracyRate() float64
}

// StaticAccuracy is an AccuracyEstimator returning a fixed value
type StaticAccuracy float64

// AccuracyRate returns the fixed value
func (s StaticAccuracy) AccuracyRate() float64 { return float64(s) }

// Aggregator computes SignalStats on demand from the change log and trend
// analyzer. It holds no state of its own.
type Aggregator struct {
	changes  *history.ChangeLog
	trends   *trend.Analyzer
	accuracy AccuracyEstimator
	now      func() time.Time
}

// NewAggregator creates a statistics aggregator. A nil estimator defaults
// to zero accuracy.
func NewAggregator(changes *history.ChangeLog, trends *trend.Analyzer, accuracy AccuracyEstimator) *Aggregator {
	if accuracy == nil {
		accuracy = StaticAccuracy(0)
	}
	return &Aggregator{
		changes:  changes,
		trends:   trends,
		accuracy: accuracy,
		now:      time.Now,
	}
}

// Compute builds a fresh SignalStats snapshot. Window counts are inclusive:
// a change exactly at now-24h counts as within the last 24 hours.
func (a *Aggregator) Compute() models.SignalStats {
	all := a.changes.All()
	now := a.now()
	dayCutoff := now.Add(-24 * time.Hour)
	weekCutoff := now.Add(-7 * 24 * time.Hour)

	stats := models.SignalStats{
		TotalChanges: len(all),
		AccuracyRate: a.accuracy.AccuracyRate(),
		ActiveTrends: a.trends.ActiveCount(),
	}

	confidenceSum := 0.0
	for _, c := range all {
		if !c.Timestamp.Before(dayCutoff) {
			stats.ChangesLast24h++
		}
		if !c.Timestamp.Before(weekCutoff) {
			stats.ChangesLast7d++
		}
		confidenceSum += c.Confidence

		if c.Impact.Level.AtLeast(models.ImpactHigh) {
			stats.HighImpactChanges++
		}
		switch c.ChangeType {
		case models.ChangeReversal:
			stats.Reversals++
		case models.ChangeConfirmation:
			stats.Confirmations++
		}
	}

	if len(all) > 0 {
		stats.AverageConfidence = confidenceSum / float64(len(all))
	}

	stats.MostActiveSymbol = a.mostActiveSymbol()
	return stats
}

// mostActiveSymbol returns the symbol with the highest change count, ties
// broken by which symbol produced a change first
func (a *Aggregator) mostActiveSymbol() string {
	counts := a.changes.CountBySymbol()
	best := ""
	bestCount := 0
	for _, symbol := range a.changes.SymbolsByFirstSeen() {
		if counts[symbol] > bestCount {
			best = symbol
			bestCount = counts[symbol]
		}
	}
	return best
}
