package classify

import (
	"math"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// Impact tier thresholds, evaluated high to low, first match wins.
// A tier fires on either a large strength move or a large price move.
const (
	criticalStrengthDiff = 0.7
	criticalPriceRatio   = 0.10
	highStrengthDiff     = 0.5
	highPriceRatio       = 0.05
	mediumStrengthDiff   = 0.3
	mediumPriceRatio     = 0.02
)

// Score computes the severity of a classified change from the strength and
// price deltas between the two signals. Pure and deterministic. The caller
// guarantees previous.Price > 0 via Signal.Validate.
func Score(previous, current models.Signal, changeType models.ChangeType) models.SignalImpact {
	strengthDiff := math.Abs(current.Strength - previous.Strength)
	priceChangeRatio := math.Abs(current.Price-previous.Price) / previous.Price

	var level models.ImpactLevel
	switch {
	case strengthDiff > criticalStrengthDiff || priceChangeRatio > criticalPriceRatio:
		level = models.ImpactCritical
	case strengthDiff > highStrengthDiff || priceChangeRatio > highPriceRatio:
		level = models.ImpactHigh
	case strengthDiff > mediumStrengthDiff || priceChangeRatio > mediumPriceRatio:
		level = models.ImpactMedium
	default:
		level = models.ImpactLow
	}

	riskChange := strengthDiff
	if changeType == models.ChangeReversal {
		riskChange *= 2
	}

	return models.SignalImpact{
		Level:           level,
		PortfolioEffect: priceChangeRatio * 100,
		RiskChange:      riskChange,
		ActionRequired:  level == models.ImpactHigh || level == models.ImpactCritical,
		Urgency:         urgencyFor(level),
		Timeframe:       timeframeFor(level),
	}
}

func urgencyFor(level models.ImpactLevel) string {
	switch level {
	case models.ImpactCritical:
		return "high"
	case models.ImpactHigh:
		return "medium"
	default:
		return "low"
	}
}

func timeframeFor(level models.ImpactLevel) string {
	switch level {
	case models.ImpactCritical:
		return "immediate"
	case models.ImpactHigh:
		return "1 hour"
	default:
		return "1 day"
	}
}
