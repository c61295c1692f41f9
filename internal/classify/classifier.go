// Package classify implements the pure decision functions of the pipeline:
// change classification between consecutive signals and impact scoring of a
// classified change. Nothing in this package holds state.
package classify

import (
	"fmt"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// StrengthDeltaThreshold is the minimum absolute strength move between two
// same-type signals that counts as a change. Strictly greater-than: a delta
// of exactly 0.2 is not a change.
const StrengthDeltaThreshold = 0.2

// transitions maps ordered same-direction type pairs to their named change
var transitions = map[[2]models.SignalType]models.ChangeType{
	{models.SignalBuy, models.SignalSell}:  models.ChangeBuyToSell,
	{models.SignalSell, models.SignalBuy}:  models.ChangeSellToBuy,
	{models.SignalHold, models.SignalBuy}:  models.ChangeHoldToBuy,
	{models.SignalHold, models.SignalSell}: models.ChangeHoldToSell,
	{models.SignalBuy, models.SignalHold}:  models.ChangeBuyToHold,
	{models.SignalSell, models.SignalHold}: models.ChangeSellToHold,
}

// Classify decides whether the current signal represents a meaningful change
// from the previous one. Returns the change type and true, or false when the
// observation is not a change (same type within the strength threshold).
func Classify(previous, current models.Signal) (models.ChangeType, bool) {
	if previous.Type == current.Type {
		delta := current.Strength - previous.Strength
		if delta > StrengthDeltaThreshold {
			return models.ChangeStrengthIncrease, true
		}
		if delta < -StrengthDeltaThreshold {
			return models.ChangeStrengthDecrease, true
		}
		return "", false
	}

	// Full reversals override the generic transition table
	if (previous.Type == models.SignalStrongBuy && current.Type == models.SignalSell) ||
		(previous.Type == models.SignalStrongSell && current.Type == models.SignalBuy) {
		return models.ChangeReversal, true
	}

	if changeType, ok := transitions[[2]models.SignalType{previous.Type, current.Type}]; ok {
		return changeType, true
	}

	// Any other differing pair (strong variants shifting within the same
	// direction, hold to strong_buy, ...) reads as confirmation
	return models.ChangeConfirmation, true
}

// Describe renders a short human-readable description of a transition
func Describe(symbol string, changeType models.ChangeType, previous, current models.Signal) string {
	switch changeType {
	case models.ChangeStrengthIncrease, models.ChangeStrengthDecrease:
		return fmt.Sprintf("%s %s signal strength moved from %.2f to %.2f",
			symbol, previous.Type, previous.Strength, current.Strength)
	case models.ChangeReversal:
		return fmt.Sprintf("%s reversed from %s to %s", symbol, previous.Type, current.Type)
	default:
		return fmt.Sprintf("%s signal changed from %s to %s", symbol, previous.Type, current.Type)
	}
}
