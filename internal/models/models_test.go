package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validSignal() Signal {
	return Signal{
		Type:       SignalBuy,
		Strength:   0.5,
		Price:      100,
		Confidence: 0.8,
		Source:     "technical",
		Timestamp:  time.Now(),
	}
}

func TestSignalValidate(t *testing.T) {
	s := validSignal()
	assert.NoError(t, s.Validate())

	s = validSignal()
	s.Type = "maybe"
	assert.ErrorIs(t, s.Validate(), ErrInvalidSignalType)

	s = validSignal()
	s.Strength = 1.1
	assert.ErrorIs(t, s.Validate(), ErrInvalidStrength)

	s = validSignal()
	s.Strength = -0.1
	assert.ErrorIs(t, s.Validate(), ErrInvalidStrength)

	s = validSignal()
	s.Price = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidPrice)

	s = validSignal()
	s.Confidence = 2
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfidence)

	s = validSignal()
	s.Timestamp = time.Time{}
	assert.ErrorIs(t, s.Validate(), ErrInvalidTimestamp)
}

func TestSignalTypeIsValid(t *testing.T) {
	for _, valid := range []SignalType{SignalBuy, SignalSell, SignalHold, SignalStrongBuy, SignalStrongSell} {
		assert.True(t, valid.IsValid())
	}
	assert.False(t, SignalType("").IsValid())
	assert.False(t, SignalType("short").IsValid())
}

func TestImpactLevelOrdering(t *testing.T) {
	assert.True(t, ImpactCritical.AtLeast(ImpactHigh))
	assert.True(t, ImpactHigh.AtLeast(ImpactHigh))
	assert.False(t, ImpactMedium.AtLeast(ImpactHigh))
	assert.False(t, ImpactLow.AtLeast(ImpactMedium))

	assert.Equal(t, -1, ImpactLevel("extreme").Rank())
	assert.False(t, ImpactLevel("extreme").AtLeast(ImpactLow))
}

func TestMonitorRuleValidate(t *testing.T) {
	rule := MonitorRule{ID: "r1", Name: "Rule"}
	assert.NoError(t, rule.Validate())

	assert.ErrorIs(t, (&MonitorRule{Name: "Rule"}).Validate(), ErrInvalidRuleID)
	assert.ErrorIs(t, (&MonitorRule{ID: "r1"}).Validate(), ErrInvalidRuleName)

	rule = MonitorRule{ID: "r1", Name: "Rule"}
	rule.Conditions.MinConfidence = 1.5
	assert.ErrorIs(t, rule.Validate(), ErrInvalidConfidence)

	rule = MonitorRule{ID: "r1", Name: "Rule"}
	rule.Conditions.MinConfidence = 0.8
	rule.Conditions.MaxConfidence = 0.5
	assert.ErrorIs(t, rule.Validate(), ErrInvalidConfidence, "inverted confidence bounds can never match")

	rule = MonitorRule{ID: "r1", Name: "Rule"}
	rule.Conditions.MinImpact = "extreme"
	assert.ErrorIs(t, rule.Validate(), ErrInvalidImpactLevel)

	rule = MonitorRule{ID: "r1", Name: "Rule", CooldownMinutes: -1}
	assert.ErrorIs(t, rule.Validate(), ErrInvalidCooldown)
}
