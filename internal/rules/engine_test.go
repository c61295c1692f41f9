package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/signal-monitor/internal/models"
)

func changeWith(symbol string, changeType models.ChangeType, confidence float64, level models.ImpactLevel) *models.SignalChange {
	return &models.SignalChange{
		ID:         "change-1",
		Symbol:     symbol,
		ChangeType: changeType,
		Confidence: confidence,
		Timestamp:  time.Now(),
		Impact: models.SignalImpact{
			Level: level,
		},
	}
}

func TestNewEngine_SeedsDefaultRules(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 2, e.Count())

	rules := e.ListRules()
	require.Len(t, rules, 2)
	// Descending priority: Reversal Signals (2) before High Impact Changes (1)
	assert.Equal(t, "Reversal Signals", rules[0].Name)
	assert.Equal(t, "High Impact Changes", rules[1].Name)
}

func TestEngine_CreateUpdateDeleteRule(t *testing.T) {
	e := NewEngine()

	rule := &models.MonitorRule{
		ID:      "r1",
		Name:    "Test Rule",
		Enabled: true,
	}
	require.NoError(t, e.CreateRule(rule))
	assert.Error(t, e.CreateRule(rule), "duplicate ID must fail")

	created, err := e.GetRule("r1")
	require.NoError(t, err)
	createdAt := created.CreatedAt

	created.Name = "Renamed"
	require.NoError(t, e.UpdateRule(created))

	updated, err := e.GetRule("r1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(createdAt) || updated.UpdatedAt.Equal(createdAt))

	require.NoError(t, e.DeleteRule("r1"))
	assert.Error(t, e.DeleteRule("r1"))
	_, err = e.GetRule("r1")
	assert.Error(t, err)
}

func TestEngine_UpdateUnknownRule(t *testing.T) {
	e := NewEngine()
	err := e.UpdateRule(&models.MonitorRule{ID: "ghost", Name: "Ghost"})
	assert.Error(t, err)
}

func TestMatches_NoConditionsMatchesEverything(t *testing.T) {
	rule := &models.MonitorRule{ID: "r", Name: "r"}
	change := changeWith("AAPL", models.ChangeBuyToHold, 0.1, models.ImpactLow)
	assert.True(t, Matches(rule, change))
}

func TestMatches_SymbolAllowList(t *testing.T) {
	rule := &models.MonitorRule{
		ID: "r", Name: "r",
		Conditions: models.RuleConditions{Symbols: []string{"MSFT", "GOOG"}},
	}
	assert.False(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactHigh)))
	assert.True(t, Matches(rule, changeWith("MSFT", models.ChangeBuyToSell, 0.9, models.ImpactHigh)))
}

func TestMatches_ChangeTypeAllowList(t *testing.T) {
	rule := &models.MonitorRule{
		ID: "r", Name: "r",
		Conditions: models.RuleConditions{ChangeTypes: []models.ChangeType{models.ChangeReversal}},
	}
	assert.False(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactHigh)))
	assert.True(t, Matches(rule, changeWith("AAPL", models.ChangeReversal, 0.9, models.ImpactHigh)))
}

func TestMatches_ConfidenceBounds(t *testing.T) {
	rule := &models.MonitorRule{
		ID: "r", Name: "r",
		Conditions: models.RuleConditions{MinConfidence: 0.5, MaxConfidence: 0.9},
	}
	assert.False(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.4, models.ImpactLow)))
	assert.True(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.5, models.ImpactLow)))
	assert.True(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactLow)))
	assert.False(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.95, models.ImpactLow)))
}

func TestMatches_MinImpact(t *testing.T) {
	rule := &models.MonitorRule{
		ID: "r", Name: "r",
		Conditions: models.RuleConditions{MinImpact: models.ImpactHigh},
	}
	assert.False(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactLow)))
	assert.False(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactMedium)))
	assert.True(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactHigh)))
	assert.True(t, Matches(rule, changeWith("AAPL", models.ChangeBuyToSell, 0.9, models.ImpactCritical)))
}

func TestEval_FanOutAllMatchingRules(t *testing.T) {
	e := NewEngine()
	// Reversal with critical impact and high confidence matches both defaults
	change := changeWith("AAPL", models.ChangeReversal, 0.9, models.ImpactCritical)

	matched := e.Eval(change)
	require.Len(t, matched, 2)
	// Priority order preserved
	assert.Equal(t, "Reversal Signals", matched[0].Name)
	assert.Equal(t, "High Impact Changes", matched[1].Name)
}

func TestEval_SkipsDisabledRules(t *testing.T) {
	e := NewEngine()

	rule, err := e.GetRule("default-reversals")
	require.NoError(t, err)
	rule.Enabled = false
	require.NoError(t, e.UpdateRule(rule))

	change := changeWith("AAPL", models.ChangeReversal, 0.9, models.ImpactLow)
	matched := e.Eval(change)
	assert.Empty(t, matched)
}

func TestEval_CooldownSuppressesRepeatFirings(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.CreateRule(&models.MonitorRule{
		ID:              "cooldown-rule",
		Name:            "Cooldown Rule",
		Enabled:         true,
		Actions:         models.RuleActions{CreateAlert: true},
		Priority:        10,
		CooldownMinutes: 5,
	}))

	change := changeWith("AAPL", models.ChangeBuyToHold, 0.9, models.ImpactLow)

	first := e.Eval(change)
	require.Len(t, first, 1)

	// Same rule and symbol inside the window: suppressed
	second := e.Eval(change)
	assert.Empty(t, second)

	// Different symbol: cooldown is per (rule, symbol)
	other := e.Eval(changeWith("MSFT", models.ChangeBuyToHold, 0.9, models.ImpactLow))
	assert.Len(t, other, 1)
}

func TestEval_ActionlessMatchDoesNotStartCooldown(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.CreateRule(&models.MonitorRule{
		ID:              "no-actions",
		Name:            "No Actions",
		Enabled:         true,
		Priority:        10,
		CooldownMinutes: 5,
	}))

	change := changeWith("AAPL", models.ChangeBuyToHold, 0.9, models.ImpactLow)

	require.Len(t, e.Eval(change), 1)
	// The match executed nothing, so it must not suppress a later firing
	assert.Len(t, e.Eval(change), 1)
	assert.Equal(t, 0, e.cooldowns.ActiveCount())
}

func TestCooldownTracker_ZeroCooldownNeverSuppresses(t *testing.T) {
	tracker := NewCooldownTracker()
	tracker.Record("r1", "AAPL", 0)
	assert.False(t, tracker.IsOnCooldown("r1", "AAPL"))
	assert.Equal(t, 0, tracker.ActiveCount())
}

func TestCooldownTracker_ExpiresLazily(t *testing.T) {
	tracker := NewCooldownTracker()
	tracker.cooldowns["r1|AAPL"] = time.Now().Add(-time.Second)
	assert.False(t, tracker.IsOnCooldown("r1", "AAPL"))
	assert.Equal(t, 0, tracker.ActiveCount())
}
