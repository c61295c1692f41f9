// Package rules owns the monitoring rules: CRUD over the rule set, the
// matching contract, and cooldown suppression. Rule side effects (alerts,
// notifications, audit writes) are executed by the engine facade so this
// package never touches transport code.
package rules

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quantpulse/signal-monitor/internal/models"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

// Engine holds the active monitor rules
type Engine struct {
	mu        sync.RWMutex
	rules     map[string]*models.MonitorRule
	cooldowns *CooldownTracker
}

// NewEngine creates a rule engine seeded with the two default rules
func NewEngine() *Engine {
	e := &Engine{
		rules:     make(map[string]*models.MonitorRule),
		cooldowns: NewCooldownTracker(),
	}

	for _, rule := range defaultRules() {
		e.rules[rule.ID] = rule
	}

	return e
}

// defaultRules returns the rules seeded at engine start
func defaultRules() []*models.MonitorRule {
	now := time.Now()
	return []*models.MonitorRule{
		{
			ID:          "default-high-impact",
			Name:        "High Impact Changes",
			Description: "Fires on any change scored high or critical",
			Enabled:     true,
			Conditions: models.RuleConditions{
				MinImpact:     models.ImpactHigh,
				MinConfidence: 0.7,
			},
			Actions: models.RuleActions{
				CreateAlert:      true,
				SendNotification: true,
				LogToAudit:       true,
			},
			Priority:  1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "default-reversals",
			Name:        "Reversal Signals",
			Description: "Fires on reversals and direction flips",
			Enabled:     true,
			Conditions: models.RuleConditions{
				ChangeTypes: []models.ChangeType{
					models.ChangeReversal,
					models.ChangeBuyToSell,
					models.ChangeSellToBuy,
				},
				MinConfidence: 0.6,
			},
			Actions: models.RuleActions{
				CreateAlert:      true,
				SendNotification: true,
				LogToAudit:       true,
			},
			Priority:  2,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// CreateRule adds a new rule
func (e *Engine) CreateRule(rule *models.MonitorRule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rules[rule.ID]; exists {
		return fmt.Errorf("rule already exists: %s", rule.ID)
	}

	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}

	e.rules[rule.ID] = copyRule(rule)
	return nil
}

// UpdateRule replaces an existing rule, preserving CreatedAt and stamping
// a fresh UpdatedAt
func (e *Engine) UpdateRule(rule *models.MonitorRule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, exists := e.rules[rule.ID]
	if !exists {
		return fmt.Errorf("rule not found: %s", rule.ID)
	}

	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now()
	e.rules[rule.ID] = copyRule(rule)
	return nil
}

// DeleteRule removes a rule by ID
func (e *Engine) DeleteRule(id string) error {
	if id == "" {
		return fmt.Errorf("rule ID cannot be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rules[id]; !exists {
		return fmt.Errorf("rule not found: %s", id)
	}

	delete(e.rules, id)
	return nil
}

// GetRule retrieves a rule by ID
func (e *Engine) GetRule(id string) (*models.MonitorRule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rule, exists := e.rules[id]
	if !exists {
		return nil, fmt.Errorf("rule not found: %s", id)
	}
	return copyRule(rule), nil
}

// ListRules returns all rules ordered by descending priority
func (e *Engine) ListRules() []*models.MonitorRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*models.MonitorRule, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, copyRule(rule))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of rules
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Matches reports whether a rule matches a classified change. A rule matches
// unless one of its populated conditions excludes the change; unset
// conditions are vacuously satisfied.
func Matches(rule *models.MonitorRule, change *models.SignalChange) bool {
	cond := rule.Conditions

	if len(cond.Symbols) > 0 && !containsString(cond.Symbols, change.Symbol) {
		return false
	}
	if len(cond.ChangeTypes) > 0 && !containsChangeType(cond.ChangeTypes, change.ChangeType) {
		return false
	}
	if change.Confidence < cond.MinConfidence {
		return false
	}
	if cond.MaxConfidence > 0 && change.Confidence > cond.MaxConfidence {
		return false
	}
	if cond.MinImpact != "" && !change.Impact.Level.AtLeast(cond.MinImpact) {
		return false
	}
	return true
}

// Eval returns every enabled rule that matches the change, in priority
// order. This is a fan-out: all matching rules fire, not just the first.
// Rules still inside their cooldown window for the change's symbol are
// skipped; a cooldown is recorded for each rule returned.
func (e *Engine) Eval(change *models.SignalChange) []*models.MonitorRule {
	matched := make([]*models.MonitorRule, 0)

	for _, rule := range e.ListRules() {
		if !rule.Enabled {
			continue
		}
		if !Matches(rule, change) {
			continue
		}
		if e.cooldowns.IsOnCooldown(rule.ID, change.Symbol) {
			logger.Debug("Rule on cooldown, skipping",
				logger.String("rule_id", rule.ID),
				logger.String("symbol", change.Symbol),
			)
			continue
		}
		// A match with no enabled actions does nothing, so it must not
		// start a cooldown window either
		if rule.Actions.Any() {
			e.cooldowns.Record(rule.ID, change.Symbol, rule.CooldownMinutes)
		}
		matched = append(matched, rule)
	}

	return matched
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsChangeType(list []models.ChangeType, t models.ChangeType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// copyRule creates a deep copy of a rule so stored state cannot be mutated
// through returned pointers
func copyRule(rule *models.MonitorRule) *models.MonitorRule {
	if rule == nil {
		return nil
	}

	copied := *rule
	copied.Conditions.Symbols = append([]string(nil), rule.Conditions.Symbols...)
	copied.Conditions.ChangeTypes = append([]models.ChangeType(nil), rule.Conditions.ChangeTypes...)
	return &copied
}
