package rules

import (
	"sync"
	"time"
)

// CooldownTracker suppresses repeat firings of a rule for a symbol inside
// the rule's cooldown window. Expired entries are dropped lazily on check,
// so no background goroutine is needed.
type CooldownTracker struct {
	mu        sync.Mutex
	cooldowns map[string]time.Time // "ruleID|symbol" -> cooldown end
}

// NewCooldownTracker creates an empty cooldown tracker
func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		cooldowns: make(map[string]time.Time),
	}
}

// IsOnCooldown checks whether a rule is on cooldown for a symbol
func (t *CooldownTracker) IsOnCooldown(ruleID, symbol string) bool {
	key := ruleID + "|" + symbol

	t.mu.Lock()
	defer t.mu.Unlock()

	end, exists := t.cooldowns[key]
	if !exists {
		return false
	}
	if time.Now().After(end) {
		delete(t.cooldowns, key)
		return false
	}
	return true
}

// Record starts a cooldown for a rule and symbol. Zero or negative cooldown
// means no suppression.
func (t *CooldownTracker) Record(ruleID, symbol string, cooldownMinutes int) {
	if cooldownMinutes <= 0 {
		return
	}

	key := ruleID + "|" + symbol
	end := time.Now().Add(time.Duration(cooldownMinutes) * time.Minute)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.cooldowns[key] = end
}

// ActiveCount returns the number of recorded cooldowns, expired or not
func (t *CooldownTracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cooldowns)
}

// Clear removes all cooldowns (useful for testing)
func (t *CooldownTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cooldowns = make(map[string]time.Time)
}
