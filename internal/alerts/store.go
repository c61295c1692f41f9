// Package alerts owns the alert lifecycle: created → active → dismissed.
package alerts

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// Store is an in-memory alert store keyed by alert ID
type Store struct {
	mu     sync.RWMutex
	alerts map[string]*models.SignalAlert
}

// NewStore creates an empty alert store
func NewStore() *Store {
	return &Store{
		alerts: make(map[string]*models.SignalAlert),
	}
}

// Create synthesizes an alert for a classified change fired by a rule.
// The alert type is derived from the change's impact level, the priority is
// copied from the firing rule.
func (s *Store) Create(change *models.SignalChange, rule *models.MonitorRule) *models.SignalAlert {
	alert := &models.SignalAlert{
		ID:             uuid.New().String(),
		SignalChangeID: change.ID,
		Symbol:         change.Symbol,
		Type:           typeForImpact(change.Impact.Level),
		Title:          fmt.Sprintf("Signal Change: %s", change.SymbolName),
		Message:        fmt.Sprintf("%s (impact: %s)", change.Description, change.Impact.Level),
		ActionRequired: change.Impact.ActionRequired,
		Priority:       rule.Priority,
		Tags:           []string{string(change.ChangeType), string(change.Impact.Level)},
		CreatedAt:      time.Now(),
	}

	s.mu.Lock()
	s.alerts[alert.ID] = alert.Clone()
	s.mu.Unlock()

	return alert
}

// typeForImpact maps an impact level to the alert delivery class
func typeForImpact(level models.ImpactLevel) models.AlertType {
	switch level {
	case models.ImpactCritical:
		return models.AlertCritical
	case models.ImpactHigh:
		return models.AlertStandard
	default:
		return models.AlertNotification
	}
}

// Get returns a copy of the alert with the given ID, or nil if unknown
func (s *Store) Get(id string) *models.SignalAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alerts[id].Clone()
}

// Dismiss marks an alert dismissed by the given actor. Returns false if the
// alert is unknown or already dismissed; the second call is a strict no-op
// and leaves the actor and timestamp untouched. Dismissal is monotonic.
func (s *Store) Dismiss(id, actorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, exists := s.alerts[id]
	if !exists || alert.Dismissed {
		return false
	}

	now := time.Now()
	alert.Dismissed = true
	alert.DismissedBy = actorID
	alert.DismissedAt = &now
	return true
}

// ListAll returns copies of all alerts sorted by creation time, newest first
func (s *Store) ListAll() []*models.SignalAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SignalAlert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		out = append(out, alert.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ListActive returns non-dismissed alerts, newest first
func (s *Store) ListActive() []*models.SignalAlert {
	all := s.ListAll()
	out := make([]*models.SignalAlert, 0, len(all))
	for _, alert := range all {
		if !alert.Dismissed {
			out = append(out, alert)
		}
	}
	return out
}

// Count returns the total number of alerts
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}
