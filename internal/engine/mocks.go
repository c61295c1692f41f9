package engine

import (
	"context"
	"sync"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// RecordingNotifier is a Notifier for tests that records every dispatch
type RecordingNotifier struct {
	mu      sync.Mutex
	Changes []*models.SignalChange
	Alerts  []*models.SignalAlert
	Err     error // returned from Notify when set
}

// NewRecordingNotifier creates a recording notifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify records the dispatch and returns the configured error
func (n *RecordingNotifier) Notify(ctx context.Context, alert *models.SignalAlert, change *models.SignalChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Alerts = append(n.Alerts, alert)
	n.Changes = append(n.Changes, change)
	return n.Err
}

// Count returns the number of recorded dispatches
func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Changes)
}

// RecordingAuditLogger is an AuditLogger for tests that records entries
type RecordingAuditLogger struct {
	mu      sync.Mutex
	Entries []AuditEntry
	Err     error // returned from Record when set
}

// NewRecordingAuditLogger creates a recording audit logger
func NewRecordingAuditLogger() *RecordingAuditLogger {
	return &RecordingAuditLogger{}
}

// Record stores the entry and returns the configured error
func (a *RecordingAuditLogger) Record(ctx context.Context, entry AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
	return a.Err
}

// Count returns the number of recorded entries
func (a *RecordingAuditLogger) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Entries)
}
