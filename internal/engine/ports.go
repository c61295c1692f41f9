package engine

import (
	"context"
	"time"

	"github.com/quantpulse/signal-monitor/internal/models"
)

// Notifier is the outbound port for notification dispatch. Calls are
// fire-and-forget from the pipeline's perspective: a failure is logged and
// swallowed, never propagated.
type Notifier interface {
	Notify(ctx context.Context, alert *models.SignalAlert, change *models.SignalChange) error
}

// AuditEntry is one audit-log record written when a rule with the audit
// action fires
type AuditEntry struct {
	Timestamp   time.Time          `json:"timestamp"`
	RuleID      string             `json:"rule_id"`
	RuleName    string             `json:"rule_name"`
	ChangeID    string             `json:"change_id"`
	Symbol      string             `json:"symbol"`
	ChangeType  models.ChangeType  `json:"change_type"`
	ImpactLevel models.ImpactLevel `json:"impact_level"`
	Message     string             `json:"message"`
}

// AuditLogger is the outbound port for audit-log writes. Same contract as
// Notifier: failures never propagate past the engine boundary.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry) error
}
