// Package engine wires the signal-change pipeline together: history,
// classification, impact scoring, rule evaluation, alerting, trends and
// statistics, behind one lock so a read-modify-write for a symbol observes
// a consistent snapshot.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantpulse/signal-monitor/internal/alerts"
	"github.com/quantpulse/signal-monitor/internal/classify"
	"github.com/quantpulse/signal-monitor/internal/history"
	"github.com/quantpulse/signal-monitor/internal/metrics"
	"github.com/quantpulse/signal-monitor/internal/models"
	"github.com/quantpulse/signal-monitor/internal/rules"
	"github.com/quantpulse/signal-monitor/internal/sources"
	"github.com/quantpulse/signal-monitor/internal/stats"
	"github.com/quantpulse/signal-monitor/internal/trend"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

// Config holds engine tunables
type Config struct {
	MaxHistory        int           // per-symbol signal history cap (default 100)
	SideEffectTimeout time.Duration // bound on notification/audit calls (default 2s)
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		MaxHistory:        history.DefaultMaxSignals,
		SideEffectTimeout: 2 * time.Second,
	}
}

// Engine is the signal-change detection and alerting engine. Construct one
// per process (or per test) with New; there is no global instance.
type Engine struct {
	// mu serializes the classification pipeline and all external mutation
	// so that read-previous, append, classify and trend update are atomic
	// per observation
	mu sync.Mutex

	config   Config
	signals  *history.SignalStore
	changes  *history.ChangeLog
	rules    *rules.Engine
	alerts   *alerts.Store
	trends   *trend.Analyzer
	stats    *stats.Aggregator
	sources  *sources.Registry
	notifier Notifier
	audit    AuditLogger

	// display names for symbols, fed by registration; falls back to the
	// symbol itself
	names map[string]string
}

// Option customizes an Engine at construction
type Option func(*Engine)

// WithNotifier sets the notification-dispatch collaborator
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithAuditLogger sets the audit-log collaborator
func WithAuditLogger(a AuditLogger) Option {
	return func(e *Engine) { e.audit = a }
}

// WithAccuracyEstimator sets the injected accuracy-rate source for stats
func WithAccuracyEstimator(est stats.AccuracyEstimator) Option {
	return func(e *Engine) {
		e.stats = stats.NewAggregator(e.changes, e.trends, est)
	}
}

// New creates an engine with empty state and the two default rules seeded
func New(config Config, opts ...Option) *Engine {
	if config.MaxHistory <= 0 {
		config.MaxHistory = history.DefaultMaxSignals
	}
	if config.SideEffectTimeout <= 0 {
		config.SideEffectTimeout = 2 * time.Second
	}

	changes := history.NewChangeLog()
	trends := trend.NewAnalyzer(changes)

	e := &Engine{
		config:  config,
		signals: history.NewSignalStore(config.MaxHistory),
		changes: changes,
		rules:   rules.NewEngine(),
		alerts:  alerts.NewStore(),
		trends:  trends,
		stats:   stats.NewAggregator(changes, trends, nil),
		sources: sources.NewRegistry(),
		names:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterSymbol records a display name for a symbol
func (e *Engine) RegisterSymbol(symbol, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names[symbol] = name
}

// ProcessSignal feeds one observation through the pipeline. It returns the
// created SignalChange, or nil when the observation is the first for the
// symbol or not a meaningful change. Invalid signals are rejected before
// classification.
func (e *Engine) ProcessSignal(symbol string, signal models.Signal) (*models.SignalChange, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if err := signal.Validate(); err != nil {
		metrics.SignalsRejected.Inc()
		return nil, fmt.Errorf("invalid signal for %s: %w", symbol, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	metrics.SignalsProcessed.WithLabelValues(symbol).Inc()

	previous := e.signals.RecordAndGetPrevious(symbol, signal)
	if previous == nil {
		// First observation for the symbol: store only, no change
		return nil, nil
	}

	changeType, changed := classify.Classify(*previous, signal)
	if !changed {
		return nil, nil
	}

	change := e.buildChange(symbol, *previous, signal, changeType)
	e.changes.Append(change)
	metrics.ChangesDetected.WithLabelValues(string(changeType), string(change.Impact.Level)).Inc()

	logger.Debug("Signal change detected",
		logger.String("symbol", symbol),
		logger.String("change_type", string(changeType)),
		logger.String("impact", string(change.Impact.Level)),
		logger.Float64("confidence", change.Confidence),
	)

	e.fireRules(change)
	e.trends.OnChangeClassified(change)

	return change, nil
}

// buildChange constructs the immutable change record for a classified
// transition
func (e *Engine) buildChange(symbol string, previous, current models.Signal, changeType models.ChangeType) *models.SignalChange {
	impact := classify.Score(previous, current, changeType)

	name := e.names[symbol]
	if name == "" {
		name = symbol
	}

	priceChangePct := (current.Price - previous.Price) / previous.Price * 100

	return &models.SignalChange{
		ID:             uuid.New().String(),
		Symbol:         symbol,
		SymbolName:     name,
		ChangeType:     changeType,
		PreviousSignal: previous,
		CurrentSignal:  current,
		Timestamp:      current.Timestamp,
		Confidence:     current.Confidence,
		Impact:         impact,
		Reason:         string(changeType),
		Description:    classify.Describe(symbol, changeType, previous, current),
		Metadata: map[string]interface{}{
			"strength_delta":   current.Strength - previous.Strength,
			"price_change_pct": priceChangePct,
			"source":           current.Source,
		},
	}
}

// fireRules evaluates all enabled rules against the change and executes the
// actions of every match. Side-effect failures are logged and swallowed.
func (e *Engine) fireRules(change *models.SignalChange) {
	for _, rule := range e.rules.Eval(change) {
		metrics.RuleMatches.WithLabelValues(rule.ID).Inc()

		var alert *models.SignalAlert
		if rule.Actions.CreateAlert {
			alert = e.alerts.Create(change, rule)
			metrics.AlertsCreated.WithLabelValues(string(alert.Type)).Inc()
			logger.Info("Alert created",
				logger.String("alert_id", alert.ID),
				logger.String("rule_id", rule.ID),
				logger.String("symbol", change.Symbol),
				logger.String("type", string(alert.Type)),
			)
		}

		if rule.Actions.SendNotification && e.notifier != nil {
			ctx, cancel := context.WithTimeout(context.Background(), e.config.SideEffectTimeout)
			if err := e.notifier.Notify(ctx, alert, change); err != nil {
				metrics.CollaboratorFailures.WithLabelValues("notifier").Inc()
				logger.Warn("Notification dispatch failed",
					logger.ErrorField(err),
					logger.String("rule_id", rule.ID),
					logger.String("symbol", change.Symbol),
				)
			}
			cancel()
		}

		if rule.Actions.LogToAudit && e.audit != nil {
			ctx, cancel := context.WithTimeout(context.Background(), e.config.SideEffectTimeout)
			entry := AuditEntry{
				Timestamp:   time.Now(),
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				ChangeID:    change.ID,
				Symbol:      change.Symbol,
				ChangeType:  change.ChangeType,
				ImpactLevel: change.Impact.Level,
				Message:     change.Description,
			}
			if err := e.audit.Record(ctx, entry); err != nil {
				metrics.CollaboratorFailures.WithLabelValues("audit").Inc()
				logger.Warn("Audit write failed",
					logger.ErrorField(err),
					logger.String("rule_id", rule.ID),
					logger.String("change_id", change.ID),
				)
			}
			cancel()
		}
	}
}

// AcknowledgeChange marks a change acknowledged. False when the change is
// unknown or already acknowledged.
func (e *Engine) AcknowledgeChange(changeID, actorID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changes.Acknowledge(changeID, actorID)
}

// DismissAlert marks an alert dismissed. False when the alert is unknown or
// already dismissed.
func (e *Engine) DismissAlert(alertID, actorID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.Dismiss(alertID, actorID)
}

// CreateRule adds a monitor rule
func (e *Engine) CreateRule(rule *models.MonitorRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.CreateRule(rule)
}

// UpdateRule replaces a monitor rule
func (e *Engine) UpdateRule(rule *models.MonitorRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.UpdateRule(rule)
}

// DeleteRule removes a monitor rule
func (e *Engine) DeleteRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.DeleteRule(id)
}

// GetRule retrieves a monitor rule by ID
func (e *Engine) GetRule(id string) (*models.MonitorRule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.GetRule(id)
}

// ListRules returns all rules by descending priority
func (e *Engine) ListRules() []*models.MonitorRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.ListRules()
}

// GetChange returns a change by ID, or nil
func (e *Engine) GetChange(id string) *models.SignalChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changes.Get(id)
}

// GetChangesForSymbol returns a symbol's changes, most recent first
func (e *Engine) GetChangesForSymbol(symbol string, limit int) []*models.SignalChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changes.ForSymbol(symbol, limit)
}

// GetRecentChanges returns all changes within the last given hours,
// most recent first
func (e *Engine) GetRecentChanges(hours int) []*models.SignalChange {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changes.Since(time.Now().Add(-time.Duration(hours) * time.Hour))
}

// GetSignalHistory returns a symbol's raw signals from the last given
// hours, oldest first
func (e *Engine) GetSignalHistory(symbol string, hours int) []models.Signal {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	all := e.signals.Signals(symbol)
	out := make([]models.Signal, 0, len(all))
	for _, s := range all {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// AnalyzeTrend recomputes and returns the symbol's trend, or nil when fewer
// than two changes exist
func (e *Engine) AnalyzeTrend(symbol string) *models.SignalTrend {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trends.Analyze(symbol)
}

// GetActiveTrends returns all active trends
func (e *Engine) GetActiveTrends() []*models.SignalTrend {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trends.ActiveTrends()
}

// GetSignalStats computes a fresh statistics snapshot
func (e *Engine) GetSignalStats() models.SignalStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats.Compute()
}

// ListAlerts returns all alerts, newest first
func (e *Engine) ListAlerts() []*models.SignalAlert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.ListAll()
}

// ListActiveAlerts returns non-dismissed alerts, newest first
func (e *Engine) ListActiveAlerts() []*models.SignalAlert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.ListActive()
}

// Sources returns the signal-source registry
func (e *Engine) Sources() *sources.Registry {
	return e.sources
}

// TrackedSymbols returns all symbols with recorded history
func (e *Engine) TrackedSymbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.signals.Symbols()
}
