package models

import (
	"time"
)

// SignalType is the directional call carried by a raw signal
type SignalType string

const (
	SignalBuy        SignalType = "buy"
	SignalSell       SignalType = "sell"
	SignalHold       SignalType = "hold"
	SignalStrongBuy  SignalType = "strong_buy"
	SignalStrongSell SignalType = "strong_sell"
)

// IsValid reports whether the signal type is one of the known values
func (t SignalType) IsValid() bool {
	switch t {
	case SignalBuy, SignalSell, SignalHold, SignalStrongBuy, SignalStrongSell:
		return true
	}
	return false
}

// Signal represents a single normalized signal observation for a symbol.
// Signals are produced by external collaborators (indicator engines,
// sentiment scorers, ...) and are immutable once received.
type Signal struct {
	Type       SignalType `json:"type"`
	Strength   float64    `json:"strength"`   // 0..1
	Price      float64    `json:"price"`      // positive
	Confidence float64    `json:"confidence"` // 0..1
	Source     string     `json:"source"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Validate validates a Signal before it enters the pipeline.
// A non-positive price would poison impact scoring with NaN/Inf, so it is
// rejected here rather than downstream.
func (s *Signal) Validate() error {
	if !s.Type.IsValid() {
		return ErrInvalidSignalType
	}
	if s.Strength < 0 || s.Strength > 1 {
		return ErrInvalidStrength
	}
	if s.Price <= 0 {
		return ErrInvalidPrice
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return ErrInvalidConfidence
	}
	if s.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}

// ChangeType classifies a detected transition between two consecutive signals
type ChangeType string

const (
	ChangeBuyToSell        ChangeType = "buy_to_sell"
	ChangeSellToBuy        ChangeType = "sell_to_buy"
	ChangeHoldToBuy        ChangeType = "hold_to_buy"
	ChangeHoldToSell       ChangeType = "hold_to_sell"
	ChangeBuyToHold        ChangeType = "buy_to_hold"
	ChangeSellToHold       ChangeType = "sell_to_hold"
	ChangeStrengthIncrease ChangeType = "strength_increase"
	ChangeStrengthDecrease ChangeType = "strength_decrease"
	ChangeReversal         ChangeType = "reversal"
	ChangeConfirmation     ChangeType = "confirmation"
)

// ImpactLevel is the severity tier of a signal change
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

var impactRank = map[ImpactLevel]int{
	ImpactLow:      0,
	ImpactMedium:   1,
	ImpactHigh:     2,
	ImpactCritical: 3,
}

// Rank returns the ordinal position of the level on the low<medium<high<critical scale.
// Unknown levels rank below low.
func (l ImpactLevel) Rank() int {
	rank, ok := impactRank[l]
	if !ok {
		return -1
	}
	return rank
}

// AtLeast reports whether the level is at or above the given minimum
func (l ImpactLevel) AtLeast(min ImpactLevel) bool {
	return l.Rank() >= min.Rank()
}

// SignalImpact describes the severity of a change. Computed once, immutable.
type SignalImpact struct {
	Level           ImpactLevel `json:"level"`
	PortfolioEffect float64     `json:"portfolio_effect"` // percentage magnitude
	RiskChange      float64     `json:"risk_change"`      // strength delta, doubled for reversals
	ActionRequired  bool        `json:"action_required"`
	Urgency         string      `json:"urgency"`   // "low", "medium", "high"
	Timeframe       string      `json:"timeframe"` // "immediate", "1 hour", "1 day"
}

// SignalChange represents one detected, classified transition for a symbol.
// Immutable after creation except for the acknowledgement fields.
type SignalChange struct {
	ID             string                 `json:"id"`
	Symbol         string                 `json:"symbol"`
	SymbolName     string                 `json:"symbol_name"`
	ChangeType     ChangeType             `json:"change_type"`
	PreviousSignal Signal                 `json:"previous_signal"`
	CurrentSignal  Signal                 `json:"current_signal"`
	Timestamp      time.Time              `json:"timestamp"`
	Confidence     float64                `json:"confidence"`
	Impact         SignalImpact           `json:"impact"`
	Reason         string                 `json:"reason"`
	Description    string                 `json:"description"`
	Acknowledged   bool                   `json:"acknowledged"`
	AcknowledgedBy string                 `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time             `json:"acknowledged_at,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the change so stored state cannot be read or
// mutated through shared pointers
func (c *SignalChange) Clone() *SignalChange {
	if c == nil {
		return nil
	}
	copied := *c
	if c.AcknowledgedAt != nil {
		at := *c.AcknowledgedAt
		copied.AcknowledgedAt = &at
	}
	if c.Metadata != nil {
		copied.Metadata = make(map[string]interface{}, len(c.Metadata))
		for k, v := range c.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

// RuleConditions holds the optional match conditions of a monitor rule.
// Zero-valued conditions are vacuously satisfied.
type RuleConditions struct {
	Symbols       []string     `json:"symbols,omitempty"`
	ChangeTypes   []ChangeType `json:"change_types,omitempty"`
	MinConfidence float64      `json:"min_confidence,omitempty"`
	MaxConfidence float64      `json:"max_confidence,omitempty"` // 0 means unset
	MinImpact     ImpactLevel  `json:"min_impact,omitempty"`     // "" means unset
}

// RuleActions holds the independently toggleable actions of a monitor rule
type RuleActions struct {
	CreateAlert      bool `json:"create_alert"`
	SendNotification bool `json:"send_notification"`
	LogToAudit       bool `json:"log_to_audit"`
}

// Any reports whether at least one action is enabled
func (a RuleActions) Any() bool {
	return a.CreateAlert || a.SendNotification || a.LogToAudit
}

// MonitorRule is a configurable condition/action pair evaluated against
// every classified change
type MonitorRule struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Enabled         bool           `json:"enabled"`
	Conditions      RuleConditions `json:"conditions"`
	Actions         RuleActions    `json:"actions"`
	Priority        int            `json:"priority"` // higher wins in enumeration order
	CooldownMinutes int            `json:"cooldown_minutes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Validate validates a MonitorRule
func (r *MonitorRule) Validate() error {
	if r.ID == "" {
		return ErrInvalidRuleID
	}
	if r.Name == "" {
		return ErrInvalidRuleName
	}
	if r.Conditions.MinConfidence < 0 || r.Conditions.MinConfidence > 1 {
		return ErrInvalidConfidence
	}
	if r.Conditions.MaxConfidence < 0 || r.Conditions.MaxConfidence > 1 {
		return ErrInvalidConfidence
	}
	if r.Conditions.MaxConfidence > 0 && r.Conditions.MaxConfidence < r.Conditions.MinConfidence {
		return ErrInvalidConfidence
	}
	if r.Conditions.MinImpact != "" && r.Conditions.MinImpact.Rank() < 0 {
		return ErrInvalidImpactLevel
	}
	if r.CooldownMinutes < 0 {
		return ErrInvalidCooldown
	}
	return nil
}

// AlertType is the delivery class of an alert, derived from impact level
type AlertType string

const (
	AlertCritical     AlertType = "critical"
	AlertStandard     AlertType = "alert"
	AlertNotification AlertType = "notification"
)

// SignalAlert is raised by the rule engine when a matching rule has the
// create-alert action enabled. Mutated only by dismissal.
type SignalAlert struct {
	ID             string     `json:"id"`
	SignalChangeID string     `json:"signal_change_id"`
	Symbol         string     `json:"symbol"`
	Type           AlertType  `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ActionRequired bool       `json:"action_required"`
	Priority       int        `json:"priority"` // copied from the firing rule
	Tags           []string   `json:"tags"`
	Dismissed      bool       `json:"dismissed"`
	DismissedBy    string     `json:"dismissed_by,omitempty"`
	DismissedAt    *time.Time `json:"dismissed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Clone returns a deep copy of the alert
func (a *SignalAlert) Clone() *SignalAlert {
	if a == nil {
		return nil
	}
	copied := *a
	copied.Tags = append([]string(nil), a.Tags...)
	if a.DismissedAt != nil {
		at := *a.DismissedAt
		copied.DismissedAt = &at
	}
	return &copied
}

// TrendDirection is the rolling directional read of a symbol
type TrendDirection string

const (
	TrendBullish TrendDirection = "bullish"
	TrendBearish TrendDirection = "bearish"
	TrendNeutral TrendDirection = "neutral"
)

// SignalTrend is a rolling directional/strength/confidence summary derived
// from a symbol's recent classified changes. One active trend per symbol.
type SignalTrend struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Direction     TrendDirection  `json:"direction"`
	Strength      float64         `json:"strength"` // 0..1
	DurationHours float64         `json:"duration_hours"`
	Changes       []*SignalChange `json:"changes"` // most recent first, capped
	Confidence    float64         `json:"confidence"`
	StartedAt     time.Time       `json:"started_at"`
	LastUpdated   time.Time       `json:"last_updated"`
	IsActive      bool            `json:"is_active"`
}

// SignalSource is read-mostly reference data describing one upstream
// producer of signal observations
type SignalSource struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Category        string        `json:"category"` // "technical", "sentiment", "ai", ...
	Reliability     float64       `json:"reliability"`
	ExpectedLatency time.Duration `json:"expected_latency"`
	Enabled         bool          `json:"enabled"`
	ErrorCount      int64         `json:"error_count"`
	SuccessRate     float64       `json:"success_rate"`
}

// SignalStats holds global counters over all classified changes
type SignalStats struct {
	TotalChanges      int     `json:"total_changes"`
	ChangesLast24h    int     `json:"changes_last_24h"`
	ChangesLast7d     int     `json:"changes_last_7d"`
	MostActiveSymbol  string  `json:"most_active_symbol"`
	AverageConfidence float64 `json:"average_confidence"`
	HighImpactChanges int     `json:"high_impact_changes"`
	Reversals         int     `json:"reversals"`
	Confirmations     int     `json:"confirmations"`
	AccuracyRate      float64 `json:"accuracy_rate"` // external/backtested estimate
	ActiveTrends      int     `json:"active_trends"`
}
