package models

import "errors"

var (
	ErrInvalidSignalType  = errors.New("invalid signal type")
	ErrInvalidStrength    = errors.New("invalid strength (must be in [0,1])")
	ErrInvalidPrice       = errors.New("invalid price (must be positive)")
	ErrInvalidConfidence  = errors.New("invalid confidence (must be in [0,1])")
	ErrInvalidTimestamp   = errors.New("invalid timestamp")
	ErrInvalidRuleID      = errors.New("invalid rule ID")
	ErrInvalidRuleName    = errors.New("invalid rule name")
	ErrInvalidImpactLevel = errors.New("invalid impact level")
	ErrInvalidCooldown    = errors.New("invalid cooldown (must be >= 0)")
)
