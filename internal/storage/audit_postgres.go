// Package storage provides persistent implementations of the engine's
// outbound ports. The engine itself stays fully in-memory; these sinks are
// optional collaborators wired in at startup.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/quantpulse/signal-monitor/internal/engine"
	"github.com/quantpulse/signal-monitor/pkg/logger"
)

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresAuditLog implements the engine's AuditLogger port on PostgreSQL
type PostgresAuditLog struct {
	db *sql.DB
}

// NewPostgresAuditLog opens the database connection and verifies it
func NewPostgresAuditLog(cfg DatabaseConfig) (*PostgresAuditLog, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Postgres audit log initialized",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	return &PostgresAuditLog{db: db}, nil
}

// Record inserts one audit entry
func (p *PostgresAuditLog) Record(ctx context.Context, entry engine.AuditEntry) error {
	const query = `
		INSERT INTO signal_audit_log
			(ts, rule_id, rule_name, change_id, symbol, change_type, impact_level, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.db.ExecContext(ctx, query,
		entry.Timestamp,
		entry.RuleID,
		entry.RuleName,
		entry.ChangeID,
		entry.Symbol,
		string(entry.ChangeType),
		string(entry.ImpactLevel),
		entry.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Close closes the database connection
func (p *PostgresAuditLog) Close() error {
	return p.db.Close()
}
