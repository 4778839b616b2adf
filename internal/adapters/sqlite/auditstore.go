package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// AuditStore implements the ports.AuditStore interface using SQLite.
// Records are append-only; nothing in the engine ever updates or deletes
// an audit row.
type AuditStore struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite audit store.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewAuditStore creates a new SQLite audit store instance.
func NewAuditStore(cfg Config) (*AuditStore, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite audit store")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/volguard.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite audit store initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite audit store initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %v", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite audit store initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &AuditStore{db: db, logger: cfg.Logger}

	if err := store.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize audit schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite audit store initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Audit store initialized", map[string]interface{}{"path": dbPath})

	return store, nil
}

func (s *AuditStore) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		ts TIMESTAMP NOT NULL,
		component TEXT NOT NULL,
		inputs TEXT NOT NULL,
		outputs TEXT NOT NULL,
		err TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_symbol_ts ON audit_log (symbol, ts);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: schema initialization: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (s *AuditStore) Close() error {
	if s.db != nil {
		s.logger.Info(context.Background(), "Closing SQLite audit store")
		return s.db.Close()
	}
	return nil
}

// Append persists one audit record.
func (s *AuditStore) Append(ctx context.Context, rec *domain.AuditRecord) error {
	const query = `
	INSERT INTO audit_log (symbol, ts, component, inputs, outputs, err)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.Symbol, rec.Timestamp, rec.Component, rec.Inputs, rec.Outputs, rec.Err)
	if err != nil {
		return fmt.Errorf("%w: failed to append audit record for %s/%s: %v",
			ports.ErrQueryFailed, rec.Symbol, rec.Component, err)
	}
	return nil
}

// RecentBySymbol retrieves the most recent records for a symbol, newest first.
func (s *AuditStore) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.AuditRecord, error) {
	const query = `
	SELECT symbol, ts, component, inputs, outputs, err
	FROM audit_log
	WHERE symbol = ?
	ORDER BY ts DESC, id DESC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query audit records for %s: %v", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	var records []*domain.AuditRecord
	for rows.Next() {
		rec := &domain.AuditRecord{}
		if err := rows.Scan(&rec.Symbol, &rec.Timestamp, &rec.Component, &rec.Inputs, &rec.Outputs, &rec.Err); err != nil {
			return nil, fmt.Errorf("%w: failed to scan audit record: %v", ports.ErrQueryFailed, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: audit record iteration: %v", ports.ErrQueryFailed, err)
	}
	return records, nil
}
