// Package storage provides a SQLite-backed journal of emitted alerts for
// operator inspection. The journal is write-mostly instrumentation: it is
// never read back into engine state and its failures must not affect
// classification or dispatch.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"oiscanner/internal/models"
)

// Journal wraps a SQLite database holding the alert history.
type Journal struct {
	db        *sql.DB
	maxAlerts int
}

// AlertRecord is one journaled finding.
type AlertRecord struct {
	ID         string
	Symbol     string
	Underlying string
	Kind       string
	Label      string
	Bucket     string
	Moneyness  string
	Lots       int
	OIDelta    float64
	OIRoc      float64
	Message    string
	CreatedAt  time.Time
}

// New opens or creates the journal database at dbPath. An empty dbPath
// defaults to $TMPDIR/oiscanner/alerts.db.
func New(maxAlerts int, dbPath string) (*Journal, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "oiscanner", "alerts.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	j := &Journal{db: db, maxAlerts: maxAlerts}
	if err := j.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			underlying  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			label       TEXT NOT NULL,
			bucket      TEXT,
			moneyness   TEXT,
			lots        INTEGER NOT NULL,
			oi_delta    REAL NOT NULL,
			oi_roc      REAL NOT NULL,
			message     TEXT NOT NULL,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Add records an emitted finding and enforces the row cap.
func (j *Journal) Add(f models.Finding) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO alerts
			(id, symbol, underlying, kind, label, bucket, moneyness,
			 lots, oi_delta, oi_roc, message, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.New().String(), f.Symbol, f.Underlying, f.Kind.String(), f.Label,
		string(f.Bucket), f.Moneyness.String(),
		f.Lots, f.OIDelta, f.OIRoc, f.Message, f.DetectedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	if _, err = tx.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY created_at DESC LIMIT ?
		)`, j.maxAlerts); err != nil {
		return fmt.Errorf("failed to enforce alert cap: %w", err)
	}

	return tx.Commit()
}

// RecentAlerts returns up to n journaled alerts, newest first.
func (j *Journal) RecentAlerts(n int) ([]AlertRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, symbol, underlying, kind, label, bucket, moneyness,
		       lots, oi_delta, oi_roc, message, created_at
		FROM alerts ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []AlertRecord
	for rows.Next() {
		var a AlertRecord
		var createdAtNano int64
		err := rows.Scan(
			&a.ID, &a.Symbol, &a.Underlying, &a.Kind, &a.Label, &a.Bucket,
			&a.Moneyness, &a.Lots, &a.OIDelta, &a.OIRoc, &a.Message,
			&createdAtNano,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.CreatedAt = time.Unix(0, createdAtNano)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// CountBySymbol returns how many alerts are journaled for a symbol.
func (j *Journal) CountBySymbol(symbol string) (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM alerts WHERE symbol = ?`, symbol).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}
