package store

import (
	"database/sql"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"windrose/internal/logging"
	"windrose/internal/types"
)

// AuditLog is an append-only SQLite record of every gateway call, kept next
// to the session files for post-mortem inspection. Audit failures are
// warn-only: losing an audit row must never fail an engine step, unlike
// session persistence.
type AuditLog struct {
	db *sql.DB
}

// CallRecord is one audited gateway call.
type CallRecord struct {
	SessionID  string
	Phase      types.Phase
	Persona    string
	Round      int
	Tokens     int
	DurationMs int64
	Error      string
	CreatedAt  time.Time
}

// OpenAuditLog opens (creating if needed) the audit database under root.
func OpenAuditLog(root string) (*AuditLog, error) {
	path := filepath.Join(root, "audit.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &types.PersistenceError{Op: "open", Path: path, Err: err}
	}
	a := &AuditLog{db: db}
	if err := a.initSchema(); err != nil {
		_ = db.Close()
		return nil, &types.PersistenceError{Op: "init", Path: path, Err: err}
	}
	return a, nil
}

func (a *AuditLog) initSchema() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS gateway_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			phase TEXT NOT NULL,
			persona TEXT NOT NULL DEFAULT '',
			round INTEGER NOT NULL DEFAULT 0,
			tokens INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_gateway_calls_session ON gateway_calls(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one call. Errors are logged, not returned.
func (a *AuditLog) Record(rec CallRecord) {
	if a == nil || a.db == nil {
		return
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := a.db.Exec(
		`INSERT INTO gateway_calls (session_id, phase, persona, round, tokens, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, string(rec.Phase), rec.Persona, rec.Round, rec.Tokens, rec.DurationMs, rec.Error,
		created.Format(time.RFC3339Nano),
	)
	if err != nil {
		logging.StoreWarn("failed to audit gateway call: session=%s phase=%s: %v", rec.SessionID, rec.Phase, err)
	}
}

// Calls returns the audited calls for a session, oldest first.
func (a *AuditLog) Calls(sessionID string, limit int) ([]CallRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := a.db.Query(
		`SELECT session_id, phase, persona, round, tokens, duration_ms, error, created_at
		 FROM gateway_calls WHERE session_id = ? ORDER BY id ASC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		var rec CallRecord
		var phase, created string
		if err := rows.Scan(&rec.SessionID, &phase, &rec.Persona, &rec.Round, &rec.Tokens, &rec.DurationMs, &rec.Error, &created); err != nil {
			return nil, err
		}
		rec.Phase = types.Phase(phase)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (a *AuditLog) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
