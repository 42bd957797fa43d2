// Package persistence provides the durable backends behind the pipeline: a
// SQLite audit log and a JSON-file store of completed runs. Both are optional
// to the core, which only ever hands records to interfaces.
package persistence

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/pagemend/framework"
)

// SQLiteAuditLog implements framework.AuditLogger on a SQLite database, so
// approval decisions survive process restarts.
type SQLiteAuditLog struct {
	db *sql.DB
}

// NewSQLiteAuditLog opens/creates the database at dbPath.
func NewSQLiteAuditLog(dbPath string) (*SQLiteAuditLog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteAuditLog{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteAuditLog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS approval_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP,
		change_id TEXT,
		status TEXT,
		approver TEXT,
		comments TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_approval_log_change ON approval_log(change_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Log appends the entry. A missing timestamp is stamped at write time.
func (s *SQLiteAuditLog) Log(ctx context.Context, entry framework.AuditEntry) error {
	if entry.Timestamp == nil {
		now := time.Now().UTC()
		entry.Timestamp = &now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approval_log (timestamp, change_id, status, approver, comments) VALUES (?, ?, ?, ?, ?)`,
		entry.Timestamp, nullable(entry.ChangeID), nullable(entry.Status), nullable(entry.Approver), nullable(entry.Comments))
	return err
}

// Query returns entries matching the filter, oldest first.
func (s *SQLiteAuditLog) Query(ctx context.Context, filter framework.AuditQuery) ([]framework.AuditEntry, error) {
	query := `SELECT timestamp, change_id, status, approver, comments FROM approval_log WHERE 1=1`
	var args []any
	if filter.ChangeID != "" {
		query += " AND change_id = ?"
		args = append(args, filter.ChangeID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Approver != "" {
		query += " AND approver = ?"
		args = append(args, filter.Approver)
	}
	if !filter.TimeStart.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.TimeStart)
	}
	if !filter.TimeEnd.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.TimeEnd)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []framework.AuditEntry
	for rows.Next() {
		var ts sql.NullTime
		var changeID, status, approver, comments sql.NullString
		if err := rows.Scan(&ts, &changeID, &status, &approver, &comments); err != nil {
			return nil, err
		}
		entry := framework.AuditEntry{
			ChangeID: fromNullString(changeID),
			Status:   fromNullString(status),
			Approver: fromNullString(approver),
			Comments: fromNullString(comments),
		}
		if ts.Valid {
			utc := ts.Time.UTC()
			entry.Timestamp = &utc
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteAuditLog) Close() error {
	return s.db.Close()
}

func nullable(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
