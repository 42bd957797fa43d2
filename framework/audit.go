package framework

import (
	"context"
	"sync"
	"time"
)

// AuditEntry is the canonical normalized record of an approval decision.
// Every field is nullable: a raw string comment normalizes into an entry
// whose only populated field is Comments.
type AuditEntry struct {
	Timestamp *time.Time `json:"timestamp"`
	ChangeID  *string    `json:"change_id"`
	Status    *string    `json:"status"`
	Approver  *string    `json:"approver"`
	Comments  *string    `json:"comments"`
}

// AuditLogger defines the logging backend. The approval agent only produces
// entries; durable storage is the caller's concern, so the default backend is
// the bounded in-memory buffer below and the persistence package adds SQLite.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry) error
	Query(ctx context.Context, filter AuditQuery) ([]AuditEntry, error)
}

// AuditQuery filters audit entries. Zero-valued fields match everything.
type AuditQuery struct {
	ChangeID  string
	Status    string
	Approver  string
	TimeStart time.Time
	TimeEnd   time.Time
}

// InMemoryAuditLogger appends entries to a bounded buffer, dropping the
// oldest record once the limit is reached.
type InMemoryAuditLogger struct {
	mu     sync.RWMutex
	buffer []AuditEntry
	limit  int
}

// NewInMemoryAuditLogger builds a default logger.
func NewInMemoryAuditLogger(limit int) *InMemoryAuditLogger {
	if limit == 0 {
		limit = 2048
	}
	return &InMemoryAuditLogger{
		buffer: make([]AuditEntry, 0, limit),
		limit:  limit,
	}
}

// Log appends the entry to the buffer. A missing timestamp is stamped at
// write time so the log stays totally ordered.
func (l *InMemoryAuditLogger) Log(_ context.Context, entry AuditEntry) error {
	if entry.Timestamp == nil {
		now := time.Now().UTC()
		entry.Timestamp = &now
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buffer) == l.limit {
		l.buffer = l.buffer[1:]
	}
	l.buffer = append(l.buffer, entry)
	return nil
}

// Query filters the buffered entries.
func (l *InMemoryAuditLogger) Query(_ context.Context, filter AuditQuery) ([]AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var result []AuditEntry
	for _, entry := range l.buffer {
		if filter.ChangeID != "" && !matchString(entry.ChangeID, filter.ChangeID) {
			continue
		}
		if filter.Status != "" && !matchString(entry.Status, filter.Status) {
			continue
		}
		if filter.Approver != "" && !matchString(entry.Approver, filter.Approver) {
			continue
		}
		if !filter.TimeStart.IsZero() && (entry.Timestamp == nil || entry.Timestamp.Before(filter.TimeStart)) {
			continue
		}
		if !filter.TimeEnd.IsZero() && (entry.Timestamp == nil || entry.Timestamp.After(filter.TimeEnd)) {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func matchString(field *string, want string) bool {
	return field != nil && *field == want
}
