package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/ceasor-elvis/stem-management-system/internal/queue"
)

// Entry is one row of the lifecycle audit trail.
type Entry struct {
	ID        int64
	Action    string
	RecordID  string
	StudentID string
	ActorID   string
	At        time.Time
	CreatedAt time.Time
}

// Trail persists lifecycle events for the security audit view.
type Trail struct {
	db *sql.DB
}

// NewTrail creates an audit trail over an open pool.
func NewTrail(db *sql.DB) *Trail {
	return &Trail{db: db}
}

// Append writes one lifecycle event.
func (t *Trail) Append(ctx context.Context, evt queue.Event) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO audit_log (action, record_id, student_id, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`, evt.Action, evt.RecordID, evt.StudentID, evt.ActorID, evt.At)
	return err
}

// ForRecord returns the trail for one record, oldest first.
func (t *Trail) ForRecord(ctx context.Context, recordID string) ([]Entry, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, action, record_id, student_id, actor_id, occurred_at, created_at
		FROM audit_log
		WHERE record_id = $1
		ORDER BY id ASC
	`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.RecordID, &e.StudentID, &e.ActorID, &e.At, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
