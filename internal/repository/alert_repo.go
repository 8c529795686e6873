package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	motormonitor "github.com/khanbasharat3a1/motor-monitor"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

const insertAlertSQL = `
	INSERT INTO maintenance_log (id, created_at, type, category, severity, priority, description, action, confidence, acknowledged, acknowledged_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const recentUnackedSQL = `
	SELECT COUNT(1) FROM maintenance_log
	WHERE type = ? AND acknowledged = 0 AND created_at >= ?
`

const acknowledgeAlertSQL = `
	UPDATE maintenance_log SET acknowledged = 1, acknowledged_by = ?
	WHERE id = ? AND acknowledged = 0
`

// Insert stores a new alert. If ID or CreatedAt are empty, they’re set.
func (r *AlertSQLite) Insert(ctx context.Context, a motormonitor.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	} else {
		a.CreatedAt = a.CreatedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertAlertSQL,
		a.ID,
		a.CreatedAt,
		strings.TrimSpace(a.Type),
		a.Category,
		a.Severity,
		a.Priority,
		a.Description,
		a.Action,
		a.Confidence,
		a.Acknowledged,
		nullIfEmpty(a.AcknowledgedBy),
	)
	return err
}

// HasRecentUnacknowledged reports whether an open alert of the same type
// exists at or after the cutoff. Drives the dedup window.
func (r *AlertSQLite) HasRecentUnacknowledged(ctx context.Context, typ string, since time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, recentUnackedSQL, strings.TrimSpace(typ), since.UTC()).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Acknowledge closes one alert. Returns false when no open alert matched,
// so callers can tell an unknown or already-closed id from a real ack.
func (r *AlertSQLite) Acknowledge(ctx context.Context, id, by string) (bool, error) {
	res, err := r.db.ExecContext(ctx, acknowledgeAlertSQL, by, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns alerts newest first. With includeAcknowledged false only open
// alerts are returned. limit <= 0 means no cap.
func (r *AlertSQLite) List(ctx context.Context, includeAcknowledged bool, limit int) ([]motormonitor.Alert, error) {
	q := `SELECT id, created_at, type, category, severity, priority, description, action, confidence, acknowledged, acknowledged_by FROM maintenance_log`
	var args []any
	if !includeAcknowledged {
		q += " WHERE acknowledged = 0"
	}
	q += " ORDER BY created_at DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]motormonitor.Alert, 0, 16)
	for rows.Next() {
		var (
			a      motormonitor.Alert
			action sql.NullString
			ackBy  sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.CreatedAt, &a.Type, &a.Category, &a.Severity, &a.Priority,
			&a.Description, &action, &a.Confidence, &a.Acknowledged, &ackBy,
		); err != nil {
			return nil, err
		}
		a.CreatedAt = a.CreatedAt.UTC()
		a.Action = action.String
		a.AcknowledgedBy = ackBy.String
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
