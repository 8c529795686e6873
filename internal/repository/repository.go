package repository

import (
	"context"
	"database/sql"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository/db"
)

// InitDB opens the SQLite file and bootstraps the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}

// Cycle is one persisted evaluation: the merged working dataset, the source
// liveness flags and the derived result, flattened into a single row.
type Cycle struct {
	RecordedAt time.Time
	States     map[motormonitor.Source]motormonitor.SourceState
	Fields     map[string]float64
	Result     motormonitor.HealthResult
}

type ReadingRepo interface {
	SaveCycle(ctx context.Context, c Cycle) error
	HistoricalAverage(ctx context.Context, src motormonitor.Source, lookback time.Duration) (map[string]float64, error)
	LatestResult(ctx context.Context) (motormonitor.HealthResult, error)
}

type AlertRepo interface {
	Insert(ctx context.Context, a motormonitor.Alert) error
	HasRecentUnacknowledged(ctx context.Context, typ string, since time.Time) (bool, error)
	Acknowledge(ctx context.Context, id, by string) (bool, error)
	List(ctx context.Context, includeAcknowledged bool, limit int) ([]motormonitor.Alert, error)
}

type EventRepo interface {
	Append(ctx context.Context, e motormonitor.SystemEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]motormonitor.SystemEvent, error)
}

type Repository struct {
	Readings ReadingRepo
	Alerts   AlertRepo
	Events   EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings: NewReadingSQLite(db),
		Alerts:   NewAlertSQLite(db),
		Events:   NewEventSQLite(db),
	}
}
