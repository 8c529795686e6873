package service

import (
	"context"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/freshness"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/oracle"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
)

// Ingest accepts raw readings from the telemetry sources.
type Ingest interface {
	ProcessReading(ctx context.Context, src motormonitor.Source, fields map[string]float64) (motormonitor.Reading, error)
	SourceStates() map[motormonitor.Source]motormonitor.SourceState
}

// Engine runs the periodic health evaluation and exposes on-demand cycles.
// Stop via context cancellation in main() for graceful shutdown.
type Engine interface {
	Run(ctx context.Context, tick time.Duration)
	EvaluateCycle(ctx context.Context) (motormonitor.HealthResult, []motormonitor.Recommendation, error)
	Latest(ctx context.Context) (motormonitor.HealthResult, error)
}

// Monitor runs the background liveness sweep over both sources.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Alerts exposes the persisted maintenance log.
type Alerts interface {
	List(ctx context.Context, includeAcknowledged bool, limit int) ([]motormonitor.Alert, error)
	Acknowledge(ctx context.Context, id, by string) (bool, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]motormonitor.SystemEvent, error)
}

// Publisher pushes cycle results and events to connected clients. A nil
// publisher disables broadcasting.
type Publisher interface {
	PublishHealth(result motormonitor.HealthResult, recs []motormonitor.Recommendation)
	PublishEvent(e motormonitor.SystemEvent)
}

// Service aggregates all sub-services.
type Service struct {
	Ingest
	Engine
	Monitor
	Alerts
	EventLog
}

// NewService wires the repository layer, the freshness tracker and the
// predictive client into concrete services.
func NewService(
	repos *repository.Repository,
	tracker *freshness.Tracker,
	predictor oracle.Client,
	pub Publisher,
	log *logger.Logger,
) *Service {
	alerts := NewAlertService(repos.Alerts, repos.Events, log)
	return &Service{
		Ingest:   NewIngestService(tracker, repos.Events, log),
		Engine:   NewEngineService(tracker, repos.Readings, repos.Events, alerts, predictor, pub, log),
		Monitor:  NewMonitorService(tracker, repos.Events, pub, log),
		Alerts:   alerts,
		EventLog: NewEventLogService(repos.Events),
	}
}
