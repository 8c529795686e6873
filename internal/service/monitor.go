package service

import (
	"context"
	"fmt"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/freshness"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
)

// MonitorService sweeps the freshness tracker and turns each timeout
// transition into a persisted system event.
type MonitorService struct {
	tracker   *freshness.Tracker
	eventRepo repository.EventRepo
	pub       Publisher
	log       *logger.Logger
}

func NewMonitorService(tracker *freshness.Tracker, eventRepo repository.EventRepo, pub Publisher, log *logger.Logger) *MonitorService {
	return &MonitorService{tracker: tracker, eventRepo: eventRepo, pub: pub, log: log}
}

// Run ticks at the given interval until ctx is canceled. The sweep itself is
// idempotent, so a slow tick never double-reports a transition.
func (s *MonitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now.UTC())
		}
	}
}

func (s *MonitorService) sweep(ctx context.Context, now time.Time) {
	for _, te := range s.tracker.Sweep(now) {
		s.log.Warnw("source timed out",
			"source", te.Source,
			"silent_seconds", te.SilentSecs,
			"last_seen", te.LastSeen,
		)
		ev := motormonitor.SystemEvent{
			OccurredAt: te.OccurredAt,
			Type:       "TIMEOUT",
			Message:    fmt.Sprintf("%s silent for %.0fs, marked disconnected", te.Source, te.SilentSecs),
			Metadata: map[string]any{
				"source":         string(te.Source),
				"silent_seconds": te.SilentSecs,
				"last_seen":      te.LastSeen,
			},
		}
		if err := s.eventRepo.Append(ctx, ev); err != nil {
			s.log.Warnw("failed to persist timeout event", "source", te.Source, "err", err)
		}
		if s.pub != nil {
			s.pub.PublishEvent(ev)
		}
	}
}
