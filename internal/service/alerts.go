package service

import (
	"context"
	"sync"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
)

// Alert persistence policy: only high-trust, high-impact recommendations
// become rows, and an open alert of the same type suppresses new ones for
// the dedup window.
const (
	alertDedupWindow      = 30 * time.Minute
	persistMinConfidence  = 0.8
	defaultAlertListLimit = 50
)

type AlertService struct {
	// mu serializes check-then-insert so concurrent cycles cannot both pass
	// the dedup check for the same alert type.
	mu        sync.Mutex
	alertRepo repository.AlertRepo
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewAlertService(alertRepo repository.AlertRepo, eventRepo repository.EventRepo, log *logger.Logger) *AlertService {
	return &AlertService{alertRepo: alertRepo, eventRepo: eventRepo, log: log}
}

// persistable reports whether a recommendation is severe and trusted enough
// to enter the maintenance log.
func persistable(r motormonitor.Recommendation) bool {
	if r.Severity != motormonitor.SeverityHigh && r.Severity != motormonitor.SeverityCritical {
		return false
	}
	return r.Confidence > persistMinConfidence
}

// RecordRecommendations persists the qualifying subset of one cycle's
// recommendations and returns the alerts actually inserted. Duplicates
// inside the dedup window are skipped silently.
func (s *AlertService) RecordRecommendations(ctx context.Context, recs []motormonitor.Recommendation, now time.Time) []motormonitor.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted []motormonitor.Alert
	for _, rec := range recs {
		if !persistable(rec) {
			continue
		}

		dup, err := s.alertRepo.HasRecentUnacknowledged(ctx, rec.Type, now.Add(-alertDedupWindow))
		if err != nil {
			s.log.Warnw("alert dedup check failed", "type", rec.Type, "err", err)
			continue
		}
		if dup {
			continue
		}

		a := motormonitor.Alert{
			Type:        rec.Type,
			Category:    rec.Category,
			Severity:    rec.Severity,
			Priority:    rec.Priority,
			Description: rec.Description,
			Action:      rec.Action,
			Confidence:  rec.Confidence,
			CreatedAt:   now,
		}
		if err := s.alertRepo.Insert(ctx, a); err != nil {
			s.log.Warnw("failed to persist alert", "type", rec.Type, "err", err)
			continue
		}
		inserted = append(inserted, a)
	}
	return inserted
}

// List returns recent alerts, newest first.
func (s *AlertService) List(ctx context.Context, includeAcknowledged bool, limit int) ([]motormonitor.Alert, error) {
	if limit <= 0 {
		limit = defaultAlertListLimit
	}
	return s.alertRepo.List(ctx, includeAcknowledged, limit)
}

// Acknowledge closes one alert and logs who closed it. Returns false when no
// open alert matched the id.
func (s *AlertService) Acknowledge(ctx context.Context, id, by string) (bool, error) {
	found, err := s.alertRepo.Acknowledge(ctx, id, by)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := s.eventRepo.Append(ctx, motormonitor.SystemEvent{
		OccurredAt: time.Now().UTC(),
		Type:       "ACKNOWLEDGE",
		Message:    "alert acknowledged",
		Metadata:   map[string]any{"alert_id": id, "by": by},
	}); err != nil {
		s.log.Warnw("failed to log acknowledgment", "alert_id", id, "err", err)
	}
	return true, nil
}
