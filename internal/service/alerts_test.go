package service

import (
	"context"
	"testing"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
)

func rec(typ, severity string, confidence float64) motormonitor.Recommendation {
	return motormonitor.Recommendation{
		Type:        typ,
		Category:    "Thermal",
		Severity:    severity,
		Priority:    severity,
		Description: "d",
		Action:      "a",
		Confidence:  confidence,
		Urgency:     motormonitor.UrgencyImmediate,
	}
}

func TestRecordRecommendations_PersistsOnlyHighTrustSevere(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{}
	svc := NewAlertService(repo, &fakeEventRepo{}, logger.Get(logger.ErrorLevel))
	now := time.Now().UTC()

	inserted := svc.RecordRecommendations(context.Background(), []motormonitor.Recommendation{
		rec("Overheat Alert", motormonitor.SeverityHigh, 0.9),        // persists
		rec("Routine Maintenance", motormonitor.SeverityLow, 0.95),   // severity too low
		rec("Health Warning", motormonitor.SeverityMedium, 0.9),      // severity too low
		rec("Critical Health Alert", motormonitor.SeverityCritical, 0.5), // confidence too low
	}, now)

	if len(inserted) != 1 || inserted[0].Type != "Overheat Alert" {
		t.Fatalf("want only the overheat alert persisted, got %+v", inserted)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("repo inserts: want 1, got %d", len(repo.inserted))
	}
}

func TestRecordRecommendations_DedupWindowSuppresses(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{open: map[string]bool{"Overheat Alert": true}}
	svc := NewAlertService(repo, &fakeEventRepo{}, logger.Get(logger.ErrorLevel))

	inserted := svc.RecordRecommendations(context.Background(), []motormonitor.Recommendation{
		rec("Overheat Alert", motormonitor.SeverityHigh, 0.9),
		rec("Undervoltage Alert", motormonitor.SeverityHigh, 0.9),
	}, time.Now().UTC())

	if len(inserted) != 1 || inserted[0].Type != "Undervoltage Alert" {
		t.Fatalf("open same-type alert must suppress, other types pass: %+v", inserted)
	}
}

func TestAcknowledge_LogsEvent(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{}
	events := &fakeEventRepo{}
	svc := NewAlertService(repo, events, logger.Get(logger.ErrorLevel))

	found, err := svc.Acknowledge(context.Background(), "a1", "operator-1")
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if !found {
		t.Fatalf("existing alert must report found")
	}
	if len(repo.acked) != 1 || repo.acked[0] != "a1" {
		t.Fatalf("repo not called: %+v", repo.acked)
	}
	if len(events.appended) != 1 || events.appended[0].Type != "ACKNOWLEDGE" {
		t.Fatalf("acknowledge event expected, got %+v", events.appended)
	}
}

func TestAcknowledge_UnknownIDReportsNotFound(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{ackMiss: true}
	events := &fakeEventRepo{}
	svc := NewAlertService(repo, events, logger.Get(logger.ErrorLevel))

	found, err := svc.Acknowledge(context.Background(), "no-such", "operator-1")
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if found {
		t.Fatalf("unknown alert must report not found")
	}
	if len(events.appended) != 0 {
		t.Fatalf("no event for a missed acknowledgment, got %+v", events.appended)
	}
}

func TestAlertServiceList_DefaultsLimit(t *testing.T) {
	t.Parallel()

	repo := &fakeAlertRepo{}
	svc := NewAlertService(repo, &fakeEventRepo{}, logger.Get(logger.ErrorLevel))

	if _, err := svc.List(context.Background(), false, 0); err != nil {
		t.Fatalf("List: %v", err)
	}
}
