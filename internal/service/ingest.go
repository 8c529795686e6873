package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/freshness"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
)

var (
	errUnknownSource = errors.New("unknown source: must be SENSOR or CONTROLLER")
	errEmptyReading  = errors.New("reading carries no fields")
)

type IngestService struct {
	tracker   *freshness.Tracker
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewIngestService(tracker *freshness.Tracker, eventRepo repository.EventRepo, log *logger.Logger) *IngestService {
	return &IngestService{tracker: tracker, eventRepo: eventRepo, log: log}
}

// ProcessReading validates one sample and records it into the liveness
// tracker. A reading from a disconnected source reconnects it and logs a
// RECONNECT event; validation failures never touch tracker state.
func (s *IngestService) ProcessReading(ctx context.Context, src motormonitor.Source, fields map[string]float64) (motormonitor.Reading, error) {
	if err := validateFields(src, fields); err != nil {
		return motormonitor.Reading{}, err
	}

	now := time.Now().UTC()
	wasConnected := s.tracker.State(src).Connected

	reading := motormonitor.Reading{
		Source:     src,
		Fields:     fields,
		ReceivedAt: now,
	}
	s.tracker.Record(reading)

	if !wasConnected {
		s.log.Infow("source reconnected", "source", src)
		if err := s.eventRepo.Append(ctx, motormonitor.SystemEvent{
			OccurredAt: now,
			Type:       "RECONNECT",
			Message:    fmt.Sprintf("%s is sending data again", src),
			Metadata:   map[string]any{"source": string(src)},
		}); err != nil {
			// The reading is already recorded; a failed audit write is not
			// worth rejecting telemetry over.
			s.log.Warnw("failed to log reconnect event", "source", src, "err", err)
		}
	}

	return reading, nil
}

// SourceStates returns a copy of the current per-source liveness records.
func (s *IngestService) SourceStates() map[motormonitor.Source]motormonitor.SourceState {
	states, _ := s.tracker.Snapshot()
	return states
}

func validateFields(src motormonitor.Source, fields map[string]float64) error {
	known := motormonitor.KnownFields(src)
	if known == nil {
		return errUnknownSource
	}
	if len(fields) == 0 {
		return errEmptyReading
	}
	for name, v := range fields {
		if !contains(known, name) {
			return fmt.Errorf("field %q is not registered for source %s", name, src)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("field %q carries a non-finite value", name)
		}
	}
	return nil
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
