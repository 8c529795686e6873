package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/arbiter"
	"github.com/khanbasharat3a1/motor-monitor/internal/freshness"
	"github.com/khanbasharat3a1/motor-monitor/internal/health"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/oracle"
	"github.com/khanbasharat3a1/motor-monitor/internal/recommend"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
)

// cycleTimeout bounds one evaluation, history lookups and oracle call
// included, so a stuck dependency cannot freeze the loop.
const cycleTimeout = 10 * time.Second

// faultLookupAnomaly is the anomaly fraction above which the engine also
// asks the predictor to classify the developing fault.
const faultLookupAnomaly = 0.5

// EngineService drives the periodic health evaluation. One cycle is a pure
// pipeline: snapshot, arbitrate, score, aggregate, persist, recommend. All
// I/O happens on the snapshot copies, never under the tracker lock.
type EngineService struct {
	tracker     *freshness.Tracker
	readingRepo repository.ReadingRepo
	eventRepo   repository.EventRepo
	alerts      *AlertService
	predictor   oracle.Client
	pub         Publisher
	log         *logger.Logger

	// lastMu guards the retained last result so readers never observe a
	// half-written cycle.
	lastMu   sync.RWMutex
	lastGood *motormonitor.HealthResult
}

func NewEngineService(
	tracker *freshness.Tracker,
	readingRepo repository.ReadingRepo,
	eventRepo repository.EventRepo,
	alerts *AlertService,
	predictor oracle.Client,
	pub Publisher,
	log *logger.Logger,
) *EngineService {
	if predictor == nil {
		predictor = oracle.Disabled{}
	}
	return &EngineService{
		tracker:     tracker,
		readingRepo: readingRepo,
		eventRepo:   eventRepo,
		alerts:      alerts,
		predictor:   predictor,
		pub:         pub,
		log:         log,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *EngineService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
			if _, _, err := s.EvaluateCycle(cycleCtx); err != nil {
				s.log.Errorw("evaluation cycle failed", "err", err)
			}
			cancel()
		}
	}
}

// EvaluateCycle performs one full evaluation and returns the result with its
// ranked recommendations. Persistence failures degrade the cycle instead of
// aborting it: the result is still computed, retained and published.
func (s *EngineService) EvaluateCycle(ctx context.Context) (motormonitor.HealthResult, []motormonitor.Recommendation, error) {
	now := time.Now().UTC()

	states, readings := s.tracker.Snapshot()

	// Historical substitutes are only needed for sources that are not live,
	// and are fetched before the dataset is assembled.
	history := make(map[motormonitor.Source]map[string]float64, 2)
	for _, src := range motormonitor.Sources() {
		if states[src].Connected {
			continue
		}
		if avg := arbiter.ResolveHistory(ctx, s.readingRepo, src); avg != nil {
			history[src] = avg
		}
	}

	ds := arbiter.BuildDataset(states, readings, history)

	comps := health.Components{
		Electrical: health.Electrical(ds.Fields),
		Thermal:    health.Thermal(ds.Fields),
		Mechanical: health.Mechanical(ds.Fields),
		Predictive: s.predictiveScore(ctx, ds.Fields),
	}

	result := health.Aggregate(comps, ds.Confidence, ds.Provenance, now)
	result.Efficiency = health.Efficiency(ds.Fields)

	if err := s.readingRepo.SaveCycle(ctx, repository.Cycle{
		RecordedAt: now,
		States:     states,
		Fields:     ds.Fields,
		Result:     result,
	}); err != nil {
		s.log.Warnw("failed to persist cycle, continuing degraded", "err", err)
		s.appendEvent(ctx, motormonitor.SystemEvent{
			OccurredAt: now,
			Type:       "DEGRADED",
			Message:    fmt.Sprintf("cycle result not persisted: %v", err),
		})
	}

	recs := recommend.Rank(recommend.Evaluate(result, states, ds.Fields, now))
	s.alerts.RecordRecommendations(ctx, recs, now)

	s.lastMu.Lock()
	s.lastGood = &result
	s.lastMu.Unlock()

	if s.pub != nil {
		s.pub.PublishHealth(result, recs)
	}

	s.log.Infow("evaluation cycle complete",
		"overall", result.Overall,
		"status", result.Status,
		"confidence", result.Confidence,
		"recommendations", len(recs),
	)
	return result, recs, nil
}

// Latest returns the most recent result: the in-memory one when the engine
// has completed a cycle this run, otherwise the last persisted row.
func (s *EngineService) Latest(ctx context.Context) (motormonitor.HealthResult, error) {
	s.lastMu.RLock()
	last := s.lastGood
	s.lastMu.RUnlock()
	if last != nil {
		return *last, nil
	}

	res, err := s.readingRepo.LatestResult(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoCycles) {
			return motormonitor.HealthResult{}, err
		}
		return motormonitor.HealthResult{}, fmt.Errorf("load latest result: %w", err)
	}
	return res, nil
}

// predictiveScore asks the oracle for an anomaly score. Any failure maps to
// the no-data sentinel; the aggregate then renormalizes without it. An
// elevated anomaly triggers a second call to name the likely fault, which is
// attached as an issue. That lookup is best effort too.
func (s *EngineService) predictiveScore(ctx context.Context, fields map[string]float64) health.Score {
	anomaly, err := s.predictor.ScoreAnomaly(ctx, fields)
	if err != nil {
		if !errors.Is(err, oracle.ErrUnavailable) {
			s.log.Debugw("predictive scoring failed", "err", err)
		}
		return health.Score{NoData: true}
	}

	score := health.Score{Value: oracle.PredictiveScore(anomaly)}
	if anomaly >= faultLookupAnomaly {
		if fp, err := s.predictor.PredictFault(ctx, fields); err == nil && fp.Label != "" {
			score.Issues = append(score.Issues,
				fmt.Sprintf("likely fault: %s (probability %.2f)", fp.Label, fp.Probability))
		} else if err != nil && !errors.Is(err, oracle.ErrUnavailable) {
			s.log.Debugw("fault prediction failed", "err", err)
		}
	}
	return score
}

func (s *EngineService) appendEvent(ctx context.Context, e motormonitor.SystemEvent) {
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Warnw("failed to append system event", "type", e.Type, "err", err)
	}
}
