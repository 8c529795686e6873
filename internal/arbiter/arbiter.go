// Package arbiter builds the working dataset for one evaluation cycle: per
// source it selects the live reading, a historical average, or safe-default
// constants, and derives the confidence factor that later scales the
// aggregate score.
package arbiter

import (
	"context"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/health"
)

// Lookback windows for historical substitution. The narrow window is tried
// first; an empty result widens it exactly once before falling back to the
// safe defaults.
const (
	DefaultLookback = 24 * time.Hour
	WidenedLookback = 7 * 24 * time.Hour
)

// Confidence factors. Both-live is exactly 1.0 so a fully fresh dataset is
// never masked; one-live sits strictly above the neither-live value.
const (
	ConfidenceBothLive = 1.0
	ConfidenceOneLive  = 0.8
	ConfidenceNoneLive = 0.25
)

// HistoryProvider resolves a per-field average over recent persisted
// readings. An empty map means no rows in the window.
type HistoryProvider interface {
	HistoricalAverage(ctx context.Context, src motormonitor.Source, lookback time.Duration) (map[string]float64, error)
}

// Result is the ephemeral working dataset plus its trust annotations.
type Result struct {
	Fields     map[string]float64
	Confidence float64
	Provenance map[motormonitor.Source]motormonitor.Provenance
}

// ResolveHistory fetches the historical substitute for one source, widening
// the window once when the narrow one is empty. Errors degrade to "no
// history" and the caller falls back to defaults; a store failure must
// never abort a cycle. Called before any shared state is locked.
func ResolveHistory(ctx context.Context, provider HistoryProvider, src motormonitor.Source) map[string]float64 {
	if provider == nil {
		return nil
	}
	avg, err := provider.HistoricalAverage(ctx, src, DefaultLookback)
	if err == nil && len(avg) > 0 {
		return avg
	}
	avg, err = provider.HistoricalAverage(ctx, src, WidenedLookback)
	if err == nil && len(avg) > 0 {
		return avg
	}
	return nil
}

// BuildDataset merges both sources into one field map. A connected source
// contributes its live reading; a disconnected one contributes its
// pre-resolved historical average, or the safe-default constants when no
// history exists. BuildDataset performs no I/O.
func BuildDataset(
	states map[motormonitor.Source]motormonitor.SourceState,
	readings map[motormonitor.Source]motormonitor.Reading,
	history map[motormonitor.Source]map[string]float64,
) Result {
	fields := make(map[string]float64, 8)
	provenance := make(map[motormonitor.Source]motormonitor.Provenance, 2)

	liveCount := 0
	for _, src := range motormonitor.Sources() {
		st := states[src]
		reading, hasReading := readings[src]
		if st.Connected && hasReading {
			for k, v := range reading.Fields {
				fields[k] = v
			}
			provenance[src] = motormonitor.ProvenanceLive
			liveCount++
			continue
		}
		if avg := history[src]; len(avg) > 0 {
			for k, v := range avg {
				fields[k] = v
			}
			provenance[src] = motormonitor.ProvenanceHistorical
			continue
		}
		for k, v := range safeDefaults(src) {
			fields[k] = v
		}
		provenance[src] = motormonitor.ProvenanceDefault
	}

	return Result{
		Fields:     fields,
		Confidence: confidenceFor(liveCount),
		Provenance: provenance,
	}
}

func confidenceFor(liveCount int) float64 {
	switch liveCount {
	case 2:
		return ConfidenceBothLive
	case 1:
		return ConfidenceOneLive
	default:
		return ConfidenceNoneLive
	}
}

// safeDefaults is the last-resort substitute: the rated operating point.
// Combined with the neither-live confidence it yields a conservative,
// clearly degraded estimate instead of a crash or a fake alarm.
func safeDefaults(src motormonitor.Source) map[string]float64 {
	switch src {
	case motormonitor.SourceSensor:
		return map[string]float64{
			motormonitor.FieldCurrent:      health.OptimalCurrentA,
			motormonitor.FieldVoltage:      health.OptimalVoltageV,
			motormonitor.FieldRPM:          health.OptimalRPM,
			motormonitor.FieldAmbientTempC: health.OptimalAmbientTempC,
			motormonitor.FieldHumidity:     health.OptimalHumidityPct,
		}
	case motormonitor.SourceController:
		return map[string]float64{
			motormonitor.FieldMotorTempC:   health.OptimalMotorTempC,
			motormonitor.FieldMotorVoltage: health.OptimalVoltageV,
		}
	default:
		return nil
	}
}
