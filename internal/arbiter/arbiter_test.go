package arbiter

import (
	"context"
	"errors"
	"testing"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/health"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func connectedStates() map[motormonitor.Source]motormonitor.SourceState {
	states := make(map[motormonitor.Source]motormonitor.SourceState, 2)
	for _, src := range motormonitor.Sources() {
		states[src] = motormonitor.SourceState{
			Source:    src,
			Connected: true,
			LastSeen:  now,
			Quality:   motormonitor.QualityGood,
		}
	}
	return states
}

func liveReadings() map[motormonitor.Source]motormonitor.Reading {
	return map[motormonitor.Source]motormonitor.Reading{
		motormonitor.SourceSensor: {
			Source: motormonitor.SourceSensor,
			Fields: map[string]float64{
				motormonitor.FieldCurrent: 6.25,
				motormonitor.FieldVoltage: 24.0,
				motormonitor.FieldRPM:     2750,
			},
			ReceivedAt: now,
		},
		motormonitor.SourceController: {
			Source: motormonitor.SourceController,
			Fields: map[string]float64{
				motormonitor.FieldMotorTempC:   40.0,
				motormonitor.FieldMotorVoltage: 24.1,
			},
			ReceivedAt: now,
		},
	}
}

func TestBuildDataset_BothLiveIsExactlyFullConfidence(t *testing.T) {
	t.Parallel()

	r := BuildDataset(connectedStates(), liveReadings(), nil)

	if r.Confidence != 1.0 {
		t.Fatalf("confidence: want exactly 1.0, got %v", r.Confidence)
	}
	for _, src := range motormonitor.Sources() {
		if r.Provenance[src] != motormonitor.ProvenanceLive {
			t.Errorf("%s provenance: want live, got %s", src, r.Provenance[src])
		}
	}
	if r.Fields[motormonitor.FieldMotorTempC] != 40.0 {
		t.Errorf("controller field missing from merged dataset")
	}
	if r.Fields[motormonitor.FieldCurrent] != 6.25 {
		t.Errorf("sensor field missing from merged dataset")
	}
}

func TestBuildDataset_OneSourceDownUsesHistory(t *testing.T) {
	t.Parallel()

	states := connectedStates()
	states[motormonitor.SourceController] = motormonitor.SourceState{
		Source:  motormonitor.SourceController,
		Quality: motormonitor.QualityTimeout,
	}
	readings := liveReadings()
	delete(readings, motormonitor.SourceController)

	history := map[motormonitor.Source]map[string]float64{
		motormonitor.SourceController: {
			motormonitor.FieldMotorTempC:   43.5,
			motormonitor.FieldMotorVoltage: 23.8,
		},
	}

	r := BuildDataset(states, readings, history)

	if r.Confidence != ConfidenceOneLive {
		t.Errorf("confidence: want %v, got %v", ConfidenceOneLive, r.Confidence)
	}
	if r.Confidence <= ConfidenceNoneLive {
		t.Errorf("one-live confidence must exceed the neither-live factor")
	}
	if r.Provenance[motormonitor.SourceController] != motormonitor.ProvenanceHistorical {
		t.Errorf("controller provenance: want historical, got %s", r.Provenance[motormonitor.SourceController])
	}
	if r.Fields[motormonitor.FieldMotorTempC] != 43.5 {
		t.Errorf("historical motor temp not substituted: %v", r.Fields[motormonitor.FieldMotorTempC])
	}
}

func TestBuildDataset_TotalLossFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	states := map[motormonitor.Source]motormonitor.SourceState{
		motormonitor.SourceSensor:     {Source: motormonitor.SourceSensor, Quality: motormonitor.QualityTimeout},
		motormonitor.SourceController: {Source: motormonitor.SourceController, Quality: motormonitor.QualityNoData},
	}

	r := BuildDataset(states, nil, nil)

	if r.Confidence > 0.3 {
		t.Errorf("neither-live confidence must be <= 0.3, got %v", r.Confidence)
	}
	for _, src := range motormonitor.Sources() {
		if r.Provenance[src] != motormonitor.ProvenanceDefault {
			t.Errorf("%s provenance: want default, got %s", src, r.Provenance[src])
		}
	}
	if r.Fields[motormonitor.FieldCurrent] != health.OptimalCurrentA {
		t.Errorf("default current: want %v, got %v", health.OptimalCurrentA, r.Fields[motormonitor.FieldCurrent])
	}
	if r.Fields[motormonitor.FieldMotorTempC] != health.OptimalMotorTempC {
		t.Errorf("default motor temp: want %v, got %v", health.OptimalMotorTempC, r.Fields[motormonitor.FieldMotorTempC])
	}
}

// historyStub records the lookbacks it was asked for.
type historyStub struct {
	byLookback map[time.Duration]map[string]float64
	err        error
	calls      []time.Duration
}

func (h *historyStub) HistoricalAverage(_ context.Context, _ motormonitor.Source, lookback time.Duration) (map[string]float64, error) {
	h.calls = append(h.calls, lookback)
	if h.err != nil {
		return nil, h.err
	}
	return h.byLookback[lookback], nil
}

func TestResolveHistory_WidensOnce(t *testing.T) {
	t.Parallel()

	stub := &historyStub{
		byLookback: map[time.Duration]map[string]float64{
			WidenedLookback: {motormonitor.FieldMotorTempC: 42.0},
		},
	}
	got := ResolveHistory(context.Background(), stub, motormonitor.SourceController)

	if len(stub.calls) != 2 || stub.calls[0] != DefaultLookback || stub.calls[1] != WidenedLookback {
		t.Fatalf("lookback calls: want [24h, 168h], got %v", stub.calls)
	}
	if got[motormonitor.FieldMotorTempC] != 42.0 {
		t.Errorf("widened history not returned: %v", got)
	}
}

func TestResolveHistory_NarrowWindowWins(t *testing.T) {
	t.Parallel()

	stub := &historyStub{
		byLookback: map[time.Duration]map[string]float64{
			DefaultLookback: {motormonitor.FieldMotorTempC: 41.0},
			WidenedLookback: {motormonitor.FieldMotorTempC: 55.0},
		},
	}
	got := ResolveHistory(context.Background(), stub, motormonitor.SourceController)

	if len(stub.calls) != 1 {
		t.Fatalf("want a single lookup, got %v", stub.calls)
	}
	if got[motormonitor.FieldMotorTempC] != 41.0 {
		t.Errorf("narrow history not preferred: %v", got)
	}
}

func TestResolveHistory_StoreErrorDegradesToNil(t *testing.T) {
	t.Parallel()

	stub := &historyStub{err: errors.New("db down")}
	if got := ResolveHistory(context.Background(), stub, motormonitor.SourceSensor); got != nil {
		t.Errorf("store error must degrade to no history, got %v", got)
	}
}
