package service

import (
	"context"
	"math"
	"testing"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/freshness"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
)

func newIngestForTest(events *fakeEventRepo) (*IngestService, *freshness.Tracker) {
	tracker := freshness.NewTracker(freshness.DefaultTimeouts())
	return NewIngestService(tracker, events, logger.Get(logger.ErrorLevel)), tracker
}

func TestProcessReading_RecordsAndConnects(t *testing.T) {
	t.Parallel()

	events := &fakeEventRepo{}
	svc, tracker := newIngestForTest(events)

	r, err := svc.ProcessReading(context.Background(), motormonitor.SourceSensor, map[string]float64{
		motormonitor.FieldCurrent: 6.2,
		motormonitor.FieldVoltage: 23.9,
	})
	if err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}
	if r.ReceivedAt.IsZero() {
		t.Errorf("reading must carry a receive timestamp")
	}
	if st := tracker.State(motormonitor.SourceSensor); !st.Connected || st.Quality != motormonitor.QualityGood {
		t.Errorf("sensor must be connected/GOOD, got %+v", st)
	}

	// First reading is a NO_DATA -> connected transition, logged as RECONNECT.
	if len(events.appended) != 1 || events.appended[0].Type != "RECONNECT" {
		t.Errorf("reconnect event expected, got %+v", events.appended)
	}
}

func TestProcessReading_NoReconnectEventWhileLive(t *testing.T) {
	t.Parallel()

	events := &fakeEventRepo{}
	svc, _ := newIngestForTest(events)

	fields := map[string]float64{motormonitor.FieldMotorTempC: 40}
	if _, err := svc.ProcessReading(context.Background(), motormonitor.SourceController, fields); err != nil {
		t.Fatalf("first reading: %v", err)
	}
	if _, err := svc.ProcessReading(context.Background(), motormonitor.SourceController, fields); err != nil {
		t.Fatalf("second reading: %v", err)
	}

	if len(events.appended) != 1 {
		t.Errorf("steady-state readings must not log reconnects, got %d events", len(events.appended))
	}
}

func TestProcessReading_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	events := &fakeEventRepo{}
	svc, tracker := newIngestForTest(events)

	cases := []struct {
		name   string
		src    motormonitor.Source
		fields map[string]float64
	}{
		{"unknown source", "GATEWAY", map[string]float64{motormonitor.FieldCurrent: 1}},
		{"empty fields", motormonitor.SourceSensor, nil},
		{"unregistered field", motormonitor.SourceSensor, map[string]float64{motormonitor.FieldMotorTempC: 40}},
		{"NaN value", motormonitor.SourceSensor, map[string]float64{motormonitor.FieldCurrent: math.NaN()}},
		{"Inf value", motormonitor.SourceController, map[string]float64{motormonitor.FieldMotorTempC: math.Inf(1)}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.ProcessReading(context.Background(), tc.src, tc.fields); err == nil {
				t.Fatalf("want validation error")
			}
		})
	}

	// No rejected reading may have touched tracker state.
	for _, src := range motormonitor.Sources() {
		if st := tracker.State(src); st.Connected {
			t.Errorf("%s connected after rejected readings only", src)
		}
	}
	if len(events.appended) != 0 {
		t.Errorf("rejected readings must not log events, got %+v", events.appended)
	}
}

func TestProcessReading_ReconnectAfterTimeout(t *testing.T) {
	t.Parallel()

	events := &fakeEventRepo{}
	svc, tracker := newIngestForTest(events)

	seen := time.Now().UTC().Add(-2 * time.Minute)
	tracker.Record(motormonitor.Reading{
		Source:     motormonitor.SourceSensor,
		Fields:     map[string]float64{motormonitor.FieldCurrent: 6.0},
		ReceivedAt: seen,
	})
	tracker.Sweep(time.Now().UTC()) // times the sensor out

	if _, err := svc.ProcessReading(context.Background(), motormonitor.SourceSensor, map[string]float64{
		motormonitor.FieldCurrent: 6.1,
	}); err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}

	if st := tracker.State(motormonitor.SourceSensor); !st.Connected {
		t.Errorf("reading must reconnect a timed-out source")
	}
	if len(events.appended) != 1 || events.appended[0].Type != "RECONNECT" {
		t.Errorf("reconnect event expected, got %+v", events.appended)
	}
}
