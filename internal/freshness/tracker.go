package freshness

import (
	"sync"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
)

// Timeouts configures per-source freshness windows.
type Timeouts struct {
	// Timeout is the silence duration after which a connected source is
	// considered gone.
	Timeout map[motormonitor.Source]time.Duration
	// StaleAfter is the silence duration after which a connected source is
	// downgraded to STALE without disconnecting. Zero disables the grade.
	StaleAfter map[motormonitor.Source]time.Duration
}

// DefaultTimeouts mirrors the hardware defaults: the sensor node posts every
// few seconds, the controller is polled more slowly.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Timeout: map[motormonitor.Source]time.Duration{
			motormonitor.SourceSensor:     30 * time.Second,
			motormonitor.SourceController: 60 * time.Second,
		},
		StaleAfter: map[motormonitor.Source]time.Duration{
			motormonitor.SourceSensor:     15 * time.Second,
			motormonitor.SourceController: 30 * time.Second,
		},
	}
}

// Tracker owns the per-source liveness states and the latest readings.
// All access goes through its mutex so a reading update and a timeout sweep
// never interleave into an inconsistent state. Tracker never performs I/O.
type Tracker struct {
	mu       sync.Mutex
	timeouts Timeouts
	states   map[motormonitor.Source]motormonitor.SourceState
	latest   map[motormonitor.Source]motormonitor.Reading
}

// NewTracker returns a tracker with every known source in the NO_DATA state.
func NewTracker(timeouts Timeouts) *Tracker {
	states := make(map[motormonitor.Source]motormonitor.SourceState, 2)
	for _, src := range motormonitor.Sources() {
		states[src] = motormonitor.SourceState{
			Source:  src,
			Quality: motormonitor.QualityNoData,
		}
	}
	return &Tracker{
		timeouts: timeouts,
		states:   states,
		latest:   make(map[motormonitor.Source]motormonitor.Reading, 2),
	}
}

// Record marks the source connected and stores its latest reading. Any new
// reading reconnects a source regardless of its previous state.
func (t *Tracker) Record(reading motormonitor.Reading) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.states[reading.Source]
	st.Source = reading.Source
	st.Connected = true
	st.LastSeen = reading.ReceivedAt
	st.Quality = motormonitor.QualityGood
	t.states[reading.Source] = st
	t.latest[reading.Source] = reading
}

// Sweep checks every source against its timeout. A connected source whose
// silence exceeds the timeout is disconnected, its live reading cleared, and
// exactly one TimeoutEvent is returned for it. Re-sweeping an already
// disconnected source is a no-op, so calling Sweep twice with no new
// readings yields identical states and no duplicate events.
func (t *Tracker) Sweep(now time.Time) []motormonitor.TimeoutEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []motormonitor.TimeoutEvent
	for src, st := range t.states {
		if !st.Connected || st.LastSeen.IsZero() {
			continue
		}
		silent := now.Sub(st.LastSeen)
		timeout, ok := t.timeouts.Timeout[src]
		if !ok {
			continue
		}
		if silent > timeout {
			st.Connected = false
			st.Quality = motormonitor.QualityTimeout
			t.states[src] = st
			delete(t.latest, src)
			events = append(events, motormonitor.TimeoutEvent{
				Source:     src,
				LastSeen:   st.LastSeen,
				SilentFor:  silent,
				SilentSecs: silent.Seconds(),
				OccurredAt: now,
			})
			continue
		}
		if warn := t.timeouts.StaleAfter[src]; warn > 0 && silent > warn {
			if st.Quality != motormonitor.QualityStale {
				st.Quality = motormonitor.QualityStale
				t.states[src] = st
			}
		}
	}
	return events
}

// Snapshot returns consistent copies of the source states and the latest
// live readings. Callers may hold the copies across I/O without blocking
// Record or Sweep.
func (t *Tracker) Snapshot() (map[motormonitor.Source]motormonitor.SourceState, map[motormonitor.Source]motormonitor.Reading) {
	t.mu.Lock()
	defer t.mu.Unlock()

	states := make(map[motormonitor.Source]motormonitor.SourceState, len(t.states))
	for src, st := range t.states {
		states[src] = st
	}
	latest := make(map[motormonitor.Source]motormonitor.Reading, len(t.latest))
	for src, r := range t.latest {
		fields := make(map[string]float64, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = v
		}
		r.Fields = fields
		latest[src] = r
	}
	return states, latest
}

// State returns a copy of one source's liveness record.
func (t *Tracker) State(src motormonitor.Source) motormonitor.SourceState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[src]
}
