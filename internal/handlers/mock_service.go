package handlers

import (
	"context"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/service"
)

// ---- Service Mocks ----

type mockIngest struct {
	reading    motormonitor.Reading
	processErr error
	states     map[motormonitor.Source]motormonitor.SourceState

	lastSource motormonitor.Source
	lastFields map[string]float64
	calls      int
}

func (m *mockIngest) ProcessReading(_ context.Context, src motormonitor.Source, fields map[string]float64) (motormonitor.Reading, error) {
	m.calls++
	m.lastSource = src
	m.lastFields = fields
	return m.reading, m.processErr
}

func (m *mockIngest) SourceStates() map[motormonitor.Source]motormonitor.SourceState {
	return m.states
}

type mockEngine struct {
	result    motormonitor.HealthResult
	recs      []motormonitor.Recommendation
	evalErr   error
	latest    motormonitor.HealthResult
	latestErr error

	evalCalls   int
	latestCalls int
}

func (m *mockEngine) Run(context.Context, time.Duration) {}

func (m *mockEngine) EvaluateCycle(context.Context) (motormonitor.HealthResult, []motormonitor.Recommendation, error) {
	m.evalCalls++
	return m.result, m.recs, m.evalErr
}

func (m *mockEngine) Latest(context.Context) (motormonitor.HealthResult, error) {
	m.latestCalls++
	return m.latest, m.latestErr
}

type mockAlerts struct {
	alerts      []motormonitor.Alert
	listErr     error
	ackErr      error
	ackNotFound bool

	lastIncludeAcked bool
	lastLimit        int
	lastAckID        string
	lastAckBy        string
}

func (m *mockAlerts) List(_ context.Context, includeAcknowledged bool, limit int) ([]motormonitor.Alert, error) {
	m.lastIncludeAcked = includeAcknowledged
	m.lastLimit = limit
	return m.alerts, m.listErr
}

func (m *mockAlerts) Acknowledge(_ context.Context, id, by string) (bool, error) {
	m.lastAckID = id
	m.lastAckBy = by
	if m.ackErr != nil {
		return false, m.ackErr
	}
	return !m.ackNotFound, nil
}

type mockEventLog struct {
	events  []motormonitor.SystemEvent
	listErr error

	lastFilter service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]motormonitor.SystemEvent, error) {
	m.lastFilter = f
	return m.events, m.listErr
}
