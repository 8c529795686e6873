package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
	"github.com/khanbasharat3a1/motor-monitor/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc *service.Service) *gin.Engine {
	h := NewHandler(svc, nil, nil)
	return h.InitRoutes()
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := doJSON(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), statusOK) {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestPostReading_Accepted(t *testing.T) {
	ing := &mockIngest{reading: motormonitor.Reading{
		Source:     motormonitor.SourceSensor,
		Fields:     map[string]float64{motormonitor.FieldCurrent: 6.2},
		ReceivedAt: time.Now().UTC(),
	}}
	r := newTestRouter(&service.Service{Ingest: ing})

	w := doJSON(t, r, http.MethodPost, "/api/v1/readings/sensor", `{"current":6.2,"voltage":24.1}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status: want 202, got %d (%s)", w.Code, w.Body.String())
	}
	if ing.calls != 1 {
		t.Fatalf("ProcessReading calls: want 1, got %d", ing.calls)
	}
	// Path source is normalized to upper case.
	if ing.lastSource != motormonitor.SourceSensor {
		t.Errorf("source: want SENSOR, got %s", ing.lastSource)
	}
	if ing.lastFields[motormonitor.FieldVoltage] != 24.1 {
		t.Errorf("fields not forwarded: %v", ing.lastFields)
	}
}

func TestPostReading_ValidationErrorIs400(t *testing.T) {
	ing := &mockIngest{processErr: errors.New(`field "motor_temp_c" is not registered for source SENSOR`)}
	r := newTestRouter(&service.Service{Ingest: ing})

	w := doJSON(t, r, http.MethodPost, "/api/v1/readings/sensor", `{"motor_temp_c":40}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}

func TestPostReading_MalformedBody(t *testing.T) {
	r := newTestRouter(&service.Service{Ingest: &mockIngest{}})

	w := doJSON(t, r, http.MethodPost, "/api/v1/readings/sensor", `{"current":"high"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}

func TestGetSources(t *testing.T) {
	ing := &mockIngest{states: map[motormonitor.Source]motormonitor.SourceState{
		motormonitor.SourceSensor: {Source: motormonitor.SourceSensor, Connected: true, Quality: motormonitor.QualityGood},
	}}
	r := newTestRouter(&service.Service{Ingest: ing})

	w := doJSON(t, r, http.MethodGet, "/api/v1/sources", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"GOOD"`) {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestGetLatestHealth_OK(t *testing.T) {
	eng := &mockEngine{latest: motormonitor.HealthResult{
		Overall: 95.5,
		Status:  motormonitor.StatusExcellent,
	}}
	r := newTestRouter(&service.Service{Engine: eng})

	w := doJSON(t, r, http.MethodGet, "/api/v1/motor-health/latest", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}

	var got motormonitor.HealthResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Overall != 95.5 || got.Status != motormonitor.StatusExcellent {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestGetLatestHealth_NoCyclesIs404(t *testing.T) {
	eng := &mockEngine{latestErr: repository.ErrNoCycles}
	r := newTestRouter(&service.Service{Engine: eng})

	w := doJSON(t, r, http.MethodGet, "/api/v1/motor-health/latest", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want 404, got %d", w.Code)
	}
}

func TestGetLatestHealth_StoreErrorIs500(t *testing.T) {
	eng := &mockEngine{latestErr: errors.New("db down")}
	r := newTestRouter(&service.Service{Engine: eng})

	w := doJSON(t, r, http.MethodGet, "/api/v1/motor-health/latest", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: want 500, got %d", w.Code)
	}
}

func TestEvaluateNow(t *testing.T) {
	eng := &mockEngine{
		result: motormonitor.HealthResult{Overall: 68.9, Status: motormonitor.StatusWarning},
		recs: []motormonitor.Recommendation{
			{Type: "Overheat Alert", Severity: motormonitor.SeverityHigh},
		},
	}
	r := newTestRouter(&service.Service{Engine: eng})

	w := doJSON(t, r, http.MethodPost, "/api/v1/motor-health/evaluate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if eng.evalCalls != 1 {
		t.Fatalf("EvaluateCycle calls: want 1, got %d", eng.evalCalls)
	}
	if !strings.Contains(w.Body.String(), "Overheat Alert") {
		t.Fatalf("recommendations missing from body: %s", w.Body.String())
	}
}

func TestGetAlerts_QueryParams(t *testing.T) {
	al := &mockAlerts{alerts: []motormonitor.Alert{{ID: "a1", Type: "Overheat Alert"}}}
	r := newTestRouter(&service.Service{Alerts: al})

	w := doJSON(t, r, http.MethodGet, "/api/v1/alerts/?all=true&limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	if !al.lastIncludeAcked || al.lastLimit != 5 {
		t.Fatalf("query params not forwarded: all=%v limit=%d", al.lastIncludeAcked, al.lastLimit)
	}
	if !strings.Contains(w.Body.String(), `"count":1`) {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	al := &mockAlerts{}
	r := newTestRouter(&service.Service{Alerts: al})

	w := doJSON(t, r, http.MethodPost, "/api/v1/alerts/a1/acknowledge", `{"by":"operator-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	if al.lastAckID != "a1" || al.lastAckBy != "operator-1" {
		t.Fatalf("ack not forwarded: id=%q by=%q", al.lastAckID, al.lastAckBy)
	}
}

func TestAcknowledgeAlert_UnknownIDIs404(t *testing.T) {
	al := &mockAlerts{ackNotFound: true}
	r := newTestRouter(&service.Service{Alerts: al})

	w := doJSON(t, r, http.MethodPost, "/api/v1/alerts/no-such/acknowledge", `{"by":"operator-1"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want 404, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestAcknowledgeAlert_RepoErrorIs500(t *testing.T) {
	al := &mockAlerts{ackErr: errors.New("db down")}
	r := newTestRouter(&service.Service{Alerts: al})

	w := doJSON(t, r, http.MethodPost, "/api/v1/alerts/a1/acknowledge", `{"by":"operator-1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: want 500, got %d", w.Code)
	}
}

func TestGetLogs_ForwardsFilter(t *testing.T) {
	el := &mockEventLog{events: []motormonitor.SystemEvent{{EventID: "1", Type: "TIMEOUT"}}}
	r := newTestRouter(&service.Service{EventLog: el})

	w := doJSON(t, r, http.MethodGet, "/api/v1/logs/?from=2025-08-01&to=2025-08-31&type=timeout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", w.Code, w.Body.String())
	}
	if el.lastFilter.Type != "TIMEOUT" {
		t.Fatalf("type not normalized: %q", el.lastFilter.Type)
	}
	if el.lastFilter.From.IsZero() || el.lastFilter.To.IsZero() {
		t.Fatalf("time bounds not parsed: %+v", el.lastFilter)
	}
	// date-only 'to' is end-of-day inclusive
	if el.lastFilter.To.Hour() != 23 {
		t.Fatalf("'to' not end-of-day: %v", el.lastFilter.To)
	}
}

func TestGetLogs_BadTimeIs400(t *testing.T) {
	r := newTestRouter(&service.Service{EventLog: &mockEventLog{}})

	w := doJSON(t, r, http.MethodGet, "/api/v1/logs/?from=notatime", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}

func TestGetLogs_InvertedRangeIs400(t *testing.T) {
	r := newTestRouter(&service.Service{EventLog: &mockEventLog{}})

	w := doJSON(t, r, http.MethodGet, "/api/v1/logs/?from=2025-08-31&to=2025-08-01", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}
