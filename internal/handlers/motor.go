package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"
	statusAcked    = "acknowledged"

	errGetHealth       = "failed to load health result"
	errEvaluate        = "failed to evaluate health"
	errListAlerts      = "failed to load alerts"
	errAcknowledge     = "failed to acknowledge alert"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// ReadingRequest is the payload for one telemetry sample. Only the fields
// registered for the addressed source may be present.
type ReadingRequest struct {
	// Motor current in amperes (sensor)
	Current *float64 `json:"current,omitempty" example:"6.25"`
	// Supply voltage in volts (sensor)
	Voltage *float64 `json:"voltage,omitempty" example:"24.0"`
	// Primary RPM counter (sensor)
	RPM *float64 `json:"rpm,omitempty" example:"2750"`
	// Redundant RPM counter (sensor)
	RPMAlt *float64 `json:"rpm_alt,omitempty" example:"2748"`
	// Ambient temperature in Celsius (sensor)
	AmbientTempC *float64 `json:"ambient_temp_c,omitempty" example:"24.0"`
	// Relative humidity percentage (sensor)
	Humidity *float64 `json:"humidity,omitempty" example:"40.0"`
	// Motor winding temperature in Celsius (controller)
	MotorTempC *float64 `json:"motor_temp_c,omitempty" example:"40.0"`
	// Motor-side voltage in volts (controller)
	MotorVoltage *float64 `json:"motor_voltage,omitempty" example:"24.1"`
}

func (r ReadingRequest) fields() map[string]float64 {
	out := make(map[string]float64, 8)
	set := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	set(motormonitor.FieldCurrent, r.Current)
	set(motormonitor.FieldVoltage, r.Voltage)
	set(motormonitor.FieldRPM, r.RPM)
	set(motormonitor.FieldRPMAlt, r.RPMAlt)
	set(motormonitor.FieldAmbientTempC, r.AmbientTempC)
	set(motormonitor.FieldHumidity, r.Humidity)
	set(motormonitor.FieldMotorTempC, r.MotorTempC)
	set(motormonitor.FieldMotorVoltage, r.MotorVoltage)
	return out
}

// AcknowledgeRequest carries who is closing the alert.
type AcknowledgeRequest struct {
	By string `json:"by" example:"operator-1"`
}

// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Submit a telemetry reading
// @Description  Accepts one sample from SENSOR or CONTROLLER and refreshes its liveness.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        source  path  string          true  "Source"  Enums(SENSOR,CONTROLLER)
// @Param        body    body  ReadingRequest  true  "Reading payload"
// @Success      202  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/readings/{source} [post]
func (h *Handler) postReading(c *gin.Context) {
	src := motormonitor.Source(strings.ToUpper(strings.TrimSpace(c.Param("source"))))

	var req ReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	reading, err := h.services.Ingest.ProcessReading(c.Request.Context(), src, req.fields())
	if err != nil {
		// All ProcessReading failures are input problems, not server faults.
		if h.log != nil {
			h.log.Infow("reading_rejected", "source", src, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  statusAccepted,
		"reading": reading,
	})
}

// @Summary      Source liveness states
// @Tags         readings
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sources [get]
func (h *Handler) getSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources": h.services.Ingest.SourceStates(),
	})
}

// @Summary      Latest health result
// @Tags         motor-health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string  "no evaluation yet"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/motor-health/latest [get]
func (h *Handler) getLatestHealth(c *gin.Context) {
	res, err := h.services.Engine.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoCycles) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no evaluation cycles recorded yet"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHealth, "health_latest_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Run an evaluation cycle now
// @Description  Triggers one on-demand cycle and returns the result with ranked recommendations.
// @Tags         motor-health
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "result, recommendations"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/motor-health/evaluate [post]
func (h *Handler) evaluateNow(c *gin.Context) {
	result, recs, err := h.services.Engine.EvaluateCycle(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errEvaluate, "health_evaluate_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":          result,
		"recommendations": recs,
	})
}

// @Summary      List maintenance alerts
// @Tags         alerts
// @Produce      json
// @Param        all    query  bool  false  "Include acknowledged alerts"
// @Param        limit  query  int   false  "Maximum number of alerts"
// @Success      200  {object}  map[string]interface{}  "count, alerts"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alerts [get]
func (h *Handler) getAlerts(c *gin.Context) {
	includeAcked := c.Query("all") == "true"
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			limit = v
		}
	}

	alerts, err := h.services.Alerts.List(c.Request.Context(), includeAcked, limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListAlerts, "alerts_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// @Summary      Acknowledge an alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Alert ID"
// @Param        body  body  AcknowledgeRequest  true  "Acknowledgment payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alerts/{id}/acknowledge [post]
func (h *Handler) acknowledgeAlert(c *gin.Context) {
	id := c.Param("id")
	if strings.TrimSpace(id) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert id required"})
		return
	}

	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	found, err := h.services.Alerts.Acknowledge(c.Request.Context(), id, req.By)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errAcknowledge, "alert_ack_failed", err, "alert_id", id)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no open alert with that id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusAcked,
		"id":     id,
	})
}
