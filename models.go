package motormonitor

import "time"

// Source identifies one of the two independent telemetry producers.
type Source string

const (
	// SourceSensor is the ambient/electrical sensor node (current, voltage,
	// RPM counters, ambient temperature, humidity).
	SourceSensor Source = "SENSOR"
	// SourceController is the motor-controller register interface (motor
	// temperature and motor-side voltage).
	SourceController Source = "CONTROLLER"
)

// Sources lists every known source in a fixed order.
func Sources() []Source { return []Source{SourceSensor, SourceController} }

// Quality grades how fresh a source's latest reading is.
type Quality string

const (
	QualityGood    Quality = "GOOD"
	QualityStale   Quality = "STALE"
	QualityTimeout Quality = "TIMEOUT"
	QualityNoData  Quality = "NO_DATA"
)

// Reading field names. Each source may only carry its registered fields;
// ingestion rejects anything else.
const (
	FieldCurrent      = "current"
	FieldVoltage      = "voltage"
	FieldRPM          = "rpm"
	FieldRPMAlt       = "rpm_alt"
	FieldAmbientTempC = "ambient_temp_c"
	FieldHumidity     = "humidity"
	FieldMotorTempC   = "motor_temp_c"
	FieldMotorVoltage = "motor_voltage"
)

// KnownFields returns the field names a source is allowed to report.
func KnownFields(s Source) []string {
	switch s {
	case SourceSensor:
		return []string{FieldCurrent, FieldVoltage, FieldRPM, FieldRPMAlt, FieldAmbientTempC, FieldHumidity}
	case SourceController:
		return []string{FieldMotorTempC, FieldMotorVoltage}
	default:
		return nil
	}
}

// Reading is one sample from a single source. Immutable once recorded.
type Reading struct {
	Source     Source             `json:"source"`
	Fields     map[string]float64 `json:"fields"`
	ReceivedAt time.Time          `json:"received_at"`
}

// SourceState is the liveness record for one source. Only the freshness
// tracker mutates it.
type SourceState struct {
	Source    Source    `json:"source"`
	Connected bool      `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
	Quality   Quality   `json:"quality"`
}

// Provenance tags where a field group in the working dataset came from.
type Provenance string

const (
	ProvenanceLive       Provenance = "live"
	ProvenanceHistorical Provenance = "historical"
	ProvenanceDefault    Provenance = "default"
)

// Status buckets for the overall health score.
const (
	StatusExcellent = "Excellent"
	StatusGood      = "Good"
	StatusFair      = "Fair"
	StatusWarning   = "Warning"
	StatusPoor      = "Poor"
	StatusCritical  = "Critical"
)

// HealthResult is the outcome of one evaluation cycle. Constructed once per
// cycle and immutable thereafter.
type HealthResult struct {
	Overall    float64 `json:"overall_health_score"`
	Electrical float64 `json:"electrical_health"`
	Thermal    float64 `json:"thermal_health"`
	Mechanical float64 `json:"mechanical_health"`
	// Predictive is nil when the oracle was unavailable or no history exists.
	Predictive *float64 `json:"predictive_health,omitempty"`
	Efficiency float64  `json:"efficiency_score"`

	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`

	// Provenance distinguishes a real fault from stale-data degradation.
	Provenance            map[Source]Provenance `json:"provenance"`
	PredictiveUnavailable bool                  `json:"predictive_unavailable,omitempty"`
	Issues                map[string][]string   `json:"issues,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Severity / priority literal set.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Urgency literal set.
const (
	UrgencyImmediate   = "immediate"
	UrgencyWithin24h   = "within_24h"
	UrgencyWithinWeek  = "within_week"
	UrgencyWithinMonth = "within_month"
)

// Alert is a persisted maintenance alert. Mutated only by acknowledgment.
type Alert struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Category       string    `json:"category"`
	Severity       string    `json:"severity"` // LOW | MEDIUM | HIGH | CRITICAL
	Priority       string    `json:"priority"` // LOW | MEDIUM | HIGH | CRITICAL
	Description    string    `json:"description"`
	Action         string    `json:"action,omitempty"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
	Acknowledged   bool      `json:"acknowledged"`
	AcknowledgedBy string    `json:"acknowledged_by,omitempty"`
}

// Recommendation is an ephemeral, ranked maintenance suggestion. Derived
// each cycle, never persisted directly; HIGH/CRITICAL entries become Alerts.
type Recommendation struct {
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Priority    string    `json:"priority"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Action      string    `json:"action"`
	Confidence  float64   `json:"confidence"`
	Urgency     string    `json:"urgency"`
	Composite   float64   `json:"composite_score"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SystemEvent is an audit-log entry: connection transitions, degraded
// evaluation cycles, acknowledgments.
type SystemEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"` // e.g. TIMEOUT, RECONNECT, DEGRADED
	Message    string    `json:"message"`
	Metadata   any       `json:"metadata,omitempty"`
}

// TimeoutEvent is emitted exactly once when a source transitions from
// connected to timed out.
type TimeoutEvent struct {
	Source     Source        `json:"source"`
	LastSeen   time.Time     `json:"last_seen"`
	SilentFor  time.Duration `json:"-"`
	SilentSecs float64       `json:"silent_seconds"`
	OccurredAt time.Time     `json:"occurred_at"`
}
