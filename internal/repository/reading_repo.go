package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
)

// ErrNoCycles is returned by LatestResult before the first evaluation ran.
var ErrNoCycles = errors.New("no evaluation cycles recorded")

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

// historyLimit caps how many recent rows feed a historical average so one
// long outage cannot drag the window arbitrarily far back.
const historyLimit = 100

const insertCycleSQL = `
	INSERT INTO sensor_data (
		recorded_at, sensor_connected, controller_connected,
		current_a, voltage_v, rpm, rpm_alt, ambient_temp_c, humidity_pct,
		motor_temp_c, motor_voltage_v,
		overall_health, electrical_health, thermal_health, mechanical_health,
		predictive_health, efficiency, status, confidence, provenance
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectLatestResultSQL = `
	SELECT overall_health, electrical_health, thermal_health, mechanical_health,
	       predictive_health, efficiency, status, confidence, provenance, recorded_at
	FROM sensor_data ORDER BY recorded_at DESC, id DESC LIMIT 1
`

// measurement columns per source, in a fixed order so queries and scans
// always line up.
var sourceColumns = map[motormonitor.Source][]struct{ column, field string }{
	motormonitor.SourceSensor: {
		{"current_a", motormonitor.FieldCurrent},
		{"voltage_v", motormonitor.FieldVoltage},
		{"rpm", motormonitor.FieldRPM},
		{"rpm_alt", motormonitor.FieldRPMAlt},
		{"ambient_temp_c", motormonitor.FieldAmbientTempC},
		{"humidity_pct", motormonitor.FieldHumidity},
	},
	motormonitor.SourceController: {
		{"motor_temp_c", motormonitor.FieldMotorTempC},
		{"motor_voltage_v", motormonitor.FieldMotorVoltage},
	},
}

var connectedColumn = map[motormonitor.Source]string{
	motormonitor.SourceSensor:     "sensor_connected",
	motormonitor.SourceController: "controller_connected",
}

// nullableField maps a possibly-missing field to a NULL-able column value.
func nullableField(fields map[string]float64, key string) any {
	if v, ok := fields[key]; ok {
		return v
	}
	return nil
}

func marshalProvenance(p map[motormonitor.Source]motormonitor.Provenance) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalProvenance(s string) (map[motormonitor.Source]motormonitor.Provenance, error) {
	if s == "" {
		return nil, nil
	}
	var p map[motormonitor.Source]motormonitor.Provenance
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveCycle appends one evaluation row. Missing measurements persist as NULL
// so later averages skip them instead of counting zeros.
func (r *ReadingSQLite) SaveCycle(ctx context.Context, c Cycle) error {
	provJSON, err := marshalProvenance(c.Result.Provenance)
	if err != nil {
		return err
	}

	tsUTC := c.RecordedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	var predictive any
	if c.Result.Predictive != nil {
		predictive = *c.Result.Predictive
	}

	_, err = r.db.ExecContext(ctx, insertCycleSQL,
		tsUTC,
		c.States[motormonitor.SourceSensor].Connected,
		c.States[motormonitor.SourceController].Connected,
		nullableField(c.Fields, motormonitor.FieldCurrent),
		nullableField(c.Fields, motormonitor.FieldVoltage),
		nullableField(c.Fields, motormonitor.FieldRPM),
		nullableField(c.Fields, motormonitor.FieldRPMAlt),
		nullableField(c.Fields, motormonitor.FieldAmbientTempC),
		nullableField(c.Fields, motormonitor.FieldHumidity),
		nullableField(c.Fields, motormonitor.FieldMotorTempC),
		nullableField(c.Fields, motormonitor.FieldMotorVoltage),
		c.Result.Overall,
		c.Result.Electrical,
		c.Result.Thermal,
		c.Result.Mechanical,
		predictive,
		c.Result.Efficiency,
		c.Result.Status,
		c.Result.Confidence,
		provJSON,
	)
	return err
}

// HistoricalAverage averages the source's measurement columns over its most
// recent connected rows inside the lookback window. An empty map means no
// usable rows.
func (r *ReadingSQLite) HistoricalAverage(ctx context.Context, src motormonitor.Source, lookback time.Duration) (map[string]float64, error) {
	cols, ok := sourceColumns[src]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", src)
	}

	inner := ""
	outer := ""
	for i, c := range cols {
		if i > 0 {
			inner += ", "
			outer += ", "
		}
		inner += c.column
		outer += "AVG(" + c.column + ")"
	}
	q := "SELECT " + outer + " FROM (SELECT " + inner + " FROM sensor_data WHERE " +
		connectedColumn[src] + " = 1 AND recorded_at >= ? ORDER BY recorded_at DESC LIMIT ?)"

	since := time.Now().UTC().Add(-lookback)
	row := r.db.QueryRowContext(ctx, q, since, historyLimit)

	dest := make([]sql.NullFloat64, len(cols))
	scan := make([]any, len(cols))
	for i := range dest {
		scan[i] = &dest[i]
	}
	if err := row.Scan(scan...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	avg := make(map[string]float64, len(cols))
	for i, c := range cols {
		if dest[i].Valid {
			avg[c.field] = dest[i].Float64
		}
	}
	if len(avg) == 0 {
		return nil, nil
	}
	return avg, nil
}

// LatestResult fetches the most recent persisted evaluation.
func (r *ReadingSQLite) LatestResult(ctx context.Context) (motormonitor.HealthResult, error) {
	row := r.db.QueryRowContext(ctx, selectLatestResultSQL)

	var (
		res        motormonitor.HealthResult
		predictive sql.NullFloat64
		provJSON   string
	)
	if err := row.Scan(
		&res.Overall,
		&res.Electrical,
		&res.Thermal,
		&res.Mechanical,
		&predictive,
		&res.Efficiency,
		&res.Status,
		&res.Confidence,
		&provJSON,
		&res.EvaluatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return motormonitor.HealthResult{}, ErrNoCycles
		}
		return motormonitor.HealthResult{}, err
	}

	if predictive.Valid {
		v := predictive.Float64
		res.Predictive = &v
	} else {
		res.PredictiveUnavailable = true
	}
	prov, err := unmarshalProvenance(provJSON)
	if err != nil {
		return motormonitor.HealthResult{}, err
	}
	res.Provenance = prov
	res.EvaluatedAt = res.EvaluatedAt.UTC()

	return res, nil
}
