// Package recommend turns a health result and the source states into
// prioritized maintenance recommendations. Rule evaluation is a fixed,
// ordered list of independent predicates; several rules firing at once is
// normal and expected.
package recommend

import (
	"fmt"
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/khanbasharat3a1/motor-monitor/internal/health"
)

// Overall-score bands for the health rules. Shared constants with the
// status buckets so both always agree.
const (
	overallCriticalBelow = health.StatusWarningMin // < 60
	overallDegradedBelow = health.StatusGoodMin    // < 80
	domainWarnBelow      = 70.0
	efficiencyWarnBelow  = 75.0
	predictiveWarnBelow  = 60.0
)

// Evaluate runs every rule against the cycle's outcome. Predicates never
// short-circuit. When nothing fires, a single informational nominal entry is
// returned so consumers can tell "nothing wrong" from "not evaluated".
func Evaluate(
	result motormonitor.HealthResult,
	states map[motormonitor.Source]motormonitor.SourceState,
	fields map[string]float64,
	now time.Time,
) []motormonitor.Recommendation {
	var recs []motormonitor.Recommendation

	recs = append(recs, connectionRules(states, now)...)
	recs = append(recs, overallRules(result, now)...)
	recs = append(recs, domainRules(result, now)...)
	recs = append(recs, parameterRules(fields, result.Confidence, now)...)
	recs = append(recs, upkeepRules(result, now)...)

	if len(recs) == 0 {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "System Nominal",
			Category:    "System",
			Severity:    motormonitor.SeverityLow,
			Priority:    motormonitor.SeverityLow,
			Title:       "All Systems Nominal",
			Description: fmt.Sprintf("Overall motor health is %.1f%%. No issues detected this cycle.", result.Overall),
			Action:      "No action required.",
			Confidence:  result.Confidence,
			Urgency:     motormonitor.UrgencyWithinMonth,
			GeneratedAt: now,
		})
	}
	return recs
}

func connectionRules(states map[motormonitor.Source]motormonitor.SourceState, now time.Time) []motormonitor.Recommendation {
	var recs []motormonitor.Recommendation

	if st := states[motormonitor.SourceSensor]; !st.Connected {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Sensor Connection Alert",
			Category:    "System",
			Severity:    motormonitor.SeverityHigh,
			Priority:    motormonitor.SeverityHigh,
			Title:       "Sensor Node Disconnected",
			Description: "Sensor node is not sending data. Current, voltage, RPM and environment monitoring unavailable.",
			Action:      "Check sensor node power supply, network connectivity and sensor wiring.",
			Confidence:  1.0,
			Urgency:     motormonitor.UrgencyImmediate,
			GeneratedAt: now,
		})
	}
	if st := states[motormonitor.SourceController]; !st.Connected {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Controller Connection Alert",
			Category:    "System",
			Severity:    motormonitor.SeverityHigh,
			Priority:    motormonitor.SeverityHigh,
			Title:       "Motor Controller Communication Lost",
			Description: "Motor controller is not responding. Motor temperature and voltage monitoring unavailable.",
			Action:      "Verify controller network settings and ensure the controller is powered.",
			Confidence:  1.0,
			Urgency:     motormonitor.UrgencyImmediate,
			GeneratedAt: now,
		})
	}
	return recs
}

func overallRules(result motormonitor.HealthResult, now time.Time) []motormonitor.Recommendation {
	var recs []motormonitor.Recommendation

	switch {
	case result.Overall < overallCriticalBelow:
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Critical Health Alert",
			Category:    "Health",
			Severity:    motormonitor.SeverityCritical,
			Priority:    motormonitor.SeverityCritical,
			Title:       "Motor Health Critical",
			Description: fmt.Sprintf("Overall motor health is %.1f%%. Multiple systems showing degradation.", result.Overall),
			Action:      "IMMEDIATE ACTION REQUIRED: stop motor operation and perform comprehensive inspection.",
			Confidence:  0.95 * result.Confidence,
			Urgency:     motormonitor.UrgencyImmediate,
			GeneratedAt: now,
		})
	case result.Overall < overallDegradedBelow:
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Health Warning",
			Category:    "Health",
			Severity:    motormonitor.SeverityMedium,
			Priority:    motormonitor.SeverityHigh,
			Title:       "Motor Health Degraded",
			Description: fmt.Sprintf("Overall motor health is %.1f%%. Preventive action recommended.", result.Overall),
			Action:      "Schedule maintenance inspection within 24-48 hours to prevent further degradation.",
			Confidence:  0.8 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithin24h,
			GeneratedAt: now,
		})
	}
	return recs
}

func domainRules(result motormonitor.HealthResult, now time.Time) []motormonitor.Recommendation {
	var recs []motormonitor.Recommendation

	if result.Electrical < domainWarnBelow {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Electrical System Warning",
			Category:    "Electrical",
			Severity:    motormonitor.SeverityMedium,
			Priority:    motormonitor.SeverityMedium,
			Title:       "Electrical System Issues Detected",
			Description: fmt.Sprintf("Electrical health: %.1f%%. %s", result.Electrical, issueSummary(result, "electrical")),
			Action:      "Check 24V motor power connections, measure voltage and current, inspect contactors and wiring.",
			Confidence:  0.8 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithinWeek,
			GeneratedAt: now,
		})
	}
	if result.Thermal < domainWarnBelow {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Thermal Management Warning",
			Category:    "Thermal",
			Severity:    motormonitor.SeverityMedium,
			Priority:    motormonitor.SeverityMedium,
			Title:       "Thermal Management Issues",
			Description: fmt.Sprintf("Thermal health: %.1f%%. %s", result.Thermal, issueSummary(result, "thermal")),
			Action:      "Improve ventilation, clean cooling vents, check fan operation and ambient temperature control.",
			Confidence:  0.85 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithin24h,
			GeneratedAt: now,
		})
	}
	if result.Mechanical < domainWarnBelow {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Mechanical System Warning",
			Category:    "Mechanical",
			Severity:    motormonitor.SeverityMedium,
			Priority:    motormonitor.SeverityMedium,
			Title:       "Mechanical Performance Issues",
			Description: fmt.Sprintf("Mechanical health: %.1f%%. %s", result.Mechanical, issueSummary(result, "mechanical")),
			Action:      "Inspect motor bearings, check shaft coupling alignment, verify load conditions, lubricate if needed.",
			Confidence:  0.8 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithinWeek,
			GeneratedAt: now,
		})
	}
	return recs
}

// parameterRules fire on absolute measured values regardless of the derived
// scores, so a hard limit breach always surfaces even when the composite is
// padded by healthy domains.
func parameterRules(fields map[string]float64, confidence float64, now time.Time) []motormonitor.Recommendation {
	var recs []motormonitor.Recommendation

	if current, ok := fields[motormonitor.FieldCurrent]; ok && current > health.CurrentMaxCriticalA {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Overcurrent Alert",
			Category:    "Electrical",
			Severity:    motormonitor.SeverityCritical,
			Priority:    motormonitor.SeverityCritical,
			Title:       "Motor Overcurrent",
			Description: fmt.Sprintf("Motor current %.1fA exceeds the %.0fA critical limit.", current, health.CurrentMaxCriticalA),
			Action:      "Reduce load immediately and inspect for short circuits or seized bearings.",
			Confidence:  0.95 * confidence,
			Urgency:     motormonitor.UrgencyImmediate,
			GeneratedAt: now,
		})
	}

	if temp, ok := fields[motormonitor.FieldMotorTempC]; ok && temp > health.MotorTempCriticalC {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Overheat Alert",
			Category:    "Thermal",
			Severity:    motormonitor.SeverityHigh,
			Priority:    motormonitor.SeverityHigh,
			Title:       "Motor Overheating",
			Description: fmt.Sprintf("Motor temperature %.1f°C exceeds the %.0f°C critical limit.", temp, health.MotorTempCriticalC),
			Action:      "Reduce duty cycle, verify cooling airflow and check winding insulation before continuing operation.",
			Confidence:  0.9 * confidence,
			Urgency:     motormonitor.UrgencyImmediate,
			GeneratedAt: now,
		})
	}

	if voltage, ok := voltageOf(fields); ok {
		switch {
		case voltage < health.VoltageMinCritical:
			recs = append(recs, motormonitor.Recommendation{
				Type:        "Undervoltage Alert",
				Category:    "Electrical",
				Severity:    motormonitor.SeverityHigh,
				Priority:    motormonitor.SeverityHigh,
				Title:       "Supply Undervoltage",
				Description: fmt.Sprintf("Supply voltage %.1fV is below the %.0fV critical minimum.", voltage, health.VoltageMinCritical),
				Action:      "Check the 24V supply, fuses and cable runs for voltage drop under load.",
				Confidence:  0.9 * confidence,
				Urgency:     motormonitor.UrgencyImmediate,
				GeneratedAt: now,
			})
		case voltage > health.VoltageMaxCritical:
			recs = append(recs, motormonitor.Recommendation{
				Type:        "Overvoltage Alert",
				Category:    "Electrical",
				Severity:    motormonitor.SeverityHigh,
				Priority:    motormonitor.SeverityHigh,
				Title:       "Supply Overvoltage",
				Description: fmt.Sprintf("Supply voltage %.1fV is above the %.0fV critical maximum.", voltage, health.VoltageMaxCritical),
				Action:      "Inspect the power supply regulation before insulation damage occurs.",
				Confidence:  0.9 * confidence,
				Urgency:     motormonitor.UrgencyImmediate,
				GeneratedAt: now,
			})
		}
	}

	if rpm, ok := rpmOf(fields); ok && rpm >= health.RPMNotRunning && rpm < health.RPMMinCritical {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Underspeed Alert",
			Category:    "Mechanical",
			Severity:    motormonitor.SeverityMedium,
			Priority:    motormonitor.SeverityHigh,
			Title:       "Motor Underspeed",
			Description: fmt.Sprintf("Motor speed %.0f RPM is below the %.0f RPM critical minimum.", rpm, health.RPMMinCritical),
			Action:      "Check for excessive load, belt slip or drive configuration changes.",
			Confidence:  0.85 * confidence,
			Urgency:     motormonitor.UrgencyWithin24h,
			GeneratedAt: now,
		})
	}

	return recs
}

func upkeepRules(result motormonitor.HealthResult, now time.Time) []motormonitor.Recommendation {
	var recs []motormonitor.Recommendation

	if result.Efficiency > 0 && result.Efficiency < efficiencyWarnBelow {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Efficiency Optimization",
			Category:    "Performance",
			Severity:    motormonitor.SeverityLow,
			Priority:    motormonitor.SeverityMedium,
			Title:       "Motor Efficiency Below Optimal",
			Description: fmt.Sprintf("Current efficiency: %.1f%%. Motor operating below optimal performance levels.", result.Efficiency),
			Action:      "Review load distribution, check for mechanical wear and verify operating speed settings.",
			Confidence:  0.7 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithinMonth,
			GeneratedAt: now,
		})
	}

	if result.Predictive != nil && *result.Predictive < predictiveWarnBelow {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Predictive Maintenance",
			Category:    "Predictive",
			Severity:    motormonitor.SeverityMedium,
			Priority:    motormonitor.SeverityMedium,
			Title:       "Maintenance Required Soon",
			Description: fmt.Sprintf("Predictive analysis indicates declining performance (score %.1f%%).", *result.Predictive),
			Action:      "Schedule comprehensive preventive maintenance within the next 7 days.",
			Confidence:  0.75 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithinWeek,
			GeneratedAt: now,
		})
	}

	if result.Overall >= health.StatusGoodMin && result.Overall < health.StatusExcellentMin {
		recs = append(recs, motormonitor.Recommendation{
			Type:        "Routine Maintenance",
			Category:    "Preventive",
			Severity:    motormonitor.SeverityLow,
			Priority:    motormonitor.SeverityLow,
			Title:       "Routine Maintenance Recommended",
			Description: "System performing well; routine maintenance will ensure continued reliability.",
			Action:      "Schedule routine maintenance: lubrication, cleaning, connection tightening and inspection.",
			Confidence:  0.6 * result.Confidence,
			Urgency:     motormonitor.UrgencyWithinMonth,
			GeneratedAt: now,
		})
	}

	return recs
}

func issueSummary(result motormonitor.HealthResult, domain string) string {
	issues := result.Issues[domain]
	switch len(issues) {
	case 0:
		return ""
	case 1:
		return issues[0]
	default:
		return issues[0] + "; " + issues[1]
	}
}

func voltageOf(fields map[string]float64) (float64, bool) {
	if v, ok := fields[motormonitor.FieldVoltage]; ok {
		return v, true
	}
	v, ok := fields[motormonitor.FieldMotorVoltage]
	return v, ok
}

func rpmOf(fields map[string]float64) (float64, bool) {
	rpm, ok := fields[motormonitor.FieldRPM]
	if alt, okAlt := fields[motormonitor.FieldRPMAlt]; okAlt && (!ok || alt > rpm) {
		return alt, true
	}
	return rpm, ok
}
