package health

import (
	"time"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
)

// Components carries the four domain scores fed into the aggregate.
type Components struct {
	Electrical Score
	Thermal    Score
	Mechanical Score
	Predictive Score
}

// Aggregate combines the component scores into a HealthResult.
//
// Overall = confidence × weighted mean over usable components, with weights
// renormalized when a component is no-data (most commonly the predictive
// one). A no-data domain contributes nothing: it is excluded from the mean
// rather than counted as 100.
func Aggregate(c Components, confidence float64, provenance map[motormonitor.Source]motormonitor.Provenance, now time.Time) motormonitor.HealthResult {
	type weighted struct {
		score  Score
		weight float64
	}
	parts := []weighted{
		{c.Electrical, WeightElectrical},
		{c.Thermal, WeightThermal},
		{c.Mechanical, WeightMechanical},
		{c.Predictive, WeightPredictive},
	}

	var sum, weightSum float64
	for _, p := range parts {
		if p.score.NoData {
			continue
		}
		sum += p.score.Value * p.weight
		weightSum += p.weight
	}

	var overall float64
	if weightSum > 0 {
		overall = clamp(confidence*(sum/weightSum), 0, 100)
	}

	result := motormonitor.HealthResult{
		Overall:     overall,
		Electrical:  componentValue(c.Electrical),
		Thermal:     componentValue(c.Thermal),
		Mechanical:  componentValue(c.Mechanical),
		Status:      StatusFor(overall),
		Confidence:  confidence,
		Provenance:  provenance,
		Issues:      collectIssues(c),
		EvaluatedAt: now,
	}
	if !c.Predictive.NoData {
		v := c.Predictive.Value
		result.Predictive = &v
	} else {
		result.PredictiveUnavailable = true
	}
	return result
}

// StatusFor maps an overall score onto its status bucket. The thresholds are
// system-wide constants shared with the alert rules.
func StatusFor(overall float64) string {
	switch {
	case overall >= StatusExcellentMin:
		return motormonitor.StatusExcellent
	case overall >= StatusGoodMin:
		return motormonitor.StatusGood
	case overall >= StatusFairMin:
		return motormonitor.StatusFair
	case overall >= StatusWarningMin:
		return motormonitor.StatusWarning
	case overall >= StatusPoorMin:
		return motormonitor.StatusPoor
	default:
		return motormonitor.StatusCritical
	}
}

// Efficiency estimates how close the motor runs to its rated operating
// point: 60% speed efficiency, 40% power efficiency. Returns 0 when any of
// the three inputs is missing. Informational only; not part of Overall.
func Efficiency(data map[string]float64) float64 {
	voltage, hasVoltage := data[motormonitor.FieldVoltage]
	if !hasVoltage {
		voltage, hasVoltage = data[motormonitor.FieldMotorVoltage]
	}
	current, hasCurrent := data[motormonitor.FieldCurrent]
	rpm, hasRPM := data[motormonitor.FieldRPM]
	if alt, ok := data[motormonitor.FieldRPMAlt]; ok && (!hasRPM || alt > rpm) {
		rpm, hasRPM = alt, true
	}
	if !hasVoltage || !hasCurrent || !hasRPM || voltage == 0 || current == 0 || rpm == 0 {
		return 0
	}

	rpmEfficiency := clamp((rpm/OptimalRPM)*100, 0, 100)

	actualPowerKW := voltage * current / 1000
	theoreticalKW := OptimalVoltageV * OptimalCurrentA / 1000
	var powerEfficiency float64
	if actualPowerKW > 0 {
		powerEfficiency = clamp((theoreticalKW/actualPowerKW)*100, 0, 100)
	}

	return clamp(rpmEfficiency*0.6+powerEfficiency*0.4, 0, 100)
}

func componentValue(s Score) float64 {
	if s.NoData {
		return 0
	}
	return s.Value
}

func collectIssues(c Components) map[string][]string {
	issues := make(map[string][]string, 4)
	if len(c.Electrical.Issues) > 0 {
		issues["electrical"] = c.Electrical.Issues
	}
	if len(c.Thermal.Issues) > 0 {
		issues["thermal"] = c.Thermal.Issues
	}
	if len(c.Mechanical.Issues) > 0 {
		issues["mechanical"] = c.Mechanical.Issues
	}
	if len(c.Predictive.Issues) > 0 {
		issues["predictive"] = c.Predictive.Issues
	}
	if len(issues) == 0 {
		return nil
	}
	return issues
}
