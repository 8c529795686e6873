// Package health holds the pure component-health calculators and the
// weighted aggregator. Calculators never perform I/O: they map a working
// dataset to a bounded score with an issue breakdown, or to an explicit
// no-data sentinel when a domain has no usable input.
package health

import (
	"fmt"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
)

// Score is one domain's result. NoData means the domain had no usable input
// and must be excluded from the aggregate, never treated as healthy.
type Score struct {
	Value  float64
	NoData bool
	Issues []string
}

func noData(reason string) Score {
	return Score{NoData: true, Issues: []string{reason}}
}

// Electrical scores the power system from motor current and voltage.
// Tiered penalties grow linearly with distance past each boundary; the
// result is clamped to [FloorElectrical, 100].
func Electrical(data map[string]float64) Score {
	voltage, hasVoltage := data[motormonitor.FieldVoltage]
	if !hasVoltage {
		voltage, hasVoltage = data[motormonitor.FieldMotorVoltage]
	}
	current, hasCurrent := data[motormonitor.FieldCurrent]

	if !hasVoltage && !hasCurrent {
		return noData("no electrical data available")
	}

	score := 100.0
	var issues []string

	if hasVoltage {
		switch {
		case voltage < VoltageMinCritical:
			score -= 40 + 3*(VoltageMinCritical-voltage)
			issues = append(issues, fmt.Sprintf("Critical undervoltage: %.1fV (min: %.0fV)", voltage, VoltageMinCritical))
		case voltage < VoltageMinWarning:
			score -= 20 + 2*(VoltageMinWarning-voltage)
			issues = append(issues, fmt.Sprintf("Low voltage warning: %.1fV (optimal: %.0fV)", voltage, OptimalVoltageV))
		case voltage > VoltageMaxCritical:
			score -= 40 + 3*(voltage-VoltageMaxCritical)
			issues = append(issues, fmt.Sprintf("Critical overvoltage: %.1fV (max: %.0fV)", voltage, VoltageMaxCritical))
		case voltage > VoltageMaxWarning:
			score -= 20 + 2*(voltage-VoltageMaxWarning)
			issues = append(issues, fmt.Sprintf("High voltage warning: %.1fV (optimal: %.0fV)", voltage, OptimalVoltageV))
		}
	}

	if hasCurrent {
		switch {
		case current > CurrentMaxCriticalA:
			score -= 50 + 5*(current-CurrentMaxCriticalA)
			issues = append(issues, fmt.Sprintf("Critical overcurrent: %.1fA (max: %.0fA)", current, CurrentMaxCriticalA))
		case current > CurrentMaxWarningA:
			score -= 25 + 3*(current-CurrentMaxWarningA)
			issues = append(issues, fmt.Sprintf("Motor overloaded: %.1fA (optimal: %.2fA)", current, OptimalCurrentA))
		case current < CurrentMinWarningA:
			score -= 30 + 4*(CurrentMinWarningA-current)
			issues = append(issues, fmt.Sprintf("Motor underloaded: %.1fA (min normal: %.0fA)", current, CurrentMinWarningA))
		}
	}

	return Score{Value: clamp(score, FloorElectrical, 100), Issues: issues}
}

// Thermal scores motor and ambient temperature plus humidity. The motor
// temperature penalty keeps growing past the critical boundary so a 90°C
// motor scores materially worse than a 61°C one.
func Thermal(data map[string]float64) Score {
	motorTemp, hasMotorTemp := data[motormonitor.FieldMotorTempC]
	ambient, hasAmbient := data[motormonitor.FieldAmbientTempC]
	humidity, hasHumidity := data[motormonitor.FieldHumidity]

	if !hasMotorTemp && !hasAmbient {
		return noData("no thermal data available")
	}

	score := 100.0
	var issues []string

	if hasMotorTemp {
		switch {
		case motorTemp > MotorTempCriticalC:
			score -= 50 + (motorTemp - MotorTempCriticalC)
			issues = append(issues, fmt.Sprintf("Critical motor temperature: %.1f°C (max: %.0f°C)", motorTemp, MotorTempCriticalC))
		case motorTemp > MotorTempHighC:
			score -= 30 + (motorTemp - MotorTempHighC)
			issues = append(issues, fmt.Sprintf("High motor temperature: %.1f°C (optimal: <%.0f°C)", motorTemp, MotorTempElevatedC))
		case motorTemp > MotorTempElevatedC:
			score -= 15 + 0.5*(motorTemp-MotorTempElevatedC)
			issues = append(issues, fmt.Sprintf("Elevated motor temperature: %.1f°C", motorTemp))
		}
	}

	if hasAmbient {
		switch {
		case ambient > AmbientMaxCriticalC:
			score -= 25
			issues = append(issues, fmt.Sprintf("Critical ambient temperature: %.1f°C", ambient))
		case ambient > AmbientMaxWarningC:
			score -= 15
			issues = append(issues, fmt.Sprintf("High ambient temperature: %.1f°C (optimal: %.0f°C)", ambient, OptimalAmbientTempC))
		}
	}

	if hasHumidity {
		switch {
		case humidity > HumidityMaxCritical:
			score -= 20
			issues = append(issues, fmt.Sprintf("Critical humidity level: %.1f%% (risk of condensation)", humidity))
		case humidity > HumidityMaxWarning:
			score -= 10
			issues = append(issues, fmt.Sprintf("High humidity: %.1f%% (optimal: %.0f%%)", humidity, OptimalHumidityPct))
		case humidity < HumidityMinWarning:
			score -= 5
			issues = append(issues, fmt.Sprintf("Low humidity: %.1f%% (may cause static)", humidity))
		}
	}

	return Score{Value: clamp(score, FloorThermal, 100), Issues: issues}
}

// Mechanical scores rotation speed and load balance. When both redundant RPM
// counters report, the larger wins: a counter can only miss pulses, never
// invent them.
func Mechanical(data map[string]float64) Score {
	rpm, hasRPM := data[motormonitor.FieldRPM]
	if alt, ok := data[motormonitor.FieldRPMAlt]; ok && (!hasRPM || alt > rpm) {
		rpm, hasRPM = alt, true
	}
	if !hasRPM {
		return noData("no RPM data available")
	}

	score := 100.0
	var issues []string

	switch {
	case rpm < RPMNotRunning:
		// Matches the critical-low tier's maximum, so a stalled motor never
		// scores above a barely turning one.
		score -= 50 + 0.05*(RPMMinCritical-RPMNotRunning)
		issues = append(issues, fmt.Sprintf("Motor not running: %.0f RPM", rpm))
	case rpm < RPMMinCritical:
		score -= 50 + 0.05*(RPMMinCritical-rpm)
		issues = append(issues, fmt.Sprintf("Critical low RPM: %.0f (min: %.0f)", rpm, RPMMinCritical))
	case rpm < RPMMinWarning:
		score -= 30 + 0.02*(RPMMinWarning-rpm)
		issues = append(issues, fmt.Sprintf("Low RPM warning: %.0f (optimal: %.0f)", rpm, OptimalRPM))
	case rpm > RPMMaxCritical:
		score -= 50 + 0.05*(rpm-RPMMaxCritical)
		issues = append(issues, fmt.Sprintf("Critical high RPM: %.0f (max: %.0f)", rpm, RPMMaxCritical))
	case rpm > RPMMaxWarning:
		score -= 30 + 0.02*(rpm-RPMMaxWarning)
		issues = append(issues, fmt.Sprintf("High RPM warning: %.0f (optimal: %.0f)", rpm, OptimalRPM))
	}

	// Load balance: current should track speed roughly linearly.
	if current, ok := data[motormonitor.FieldCurrent]; ok && rpm > 0 {
		expected := (rpm / OptimalRPM) * OptimalCurrentA
		if expected > 0 {
			deviation := abs(current-expected) / expected
			if deviation > 0.5 {
				score -= 20
				issues = append(issues, fmt.Sprintf("Current/RPM imbalance detected (Current: %.1fA, RPM: %.0f)", current, rpm))
			}
		}
	}

	return Score{Value: clamp(score, FloorMechanical, 100), Issues: issues}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
