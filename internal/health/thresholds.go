package health

// Optimal operating point for the 24V motor rig. Safe-default substitution
// and the efficiency score are both anchored here.
const (
	OptimalCurrentA     = 6.25
	OptimalVoltageV     = 24.0
	OptimalRPM          = 2750.0
	OptimalMotorTempC   = 40.0
	OptimalAmbientTempC = 24.0
	OptimalHumidityPct  = 40.0
)

// Voltage thresholds (24V ±10% band, critical beyond ±~17%).
const (
	VoltageMinCritical = 20.0
	VoltageMinWarning  = 22.0
	VoltageMaxWarning  = 26.0
	VoltageMaxCritical = 28.0
)

// Current thresholds. Below the minimum the motor is likely unloaded or the
// coupling has failed; above the maximum the windings overheat.
const (
	CurrentMinWarningA  = 4.0
	CurrentMaxWarningA  = 9.0
	CurrentMaxCriticalA = 12.0
)

// Motor temperature tiers.
const (
	MotorTempElevatedC = 40.0
	MotorTempHighC     = 50.0
	MotorTempCriticalC = 60.0
)

// Ambient environment tiers.
const (
	AmbientMaxWarningC  = 30.0
	AmbientMaxCriticalC = 35.0
	HumidityMinWarning  = 30.0
	HumidityMaxWarning  = 70.0
	HumidityMaxCritical = 80.0
)

// RPM tiers (rated 2750 ±5% warning, ±~12% critical).
const (
	RPMNotRunning  = 100.0
	RPMMinCritical = 2400.0
	RPMMinWarning  = 2600.0
	RPMMaxWarning  = 2900.0
	RPMMaxCritical = 3100.0
)

// Domain floors. A single bad input degrades its domain but can never drag
// the weighted aggregate to zero on its own.
const (
	FloorElectrical = 20.0
	FloorThermal    = 15.0
	FloorMechanical = 20.0
)

// Composite weights. They must sum to 1.0 when all four components are
// present; the aggregator renormalizes over whichever are usable.
const (
	WeightElectrical = 0.30
	WeightThermal    = 0.35
	WeightMechanical = 0.25
	WeightPredictive = 0.10
)

// Status buckets for the overall score.
const (
	StatusExcellentMin = 90.0
	StatusGoodMin      = 80.0
	StatusFairMin      = 70.0
	StatusWarningMin   = 60.0
	StatusPoorMin      = 40.0
)
