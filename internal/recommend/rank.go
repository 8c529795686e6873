package recommend

import (
	"sort"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
)

// MaxRecommendations caps a single cycle's output after ranking.
const MaxRecommendations = 10

// Composite score weights. Priority dominates, confidence breaks ties.
const (
	weightPriority   = 0.4
	weightSeverity   = 0.3
	weightUrgency    = 0.2
	weightConfidence = 0.1
)

var severityValue = map[string]float64{
	motormonitor.SeverityLow:      1,
	motormonitor.SeverityMedium:   2,
	motormonitor.SeverityHigh:     3,
	motormonitor.SeverityCritical: 4,
}

var urgencyValue = map[string]float64{
	motormonitor.UrgencyImmediate:   4,
	motormonitor.UrgencyWithin24h:   3,
	motormonitor.UrgencyWithinWeek:  2,
	motormonitor.UrgencyWithinMonth: 1,
}

// Composite collapses priority, severity, urgency and confidence into a
// single sortable rank. Severity, priority and urgency map onto 1-4 and
// confidence enters raw, so it only breaks ties between otherwise equal
// entries instead of outweighing an urgency step.
func Composite(r motormonitor.Recommendation) float64 {
	return severityValue[r.Priority]*weightPriority +
		severityValue[r.Severity]*weightSeverity +
		urgencyValue[r.Urgency]*weightUrgency +
		r.Confidence*weightConfidence
}

// Rank orders recommendations by descending composite score and truncates to
// MaxRecommendations. The sort is stable so equal-rank entries keep rule
// order, which keeps output deterministic across cycles.
func Rank(recs []motormonitor.Recommendation) []motormonitor.Recommendation {
	for i := range recs {
		recs[i].Composite = Composite(recs[i])
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Composite > recs[j].Composite
	})
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}
