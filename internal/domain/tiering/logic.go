package tiering

import (
	"fmt"
	"math"
	"time"

	"flm/internal/domain/settings"
)

// Classify recommends a tier and grade from the overall scores of a
// freelancer's performance records. It is a pure function: the current
// classification and the threshold tables arrive as inputs, nothing is
// read from ambient state.
func Classify(scores []float64, current TierGrade, cfg Config) (Calculation, error) {
	if len(scores) == 0 {
		return Calculation{}, ErrNoData
	}

	avg := mean(scores)
	consistency := consistencyOf(scores, avg)

	recommended := TierGrade{
		Tier:  tierFor(avg, cfg.TierCutoffs),
		Grade: gradeFor(consistency, cfg.GradeCutoffs),
	}
	changed := recommended != current

	message := "No change in tier/grade"
	if changed {
		message = fmt.Sprintf("Tier/Grade changed from %s-%s to %s-%s",
			current.Tier, current.Grade, recommended.Tier, recommended.Grade)
	}

	return Calculation{
		RecordsAnalyzed: len(scores),
		AvgScore:        avg,
		Consistency:     consistency,
		Current:         current,
		Recommended:     recommended,
		Changed:         changed,
		Message:         message,
	}, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// consistencyOf maps score dispersion into [0,1], higher meaning steadier
// performance. The measure is one minus the coefficient of variation,
// clamped at zero: at a fixed mean, lower variance always yields an equal
// or higher value.
func consistencyOf(scores []float64, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range scores {
		diff := v - avg
		variance += diff * diff
	}
	variance /= float64(len(scores))
	stdDev := math.Sqrt(variance)
	return 1 - math.Min(stdDev/avg, 1)
}

// tierFor walks the descending threshold table and returns the first tier
// whose floor the average meets. The last entry acts as the catch-all.
func tierFor(avg float64, cutoffs []settings.TierCutoff) string {
	for _, c := range cutoffs {
		if avg >= c.MinScore {
			return c.Tier
		}
	}
	if len(cutoffs) > 0 {
		return cutoffs[len(cutoffs)-1].Tier
	}
	return TierBronze
}

func gradeFor(consistency float64, cutoffs []settings.GradeCutoff) string {
	for _, c := range cutoffs {
		if consistency >= c.MinConsistency {
			return c.Grade
		}
	}
	if len(cutoffs) > 0 {
		return cutoffs[len(cutoffs)-1].Grade
	}
	return GradeC
}

// PeriodRange resolves a period selector into a concrete lower bound.
// A zero time means no lower bound (all time).
func PeriodRange(period string, now time.Time) (time.Time, error) {
	switch period {
	case "", PeriodAll:
		return time.Time{}, nil
	case PeriodLastMonth:
		return now.AddDate(0, -1, 0), nil
	case PeriodLastQuarter:
		return now.AddDate(0, -3, 0), nil
	default:
		return time.Time{}, ErrUnknownPeriod
	}
}
