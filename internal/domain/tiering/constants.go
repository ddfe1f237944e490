package tiering

const (
	TierBronze   = "BRONZE"
	TierSilver   = "SILVER"
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"

	GradeA = "A"
	GradeB = "B"
	GradeC = "C"

	PeriodAll         = "all"
	PeriodLastMonth   = "last_month"
	PeriodLastQuarter = "last_quarter"

	OutcomeUpdated        = "updated"
	OutcomeChangeDetected = "change_detected"
	OutcomeNoChange       = "no_change"
	OutcomeSkipped        = "skipped"
	OutcomeError          = "error"
)

// tierRank orders tiers for monotonicity checks and reporting.
var tierRank = map[string]int{
	TierBronze:   0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
}

func TierRank(tier string) int {
	return tierRank[tier]
}

func ValidTier(tier string) bool {
	_, ok := tierRank[tier]
	return ok
}

func ValidGrade(grade string) bool {
	return grade == GradeA || grade == GradeB || grade == GradeC
}
