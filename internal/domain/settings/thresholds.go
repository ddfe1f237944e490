package settings

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TierCutoff is one entry in the descending tier threshold table: a
// freelancer whose average score is at least MinScore lands in Tier
// unless a higher tier already matched.
type TierCutoff struct {
	Tier     string  `json:"tier"`
	MinScore float64 `json:"minScore"`
}

// GradeCutoff maps a consistency floor to a grade.
type GradeCutoff struct {
	Grade          string  `json:"grade"`
	MinConsistency float64 `json:"minConsistency"`
}

// DefaultTierCutoffs matches the seeded configuration: scores are on the
// 0-5 scale performance records use.
func DefaultTierCutoffs() []TierCutoff {
	return []TierCutoff{
		{Tier: "PLATINUM", MinScore: 4.5},
		{Tier: "GOLD", MinScore: 3.5},
		{Tier: "SILVER", MinScore: 2.5},
		{Tier: "BRONZE", MinScore: 0},
	}
}

func DefaultGradeCutoffs() []GradeCutoff {
	return []GradeCutoff{
		{Grade: "A", MinConsistency: 0.75},
		{Grade: "B", MinConsistency: 0.5},
		{Grade: "C", MinConsistency: 0},
	}
}

// ParseTierCutoffs decodes the TIER_THRESHOLDS config value, a JSON object
// of tier name to minimum average score, and returns the table sorted
// descending by score so callers can take the first match.
func ParseTierCutoffs(raw string) ([]TierCutoff, error) {
	var byTier map[string]float64
	if err := json.Unmarshal([]byte(raw), &byTier); err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", KeyTierThresholds, err)
	}
	if len(byTier) == 0 {
		return nil, fmt.Errorf("invalid %s value: no tiers", KeyTierThresholds)
	}
	out := make([]TierCutoff, 0, len(byTier))
	for tier, min := range byTier {
		out = append(out, TierCutoff{Tier: tier, MinScore: min})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinScore > out[j].MinScore })
	return out, nil
}

func ParseGradeCutoffs(raw string) ([]GradeCutoff, error) {
	var byGrade map[string]float64
	if err := json.Unmarshal([]byte(raw), &byGrade); err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", KeyGradeThresholds, err)
	}
	if len(byGrade) == 0 {
		return nil, fmt.Errorf("invalid %s value: no grades", KeyGradeThresholds)
	}
	out := make([]GradeCutoff, 0, len(byGrade))
	for grade, min := range byGrade {
		out = append(out, GradeCutoff{Grade: grade, MinConsistency: min})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinConsistency > out[j].MinConsistency })
	return out, nil
}

func EncodeTierCutoffs(cutoffs []TierCutoff) (string, error) {
	byTier := make(map[string]float64, len(cutoffs))
	for _, c := range cutoffs {
		byTier[c.Tier] = c.MinScore
	}
	raw, err := json.Marshal(byTier)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func EncodeGradeCutoffs(cutoffs []GradeCutoff) (string, error) {
	byGrade := make(map[string]float64, len(cutoffs))
	for _, c := range cutoffs {
		byGrade[c.Grade] = c.MinConsistency
	}
	raw, err := json.Marshal(byGrade)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
