package settings

import "time"

type Entry struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	KeyTierThresholds  = "TIER_THRESHOLDS"
	KeyGradeThresholds = "GRADE_THRESHOLDS"
	KeyBaseHourlyRate  = "BASE_HOURLY_RATE"
	KeyCurrency        = "CURRENCY"
)
