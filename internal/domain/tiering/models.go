package tiering

import "flm/internal/domain/settings"

type TierGrade struct {
	Tier  string `json:"tier"`
	Grade string `json:"grade"`
}

// Config carries the externally configured threshold tables. The engine
// never hardcodes cutoffs; callers load these from system_config.
type Config struct {
	TierCutoffs  []settings.TierCutoff
	GradeCutoffs []settings.GradeCutoff
}

func DefaultConfig() Config {
	return Config{
		TierCutoffs:  settings.DefaultTierCutoffs(),
		GradeCutoffs: settings.DefaultGradeCutoffs(),
	}
}

// Calculation is the ephemeral result of a classification run. Nothing is
// persisted until an explicit apply.
type Calculation struct {
	FreelancerID    string    `json:"freelancerId"`
	Period          string    `json:"period"`
	RecordsAnalyzed int       `json:"recordsAnalyzed"`
	AvgScore        float64   `json:"avgScore"`
	Consistency     float64   `json:"consistency"`
	Current         TierGrade `json:"current"`
	Recommended     TierGrade `json:"recommended"`
	Changed         bool      `json:"changed"`
	Message         string    `json:"message"`
}

type BulkItem struct {
	FreelancerID string  `json:"freelancerId"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	From         string  `json:"from,omitempty"`
	To           string  `json:"to,omitempty"`
	AvgScore     float64 `json:"avgScore,omitempty"`
	Consistency  float64 `json:"consistency,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type BulkSummary struct {
	Total           int `json:"total"`
	Updated         int `json:"updated"`
	ChangesDetected int `json:"changesDetected"`
	NoChange        int `json:"noChange"`
	Skipped         int `json:"skipped"`
	Errors          int `json:"errors"`
}

type BulkResult struct {
	Summary BulkSummary `json:"summary"`
	Results []BulkItem  `json:"results"`
}

// FreelancerRef is the slice of freelancer state the engine needs.
type FreelancerRef struct {
	ID    string
	Name  string
	Tier  string
	Grade string
}

type Stats struct {
	Total       int            `json:"total"`
	ByTier      map[string]int `json:"byTier"`
	ByGrade     map[string]int `json:"byGrade"`
	ByTierGrade map[string]int `json:"byTierGrade"`
}
