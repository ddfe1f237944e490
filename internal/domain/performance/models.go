package performance

import "time"

// Record is one performance review entry. The COM block covers soft
// skills, the QUAL block covers annotation quality. All sub-scores are on
// a 0 to 5 scale; the totals are derived, never submitted.
type Record struct {
	ID             string    `json:"id"`
	FreelancerID   string    `json:"freelancerId"`
	FreelancerName string    `json:"freelancerName,omitempty"`
	ProjectID      string    `json:"projectId,omitempty"`
	ProjectName    string    `json:"projectName,omitempty"`
	RecordType     string    `json:"recordType"`
	RecordDate     time.Time `json:"recordDate"`
	Month          int       `json:"month"`
	Year           int       `json:"year"`

	HoursWorked     *float64 `json:"hoursWorked,omitempty"`
	AssetsCompleted *float64 `json:"assetsCompleted,omitempty"`
	TasksCompleted  *float64 `json:"tasksCompleted,omitempty"`
	AvgTimePerTask  *float64 `json:"avgTimePerTask,omitempty"`

	ComResponsibility *float64 `json:"comResponsibility,omitempty"`
	ComCommitment     *float64 `json:"comCommitment,omitempty"`
	ComInitiative     *float64 `json:"comInitiative,omitempty"`
	ComWillingness    *float64 `json:"comWillingness,omitempty"`
	ComCommunication  *float64 `json:"comCommunication,omitempty"`
	ComTotal          *float64 `json:"comTotal,omitempty"`

	QualSpeed         *float64 `json:"qualSpeed,omitempty"`
	QualDelibOmission *float64 `json:"qualDelibOmission,omitempty"`
	QualAccuracy      *float64 `json:"qualAccuracy,omitempty"`
	QualAttention     *float64 `json:"qualAttention,omitempty"`
	QualUnannotated   *float64 `json:"qualUnannotated,omitempty"`
	QualUnderstanding *float64 `json:"qualUnderstanding,omitempty"`
	QualRejectedCount *int     `json:"qualRejectedCount,omitempty"`
	QualTotal         *float64 `json:"qualTotal,omitempty"`

	OverallScore *float64 `json:"overallScore,omitempty"`

	RecordedBy string    `json:"recordedBy,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ListFilter struct {
	FreelancerID string
	ProjectID    string
	RecordType   string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// FreelancerStats summarizes a freelancer's review history for the
// profile page.
type FreelancerStats struct {
	RecordCount     int     `json:"recordCount"`
	AvgComTotal     float64 `json:"avgComTotal"`
	AvgQualTotal    float64 `json:"avgQualTotal"`
	AvgOverallScore float64 `json:"avgOverallScore"`
	TotalHours      float64 `json:"totalHours"`
	TotalAssets     float64 `json:"totalAssets"`
	TotalTasks      float64 `json:"totalTasks"`
}
