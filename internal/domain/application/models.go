package application

import "time"

// Application is one intake submission from the public apply form.
type Application struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
	Timezone  string `json:"timezone,omitempty"`

	AnnotationTypes     string   `json:"annotationTypes,omitempty"`
	AnnotationMethods   string   `json:"annotationMethods,omitempty"`
	AnnotationTools     string   `json:"annotationTools,omitempty"`
	LanguageProficiency string   `json:"languageProficiency,omitempty"`
	YearsExperience     *float64 `json:"yearsExperience,omitempty"`
	AvailabilityType    string   `json:"availabilityType,omitempty"`
	HoursPerWeek        *float64 `json:"hoursPerWeek,omitempty"`
	PortfolioURL        string   `json:"portfolioUrl,omitempty"`
	CoverNote           string   `json:"coverNote,omitempty"`

	Status          string     `json:"status"`
	ReviewedBy      string     `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type ListFilter struct {
	Status  string
	Country string
	Search  string
	Limit   int
	Offset  int
}

// AcceptResult is returned when an application is converted into a
// roster member.
type AcceptResult struct {
	FreelancerID      string `json:"freelancerId"`
	RosterID          string `json:"rosterId"`
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporaryPassword,omitempty"`
}

type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}
