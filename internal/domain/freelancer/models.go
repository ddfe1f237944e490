package freelancer

import "time"

// Freelancer is a roster member. PayoutAccount is stored encrypted at
// rest and only decrypted for display to authorized callers.
type Freelancer struct {
	ID           string `json:"id"`
	RosterID     string `json:"rosterId"`
	UserID       string `json:"userId,omitempty"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName,omitempty"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
	Status       string `json:"status"`
	Onboarding   string `json:"onboardingStatus"`
	CurrentTier  string `json:"currentTier"`
	CurrentGrade string `json:"currentGrade"`

	AvailabilityType string   `json:"availabilityType,omitempty"`
	HoursPerWeek     *float64 `json:"hoursPerWeek,omitempty"`
	Skills           string   `json:"skills,omitempty"`
	PayoutAccount    string   `json:"payoutAccount,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TierChange is one row of a freelancer's classification history.
type TierChange struct {
	ID            string    `json:"id"`
	FreelancerID  string    `json:"freelancerId"`
	PreviousTier  string    `json:"previousTier,omitempty"`
	NewTier       string    `json:"newTier"`
	PreviousGrade string    `json:"previousGrade,omitempty"`
	NewGrade      string    `json:"newGrade"`
	Reason        string    `json:"reason,omitempty"`
	ChangedBy     string    `json:"changedBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ListFilter struct {
	Status  string
	Tier    string
	Grade   string
	Country string
	Search  string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}
