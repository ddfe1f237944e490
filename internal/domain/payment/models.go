package payment

import "time"

// WorkRecord is the payment-relevant slice of a performance record.
type WorkRecord struct {
	ID               string
	ProjectID        string
	WorkDate         time.Time
	HoursWorked      *float64
	AssetsCompleted  *float64
	ObjectsAnnotated *float64
}

// ProjectRates is a project's billing configuration. Only the rate fields
// matching Model are consulted; the rest may hold stale values from a past
// model change and are ignored.
type ProjectRates struct {
	ID                      string
	Name                    string
	Model                   string
	HourlyRateAnnotation    *float64
	HourlyRateReview        *float64
	PerAssetRateAnnotation  *float64
	PerAssetRateReview      *float64
	PerObjectRateAnnotation *float64
	PerObjectRateReview     *float64
}

type LineItem struct {
	ID               string    `json:"id,omitempty"`
	ProjectID        string    `json:"projectId,omitempty"`
	ProjectName      string    `json:"projectName,omitempty"`
	Description      string    `json:"description"`
	WorkDate         time.Time `json:"workDate"`
	HoursWorked      *float64  `json:"hoursWorked,omitempty"`
	AssetsCompleted  *float64  `json:"assetsCompleted,omitempty"`
	ObjectsAnnotated *float64  `json:"objectsAnnotated,omitempty"`
	Quantity         float64   `json:"quantity"`
	Rate             float64   `json:"rate"`
	RateType         string    `json:"rateType"`
	Amount           float64   `json:"amount"`
}

// Gap reports a work record that could not contribute a line item, so
// calculated totals stay auditable instead of silently shrinking.
type Gap struct {
	RecordID  string    `json:"recordId"`
	ProjectID string    `json:"projectId,omitempty"`
	WorkDate  time.Time `json:"workDate"`
	Reason    string    `json:"reason"`
}

// Calculation is the ephemeral output of the payment engine; the caller
// decides whether to persist it as a Payment.
type Calculation struct {
	FreelancerID     string     `json:"freelancerId"`
	Month            int        `json:"month"`
	Year             int        `json:"year"`
	PeriodStart      time.Time  `json:"periodStart"`
	PeriodEnd        time.Time  `json:"periodEnd"`
	LineItems        []LineItem `json:"lineItems"`
	Gaps             []Gap      `json:"gaps"`
	TotalAmount      float64    `json:"totalAmount"`
	HoursWorked      float64    `json:"hoursWorked"`
	AssetsCompleted  float64    `json:"assetsCompleted"`
	ObjectsAnnotated float64    `json:"objectsAnnotated"`
}

type Payment struct {
	ID               string     `json:"id"`
	FreelancerID     string     `json:"freelancerId"`
	FreelancerName   string     `json:"freelancerName,omitempty"`
	Month            int        `json:"month"`
	Year             int        `json:"year"`
	PeriodStart      time.Time  `json:"periodStart"`
	PeriodEnd        time.Time  `json:"periodEnd"`
	Status           string     `json:"status"`
	TotalAmount      float64    `json:"totalAmount"`
	Currency         string     `json:"currency"`
	HoursWorked      *float64   `json:"hoursWorked,omitempty"`
	AssetsCompleted  *float64   `json:"assetsCompleted,omitempty"`
	ObjectsAnnotated *float64   `json:"objectsAnnotated,omitempty"`
	PaymentMethod    string     `json:"paymentMethod,omitempty"`
	ReferenceNumber  string     `json:"referenceNumber,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	CreatedBy        string     `json:"createdBy,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	LineItems        []LineItem `json:"lineItems,omitempty"`
}

// CreateInput is what the admin submits to persist a calculation. Line
// items may have been edited by hand, so the declared total is re-checked
// against their sum at the boundary.
type CreateInput struct {
	FreelancerID string
	Month        int
	Year         int
	PeriodStart  time.Time
	PeriodEnd    time.Time
	LineItems    []LineItem
	TotalAmount  float64
	Notes        string
	CreatedBy    string
}

// StatusUpdate carries the metadata that accompanies a transition.
type StatusUpdate struct {
	NewStatus       string
	PaymentMethod   string
	ReferenceNumber string
	PaidAt          *time.Time
	ActorID         string
}

type ListFilter struct {
	FreelancerID string
	Status       string
	Year         int
	Month        int
	Limit        int
	Offset       int
}

type Stats struct {
	TotalPayments int                    `json:"totalPayments"`
	TotalAmount   float64                `json:"totalAmount"`
	TotalPaid     float64                `json:"totalPaid"`
	TotalPending  float64                `json:"totalPending"`
	ByStatus      map[string]StatusStats `json:"byStatus"`
}

type StatusStats struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}
