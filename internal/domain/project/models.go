package project

import "time"

type Project struct {
	ID                      string     `json:"id"`
	Code                    string     `json:"code"`
	Name                    string     `json:"name"`
	Client                  string     `json:"client,omitempty"`
	Description             string     `json:"description,omitempty"`
	Status                  string     `json:"status"`
	PaymentModel            string     `json:"paymentModel"`
	HourlyRateAnnotation    *float64   `json:"hourlyRateAnnotation,omitempty"`
	HourlyRateReview        *float64   `json:"hourlyRateReview,omitempty"`
	PerAssetRateAnnotation  *float64   `json:"perAssetRateAnnotation,omitempty"`
	PerAssetRateReview      *float64   `json:"perAssetRateReview,omitempty"`
	ExpectedTimePerAsset    *float64   `json:"expectedTimePerAsset,omitempty"`
	PerObjectRateAnnotation *float64   `json:"perObjectRateAnnotation,omitempty"`
	PerObjectRateReview     *float64   `json:"perObjectRateReview,omitempty"`
	StartDate               *time.Time `json:"startDate,omitempty"`
	EndDate                 *time.Time `json:"endDate,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

type Assignment struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"projectId"`
	ProjectName    string     `json:"projectName,omitempty"`
	FreelancerID   string     `json:"freelancerId"`
	FreelancerName string     `json:"freelancerName,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
