package reports

import (
	"context"
	"time"
)

// Dashboard is the admin landing page snapshot.
type Dashboard struct {
	TotalFreelancers    int            `json:"totalFreelancers"`
	ActiveFreelancers   int            `json:"activeFreelancers"`
	PendingApplications int            `json:"pendingApplications"`
	ActiveProjects      int            `json:"activeProjects"`
	PendingPayments     float64        `json:"pendingPayments"`
	PaidThisYear        float64        `json:"paidThisYear"`
	AvgOverallScore     float64        `json:"avgOverallScore"`
	TierDistribution    map[string]int `json:"tierDistribution"`
}

type MonthTotal struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.TotalFreelancers, d.ActiveFreelancers, err = s.Store.FreelancerCounts(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.PendingApplications, err = s.Store.PendingApplications(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.ActiveProjects, err = s.Store.ActiveProjects(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.PendingPayments, d.PaidThisYear, err = s.Store.PaymentTotals(ctx, time.Now().Year()); err != nil {
		return Dashboard{}, err
	}
	if d.AvgOverallScore, err = s.Store.AvgOverallScore(ctx); err != nil {
		return Dashboard{}, err
	}
	if d.TierDistribution, err = s.Store.TierDistribution(ctx); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Service) MonthlyPayments(ctx context.Context, year int) ([]MonthTotal, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	return s.Store.MonthlyPaymentSeries(ctx, year)
}
