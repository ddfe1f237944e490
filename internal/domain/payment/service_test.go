package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"flm/internal/domain/project"
)

type fakeStore struct {
	records  []WorkRecord
	projects map[string]ProjectRates
	roles    map[string]string

	inserted  []Payment
	insertErr error
	payments  map[string]*Payment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[string]ProjectRates{},
		roles:    map[string]string{},
		payments: map[string]*Payment{},
	}
}

func (f *fakeStore) WorkRecords(_ context.Context, _ string, _, _ time.Time) ([]WorkRecord, error) {
	return f.records, nil
}

func (f *fakeStore) ProjectRatesByID(_ context.Context, _ []string) (map[string]ProjectRates, error) {
	return f.projects, nil
}

func (f *fakeStore) AssignmentRoles(_ context.Context, _ string, _ []string, _, _ time.Time) (map[string]string, error) {
	return f.roles, nil
}

func (f *fakeStore) Insert(_ context.Context, in CreateInput, totals Calculation, currency string) (Payment, error) {
	if f.insertErr != nil {
		return Payment{}, f.insertErr
	}
	for _, p := range f.inserted {
		if p.FreelancerID == in.FreelancerID && p.Year == in.Year && p.Month == in.Month {
			return Payment{}, ErrDuplicatePeriod
		}
	}
	p := Payment{
		ID:           "pay-1",
		FreelancerID: in.FreelancerID,
		Month:        in.Month,
		Year:         in.Year,
		Status:       StatusPending,
		TotalAmount:  in.TotalAmount,
		Currency:     currency,
		LineItems:    in.LineItems,
	}
	f.inserted = append(f.inserted, p)
	f.payments[p.ID] = &p
	return p, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return *p, nil
}

func (f *fakeStore) List(_ context.Context, _ ListFilter) ([]Payment, int, error) {
	var out []Payment
	for _, p := range f.payments {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, upd StatusUpdate) (Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if !CanTransition(p.Status, upd.NewStatus) {
		return Payment{}, ErrInvalidTransition
	}
	p.Status = upd.NewStatus
	return *p, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	p, ok := f.payments[id]
	if !ok {
		return ErrNotFound
	}
	if p.Status == StatusPaid {
		return ErrPaidImmutable
	}
	delete(f.payments, id)
	return nil
}

func (f *fakeStore) Stats(_ context.Context, _ int) (Stats, error) {
	return Stats{}, nil
}

func (f *fakeStore) FreelancerName(_ context.Context, _ string) (string, error) {
	return "Jane Doe", nil
}

type staticConfig map[string]string

func (c staticConfig) Value(_ context.Context, key string) (string, error) {
	if v, ok := c[key]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestCalculateMixedModels(t *testing.T) {
	store := newFakeStore()
	store.records = []WorkRecord{
		{ID: "r1", ProjectID: "hourly", WorkDate: day(2), HoursWorked: fp(10)},
		{ID: "r2", ProjectID: "assets", WorkDate: day(3), AssetsCompleted: fp(20)},
		{ID: "r3", ProjectID: "assets", WorkDate: day(4)},
	}
	store.projects = map[string]ProjectRates{
		"hourly": {ID: "hourly", Name: "Driving", Model: project.PaymentModelHourly, HourlyRateAnnotation: fp(5)},
		"assets": {ID: "assets", Name: "Lidar", Model: project.PaymentModelPerAsset, PerAssetRateAnnotation: fp(1.5)},
	}
	store.roles = map[string]string{
		"hourly": project.RoleAnnotation,
		"assets": project.RoleAnnotation,
	}
	svc := NewService(store, staticConfig{})

	calc, err := svc.Calculate(context.Background(), "f1", day(1), day(31))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if calc.Year != 2026 || calc.Month != 3 {
		t.Errorf("expected billing period 2026-03 from the period start, got %d-%02d", calc.Year, calc.Month)
	}
	if calc.TotalAmount != 80 {
		t.Errorf("expected total 80, got %v", calc.TotalAmount)
	}
	if len(calc.LineItems) != 2 {
		t.Errorf("expected 2 line items, got %d", len(calc.LineItems))
	}
	if len(calc.Gaps) != 1 || calc.Gaps[0].RecordID != "r3" {
		t.Errorf("expected r3 to be a gap, got %+v", calc.Gaps)
	}
}

func TestCalculateRejectsBadPeriod(t *testing.T) {
	svc := NewService(newFakeStore(), staticConfig{})
	if _, err := svc.Calculate(context.Background(), "f1", day(10), day(2)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("end before start: expected ErrInvalidRange, got %v", err)
	}
	if _, err := svc.Calculate(context.Background(), "f1", time.Time{}, day(2)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero start: expected ErrInvalidRange, got %v", err)
	}
	if _, err := svc.Calculate(context.Background(), "f1", day(2), time.Time{}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero end: expected ErrInvalidRange, got %v", err)
	}
}

func TestCalculateSubMonthPeriod(t *testing.T) {
	store := newFakeStore()
	store.records = []WorkRecord{
		{ID: "r1", ProjectID: "hourly", WorkDate: day(2), HoursWorked: fp(4)},
	}
	store.projects = map[string]ProjectRates{
		"hourly": {ID: "hourly", Name: "Driving", Model: project.PaymentModelHourly, HourlyRateAnnotation: fp(10)},
	}
	store.roles = map[string]string{"hourly": project.RoleAnnotation}
	svc := NewService(store, staticConfig{})

	calc, err := svc.Calculate(context.Background(), "f1", day(1), day(15))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !calc.PeriodStart.Equal(day(1)) || !calc.PeriodEnd.Equal(day(15)) {
		t.Errorf("expected the requested period to be preserved, got %v..%v", calc.PeriodStart, calc.PeriodEnd)
	}
	if calc.TotalAmount != 40 {
		t.Errorf("expected total 40, got %v", calc.TotalAmount)
	}
}

func TestCalculateUnassignedWorkIsNotBilled(t *testing.T) {
	store := newFakeStore()
	store.records = []WorkRecord{
		{ID: "r1", ProjectID: "hourly", WorkDate: day(2), HoursWorked: fp(10)},
	}
	store.projects = map[string]ProjectRates{
		"hourly": {ID: "hourly", Name: "Driving", Model: project.PaymentModelHourly, HourlyRateAnnotation: fp(5)},
	}
	svc := NewService(store, staticConfig{})

	calc, err := svc.Calculate(context.Background(), "f1", day(1), day(31))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(calc.LineItems) != 0 || calc.TotalAmount != 0 {
		t.Errorf("work without an assignment must not bill, got %+v", calc.LineItems)
	}
	if len(calc.Gaps) != 1 || calc.Gaps[0].Reason != GapUnassigned {
		t.Errorf("expected an unassigned gap, got %+v", calc.Gaps)
	}
}

func TestCreateChecksDeclaredTotal(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, staticConfig{"CURRENCY": "EUR"})

	in := CreateInput{
		FreelancerID: "f1",
		Year:         2026, Month: 3,
		PeriodStart: day(1), PeriodEnd: day(31),
		LineItems: []LineItem{
			{Description: "a", WorkDate: day(2), Quantity: 2, Rate: 10, Amount: 20},
			{Description: "b", WorkDate: day(3), Quantity: 1, Rate: 15, Amount: 15},
		},
		TotalAmount: 99,
	}
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrTotalMismatch) {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}

	in.TotalAmount = 35
	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Status != StatusPending {
		t.Errorf("new payment should be PENDING, got %s", p.Status)
	}
	if p.Currency != "EUR" {
		t.Errorf("expected configured currency EUR, got %s", p.Currency)
	}
}

func TestCreateDuplicatePeriod(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, staticConfig{})

	in := CreateInput{
		FreelancerID: "f1", Year: 2026, Month: 3,
		PeriodStart: day(1), PeriodEnd: day(31),
		LineItems:   []LineItem{{Description: "a", WorkDate: day(2), Quantity: 1, Rate: 10, Amount: 10}},
		TotalAmount: 10,
	}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrDuplicatePeriod) {
		t.Errorf("expected ErrDuplicatePeriod, got %v", err)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, staticConfig{})
	in := CreateInput{
		FreelancerID: "f1", Year: 2026, Month: 3,
		PeriodStart: day(1), PeriodEnd: day(31),
		LineItems:   []LineItem{{Description: "a", WorkDate: day(2), Quantity: 1, Rate: 10, Amount: 10}},
		TotalAmount: 10,
	}
	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), p.ID, StatusUpdate{NewStatus: StatusPaid}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("PENDING to PAID should fail, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), p.ID, StatusUpdate{NewStatus: "BOGUS"}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown status should fail, got %v", err)
	}

	got, err := svc.UpdateStatus(context.Background(), p.ID, StatusUpdate{NewStatus: StatusApproved, ActorID: "admin"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("expected APPROVED, got %s", got.Status)
	}

	got, err = svc.UpdateStatus(context.Background(), p.ID, StatusUpdate{NewStatus: StatusPaid})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if got.Status != StatusPaid {
		t.Errorf("expected PAID, got %s", got.Status)
	}

	if err := svc.Delete(context.Background(), p.ID); !errors.Is(err, ErrPaidImmutable) {
		t.Errorf("deleting a PAID payment should fail, got %v", err)
	}
}

func TestStatementRendersPDF(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, staticConfig{})
	in := CreateInput{
		FreelancerID: "f1", Year: 2026, Month: 3,
		PeriodStart: day(1), PeriodEnd: day(31),
		LineItems:   []LineItem{{Description: "Driving: 10.00 hours @ 5.00", WorkDate: day(2), Quantity: 10, Rate: 5, Amount: 50}},
		TotalAmount: 50,
	}
	p, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := svc.Statement(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if len(out) == 0 || string(out[:4]) != "%PDF" {
		t.Errorf("expected a PDF document, got %d bytes", len(out))
	}
}
