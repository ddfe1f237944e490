package payment

import (
	"testing"
	"time"

	"flm/internal/domain/project"
)

func fp(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildLineItemsHourly(t *testing.T) {
	records := []WorkRecord{
		{ID: "r1", ProjectID: "p1", WorkDate: day(3), HoursWorked: fp(2)},
		{ID: "r2", ProjectID: "p1", WorkDate: day(4), HoursWorked: fp(1.5)},
	}
	projects := map[string]ProjectRates{
		"p1": {ID: "p1", Name: "Street Scenes", Model: project.PaymentModelHourly,
			HourlyRateAnnotation: fp(25), HourlyRateReview: fp(20)},
	}
	roles := map[string]string{"p1": project.RoleAnnotation}

	items, gaps := BuildLineItems(records, projects, roles)
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", gaps)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}
	if items[0].Amount != 50 || items[1].Amount != 37.5 {
		t.Errorf("unexpected amounts: %v, %v", items[0].Amount, items[1].Amount)
	}
	total, hours, _, _ := Summarize(items)
	if total != 87.5 {
		t.Errorf("expected total 87.5, got %v", total)
	}
	if hours != 3.5 {
		t.Errorf("expected 3.5 hours, got %v", hours)
	}
}

func TestBuildLineItemsReviewRate(t *testing.T) {
	records := []WorkRecord{
		{ID: "r1", ProjectID: "p1", WorkDate: day(1), AssetsCompleted: fp(10)},
	}
	projects := map[string]ProjectRates{
		"p1": {ID: "p1", Name: "Lidar", Model: project.PaymentModelPerAsset,
			PerAssetRateAnnotation: fp(3), PerAssetRateReview: fp(1.5)},
	}
	roles := map[string]string{"p1": project.RoleReview}

	items, _ := BuildLineItems(records, projects, roles)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Rate != 1.5 || items[0].Amount != 15 {
		t.Errorf("review rate not applied: rate=%v amount=%v", items[0].Rate, items[0].Amount)
	}
}

func TestBuildLineItemsMissingQuantityBecomesGap(t *testing.T) {
	records := []WorkRecord{
		// Per-asset project but the record only has hours.
		{ID: "r1", ProjectID: "p1", WorkDate: day(2), HoursWorked: fp(4)},
		{ID: "r2", ProjectID: "p1", WorkDate: day(3), AssetsCompleted: fp(8)},
	}
	projects := map[string]ProjectRates{
		"p1": {ID: "p1", Name: "Lidar", Model: project.PaymentModelPerAsset,
			PerAssetRateAnnotation: fp(2)},
	}

	roles := map[string]string{"p1": project.RoleAnnotation}

	items, gaps := BuildLineItems(records, projects, roles)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].RecordID != "r1" || gaps[0].Reason != GapMissingQuantity {
		t.Errorf("unexpected gap: %+v", gaps[0])
	}
	for _, it := range items {
		if it.Amount == 0 {
			t.Errorf("zero-amount line item should have been a gap: %+v", it)
		}
	}
}

func TestBuildLineItemsUnresolvedProject(t *testing.T) {
	records := []WorkRecord{
		{ID: "r1", ProjectID: "ghost", WorkDate: day(5), HoursWorked: fp(3)},
	}
	items, gaps := BuildLineItems(records, map[string]ProjectRates{}, nil)
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
	if len(gaps) != 1 || gaps[0].Reason != GapUnresolvedProject {
		t.Fatalf("expected unresolved_project gap, got %+v", gaps)
	}
}

func TestBuildLineItemsMissingRate(t *testing.T) {
	records := []WorkRecord{
		{ID: "r1", ProjectID: "p1", WorkDate: day(6), ObjectsAnnotated: fp(120)},
	}
	projects := map[string]ProjectRates{
		"p1": {ID: "p1", Name: "Boxes", Model: project.PaymentModelPerObject},
	}
	_, gaps := BuildLineItems(records, projects, map[string]string{"p1": project.RoleAnnotation})
	if len(gaps) != 1 || gaps[0].Reason != GapMissingRate {
		t.Fatalf("expected missing_rate gap, got %+v", gaps)
	}
}

func TestBuildLineItemsUnassignedBecomesGap(t *testing.T) {
	records := []WorkRecord{
		{ID: "r1", ProjectID: "p1", WorkDate: day(4), HoursWorked: fp(6)},
		{ID: "r2", ProjectID: "p2", WorkDate: day(5), HoursWorked: fp(2)},
	}
	projects := map[string]ProjectRates{
		"p1": {ID: "p1", Name: "Street Scenes", Model: project.PaymentModelHourly, HourlyRateAnnotation: fp(25)},
		"p2": {ID: "p2", Name: "Lidar", Model: project.PaymentModelHourly, HourlyRateAnnotation: fp(30)},
	}
	// Only p1 is assigned; the p2 record must not bill at a guessed rate.
	roles := map[string]string{"p1": project.RoleAnnotation}

	items, gaps := BuildLineItems(records, projects, roles)
	if len(items) != 1 || items[0].ProjectID != "p1" {
		t.Fatalf("expected only the assigned project to bill, got %+v", items)
	}
	if len(gaps) != 1 || gaps[0].RecordID != "r2" || gaps[0].Reason != GapUnassigned {
		t.Fatalf("expected unassigned gap for r2, got %+v", gaps)
	}
}

func TestRoundCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{1.004, 1.0},
		{2.675, 2.68},
		{0.125, 0.13},
		{0, 0},
		{10.10, 10.10},
	}
	for _, c := range cases {
		if got := RoundCurrency(c.in); got != c.want {
			t.Errorf("RoundCurrency(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTotalIsExactSumOfRoundedItems(t *testing.T) {
	records := []WorkRecord{
		{ID: "r1", ProjectID: "p1", WorkDate: day(1), ObjectsAnnotated: fp(7)},
		{ID: "r2", ProjectID: "p1", WorkDate: day(2), ObjectsAnnotated: fp(11)},
		{ID: "r3", ProjectID: "p1", WorkDate: day(3), ObjectsAnnotated: fp(13)},
	}
	projects := map[string]ProjectRates{
		"p1": {ID: "p1", Name: "Boxes", Model: project.PaymentModelPerObject,
			PerObjectRateAnnotation: fp(0.333)},
	}
	items, _ := BuildLineItems(records, projects, map[string]string{"p1": project.RoleAnnotation})
	total, _, _, _ := Summarize(items)

	var sum float64
	for _, it := range items {
		sum += it.Amount
	}
	if total != sum {
		t.Errorf("total %v is not the exact item sum %v", total, sum)
	}
}
