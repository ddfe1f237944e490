package payment

import (
	"fmt"
	"math"
	"sort"

	"flm/internal/domain/project"
)

// RoundCurrency rounds a non-negative amount to two decimal places, half
// up. The epsilon lifts half-way products such as 1.005*100, which land
// just under the .5 boundary in float64, onto it. Applied exactly once
// per line item; totals are exact sums of the rounded amounts and are
// never re-rounded.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100+1e-9) / 100
}

// BuildLineItems turns a period of work records into billable line items.
// projects maps project ID to its rate card, roles maps project ID to the
// freelancer's assignment role on that project. Records that cannot be
// billed are returned as gaps instead of zero-amount items; a record on a
// project the freelancer holds no assignment for is a gap, never a line
// item at a guessed rate.
func BuildLineItems(records []WorkRecord, projects map[string]ProjectRates, roles map[string]string) ([]LineItem, []Gap) {
	items := make([]LineItem, 0, len(records))
	var gaps []Gap

	for _, rec := range records {
		rates, ok := projects[rec.ProjectID]
		if !ok {
			gaps = append(gaps, Gap{RecordID: rec.ID, ProjectID: rec.ProjectID, WorkDate: rec.WorkDate, Reason: GapUnresolvedProject})
			continue
		}

		role, assigned := roles[rec.ProjectID]
		if !assigned {
			gaps = append(gaps, Gap{RecordID: rec.ID, ProjectID: rec.ProjectID, WorkDate: rec.WorkDate, Reason: GapUnassigned})
			continue
		}

		var (
			qty      *float64
			rate     *float64
			rateType string
			unit     string
		)
		switch rates.Model {
		case project.PaymentModelHourly:
			qty = rec.HoursWorked
			rate = pickRate(role, rates.HourlyRateAnnotation, rates.HourlyRateReview)
			rateType = "hourly"
			unit = "hours"
		case project.PaymentModelPerAsset:
			qty = rec.AssetsCompleted
			rate = pickRate(role, rates.PerAssetRateAnnotation, rates.PerAssetRateReview)
			rateType = "per_asset"
			unit = "assets"
		case project.PaymentModelPerObject:
			qty = rec.ObjectsAnnotated
			rate = pickRate(role, rates.PerObjectRateAnnotation, rates.PerObjectRateReview)
			rateType = "per_object"
			unit = "objects"
		default:
			gaps = append(gaps, Gap{RecordID: rec.ID, ProjectID: rec.ProjectID, WorkDate: rec.WorkDate, Reason: GapMissingRate})
			continue
		}

		if qty == nil || *qty <= 0 {
			gaps = append(gaps, Gap{RecordID: rec.ID, ProjectID: rec.ProjectID, WorkDate: rec.WorkDate, Reason: GapMissingQuantity})
			continue
		}
		if rate == nil || *rate <= 0 {
			gaps = append(gaps, Gap{RecordID: rec.ID, ProjectID: rec.ProjectID, WorkDate: rec.WorkDate, Reason: GapMissingRate})
			continue
		}

		items = append(items, LineItem{
			ProjectID:        rec.ProjectID,
			ProjectName:      rates.Name,
			Description:      fmt.Sprintf("%s: %.2f %s @ %.2f", rates.Name, *qty, unit, *rate),
			WorkDate:         rec.WorkDate,
			HoursWorked:      rec.HoursWorked,
			AssetsCompleted:  rec.AssetsCompleted,
			ObjectsAnnotated: rec.ObjectsAnnotated,
			Quantity:         *qty,
			Rate:             *rate,
			RateType:         rateType,
			Amount:           RoundCurrency(*qty * *rate),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].WorkDate.Before(items[j].WorkDate) })
	return items, gaps
}

func pickRate(role string, annotation, review *float64) *float64 {
	if role == project.RoleReview {
		return review
	}
	return annotation
}

// Summarize sums line items into period totals. The grand total is the
// exact sum of already-rounded amounts.
func Summarize(items []LineItem) (total, hours, assets, objects float64) {
	for _, it := range items {
		total += it.Amount
		if it.HoursWorked != nil {
			hours += *it.HoursWorked
		}
		if it.AssetsCompleted != nil {
			assets += *it.AssetsCompleted
		}
		if it.ObjectsAnnotated != nil {
			objects += *it.ObjectsAnnotated
		}
	}
	return total, hours, assets, objects
}
