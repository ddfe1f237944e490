package performance

// comScores and qualScores list the sub-score fields in submission order.
func comScores(r *Record) []*float64 {
	return []*float64{r.ComResponsibility, r.ComCommitment, r.ComInitiative, r.ComWillingness, r.ComCommunication}
}

func qualScores(r *Record) []*float64 {
	return []*float64{r.QualSpeed, r.QualDelibOmission, r.QualAccuracy, r.QualAttention, r.QualUnannotated, r.QualUnderstanding}
}

// ValidateScores rejects any sub-score outside [0, 5].
func ValidateScores(r *Record) error {
	for _, s := range append(comScores(r), qualScores(r)...) {
		if s != nil && (*s < 0 || *s > 5) {
			return ErrInvalidScore
		}
	}
	return nil
}

// DeriveTotals fills ComTotal, QualTotal and OverallScore from whichever
// sub-scores are present. A block with no scores contributes nothing; if
// only one block is scored the overall equals that block's average.
func DeriveTotals(r *Record) {
	r.ComTotal = avgPresent(comScores(r))
	r.QualTotal = avgPresent(qualScores(r))

	switch {
	case r.ComTotal != nil && r.QualTotal != nil:
		v := (*r.ComTotal + *r.QualTotal) / 2
		r.OverallScore = &v
	case r.ComTotal != nil:
		v := *r.ComTotal
		r.OverallScore = &v
	case r.QualTotal != nil:
		v := *r.QualTotal
		r.OverallScore = &v
	default:
		r.OverallScore = nil
	}
}

func avgPresent(scores []*float64) *float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
