package performance

const (
	RecordDaily   = "DAILY"
	RecordWeekly  = "WEEKLY"
	RecordMonthly = "MONTHLY"
)

func ValidRecordType(t string) bool {
	switch t {
	case RecordDaily, RecordWeekly, RecordMonthly:
		return true
	}
	return false
}
