package application

const (
	StatusPending     = "PENDING"
	StatusShortlisted = "SHORTLISTED"
	StatusInterview   = "INTERVIEW"
	StatusAccepted    = "ACCEPTED"
	StatusRejected    = "REJECTED"
	StatusWithdrawn   = "WITHDRAWN"
)

// reviewTransitions is the intake pipeline. ACCEPTED, REJECTED and
// WITHDRAWN are terminal.
var reviewTransitions = map[string][]string{
	StatusPending:     {StatusShortlisted, StatusInterview, StatusAccepted, StatusRejected, StatusWithdrawn},
	StatusShortlisted: {StatusInterview, StatusAccepted, StatusRejected, StatusWithdrawn},
	StatusInterview:   {StatusAccepted, StatusRejected, StatusWithdrawn},
}

func CanTransition(from, to string) bool {
	for _, next := range reviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func Terminal(status string) bool {
	switch status {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}
