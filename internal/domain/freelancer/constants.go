package freelancer

const (
	StatusActive      = "ACTIVE"
	StatusEngaged     = "ENGAGED"
	StatusInactive    = "INACTIVE"
	StatusDeactivated = "DEACTIVATED"

	OnboardingPending    = "PENDING"
	OnboardingInTraining = "IN_TRAINING"
	OnboardingCompleted  = "COMPLETED"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusEngaged, StatusInactive, StatusDeactivated:
		return true
	}
	return false
}
