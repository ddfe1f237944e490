package shared

import "time"

const dateOnly = "2006-01-02"

// ParseDate reads an RFC3339 timestamp or a bare YYYY-MM-DD date. An
// empty value parses to the zero time with no error so optional date
// fields stay optional.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(dateOnly, value)
}
