package domain

import "fmt"

// DataIntegrityError reports a stored schedule value that cannot be
// interpreted. It is never downgraded to "not working" or "available".
type DataIntegrityError struct {
	StaffID string
	Weekday Weekday
	Field   string
	Value   string
	Err     error
}

func (e *DataIntegrityError) Error() string {
	msg := fmt.Sprintf("schedule %s/%s: invalid %s %q", e.StaffID, e.Weekday, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}
