package employee

import "time"

// Profile is the slice of the employee record the attendance engine touches:
// whether the account is currently available (checked in) or busy.
type Profile struct {
	AccountID             string
	IsAvailable           bool
	AvailabilityUpdatedAt *time.Time
}
