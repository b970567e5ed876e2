package leave

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
)

type LeaveType string

const (
	LeaveTypeSingleDay LeaveType = "SINGLE_DAY"
	LeaveTypeHalfDay   LeaveType = "HALF_DAY"
	LeaveTypeMultiDay  LeaveType = "MULTI_DAY"
)

var validLeaveTypes = []string{string(LeaveTypeSingleDay), string(LeaveTypeHalfDay), string(LeaveTypeMultiDay)}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "PENDING"
	LeaveRequestStatusApproved LeaveRequestStatus = "APPROVED"
	LeaveRequestStatusRejected LeaveRequestStatus = "REJECTED"
)

var validStatuses = []string{string(LeaveRequestStatusPending), string(LeaveRequestStatusApproved), string(LeaveRequestStatusRejected)}

// LeaveRequest entity
type LeaveRequest struct {
	ID        string
	AccountID string
	Type      LeaveType

	StartDate time.Time
	EndDate   *time.Time // nil only on legacy open-ended rows

	Reason string

	Status         LeaveRequestStatus
	DecidedBy      *string
	DecidedAt      *time.Time
	DecisionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LastDay is EndDate, or StartDate when the request has none.
func (r LeaveRequest) LastDay() time.Time {
	if r.EndDate != nil {
		return *r.EndDate
	}
	return r.StartDate
}

// Days enumerates every covered calendar day, inclusive.
func (r LeaveRequest) Days() []time.Time {
	return dateutil.EachDay(r.StartDate, r.LastDay())
}

// Blocking reports whether the request still occupies its dates.
func (r LeaveRequest) Blocking() bool {
	return r.Status == LeaveRequestStatusPending || r.Status == LeaveRequestStatusApproved
}

// Overlaps reports whether existing collides with the new range [start, end].
// An existing request without an end date blocks everything from its start on.
func Overlaps(existing LeaveRequest, start, end time.Time) bool {
	if existing.EndDate == nil {
		return !end.Before(existing.StartDate)
	}
	return !start.After(*existing.EndDate) && !end.Before(existing.StartDate)
}
