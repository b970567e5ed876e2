package leave

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// MaxLeaveDays caps the inclusive span of one leave request.
const MaxLeaveDays = 366

type ApplyLeaveRequest struct {
	AccountID string  `json:"-"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`         // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"` // YYYY-MM-DD, required for MULTI_DAY
	Reason    string  `json:"reason"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}

	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	if !validator.IsInSlice(r.Type, validLeaveTypes) {
		errs.Add("type", "type must be one of: "+strings.Join(validLeaveTypes, ", "))
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}

	if r.EndDate != nil && *r.EndDate == "" {
		r.EndDate = nil
	}

	switch {
	case r.EndDate == nil && LeaveType(r.Type) == LeaveTypeMultiDay:
		errs.Add("end_date", "end_date is required for MULTI_DAY leave")
	case r.EndDate != nil:
		end, endOK := validator.IsValidDate(*r.EndDate)
		if !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
			break
		}
		if startOK && end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
			break
		}
		if startOK && LeaveType(r.Type) != LeaveTypeMultiDay && !end.Equal(start) {
			errs.Add("end_date", "end_date must equal start_date for "+r.Type+" leave")
			break
		}
		if startOK && !end.Before(start.AddDate(0, 0, MaxLeaveDays)) {
			errs.Add("end_date", fmt.Sprintf("leave cannot span more than %d days", MaxLeaveDays))
		}
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if !validator.MaxLength(r.Reason, 1000) {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type DecideLeaveRequest struct {
	ID        string  `json:"-"`
	Decision  string  `json:"decision"` // APPROVED | REJECTED
	Reason    *string `json:"reason,omitempty"`
	DecidedBy string  `json:"-"`
}

func (r *DecideLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}

	r.Decision = strings.ToUpper(strings.TrimSpace(r.Decision))
	if r.Decision != string(LeaveRequestStatusApproved) && r.Decision != string(LeaveRequestStatusRejected) {
		errs.Add("decision", "decision must be one of: APPROVED, REJECTED")
	}

	if r.Reason != nil && !validator.MaxLength(*r.Reason, 1000) {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	if validator.IsEmpty(r.DecidedBy) {
		errs.Add("decided_by", "decided_by is required")
	}

	return errs.Err()
}

type CancelLeaveRequest struct {
	ID        string `json:"-"`
	AccountID string `json:"-"`
}

func (r *CancelLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}

	return errs.Err()
}

// Viewer is the acting account of a read. Admins see every request.
type Viewer struct {
	AccountID string
	IsAdmin   bool
}

type LeaveRequestFilter struct {
	AccountID *string `json:"account_id,omitempty"`
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil {
		upper := strings.ToUpper(*f.Status)
		f.Status = &upper
		if !validator.IsInSlice(upper, validStatuses) {
			errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
		}
	}

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	return errs.Err()
}

// Query is the storage-level form of LeaveRequestFilter.
type Query struct {
	AccountID *string
	Status    *LeaveRequestStatus
	Page      int
	Limit     int
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

type LeaveRequestResponse struct {
	ID             string  `json:"id"`
	AccountID      string  `json:"account_id"`
	Type           string  `json:"type"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
	TotalDays      int     `json:"total_days"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	DecidedBy      *string `json:"decided_by,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
	DecisionReason *string `json:"decision_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	Showing       string                 `json:"showing"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}
