package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// TRACKER DTOs
// ========================================

type CheckInRequest struct {
	AccountID string  `json:"-"`
	Note      *string `json:"note,omitempty"`
	IsWFH     *bool   `json:"is_wfh,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

type CheckOutRequest struct {
	AccountID string  `json:"-"`
	Note      *string `json:"note,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

type BreakStartRequest struct {
	AccountID string  `json:"-"`
	BreakType string  `json:"break_type"`
	Note      *string `json:"note,omitempty"`
}

func (r *BreakStartRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}

	if r.BreakType == "" {
		r.BreakType = string(BreakOther)
	}
	r.BreakType = strings.ToUpper(r.BreakType)
	if !validator.IsInSlice(r.BreakType, validBreakTypes) {
		errs.Add("break_type", "break_type must be one of: "+strings.Join(validBreakTypes, ", "))
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

type BreakEndRequest struct {
	AccountID string  `json:"-"`
	Note      *string `json:"note,omitempty"`
}

func (r *BreakEndRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

// ========================================
// CORRECTION DTOs
// ========================================

// ManualCheckInRequest is an admin-authored check-in at an explicit instant.
type ManualCheckInRequest struct {
	AccountID   string  `json:"account_id"`
	CheckedAt   string  `json:"checked_at"` // RFC3339
	Note        *string `json:"note,omitempty"`
	PerformedBy string  `json:"-"`
}

func (r *ManualCheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}
	if validator.IsEmpty(r.CheckedAt) {
		errs.Add("checked_at", "checked_at is required")
	} else if _, ok := validator.IsValidDateTime(r.CheckedAt); !ok {
		errs.Add("checked_at", "checked_at must be an RFC3339 timestamp")
	}
	if validator.IsEmpty(r.PerformedBy) {
		errs.Add("performed_by", "performed_by is required")
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

// ManualCheckOutRequest closes SessionID, or the open session when omitted.
type ManualCheckOutRequest struct {
	AccountID   string  `json:"account_id"`
	CheckedAt   string  `json:"checked_at"` // RFC3339
	SessionID   *string `json:"session_id,omitempty"`
	Note        *string `json:"note,omitempty"`
	PerformedBy string  `json:"-"`
}

func (r *ManualCheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AccountID) {
		errs.Add("account_id", "account_id is required")
	}
	if validator.IsEmpty(r.CheckedAt) {
		errs.Add("checked_at", "checked_at is required")
	} else if _, ok := validator.IsValidDateTime(r.CheckedAt); !ok {
		errs.Add("checked_at", "checked_at must be an RFC3339 timestamp")
	}
	if r.SessionID != nil && validator.IsEmpty(*r.SessionID) {
		errs.Add("session_id", "session_id must not be blank")
	}
	if validator.IsEmpty(r.PerformedBy) {
		errs.Add("performed_by", "performed_by is required")
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

type DeleteCheckEventRequest struct {
	EventID     string `json:"-"`
	PerformedBy string `json:"-"`
}

func (r *DeleteCheckEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EventID) {
		errs.Add("event_id", "event_id is required")
	}
	if validator.IsEmpty(r.PerformedBy) {
		errs.Add("performed_by", "performed_by is required")
	}

	return errs.Err()
}

// OverrideRequest pins a status and/or attaches a note without touching events.
type OverrideRequest struct {
	ID          string  `json:"-"`
	Status      *string `json:"status,omitempty"`
	Note        *string `json:"note,omitempty"`
	PerformedBy string  `json:"-"`
}

func (r *OverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.Status == nil && r.Note == nil {
		errs.Add("status", "status or note is required")
	}
	if r.Status != nil {
		upper := strings.ToUpper(*r.Status)
		r.Status = &upper
		if !validator.IsInSlice(upper, validStatuses) {
			errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
		}
	}
	if validator.IsEmpty(r.PerformedBy) {
		errs.Add("performed_by", "performed_by is required")
	}
	validateNote(&errs, r.Note)

	return errs.Err()
}

// ========================================
// QUERY DTOs
// ========================================

type HistoryFilter struct {
	AccountID string `json:"-"`
	Month     *int   `json:"month,omitempty"`
	Year      *int   `json:"year,omitempty"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.AccountID) {
		errs.Add("account_id", "account_id is required")
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Year != nil && (*f.Year < 1970 || *f.Year > 9999) {
		errs.Add("year", "year must be between 1970 and 9999")
	}
	validatePage(&errs, &f.Page, &f.Limit)

	return errs.Err()
}

type AttendanceFilter struct {
	AccountID *string `json:"account_id,omitempty"`
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil {
		upper := strings.ToUpper(*f.Status)
		f.Status = &upper
		if !validator.IsInSlice(upper, validStatuses) {
			errs.Add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs.Add(field, field+" must be in YYYY-MM-DD format")
			}
		}
	}

	if f.StartDate != nil && f.EndDate != nil && *f.StartDate != "" && *f.EndDate != "" && *f.EndDate < *f.StartDate {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	validatePage(&errs, &f.Page, &f.Limit)

	return errs.Err()
}

// DayQuery is the storage-level form of the listing filters.
type DayQuery struct {
	AccountID *string
	From      *string // YYYY-MM-DD inclusive
	To        *string // YYYY-MM-DD inclusive
	Status    *DayStatus
	Page      int
	Limit     int
}

func (q DayQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ========================================
// RESPONSE DTOs
// ========================================

type CheckEventResponse struct {
	ID              string  `json:"id"`
	AttendanceLogID string  `json:"attendance_log_id"`
	AccountID       string  `json:"account_id"`
	Date            string  `json:"date"`
	CheckedAt       string  `json:"checked_at"`
	Type            string  `json:"type"`
	SessionID       string  `json:"session_id"`
	Source          string  `json:"source"`
	Note            *string `json:"note,omitempty"`
	BreakType       *string `json:"break_type,omitempty"`
	EditedBy        *string `json:"edited_by,omitempty"`
}

type AttendanceResponse struct {
	ID                string          `json:"id"`
	AccountID         string          `json:"account_id"`
	Date              string          `json:"date"`
	Day               string          `json:"day"`
	IsSunday          bool            `json:"is_sunday"`
	Status            string          `json:"status"`
	StatusSource      string          `json:"status_source"`
	FirstCheckIn      *string         `json:"first_check_in,omitempty"`
	LastCheckOut      *string         `json:"last_check_out,omitempty"`
	TotalWorkMinutes  int             `json:"total_work_minutes"`
	TotalBreakMinutes int             `json:"total_break_minutes"`
	WorkedHours       decimal.Decimal `json:"worked_hours"`
	BreakHours        decimal.Decimal `json:"break_hours"`
	HasOpenSession    bool            `json:"has_open_session"`
	HasOpenBreak      bool            `json:"has_open_break"`
	OverrideNote      *string         `json:"override_note,omitempty"`
	OverrideBy        *string         `json:"override_by,omitempty"`
	IsWFH             *bool           `json:"is_wfh,omitempty"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

type SessionResponse struct {
	SessionID       string  `json:"session_id"`
	CheckIn         *string `json:"check_in,omitempty"`
	CheckOut        *string `json:"check_out,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	IsOpen          bool    `json:"is_open"`
}

type BreakResponse struct {
	SessionID       string  `json:"session_id"`
	BreakType       string  `json:"break_type"`
	BreakStart      *string `json:"break_start,omitempty"`
	BreakEnd        *string `json:"break_end,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	IsOpen          bool    `json:"is_open"`
}

// TrackResponse is returned by every operation that appends an event.
type TrackResponse struct {
	Attendance AttendanceResponse `json:"attendance"`
	Event      CheckEventResponse `json:"event"`
}

type TodayStatusResponse struct {
	Date          string               `json:"date"`
	Attendance    *AttendanceResponse  `json:"attendance,omitempty"`
	Events        []CheckEventResponse `json:"events"`
	Sessions      []SessionResponse    `json:"sessions"`
	Breaks        []BreakResponse      `json:"breaks"`
	OpenSessionID *string              `json:"open_session_id,omitempty"`
	OpenBreakID   *string              `json:"open_break_id,omitempty"`
	CanCheckIn    bool                 `json:"can_check_in"`
	CanCheckOut   bool                 `json:"can_check_out"`
	CanStartBreak bool                 `json:"can_start_break"`
	CanEndBreak   bool                 `json:"can_end_break"`
}

type AttendanceDetailResponse struct {
	Attendance AttendanceResponse   `json:"attendance"`
	Events     []CheckEventResponse `json:"events"`
	Sessions   []SessionResponse    `json:"sessions"`
	Breaks     []BreakResponse      `json:"breaks"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

const maxNoteLength = 500

func validateNote(errs *validator.ValidationErrors, note *string) {
	if note != nil && !validator.MaxLength(*note, maxNoteLength) {
		errs.Add("note", "note must not exceed 500 characters")
	}
}

func validatePage(errs *validator.ValidationErrors, page, limit *int) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1
	}
	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
}
