package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
)

type EventType string

const (
	EventCheckIn    EventType = "CHECK_IN"
	EventCheckOut   EventType = "CHECK_OUT"
	EventBreakStart EventType = "BREAK_START"
	EventBreakEnd   EventType = "BREAK_END"
)

type EventSource string

const (
	SourceManual EventSource = "MANUAL"
	SourceAdmin  EventSource = "ADMIN"
)

type BreakType string

const (
	BreakLunch    BreakType = "LUNCH"
	BreakShort    BreakType = "SHORT"
	BreakPersonal BreakType = "PERSONAL"
	BreakOther    BreakType = "OTHER"
)

var validBreakTypes = []string{string(BreakLunch), string(BreakShort), string(BreakPersonal), string(BreakOther)}

// CheckEvent is an immutable fact in a day's log. It is created once and
// only ever removed by an admin correction.
type CheckEvent struct {
	ID              string
	AttendanceLogID string
	AccountID       string
	Date            time.Time
	CheckedAt       time.Time
	Type            EventType
	SessionID       string
	Source          EventSource
	Note            *string
	BreakType       *BreakType
	EditedBy        *string
	CreatedAt       time.Time
}

// Day is the one-per-account-per-day attendance aggregate. Its flags and
// totals are a materialised view over the day's CheckEvents.
type Day struct {
	ID                string
	AccountID         string
	Date              time.Time
	Day               string
	IsSunday          bool
	Status            DayStatus
	StatusSource      StatusSource
	FirstCheckIn      *time.Time
	LastCheckOut      *time.Time
	TotalWorkMinutes  int
	TotalBreakMinutes int
	HasOpenSession    bool
	HasOpenBreak      bool
	OverrideNote      *string
	OverrideBy        *string
	IsWFH             *bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewDay builds an empty aggregate for accountID on the given day key.
func NewDay(accountID string, date time.Time) Day {
	return Day{
		AccountID:    accountID,
		Date:         date,
		Day:          dateutil.WeekdayName(date),
		IsSunday:     dateutil.IsSunday(date),
		Status:       StatusAbsent,
		StatusSource: SourceDerived,
	}
}

// OpenSession records a check-in at the given instant.
func (d *Day) OpenSession(at time.Time) {
	d.HasOpenSession = true
	if d.FirstCheckIn == nil || at.Before(*d.FirstCheckIn) {
		t := at
		d.FirstCheckIn = &t
	}
}

// CloseSession records a check-out that closed a session worth minutes.
func (d *Day) CloseSession(at time.Time, minutes int) {
	d.HasOpenSession = false
	d.HasOpenBreak = false
	if d.LastCheckOut == nil || at.After(*d.LastCheckOut) {
		t := at
		d.LastCheckOut = &t
	}
	d.TotalWorkMinutes += minutes
	d.rederive(minutes != 0)
}

func (d *Day) OpenBreak() {
	d.HasOpenBreak = true
}

func (d *Day) CloseBreak(minutes int) {
	d.HasOpenBreak = false
	d.TotalBreakMinutes += minutes
}

// ApplySummary overwrites every derived field from a full replay.
func (d *Day) ApplySummary(s Summary) {
	changed := d.TotalWorkMinutes != s.TotalWorkMinutes
	d.TotalWorkMinutes = s.TotalWorkMinutes
	d.TotalBreakMinutes = s.TotalBreakMinutes
	d.HasOpenSession = s.OpenSessionID != ""
	d.HasOpenBreak = d.HasOpenSession && s.OpenBreakID != ""
	d.FirstCheckIn = s.FirstCheckIn
	d.LastCheckOut = s.LastCheckOut
	d.rederive(changed)
}

// Override pins the status chosen by an admin; derivation no longer touches it.
func (d *Day) Override(status *DayStatus, note *string, by string) {
	if status != nil {
		d.Status = *status
		d.StatusSource = SourceOverride
	}
	if note != nil {
		d.OverrideNote = note
	}
	d.OverrideBy = &by
}

// ApplyLeave sets the status produced by an approved leave request. It acts
// as a floor: worked minutes that derive a better status replace it.
func (d *Day) ApplyLeave(status DayStatus, note string) {
	d.Status = status
	d.StatusSource = SourceLeave
	d.OverrideNote = &note
}

// rederive recomputes a derived status. An override stays pinned; a leave
// status yields once a change in minutes derives something better.
func (d *Day) rederive(minutesChanged bool) {
	derived := DeriveStatus(d.TotalWorkMinutes)
	switch d.StatusSource {
	case SourceOverride:
		return
	case SourceLeave:
		if !minutesChanged || statusRank(derived) <= statusRank(d.Status) {
			return
		}
	}
	d.Status = derived
	d.StatusSource = SourceDerived
}

func statusRank(s DayStatus) int {
	switch s {
	case StatusPresent:
		return 2
	case StatusHalfDay:
		return 1
	default:
		return 0
	}
}

// CheckInvariants verifies the aggregate against its event log.
// A non-nil result means the stored view drifted from the facts.
func (d Day) CheckInvariants(events []CheckEvent) error {
	s := Derive(events)
	switch {
	case d.HasOpenBreak && !d.HasOpenSession:
		return ErrInvariantViolation
	case d.HasOpenSession != (s.OpenSessionID != ""):
		return ErrInvariantViolation
	case d.TotalWorkMinutes != s.TotalWorkMinutes:
		return ErrInvariantViolation
	case d.StatusSource == SourceDerived && d.Status != DeriveStatus(d.TotalWorkMinutes):
		return ErrInvariantViolation
	}
	return nil
}
