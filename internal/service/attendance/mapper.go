package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).DivRound(minutesPerHour, 2)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapDayToResponse(d attendance.Day) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:                d.ID,
		AccountID:         d.AccountID,
		Date:              dateutil.FormatDay(d.Date),
		Day:               d.Day,
		IsSunday:          d.IsSunday,
		Status:            string(d.Status),
		StatusSource:      string(d.StatusSource),
		FirstCheckIn:      timePtrToString(d.FirstCheckIn),
		LastCheckOut:      timePtrToString(d.LastCheckOut),
		TotalWorkMinutes:  d.TotalWorkMinutes,
		TotalBreakMinutes: d.TotalBreakMinutes,
		WorkedHours:       minutesToHours(d.TotalWorkMinutes),
		BreakHours:        minutesToHours(d.TotalBreakMinutes),
		HasOpenSession:    d.HasOpenSession,
		HasOpenBreak:      d.HasOpenBreak,
		OverrideNote:      d.OverrideNote,
		OverrideBy:        d.OverrideBy,
		IsWFH:             d.IsWFH,
		CreatedAt:         d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapEventToResponse(e attendance.CheckEvent) attendance.CheckEventResponse {
	var breakType *string
	if e.BreakType != nil {
		bt := string(*e.BreakType)
		breakType = &bt
	}
	return attendance.CheckEventResponse{
		ID:              e.ID,
		AttendanceLogID: e.AttendanceLogID,
		AccountID:       e.AccountID,
		Date:            dateutil.FormatDay(e.Date),
		CheckedAt:       e.CheckedAt.UTC().Format(time.RFC3339),
		Type:            string(e.Type),
		SessionID:       e.SessionID,
		Source:          string(e.Source),
		Note:            e.Note,
		BreakType:       breakType,
		EditedBy:        e.EditedBy,
	}
}

func mapEventsToResponse(events []attendance.CheckEvent) []attendance.CheckEventResponse {
	out := make([]attendance.CheckEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, mapEventToResponse(e))
	}
	return out
}

func eventTime(e *attendance.CheckEvent) *string {
	if e == nil {
		return nil
	}
	return timePtrToString(&e.CheckedAt)
}

func mapSessionsToResponse(l attendance.SessionLedger) []attendance.SessionResponse {
	sessions := l.Sessions()
	out := make([]attendance.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, attendance.SessionResponse{
			SessionID:       s.SessionID,
			CheckIn:         eventTime(s.CheckIn),
			CheckOut:        eventTime(s.CheckOut),
			DurationMinutes: s.Minutes(),
			IsOpen:          s.IsOpen(),
		})
	}
	return out
}

func mapBreaksToResponse(l attendance.BreakLedger) []attendance.BreakResponse {
	breaks := l.Breaks()
	out := make([]attendance.BreakResponse, 0, len(breaks))
	for _, b := range breaks {
		out = append(out, attendance.BreakResponse{
			SessionID:       b.SessionID,
			BreakType:       string(b.BreakType),
			BreakStart:      eventTime(b.Start),
			BreakEnd:        eventTime(b.End),
			DurationMinutes: b.DurationMinutes,
			IsOpen:          b.IsOpen,
		})
	}
	return out
}

func buildListResponse(days []attendance.Day, total int64, page, limit int) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(days))
	for _, d := range days {
		responses = append(responses, mapDayToResponse(d))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}
}
