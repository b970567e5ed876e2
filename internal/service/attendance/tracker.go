package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
)

// CheckIn implements attendance.TrackerService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TrackResponse{}, err
	}
	now := s.now()
	date := dateutil.DayKey(now, s.loc)

	var resp attendance.TrackResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.loadOrCreateDay(ctx, req.AccountID, date)
		if err != nil {
			return err
		}
		if day.HasOpenSession {
			return attendance.ErrAlreadyCheckedIn
		}

		sessionID, err := newID()
		if err != nil {
			return err
		}
		event, err := s.appendEvent(ctx, day, newEvent{
			Type:      attendance.EventCheckIn,
			At:        now,
			SessionID: sessionID,
			Source:    attendance.SourceManual,
			Note:      req.Note,
		})
		if err != nil {
			return err
		}

		if day.FirstCheckIn == nil && req.IsWFH != nil {
			day.IsWFH = req.IsWFH
		}
		day.OpenSession(now)

		day, err = s.days.Update(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to update attendance log: %w", err)
		}
		if err := s.profiles.SetAvailability(ctx, req.AccountID, true, now); err != nil {
			return err
		}

		resp = attendance.TrackResponse{Attendance: mapDayToResponse(day), Event: mapEventToResponse(event)}
		return nil
	})
	if err != nil {
		return attendance.TrackResponse{}, err
	}

	s.emit(ctx, notification.EventCheckedIn, req.AccountID, resp)
	return resp, nil
}

// CheckOut implements attendance.TrackerService. An open break is closed at
// the same instant before the session is.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TrackResponse{}, err
	}
	now := s.now()
	date := dateutil.DayKey(now, s.loc)

	var resp attendance.TrackResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByAccountAndDate(ctx, req.AccountID, date)
		if err != nil {
			return err
		}
		if !day.HasOpenSession {
			return attendance.ErrNotCheckedIn
		}

		events, err := s.events.ListByAttendanceLog(ctx, day.ID)
		if err != nil {
			return fmt.Errorf("failed to list check events: %w", err)
		}
		sessions := attendance.BuildSessionLedger(events)
		sessionID := sessions.OpenSessionID()
		if sessionID == "" {
			return fmt.Errorf("attendance log %s flags an open session with none in its events: %w",
				day.ID, attendance.ErrInvariantViolation)
		}
		session, _ := sessions.Get(sessionID)

		if day.HasOpenBreak {
			breakEnd, minutes, err := s.closeOpenBreak(ctx, day, events, now, req.Note)
			if err != nil {
				return err
			}
			events = append(events, breakEnd)
			day.CloseBreak(minutes)
		}

		event, err := s.appendEvent(ctx, day, newEvent{
			Type:      attendance.EventCheckOut,
			At:        now,
			SessionID: sessionID,
			Source:    attendance.SourceManual,
			Note:      req.Note,
		})
		if err != nil {
			return err
		}
		events = append(events, event)

		day.CloseSession(now, dateutil.MinutesBetween(session.CheckIn.CheckedAt, now))
		s.reconcile(&day, events)

		day, err = s.days.Update(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to update attendance log: %w", err)
		}
		if err := s.profiles.SetAvailability(ctx, req.AccountID, false, now); err != nil {
			return err
		}

		resp = attendance.TrackResponse{Attendance: mapDayToResponse(day), Event: mapEventToResponse(event)}
		return nil
	})
	if err != nil {
		return attendance.TrackResponse{}, err
	}

	s.emit(ctx, notification.EventCheckedOut, req.AccountID, resp)
	return resp, nil
}

// StartBreak implements attendance.TrackerService.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.BreakStartRequest) (attendance.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TrackResponse{}, err
	}
	now := s.now()
	date := dateutil.DayKey(now, s.loc)
	breakType := attendance.BreakType(req.BreakType)

	var resp attendance.TrackResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByAccountAndDate(ctx, req.AccountID, date)
		if err != nil {
			return err
		}
		if !day.HasOpenSession {
			return attendance.ErrBreakOutsideWork
		}
		if day.HasOpenBreak {
			return attendance.ErrBreakAlreadyOpen
		}

		sessionID, err := newID()
		if err != nil {
			return err
		}
		event, err := s.appendEvent(ctx, day, newEvent{
			Type:      attendance.EventBreakStart,
			At:        now,
			SessionID: sessionID,
			Source:    attendance.SourceManual,
			Note:      req.Note,
			BreakType: &breakType,
		})
		if err != nil {
			return err
		}

		day.OpenBreak()
		day, err = s.days.Update(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to update attendance log: %w", err)
		}

		resp = attendance.TrackResponse{Attendance: mapDayToResponse(day), Event: mapEventToResponse(event)}
		return nil
	})
	if err != nil {
		return attendance.TrackResponse{}, err
	}

	s.emit(ctx, notification.EventBreakStarted, req.AccountID, resp)
	return resp, nil
}

// EndBreak implements attendance.TrackerService.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.BreakEndRequest) (attendance.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TrackResponse{}, err
	}
	now := s.now()
	date := dateutil.DayKey(now, s.loc)

	var resp attendance.TrackResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByAccountAndDate(ctx, req.AccountID, date)
		if err != nil {
			return err
		}
		if !day.HasOpenBreak {
			return attendance.ErrNoOpenBreak
		}

		events, err := s.events.ListByAttendanceLog(ctx, day.ID)
		if err != nil {
			return fmt.Errorf("failed to list check events: %w", err)
		}

		event, minutes, err := s.closeOpenBreak(ctx, day, events, now, req.Note)
		if err != nil {
			return err
		}
		events = append(events, event)

		day.CloseBreak(minutes)
		s.reconcile(&day, events)

		day, err = s.days.Update(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to update attendance log: %w", err)
		}

		resp = attendance.TrackResponse{Attendance: mapDayToResponse(day), Event: mapEventToResponse(event)}
		return nil
	})
	if err != nil {
		return attendance.TrackResponse{}, err
	}

	s.emit(ctx, notification.EventBreakEnded, req.AccountID, resp)
	return resp, nil
}

// closeOpenBreak writes the BREAK_END pairing the day's open break.
func (s *AttendanceServiceImpl) closeOpenBreak(ctx context.Context, day attendance.Day, events []attendance.CheckEvent, at time.Time, note *string) (attendance.CheckEvent, int, error) {
	breaks := attendance.BuildBreakLedger(events)
	open, ok := breaks.Get(breaks.OpenBreakID())
	if !ok {
		return attendance.CheckEvent{}, 0, fmt.Errorf("attendance log %s flags an open break with none in its events: %w",
			day.ID, attendance.ErrInvariantViolation)
	}

	breakType := open.BreakType
	event, err := s.appendEvent(ctx, day, newEvent{
		Type:      attendance.EventBreakEnd,
		At:        at,
		SessionID: open.SessionID,
		Source:    attendance.SourceManual,
		Note:      note,
		BreakType: &breakType,
	})
	if err != nil {
		return attendance.CheckEvent{}, 0, err
	}

	return event, dateutil.MinutesBetween(open.Start.CheckedAt, at), nil
}

// GetTodayStatus implements attendance.TrackerService.
func (s *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, accountID string) (attendance.TodayStatusResponse, error) {
	date := dateutil.DayKey(s.clock.Now(), s.loc)
	resp := attendance.TodayStatusResponse{
		Date:       dateutil.FormatDay(date),
		Events:     []attendance.CheckEventResponse{},
		Sessions:   []attendance.SessionResponse{},
		Breaks:     []attendance.BreakResponse{},
		CanCheckIn: true,
	}

	day, err := s.days.GetByAccountAndDate(ctx, accountID, date)
	if err != nil {
		if errors.Is(err, attendance.ErrDayNotFound) {
			return resp, nil
		}
		return attendance.TodayStatusResponse{}, err
	}

	events, err := s.events.ListByAttendanceLog(ctx, day.ID)
	if err != nil {
		return attendance.TodayStatusResponse{}, fmt.Errorf("failed to list check events: %w", err)
	}
	sessions := attendance.BuildSessionLedger(events)
	breaks := attendance.BuildBreakLedger(events)

	dayResp := mapDayToResponse(day)
	resp.Attendance = &dayResp
	resp.Events = mapEventsToResponse(events)
	resp.Sessions = mapSessionsToResponse(sessions)
	resp.Breaks = mapBreaksToResponse(breaks)
	resp.OpenSessionID = nonEmpty(sessions.OpenSessionID())
	resp.OpenBreakID = nonEmpty(breaks.OpenBreakID())
	resp.CanCheckIn = !day.HasOpenSession
	resp.CanCheckOut = day.HasOpenSession
	resp.CanStartBreak = day.HasOpenSession && !day.HasOpenBreak
	resp.CanEndBreak = day.HasOpenBreak

	return resp, nil
}

// GetHistory implements attendance.TrackerService. A month without a year
// refers to the current year.
func (s *AttendanceServiceImpl) GetHistory(ctx context.Context, filter attendance.HistoryFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	query := attendance.DayQuery{AccountID: &filter.AccountID, Page: filter.Page, Limit: filter.Limit}

	if filter.Month != nil || filter.Year != nil {
		year := s.clock.Now().In(s.loc).Year()
		if filter.Year != nil {
			year = *filter.Year
		}

		first, last := dateutil.YearRange(year)
		if filter.Month != nil {
			first, last = dateutil.MonthRange(year, time.Month(*filter.Month))
		}
		from, to := dateutil.FormatDay(first), dateutil.FormatDay(last)
		query.From, query.To = &from, &to
	}

	days, total, err := s.days.List(ctx, query)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get attendance history: %w", err)
	}

	return buildListResponse(days, total, filter.Page, filter.Limit), nil
}
