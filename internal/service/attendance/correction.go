package attendance

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ManualCheckIn implements attendance.CorrectionService.
func (s *AttendanceServiceImpl) ManualCheckIn(ctx context.Context, req attendance.ManualCheckInRequest) (attendance.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TrackResponse{}, err
	}
	checkedAt, _ := validator.IsValidDateTime(req.CheckedAt)
	checkedAt = checkedAt.UTC()
	if checkedAt.After(s.now()) {
		return attendance.TrackResponse{}, attendance.ErrCheckInInFuture
	}
	date := dateutil.DayKey(checkedAt, s.loc)

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
			At:        checkedAt,
			SessionID: sessionID,
			Source:    attendance.SourceAdmin,
			Note:      req.Note,
			EditedBy:  &req.PerformedBy,
		})
		if err != nil {
			return err
		}

		day, _, err = s.replay(ctx, day)
		if err != nil {
			return err
		}

		resp = attendance.TrackResponse{Attendance: mapDayToResponse(day), Event: mapEventToResponse(event)}
		return nil
	})
	if err != nil {
		return attendance.TrackResponse{}, err
	}

	s.logger.Info("manual check-in recorded",
		"account_id", req.AccountID, "performed_by", req.PerformedBy, "checked_at", checkedAt)
	s.emit(ctx, notification.EventCorrected, req.AccountID, resp)
	return resp, nil
}

// ManualCheckOut implements attendance.CorrectionService. The target is
// SessionID when given, otherwise the day's open session.
func (s *AttendanceServiceImpl) ManualCheckOut(ctx context.Context, req attendance.ManualCheckOutRequest) (attendance.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TrackResponse{}, err
	}
	checkedAt, _ := validator.IsValidDateTime(req.CheckedAt)
	checkedAt = checkedAt.UTC()
	if checkedAt.After(s.now()) {
		return attendance.TrackResponse{}, attendance.ErrCheckOutInFuture
	}
	date := dateutil.DayKey(checkedAt, s.loc)

	var resp attendance.TrackResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByAccountAndDate(ctx, req.AccountID, date)
		if err != nil {
			return err
		}

		events, err := s.events.ListByAttendanceLog(ctx, day.ID)
		if err != nil {
			return fmt.Errorf("failed to list check events: %w", err)
		}
		sessions := attendance.BuildSessionLedger(events)

		var session attendance.Session
		if req.SessionID != nil {
			found, ok := sessions.Get(*req.SessionID)
			if !ok || found.CheckIn == nil {
				return attendance.ErrSessionNotFound
			}
			if found.CheckOut != nil {
				return attendance.ErrSessionAlreadyClosed
			}
			session = found
		} else {
			openID := sessions.OpenSessionID()
			if openID == "" {
				return attendance.ErrNotCheckedIn
			}
			session, _ = sessions.Get(openID)
		}

		if !checkedAt.After(session.CheckIn.CheckedAt) {
			return attendance.ErrCheckoutBeforeCheckin
		}

		// A break still open when its session closes ends with it. One that
		// started after checkedAt is left to the ledger, which gives it no time.
		breaks := attendance.BuildBreakLedger(events)
		open, ok := breaks.Get(breaks.OpenBreakID())
		if ok && open.WorkSessionID == session.SessionID && !checkedAt.Before(open.Start.CheckedAt) {
			breakType := open.BreakType
			if _, err := s.appendEvent(ctx, day, newEvent{
				Type:      attendance.EventBreakEnd,
				At:        checkedAt,
				SessionID: open.SessionID,
				Source:    attendance.SourceAdmin,
				BreakType: &breakType,
				EditedBy:  &req.PerformedBy,
			}); err != nil {
				return err
			}
		}

		event, err := s.appendEvent(ctx, day, newEvent{
			Type:      attendance.EventCheckOut,
			At:        checkedAt,
			SessionID: session.SessionID,
			Source:    attendance.SourceAdmin,
			Note:      req.Note,
			EditedBy:  &req.PerformedBy,
		})
		if err != nil {
			return err
		}

		day, _, err = s.replay(ctx, day)
		if err != nil {
			return err
		}

		resp = attendance.TrackResponse{Attendance: mapDayToResponse(day), Event: mapEventToResponse(event)}
		return nil
	})
	if err != nil {
		return attendance.TrackResponse{}, err
	}

	s.logger.Info("manual check-out recorded",
		"account_id", req.AccountID, "performed_by", req.PerformedBy, "session_id", resp.Event.SessionID)
	s.emit(ctx, notification.EventCorrected, req.AccountID, resp)
	return resp, nil
}

// DeleteCheckEvent implements attendance.CorrectionService.
func (s *AttendanceServiceImpl) DeleteCheckEvent(ctx context.Context, req attendance.DeleteCheckEventRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var resp attendance.AttendanceResponse
	var deleted attendance.CheckEvent
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		event, err := s.events.GetByID(ctx, req.EventID)
		if err != nil {
			return err
		}
		deleted = event

		day, err := s.days.GetByID(ctx, event.AttendanceLogID)
		if err != nil {
			return err
		}

		if err := s.events.Delete(ctx, event.ID); err != nil {
			return err
		}
		if err := s.deletePartner(ctx, event); err != nil {
			return err
		}

		day, _, err = s.replay(ctx, day)
		if err != nil {
			return err
		}

		resp = mapDayToResponse(day)
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.logger.Info("check event deleted",
		"event_id", deleted.ID, "type", deleted.Type, "attendance_log_id", deleted.AttendanceLogID,
		"performed_by", req.PerformedBy)
	s.emit(ctx, notification.EventCorrected, resp.AccountID, resp)
	return resp, nil
}

// Override implements attendance.CorrectionService.
// deletePartner removes the closing event of a deleted opening event, so a
// CHECK_OUT or BREAK_END never outlives the event it pairs with.
func (s *AttendanceServiceImpl) deletePartner(ctx context.Context, opening attendance.CheckEvent) error {
	var closing attendance.EventType
	switch opening.Type {
	case attendance.EventCheckIn:
		closing = attendance.EventCheckOut
	case attendance.EventBreakStart:
		closing = attendance.EventBreakEnd
	default:
		return nil
	}

	events, err := s.events.ListByAttendanceLog(ctx, opening.AttendanceLogID)
	if err != nil {
		return fmt.Errorf("failed to list check events: %w", err)
	}
	for _, ev := range events {
		if ev.SessionID != opening.SessionID || ev.Type != closing {
			continue
		}
		if err := s.events.Delete(ctx, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *AttendanceServiceImpl) Override(ctx context.Context, req attendance.OverrideRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var status *attendance.DayStatus
	if req.Status != nil {
		st := attendance.DayStatus(*req.Status)
		status = &st
	}

	var resp attendance.AttendanceResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		day.Override(status, req.Note, req.PerformedBy)

		day, err = s.days.Update(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to update attendance log: %w", err)
		}

		resp = mapDayToResponse(day)
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.emit(ctx, notification.EventOverridden, resp.AccountID, resp)
	return resp, nil
}

// Recompute implements attendance.CorrectionService.
func (s *AttendanceServiceImpl) Recompute(ctx context.Context, id string, performedBy string) (attendance.AttendanceResponse, error) {
	if validator.IsEmpty(id) {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{Field: "id", Message: "id is required"}}
	}

	var resp attendance.AttendanceResponse
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := s.days.GetByID(ctx, id)
		if err != nil {
			return err
		}

		day, _, err = s.replay(ctx, day)
		if err != nil {
			return err
		}

		resp = mapDayToResponse(day)
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.logger.Info("attendance log recomputed", "attendance_log_id", id, "performed_by", performedBy)
	return resp, nil
}

// ListAttendance implements attendance.CorrectionService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	query := attendance.DayQuery{
		AccountID: filter.AccountID,
		From:      filter.StartDate,
		To:        filter.EndDate,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}
	if filter.Date != nil && *filter.Date != "" {
		query.From, query.To = filter.Date, filter.Date
	}
	if filter.Status != nil {
		st := attendance.DayStatus(*filter.Status)
		query.Status = &st
	}

	days, total, err := s.days.List(ctx, query)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	return buildListResponse(days, total, filter.Page, filter.Limit), nil
}

// GetAttendance implements attendance.CorrectionService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceDetailResponse, error) {
	day, err := s.days.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceDetailResponse{}, err
	}

	events, err := s.events.ListByAttendanceLog(ctx, day.ID)
	if err != nil {
		return attendance.AttendanceDetailResponse{}, fmt.Errorf("failed to list check events: %w", err)
	}

	return attendance.AttendanceDetailResponse{
		Attendance: mapDayToResponse(day),
		Events:     mapEventsToResponse(events),
		Sessions:   mapSessionsToResponse(attendance.BuildSessionLedger(events)),
		Breaks:     mapBreaksToResponse(attendance.BuildBreakLedger(events)),
	}, nil
}
