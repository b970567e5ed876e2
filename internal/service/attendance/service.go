package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
	"github.com/google/uuid"
)

// Dependencies wires the attendance services to their collaborators.
type Dependencies struct {
	Transactor  database.Transactor
	Days        attendance.DayRepository
	Events      attendance.CheckEventRepository
	Profiles    employee.ProfileRepository
	Notifier    notification.Notifier
	Clock       dateutil.Clock
	Location    *time.Location
	Logger      *slog.Logger
	// EmitTimeout bounds each notification publish; zero means notification.EmitTimeout.
	EmitTimeout time.Duration
}

// AttendanceServiceImpl implements both the tracker and the correction
// engine; they share the same aggregate plumbing.
type AttendanceServiceImpl struct {
	tx       database.Transactor
	days     attendance.DayRepository
	events   attendance.CheckEventRepository
	profiles employee.ProfileRepository
	notifier notification.Notifier
	clock    dateutil.Clock
	loc      *time.Location
	logger   *slog.Logger

	emitTimeout time.Duration
}

func newService(deps Dependencies) *AttendanceServiceImpl {
	s := &AttendanceServiceImpl{
		tx:       deps.Transactor,
		days:     deps.Days,
		events:   deps.Events,
		profiles: deps.Profiles,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		loc:      deps.Location,
		logger:   deps.Logger,

		emitTimeout: deps.EmitTimeout,
	}
	if s.clock == nil {
		s.clock = dateutil.SystemClock{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.emitTimeout <= 0 {
		s.emitTimeout = notification.EmitTimeout
	}
	return s
}

func NewTrackerService(deps Dependencies) attendance.TrackerService {
	return newService(deps)
}

func NewCorrectionService(deps Dependencies) attendance.CorrectionService {
	return newService(deps)
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// loadOrCreateDay returns the locked aggregate for (accountID, date),
// creating it when absent. Losing a creation race falls back to reading
// the winner's row.
func (s *AttendanceServiceImpl) loadOrCreateDay(ctx context.Context, accountID string, date time.Time) (attendance.Day, error) {
	day, err := s.days.GetByAccountAndDate(ctx, accountID, date)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, attendance.ErrDayNotFound) {
		return attendance.Day{}, err
	}

	day, err = s.days.Create(ctx, attendance.NewDay(accountID, date))
	if errors.Is(err, attendance.ErrDayAlreadyExists) {
		s.logger.Debug("attendance log created concurrently, retrying as update",
			"account_id", accountID, "date", dateutil.FormatDay(date))
		return s.days.GetByAccountAndDate(ctx, accountID, date)
	}
	return day, err
}

type newEvent struct {
	Type      attendance.EventType
	At        time.Time
	SessionID string
	Source    attendance.EventSource
	Note      *string
	BreakType *attendance.BreakType
	EditedBy  *string
}

func (s *AttendanceServiceImpl) appendEvent(ctx context.Context, day attendance.Day, in newEvent) (attendance.CheckEvent, error) {
	event, err := s.events.Create(ctx, attendance.CheckEvent{
		AttendanceLogID: day.ID,
		AccountID:       day.AccountID,
		Date:            day.Date,
		CheckedAt:       in.At,
		Type:            in.Type,
		SessionID:       in.SessionID,
		Source:          in.Source,
		Note:            in.Note,
		BreakType:       in.BreakType,
		EditedBy:        in.EditedBy,
	})
	if err != nil {
		return attendance.CheckEvent{}, fmt.Errorf("failed to append %s event: %w", in.Type, err)
	}
	return event, nil
}

// replay rebuilds every derived field of day from its stored events and
// persists the result.
func (s *AttendanceServiceImpl) replay(ctx context.Context, day attendance.Day) (attendance.Day, []attendance.CheckEvent, error) {
	events, err := s.events.ListByAttendanceLog(ctx, day.ID)
	if err != nil {
		return attendance.Day{}, nil, fmt.Errorf("failed to list check events: %w", err)
	}

	if n := attendance.BuildSessionLedger(events).OpenSessionCount(); n > 1 {
		s.logger.Warn("attendance log has more than one open session",
			"attendance_log_id", day.ID, "open_sessions", n)
	}

	day.ApplySummary(attendance.Derive(events))

	updated, err := s.days.Update(ctx, day)
	if err != nil {
		return attendance.Day{}, nil, fmt.Errorf("failed to update attendance log: %w", err)
	}
	return updated, events, nil
}

// reconcile falls back to a full derivation when the incrementally
// maintained aggregate disagrees with its events.
func (s *AttendanceServiceImpl) reconcile(day *attendance.Day, events []attendance.CheckEvent) {
	if err := day.CheckInvariants(events); err != nil {
		s.logger.Warn("attendance log drifted from its events, re-deriving",
			"attendance_log_id", day.ID, "error", err)
		day.ApplySummary(attendance.Derive(events))
	}
}

// emit publishes to the admin room and the account's own room. It runs
// after commit, so failures are logged and dropped.
func (s *AttendanceServiceImpl) emit(ctx context.Context, event notification.EventName, accountID string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.emitTimeout)
	defer cancel()
	now := s.clock.Now().UTC()

	for _, room := range []string{notification.RoomAdmin, notification.AccountRoom(accountID)} {
		msg := notification.Message{Room: room, Event: event, Payload: payload, EmittedAt: now}
		if err := s.notifier.Emit(ctx, msg); err != nil {
			s.logger.Warn("failed to emit notification", "event", event, "room", room, "error", err)
		}
	}
}

// now is truncated to the storage precision of a timestamptz so the
// incremental path and a replay see identical instants.
func (s *AttendanceServiceImpl) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}
