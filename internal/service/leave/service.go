package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
)

type Dependencies struct {
	Transactor  database.Transactor
	Leaves      leave.LeaveRequestRepository
	Days        attendance.DayRepository
	Notifier    notification.Notifier
	Clock       dateutil.Clock
	Logger      *slog.Logger
	// EmitTimeout bounds each notification publish; zero means notification.EmitTimeout.
	EmitTimeout time.Duration
}

type LeaveServiceImpl struct {
	tx       database.Transactor
	leaves   leave.LeaveRequestRepository
	days     attendance.DayRepository
	notifier notification.Notifier
	clock    dateutil.Clock
	logger   *slog.Logger

	emitTimeout time.Duration
}

func NewLeaveService(deps Dependencies) leave.LeaveService {
	s := &LeaveServiceImpl{
		tx:       deps.Transactor,
		leaves:   deps.Leaves,
		days:     deps.Days,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		logger:   deps.Logger,

		emitTimeout: deps.EmitTimeout,
	}
	if s.clock == nil {
		s.clock = dateutil.SystemClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.emitTimeout <= 0 {
		s.emitTimeout = notification.EmitTimeout
	}
	return s
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	startDate, err := dateutil.ParseDay(req.StartDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	endDate := startDate
	if req.EndDate != nil {
		endDate, err = dateutil.ParseDay(*req.EndDate)
		if err != nil {
			return leave.LeaveRequestResponse{}, fmt.Errorf("failed to parse end date: %w", err)
		}
	}

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.leaves.LockAccount(ctx, req.AccountID); err != nil {
			return fmt.Errorf("failed to lock account leave requests: %w", err)
		}

		blocking, err := s.leaves.FindBlocking(ctx, req.AccountID, startDate, endDate)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave requests: %w", err)
		}
		if len(blocking) > 0 {
			return leave.ErrLeaveRequestOverlap
		}

		created, err = s.leaves.Create(ctx, leave.LeaveRequest{
			AccountID: req.AccountID,
			Type:      leave.LeaveType(req.Type),
			StartDate: startDate,
			EndDate:   &endDate,
			Reason:    req.Reason,
			Status:    leave.LeaveRequestStatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	resp := mapLeaveRequestToResponse(created)
	s.emit(ctx, notification.EventLeaveApplied, created.AccountID, resp)
	return resp, nil
}

// Decide implements leave.LeaveService. Approval writes the leave status
// onto every covered attendance day, replacing whatever status it had.
func (s *LeaveServiceImpl) Decide(ctx context.Context, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	decidedAt := s.clock.Now().UTC().Truncate(time.Microsecond)

	var decided leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.leaves.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if request.Status != leave.LeaveRequestStatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		request.Status = leave.LeaveRequestStatus(req.Decision)
		request.DecidedBy = &req.DecidedBy
		request.DecidedAt = &decidedAt
		request.DecisionReason = req.Reason

		decided, err = s.leaves.Update(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}

		if decided.Status == leave.LeaveRequestStatusApproved {
			return s.reconcileDays(ctx, decided)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request decided",
		"leave_request_id", decided.ID, "status", decided.Status, "decided_by", req.DecidedBy)

	resp := mapLeaveRequestToResponse(decided)
	s.emit(ctx, notification.EventLeaveDecided, decided.AccountID, resp)
	return resp, nil
}

// reconcileDays upserts the attendance day of every date the approved
// request covers.
func (s *LeaveServiceImpl) reconcileDays(ctx context.Context, request leave.LeaveRequest) error {
	status := attendance.StatusAbsent
	if request.Type == leave.LeaveTypeHalfDay {
		status = attendance.StatusHalfDay
	}
	note := fmt.Sprintf("%s leave approved: %s", request.Type, request.Reason)

	for _, date := range request.Days() {
		day, err := s.days.GetByAccountAndDate(ctx, request.AccountID, date)
		if errors.Is(err, attendance.ErrDayNotFound) {
			day, err = s.days.Create(ctx, attendance.NewDay(request.AccountID, date))
			if errors.Is(err, attendance.ErrDayAlreadyExists) {
				day, err = s.days.GetByAccountAndDate(ctx, request.AccountID, date)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to load attendance log for %s: %w", dateutil.FormatDay(date), err)
		}

		day.ApplyLeave(status, note)
		if _, err := s.days.Update(ctx, day); err != nil {
			return fmt.Errorf("failed to update attendance log for %s: %w", dateutil.FormatDay(date), err)
		}
	}

	return nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, req leave.CancelLeaveRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var cancelled leave.LeaveRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.leaves.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if request.AccountID != req.AccountID {
			return leave.ErrLeaveRequestNotOwned
		}
		if request.Status != leave.LeaveRequestStatusPending {
			return leave.ErrLeaveRequestNotCancellable
		}

		cancelled = request
		return s.leaves.Delete(ctx, request.ID)
	})
	if err != nil {
		return err
	}

	s.emit(ctx, notification.EventLeaveCancel, cancelled.AccountID, mapLeaveRequestToResponse(cancelled))
	return nil
}

// GetLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeave(ctx context.Context, id string, viewer leave.Viewer) (leave.LeaveRequestResponse, error) {
	request, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !viewer.IsAdmin && request.AccountID != viewer.AccountID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotVisible
	}
	return mapLeaveRequestToResponse(request), nil
}

// ListMyLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMyLeaves(ctx context.Context, accountID string, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	filter.AccountID = &accountID
	return s.ListLeaves(ctx, filter)
}

// ListLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaves(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	query := leave.Query{AccountID: filter.AccountID, Page: filter.Page, Limit: filter.Limit}
	if filter.Status != nil {
		status := leave.LeaveRequestStatus(*filter.Status)
		query.Status = &status
	}

	requests, total, err := s.leaves.List(ctx, query)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	return buildListResponse(requests, total, filter.Page, filter.Limit), nil
}

func (s *LeaveServiceImpl) emit(ctx context.Context, event notification.EventName, accountID string, payload interface{}) {
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
