package attendance

import (
	"context"
)

// TrackerService is the employee-facing state machine for one account-day.
type TrackerService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (TrackResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (TrackResponse, error)
	StartBreak(ctx context.Context, req BreakStartRequest) (TrackResponse, error)
	EndBreak(ctx context.Context, req BreakEndRequest) (TrackResponse, error)

	// GetTodayStatus reports today's aggregate, its sessions and what the
	// account is allowed to do next.
	GetTodayStatus(ctx context.Context, accountID string) (TodayStatusResponse, error)

	// GetHistory lists the account's days, newest first.
	GetHistory(ctx context.Context, filter HistoryFilter) (ListAttendanceResponse, error)
}

// CorrectionService holds the admin operations. Every mutation other than
// Override ends in a full replay of the affected day.
type CorrectionService interface {
	ManualCheckIn(ctx context.Context, req ManualCheckInRequest) (TrackResponse, error)
	ManualCheckOut(ctx context.Context, req ManualCheckOutRequest) (TrackResponse, error)
	DeleteCheckEvent(ctx context.Context, req DeleteCheckEventRequest) (AttendanceResponse, error)
	Override(ctx context.Context, req OverrideRequest) (AttendanceResponse, error)

	// Recompute replays a day's events without changing them. Safe to repeat.
	Recompute(ctx context.Context, id string, performedBy string) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetAttendance(ctx context.Context, id string) (AttendanceDetailResponse, error)
}
