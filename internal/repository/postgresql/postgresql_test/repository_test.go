package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayRepository_CreateConflict(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewDayRepository(db)
	ctx := context.Background()
	accountID := uuid.NewString()

	created, err := repo.Create(ctx, attendance.NewDay(accountID, date(2026, 2, 2)))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, attendance.StatusAbsent, created.Status)
	assert.Equal(t, attendance.SourceDerived, created.StatusSource)

	_, err = repo.Create(ctx, attendance.NewDay(accountID, date(2026, 2, 2)))
	assert.ErrorIs(t, err, attendance.ErrDayAlreadyExists)

	got, err := repo.GetByAccountAndDate(ctx, accountID, date(2026, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.Date.Equal(date(2026, 2, 2)))

	_, err = repo.GetByAccountAndDate(ctx, accountID, date(2026, 2, 3))
	assert.ErrorIs(t, err, attendance.ErrDayNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	days := postgresql.NewDayRepository(db)
	events := postgresql.NewCheckEventRepository(db)
	tx := postgresql.NewTransactor(db)
	ctx := context.Background()
	accountID := uuid.NewString()
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		day, err := days.Create(ctx, attendance.NewDay(accountID, date(2026, 2, 2)))
		if err != nil {
			return err
		}
		if _, err := events.Create(ctx, attendance.CheckEvent{
			AttendanceLogID: day.ID,
			AccountID:       accountID,
			Date:            day.Date,
			CheckedAt:       time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
			Type:            attendance.EventCheckIn,
			SessionID:       uuid.NewString(),
			Source:          attendance.SourceManual,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = days.GetByAccountAndDate(ctx, accountID, date(2026, 2, 2))
	assert.ErrorIs(t, err, attendance.ErrDayNotFound)
}

func TestCheckEventRepository_OrderAndDelete(t *testing.T) {
	db := newTestDatabase(t)
	days := postgresql.NewDayRepository(db)
	events := postgresql.NewCheckEventRepository(db)
	ctx := context.Background()
	accountID := uuid.NewString()

	day, err := days.Create(ctx, attendance.NewDay(accountID, date(2026, 2, 2)))
	require.NoError(t, err)

	sessionID := uuid.NewString()
	checkOut, err := events.Create(ctx, attendance.CheckEvent{
		AttendanceLogID: day.ID, AccountID: accountID, Date: day.Date,
		CheckedAt: time.Date(2026, 2, 2, 17, 0, 0, 0, time.UTC),
		Type:      attendance.EventCheckOut, SessionID: sessionID, Source: attendance.SourceManual,
	})
	require.NoError(t, err)
	_, err = events.Create(ctx, attendance.CheckEvent{
		AttendanceLogID: day.ID, AccountID: accountID, Date: day.Date,
		CheckedAt: time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
		Type:      attendance.EventCheckIn, SessionID: sessionID, Source: attendance.SourceManual,
	})
	require.NoError(t, err)

	list, err := events.ListByAttendanceLog(ctx, day.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, attendance.EventCheckIn, list[0].Type)
	assert.Equal(t, attendance.EventCheckOut, list[1].Type)

	require.NoError(t, events.Delete(ctx, checkOut.ID))
	assert.ErrorIs(t, events.Delete(ctx, checkOut.ID), attendance.ErrCheckEventNotFound)

	list, err = events.ListByAttendanceLog(ctx, day.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLeaveRequestRepository_FindBlocking(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewLeaveRequestRepository(db)
	ctx := context.Background()
	accountID := uuid.NewString()

	end := date(2026, 3, 12)
	_, err := repo.Create(ctx, leave.LeaveRequest{
		AccountID: accountID, Type: leave.LeaveTypeMultiDay,
		StartDate: date(2026, 3, 10), EndDate: &end,
		Reason: "trip", Status: leave.LeaveRequestStatusApproved,
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, leave.LeaveRequest{
		AccountID: accountID, Type: leave.LeaveTypeSingleDay,
		StartDate: date(2026, 4, 1),
		Reason:    "open ended", Status: leave.LeaveRequestStatusPending,
	})
	require.NoError(t, err)
	rejectedEnd := date(2026, 3, 20)
	_, err = repo.Create(ctx, leave.LeaveRequest{
		AccountID: accountID, Type: leave.LeaveTypeSingleDay,
		StartDate: rejectedEnd, EndDate: &rejectedEnd,
		Reason: "rejected", Status: leave.LeaveRequestStatusRejected,
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"touches last day", date(2026, 3, 12), date(2026, 3, 13), 1},
		{"gap between", date(2026, 3, 13), date(2026, 3, 25), 0},
		{"after open ended start", date(2026, 5, 1), date(2026, 5, 1), 1},
		{"before everything", date(2026, 1, 1), date(2026, 1, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindBlocking(ctx, accountID, tt.start, tt.end)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestProfileRepository_SetAvailability(t *testing.T) {
	db := newTestDatabase(t)
	repo := postgresql.NewProfileRepository(db)
	ctx := context.Background()
	accountID := uuid.NewString()

	_, err := repo.GetByAccountID(ctx, accountID)
	assert.ErrorIs(t, err, employee.ErrProfileNotFound)

	at := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetAvailability(ctx, accountID, true, at))
	require.NoError(t, repo.SetAvailability(ctx, accountID, false, at.Add(time.Hour)))

	p, err := repo.GetByAccountID(ctx, accountID)
	require.NoError(t, err)
	assert.False(t, p.IsAvailable)
	require.NotNil(t, p.AvailabilityUpdatedAt)
	assert.True(t, p.AvailabilityUpdatedAt.Equal(at.Add(time.Hour)))
}
