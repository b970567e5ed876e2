package attendance

import (
	"context"
	"time"
)

// DayRepository persists the per-account-per-day aggregate. Reads made with
// a transactional ctx lock the row until the transaction ends.
type DayRepository interface {
	// Create inserts a new aggregate. Returns ErrDayAlreadyExists when the
	// (account, date) pair is already taken.
	Create(ctx context.Context, day Day) (Day, error)

	// GetByID returns ErrDayNotFound when absent.
	GetByID(ctx context.Context, id string) (Day, error)

	// GetByAccountAndDate returns ErrDayNotFound when absent.
	GetByAccountAndDate(ctx context.Context, accountID string, date time.Time) (Day, error)

	Update(ctx context.Context, day Day) (Day, error)

	// List returns one page of aggregates, newest first, plus the total count.
	List(ctx context.Context, query DayQuery) ([]Day, int64, error)
}

// CheckEventRepository stores the immutable event log of each day.
type CheckEventRepository interface {
	Create(ctx context.Context, event CheckEvent) (CheckEvent, error)

	// GetByID returns ErrCheckEventNotFound when absent.
	GetByID(ctx context.Context, id string) (CheckEvent, error)

	// ListByAttendanceLog returns the day's events ordered by checked_at.
	ListByAttendanceLog(ctx context.Context, attendanceLogID string) ([]CheckEvent, error)

	Delete(ctx context.Context, id string) error
}
