package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query Query) ([]LeaveRequest, int64, error)

	// FindBlocking returns the account's PENDING or APPROVED requests that
	// overlap [start, end].
	FindBlocking(ctx context.Context, accountID string, start, end time.Time) ([]LeaveRequest, error)

	// LockAccount serialises leave writes for one account until the
	// surrounding transaction ends.
	LockAccount(ctx context.Context, accountID string) error
}
