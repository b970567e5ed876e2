package leave

import (
	"context"
)

// LeaveService applies, decides and cancels leave requests. Approval
// reconciles the covered attendance days in the same transaction.
type LeaveService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	Decide(ctx context.Context, req DecideLeaveRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, req CancelLeaveRequest) error

	GetLeave(ctx context.Context, id string, viewer Viewer) (LeaveRequestResponse, error)
	ListMyLeaves(ctx context.Context, accountID string, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListLeaves(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
}
