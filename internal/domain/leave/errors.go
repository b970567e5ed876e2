package leave

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound         = apperror.NotFound("leave request not found")
	ErrLeaveRequestAlreadyProcessed = apperror.Conflict("leave request has already been decided")
	ErrLeaveRequestOverlap          = apperror.Conflict("leave request overlaps an existing pending or approved request")
	ErrLeaveRequestNotOwned         = apperror.Forbidden("you can only cancel your own leave requests")
	ErrLeaveRequestNotVisible       = apperror.Forbidden("you are not allowed to view this leave request")
	ErrLeaveRequestNotCancellable   = apperror.Conflict("only pending leave requests can be cancelled")
)
