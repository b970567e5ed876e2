package leave

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
)

func mapLeaveRequestToResponse(r leave.LeaveRequest) leave.LeaveRequestResponse {
	var endDate *string
	if r.EndDate != nil {
		formatted := dateutil.FormatDay(*r.EndDate)
		endDate = &formatted
	}

	var decidedAt *string
	if r.DecidedAt != nil {
		formatted := r.DecidedAt.UTC().Format(time.RFC3339)
		decidedAt = &formatted
	}

	return leave.LeaveRequestResponse{
		ID:             r.ID,
		AccountID:      r.AccountID,
		Type:           string(r.Type),
		StartDate:      dateutil.FormatDay(r.StartDate),
		EndDate:        endDate,
		TotalDays:      len(r.Days()),
		Reason:         r.Reason,
		Status:         string(r.Status),
		DecidedBy:      r.DecidedBy,
		DecidedAt:      decidedAt,
		DecisionReason: r.DecisionReason,
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func buildListResponse(requests []leave.LeaveRequest, total int64, page, limit int) leave.ListLeaveRequestResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapLeaveRequestToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages,
		Showing:       showing,
		LeaveRequests: responses,
	}
}
