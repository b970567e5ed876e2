package attendance

import (
	"errors"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"
)

// Attendance domain errors
var (
	// Tracker errors
	ErrAlreadyCheckedIn = apperror.Conflict("you already have an open work session")
	ErrNotCheckedIn     = apperror.Conflict("you have not checked in yet")
	ErrBreakAlreadyOpen = apperror.Conflict("a break is already in progress")
	ErrNoOpenBreak      = apperror.Conflict("no break is in progress")
	ErrBreakOutsideWork = apperror.Conflict("cannot start a break without an open work session")

	// Correction errors
	ErrSessionNotFound       = apperror.NotFound("work session not found")
	ErrSessionAlreadyClosed  = apperror.Conflict("work session is already checked out")
	ErrCheckoutBeforeCheckin = apperror.Validation("check-out time must be after the session check-in time")
	ErrCheckInInFuture       = apperror.Validation("check-in time cannot be in the future")
	ErrCheckOutInFuture      = apperror.Validation("check-out time cannot be in the future")
	ErrNothingToOverride     = apperror.Validation("status or note is required")

	// General errors
	ErrDayNotFound        = apperror.NotFound("attendance record not found")
	ErrCheckEventNotFound = apperror.NotFound("check event not found")

	// ErrDayAlreadyExists is returned by DayRepository.Create when another
	// writer created the (account, date) row first. Callers retry as update.
	ErrDayAlreadyExists = errors.New("attendance record already exists for this date")

	// ErrInvariantViolation means the aggregate disagrees with its events.
	ErrInvariantViolation = errors.New("attendance aggregate is inconsistent with its events")
)
