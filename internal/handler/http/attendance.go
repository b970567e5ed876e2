package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	// Own attendance
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)

	// Corrections (manager or admin)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ManualCheckIn(w http.ResponseWriter, r *http.Request)
	ManualCheckOut(w http.ResponseWriter, r *http.Request)
	DeleteEvent(w http.ResponseWriter, r *http.Request)
	Override(w http.ResponseWriter, r *http.Request)
	Recompute(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	tracker    attendance.TrackerService
	correction attendance.CorrectionService
}

func NewAttendanceHandler(tracker attendance.TrackerService, correction attendance.CorrectionService) AttendanceHandler {
	return &attendanceHandlerImpl{
		tracker:    tracker,
		correction: correction,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.CheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AccountID = identity.AccountID

	result, err := h.tracker.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.CheckOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AccountID = identity.AccountID

	result, err := h.tracker.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.BreakStartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AccountID = identity.AccountID

	result, err := h.tracker.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break started", result)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.BreakEndRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AccountID = identity.AccountID

	result, err := h.tracker.EndBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	result, err := h.tracker.GetTodayStatus(r.Context(), identity.AccountID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	filter := attendance.HistoryFilter{
		AccountID: identity.AccountID,
		Month:     optionalIntQueryParam(r, "month"),
		Year:      optionalIntQueryParam(r, "year"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
	}

	result, err := h.tracker.GetHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		AccountID: optionalStringQueryParam(r, "account_id"),
		Date:      optionalStringQueryParam(r, "date"),
		StartDate: optionalStringQueryParam(r, "start_date"),
		EndDate:   optionalStringQueryParam(r, "end_date"),
		Status:    optionalStringQueryParam(r, "status"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
	}

	result, err := h.correction.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.correction.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ManualCheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ManualCheckIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.ManualCheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.PerformedBy = identity.AccountID

	result, err := h.correction.ManualCheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Manual check in recorded", result)
}

// ManualCheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ManualCheckOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.ManualCheckOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.PerformedBy = identity.AccountID

	result, err := h.correction.ManualCheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Manual check out recorded", result)
}

// DeleteEvent implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	req := attendance.DeleteCheckEventRequest{
		EventID:     chi.URLParam(r, "eventID"),
		PerformedBy: identity.AccountID,
	}

	result, err := h.correction.DeleteCheckEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check event deleted", result)
}

// Override implements AttendanceHandler.
func (h *attendanceHandlerImpl) Override(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req attendance.OverrideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.PerformedBy = identity.AccountID

	result, err := h.correction.Override(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance overridden", result)
}

// Recompute implements AttendanceHandler.
func (h *attendanceHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	result, err := h.correction.Recompute(r.Context(), chi.URLParam(r, "id"), identity.AccountID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance recomputed", result)
}
