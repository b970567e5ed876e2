package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	// Manager or admin
	List(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
	}
}

// Apply implements LeaveHandler.
func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req leave.ApplyLeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AccountID = identity.AccountID

	result, err := h.leaveService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

// ListMy implements LeaveHandler.
func (h *leaveHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	filter := leave.LeaveRequestFilter{
		Status: optionalStringQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	result, err := h.leaveService.ListMyLeaves(r.Context(), identity.AccountID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	viewer := leave.Viewer{AccountID: identity.AccountID, IsAdmin: identity.Role.CanManage()}
	result, err := h.leaveService.GetLeave(r.Context(), chi.URLParam(r, "id"), viewer)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Cancel implements LeaveHandler.
func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	req := leave.CancelLeaveRequest{ID: chi.URLParam(r, "id"), AccountID: identity.AccountID}
	if err := h.leaveService.Cancel(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", nil)
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := leave.LeaveRequestFilter{
		AccountID: optionalStringQueryParam(r, "account_id"),
		Status:    optionalStringQueryParam(r, "status"),
		Page:      getIntQueryParam(r, "page", 1),
		Limit:     getIntQueryParam(r, "limit", 20),
	}

	result, err := h.leaveService.ListLeaves(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Decide implements LeaveHandler.
func (h *leaveHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	var req leave.DecideLeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.DecidedBy = identity.AccountID

	result, err := h.leaveService.Decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request decided", result)
}
