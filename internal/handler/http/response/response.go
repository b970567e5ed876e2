package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type errorClass struct {
	status int
	code   string
}

// kindClasses maps error kinds to their wire status. Anything not listed is
// an internal error.
var kindClasses = map[apperror.Kind]errorClass{
	apperror.KindValidation: {http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	apperror.KindConflict:   {http.StatusConflict, "CONFLICT"},
	apperror.KindNotFound:   {http.StatusNotFound, "NOT_FOUND"},
	apperror.KindForbidden:  {http.StatusForbidden, "FORBIDDEN"},
}

var (
	unauthorized = errorClass{http.StatusUnauthorized, "UNAUTHORIZED"}
	badRequest   = errorClass{http.StatusBadRequest, "BAD_REQUEST"}
	internal     = errorClass{http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"}
)

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "status", statusCode, "error", err)
	}
}

func fail(w http.ResponseWriter, class errorClass, message string, details map[string]string) {
	writeJSON(w, class.status, Response{
		Error: &ErrorDetail{Code: class.code, Message: message, Details: details},
	})
}

func Success(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// BadRequest is for bodies and parameters that could not be decoded at all.
func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, badRequest, message, details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	fail(w, unauthorized, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	fail(w, internal, message, nil)
}

// HandleError writes err by its kind. Field errors keep their details;
// causes of internal errors are logged and never sent to the client.
func HandleError(w http.ResponseWriter, err error) {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		fail(w, kindClasses[apperror.KindValidation], "Validation failed", fields.ToMap())
		return
	}

	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenExpired) {
		fail(w, unauthorized, err.Error(), nil)
		return
	}

	class, ok := kindClasses[apperror.KindOf(err)]
	if !ok {
		slog.Error("unhandled error", "error", err)
		fail(w, internal, "An unexpected error occurred", nil)
		return
	}
	fail(w, class, apperror.Message(err), nil)
}
