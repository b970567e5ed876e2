package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// identityOrReject returns the acting account, writing a 401 when the
// request carries none.
func identityOrReject(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return auth.Identity{}, false
	}
	return identity, true
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched so optional-body endpoints accept bare POSTs.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

func optionalIntQueryParam(r *http.Request, key string) *int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		// Out of range for every validator, so the caller gets a 422.
		intVal = -1
	}
	return &intVal
}

func optionalStringQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}
