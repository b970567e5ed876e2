package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

const keepaliveInterval = 30 * time.Second

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	subscriber notification.Subscriber
	jwtService jwt.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(subscriber notification.Subscriber, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		subscriber: subscriber,
		jwtService: jwtService,
	}
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// StreamToken generates a short-lived token for SSE connections
func (h *notificationHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrReject(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(identity.AccountID, identity.Role)
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream handles SSE connection for real-time attendance and leave events.
// Managers and admins also receive the admin room.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// SSE doesn't support custom headers
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	identity, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	rooms := []string{notification.AccountRoom(identity.AccountID)}
	if identity.Role.CanManage() {
		rooms = append(rooms, notification.RoomAdmin)
	}

	events, cleanup := h.subscriber.Subscribe(rooms...)
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"account_id\":%q}\n\n", identity.AccountID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
