package http

import (
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers; the stream authenticates by query token.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/notifications/stream-token", notificationHandler.StreamToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Post("/breaks/start", attendanceHandler.StartBreak)
				r.Post("/breaks/end", attendanceHandler.EndBreak)
				r.Get("/today", attendanceHandler.Today)
				r.Get("/history", attendanceHandler.History)

				// Manager or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", attendanceHandler.List)
					r.Post("/manual/check-in", attendanceHandler.ManualCheckIn)
					r.Post("/manual/check-out", attendanceHandler.ManualCheckOut)
					r.Delete("/events/{eventID}", attendanceHandler.DeleteEvent)
					r.Get("/{id}", attendanceHandler.Get)
					r.Patch("/{id}/override", attendanceHandler.Override)
					r.Post("/{id}/recompute", attendanceHandler.Recompute)
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", leaveHandler.Apply)
				r.Get("/my", leaveHandler.ListMy)
				r.Get("/{id}", leaveHandler.Get)
				r.Delete("/{id}", leaveHandler.Cancel)

				// Manager or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", leaveHandler.List)
					r.Post("/{id}/decision", leaveHandler.Decide)
				})
			})
		})
	})

	return r
}
