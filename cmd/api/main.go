package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/dateutil"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/notifier"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
)

const version = "1.0.0"

type repositories struct {
	transactor database.Transactor
	days       attendance.DayRepository
	events     attendance.CheckEventRepository
	profiles   employee.ProfileRepository
	leaves     leave.LeaveRequestRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		App:     "attendance-backend",
		Version: version,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repos, err := openRepositories(cfg)
	if err != nil {
		return err
	}
	defer repos.close()
	log.Info("storage ready", "store", cfg.App.Store)

	hub := sse.NewHub()
	publisher, err := newPublisher(ctx, cfg, hub, log)
	if err != nil {
		return err
	}
	emitter := notifier.Multi{publisher, notifier.NewLog(log)}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	deps := attendanceService.Dependencies{
		Transactor: repos.transactor,
		Days:       repos.days,
		Events:     repos.events,
		Profiles:   repos.profiles,
		Notifier:   emitter,
		Clock:      dateutil.SystemClock{},
		Location:   loc,
		Logger:     log,
	}
	trackerService := attendanceService.NewTrackerService(deps)
	correctionService := attendanceService.NewCorrectionService(deps)
	leaveSvc := leaveService.NewLeaveService(leaveService.Dependencies{
		Transactor: repos.transactor,
		Leaves:     repos.leaves,
		Days:       repos.days,
		Notifier:   emitter,
		Clock:      dateutil.SystemClock{},
		Logger:     log,
	})

	attendanceHandler := appHTTP.NewAttendanceHandler(trackerService, correctionService)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	notificationHandler := appHTTP.NewNotificationHandler(hub, JWTService)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Logger: log, AllowedOrigins: cfg.CORS.AllowedOrigins},
		JWTService,
		attendanceHandler,
		leaveHandler,
		notificationHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(cfg *config.Config) (repositories, error) {
	if cfg.App.Store == config.StoreMemory {
		store := memory.NewStore()
		return repositories{
			transactor: store,
			days:       memory.NewDayRepository(store),
			events:     memory.NewCheckEventRepository(store),
			profiles:   memory.NewProfileRepository(store),
			leaves:     memory.NewLeaveRequestRepository(store),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	return repositories{
		transactor: postgresql.NewTransactor(db),
		days:       postgresql.NewDayRepository(db),
		events:     postgresql.NewCheckEventRepository(db),
		profiles:   postgresql.NewProfileRepository(db),
		leaves:     postgresql.NewLeaveRequestRepository(db),
		close:      db.Close,
	}, nil
}

// newPublisher returns the notifier services write to. With Redis enabled
// every instance publishes to the shared channel and relays it into its own
// hub; otherwise events go straight to the local hub.
func newPublisher(ctx context.Context, cfg *config.Config, hub *sse.Hub, log *slog.Logger) (notification.Notifier, error) {
	if !cfg.Redis.Enabled {
		return hub, nil
	}

	client, err := notifier.NewRedisClient(ctx, notifier.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	publisher := notifier.NewRedis(client, cfg.Redis.Channel, log)
	go func() {
		defer client.Close()
		if err := publisher.Relay(ctx, hub); err != nil {
			log.Error("notification relay stopped", "error", err)
		}
	}()
	return publisher, nil
}
