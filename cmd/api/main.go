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
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	locationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/location"
	logbookService "github.com/cmlabs-hris/attendance-backend-go/internal/service/logbook"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	settingService "github.com/cmlabs-hris/attendance-backend-go/internal/service/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/timewindow"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	clk := clock.New(cfg.Location())

	userRepo := postgresql.NewUserRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	officeLocationRepo := postgresql.NewOfficeLocationRepository(db)
	settingRepo := postgresql.NewSettingRepository(db)
	logbookRepo := postgresql.NewLogbookRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return fmt.Errorf("initializing local storage: %w", err)
	}
	photoSvc := file.NewPhotoService(fileStorage)

	resolver := locationService.NewResolver(officeLocationRepo)
	policy := timewindow.NewPolicy(settingRepo)
	closer := attendanceService.NewCloser(attendanceRepo, clk)

	jobs := cron.NewAttendanceJobs(closer, policy, clk)
	scheduler := cron.NewHandle(jobs.RegisterJobs)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer scheduler.Stop()

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		logbookRepo,
		userRepo,
		resolver,
		policy,
		photoSvc,
		clk,
	)
	officeLocationSvc := locationService.NewOfficeLocationService(officeLocationRepo)
	// A saved time window re-reads the auto checkout schedule
	settingSvc := settingService.NewSettingService(settingRepo, scheduler.Restart)
	logbookSvc := logbookService.NewLogbookService(logbookRepo, clk)
	reportSvc := reportService.NewReportService(reportRepo, clk)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go rateLimiter.Cleanup(ctx, 10*time.Minute)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService.JWTAuth(),
		rateLimiter,
		appHTTP.Handlers{
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, closer, photoSvc, clk),
			Location:   appHTTP.NewLocationHandler(officeLocationSvc, resolver),
			Setting:    appHTTP.NewSettingHandler(settingSvc),
			Logbook:    appHTTP.NewLogbookHandler(logbookSvc),
			Report:     appHTTP.NewReportHandler(reportSvc),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", cfg.App.Timezone, "env", cfg.App.Env)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
