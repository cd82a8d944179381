package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the non-handler inputs of the router.
type RouterConfig struct {
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
}

type Handlers struct {
	Attendance AttendanceHandler
	Location   LocationHandler
	Setting    SettingHandler
	Logbook    LogbookHandler
	Report     ReportHandler
}

func NewRouter(cfg RouterConfig, tokenAuth *jwtauth.JWTAuth, rateLimiter *middleware.RateLimiter, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	// Client IP feeds location resolution; RemoteAddr must be the real client
	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(middleware.AuthRequired)

			r.Route("/attendances", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Use(rateLimiter.Middleware)
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/today", h.Attendance.Today)
					r.Get("/my", h.Attendance.GetMyAttendance)
					// ownership and division scope are checked by the service
					r.Get("/{id}", h.Attendance.Get)
					r.Get("/{id}/photos/{kind}", h.Attendance.Photo)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
				r.With(middleware.RequirePermission(user.PermissionReportExport)).Get("/export", h.Report.ExportMonthlyRecap)
				r.With(middleware.RequirePermission(user.PermissionAttendanceClose)).Post("/auto-close", h.Attendance.AutoClose)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceApprove))
					r.Post("/{id}/approve", h.Attendance.Approve)
					r.Post("/{id}/reject", h.Attendance.Reject)
				})
			})

			r.Route("/logbooks", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLogbookCreate))
				r.Post("/", h.Logbook.Create)
				r.Get("/my", h.Logbook.ListMine)
			})

			r.Route("/office-locations", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLocationManage))
				r.Get("/", h.Location.List)
				r.Post("/", h.Location.Create)
				r.Post("/resolve", h.Location.Resolve)
				r.Get("/{id}", h.Location.Get)
				r.Put("/{id}", h.Location.Update)
				r.Delete("/{id}", h.Location.Delete)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionSettingsManage))
				r.Get("/time-window", h.Setting.GetTimeWindow)
				r.Put("/time-window", h.Setting.UpdateTimeWindow)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportExport))
				r.Get("/attendance", h.Report.GetMonthlyRecap)
			})
		})
	})

	return r
}
