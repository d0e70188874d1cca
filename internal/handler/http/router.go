package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	JWTService jwt.Service,
	sessionHandler SessionHandler,
	timesheetHandler TimesheetHandler,
	opsHandler OpsHandler,
	frontendURL string,
	env string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "presence-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// The refresh exchange authenticates with the refresh-token cookie,
		// not an access token, so it stays outside the verified group.
		r.Post("/sessions/refresh", sessionHandler.Refresh)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/login", sessionHandler.Login)
				r.Post("/heartbeat", sessionHandler.Heartbeat)
				r.Post("/logout", sessionHandler.Logout)
			})

			r.Route("/presence", func(r chi.Router) {
				r.Post("/start", timesheetHandler.Start)
				r.Post("/break", timesheetHandler.BreakStart)
				r.Post("/resume", timesheetHandler.BreakEnd)
				r.Post("/stop", timesheetHandler.Stop)
				r.Get("/today", timesheetHandler.GetToday)
				r.Get("/months/{month}", timesheetHandler.GetMonth)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/sessions/{userID}/force-logout", sessionHandler.ForceLogout)
				r.Post("/reconcile", opsHandler.ReconcileNow)
			})
		})
	})
	return r
}
