package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/presence-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/postgresql"
	reconcilerService "github.com/cmlabs-hris/presence-backend-go/internal/service/reconciler"
	sessionService "github.com/cmlabs-hris/presence-backend-go/internal/service/session"
	timesheetService "github.com/cmlabs-hris/presence-backend-go/internal/service/timesheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Presence.ReferenceTimezone)
	if err != nil {
		fmt.Println("Error loading reference timezone:", err)
		return
	}

	dayRecordRepo := postgresql.NewDayRecordRepository(db)
	sessionAuditRepo := postgresql.NewSessionAuditRepository(db)

	clk := clock.NewSystemClock()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	timesheetSvc := timesheetService.NewTimesheetService(dayRecordRepo, clk, loc)
	sessionSvc := sessionService.NewSessionService(sessionAuditRepo, clk, cfg.Presence.HeartbeatTimeout)
	reconcilerSvc := reconcilerService.NewService(dayRecordRepo, sessionAuditRepo, clk, loc)

	sessionHandler := appHTTP.NewSessionHandler(sessionSvc, JWTService)
	timesheetHandler := appHTTP.NewTimesheetHandler(timesheetSvc)
	opsHandler := appHTTP.NewOpsHandler(reconcilerSvc)

	router := appHTTP.NewRouter(
		JWTService,
		sessionHandler,
		timesheetHandler,
		opsHandler,
		cfg.App.FrontendURL,
		cfg.App.Env,
	)

	scheduler := cron.NewScheduler()
	jobs := cron.NewPresenceJobs(
		reconcilerSvc,
		sessionSvc,
		cfg.Presence.ReconcileInterval,
		cfg.Presence.SessionSweepInterval,
	)
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
}
