package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/roomlab/roombook/internal/api"
	"github.com/roomlab/roombook/internal/audit"
	"github.com/roomlab/roombook/internal/auth"
	"github.com/roomlab/roombook/internal/config"
	"github.com/roomlab/roombook/internal/metrics"
	"github.com/roomlab/roombook/internal/ratelimit"
	"github.com/roomlab/roombook/internal/reservation"
	"github.com/roomlab/roombook/internal/room"
	"github.com/roomlab/roombook/internal/timetable"
	"github.com/roomlab/roombook/internal/user"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Roombook server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("connected to database")

	userStore := user.NewStore(pool)
	reservationStore := reservation.NewStore(pool)
	rooms := room.NewCatalog(cfg.Rooms)

	codec := auth.NewCodec(cfg.Session.Secret, cfg.Session.TTL)
	cookies := auth.CookieConfig{
		Name:     cfg.Session.CookieName,
		Path:     cfg.Session.Path,
		Secure:   cfg.Session.Secure,
		SameSite: cfg.SameSiteMode(),
		MaxAge:   int(cfg.Session.TTL.Seconds()),
	}

	loc := cfg.Location()
	reservationSvc := reservation.NewService(reservationStore, userStore, rooms)
	timetableSvc := timetable.NewService(reservationStore, loc)

	limiter := ratelimit.New(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)

	m := metrics.New()
	m.RegisterDBPoolCollector(func() (total, idle, acquired int32) {
		st := pool.Stat()
		return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
	})

	auditCollector := audit.NewCollector(audit.NewStore(pool), 50, 5*time.Second)
	go auditCollector.Start(ctx)

	router := api.NewRouter(api.RouterDeps{
		Users:          userStore,
		Directory:      user.NewAuthAdapter(userStore),
		Reservations:   reservationSvc,
		Timetable:      timetableSvc,
		Codec:          codec,
		Cookies:        cookies,
		Limiter:        limiter,
		Metrics:        m,
		Audit:          auditCollector,
		DB:             pool,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Location:       loc,
		DayStart:       cfg.Timetable.DayStart,
		DayEnd:         cfg.Timetable.DayEnd,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	auditCollector.Stop()
	return err
}
