package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/audit"
	"github.com/sethkline/studio-scheduler-sub004/internal/clock"
	"github.com/sethkline/studio-scheduler-sub004/internal/config"
	"github.com/sethkline/studio-scheduler-sub004/internal/database"
	"github.com/sethkline/studio-scheduler-sub004/internal/handler"
	"github.com/sethkline/studio-scheduler-sub004/internal/middleware"
	"github.com/sethkline/studio-scheduler-sub004/internal/repository"
	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
	"github.com/sethkline/studio-scheduler-sub004/internal/router"
	"github.com/sethkline/studio-scheduler-sub004/internal/session"
	"github.com/sethkline/studio-scheduler-sub004/migrations"
)

func main() {
	// Load a local .env if present; real deployments set the variables
	// in the environment and have no such file.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	store := repository.NewStore(db)
	clk := clock.NewSystem()

	opts := []reservation.Option{
		reservation.WithInitialHold(cfg.InitialHold),
		reservation.WithExtensionIncrement(cfg.ExtensionIncrement),
		reservation.WithMaxSeats(cfg.MaxSeats),
	}
	if cfg.AMQPURL != "" {
		opts = append(opts, reservation.WithAuditPublisher(audit.NewAMQPPublisher(cfg.AMQPURL)))
		// The consumer reconnects on its own; it only ever returns when
		// the broker URL is unusable, which we log and live without.
		go func() {
			if err := audit.StartConsumer(cfg.AMQPURL); err != nil {
				log.Printf("[audit] consumer stopped: %v", err)
			}
		}()
	}
	manager := reservation.NewManager(store, clk, opts...)
	suggester := reservation.NewSuggester(store, clk)

	// Background sweep so lapsed holds free their seats even when no
	// request touches the event.
	go reservation.NewReaper(manager, cfg.SweepInterval).Run(ctx)

	var limiter echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewSeatHandler(manager, suggester))
	router.RegisterReservations(e, handler.NewReservationHandler(manager),
		session.NewJWTVerifier(cfg.JWTSecret), cfg.InternalKey, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
