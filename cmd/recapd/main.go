package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/pursueapp/recap-engine/internal/adapters/cache"
	adapterHTTP "github.com/pursueapp/recap-engine/internal/adapters/handler/http"
	"github.com/pursueapp/recap-engine/internal/adapters/notifier"
	"github.com/pursueapp/recap-engine/internal/adapters/repository"
	"github.com/pursueapp/recap-engine/internal/core/domain"
	"github.com/pursueapp/recap-engine/internal/core/services"
	"github.com/pursueapp/recap-engine/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	serverPort := getEnv("PORT", "8080")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	var groupRepo domain.GroupRepository = repository.NewPostgresGroupRepository(db)

	rdb, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Warning: Redis unavailable, member cache and rate limiter disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
		groupRepo = repository.NewCachedGroupRepository(groupRepo, rdb)
	}

	goalRepo := repository.NewPostgresGoalRepository(db)
	completionRepo := repository.NewPostgresCompletionRepository(db)
	rollupRepo := repository.NewPostgresRollupRepository(db)
	activityRepo := repository.NewPostgresActivityRepository(db)
	heatRepo := repository.NewPostgresHeatRepository(db)
	recapSentRepo := repository.NewPostgresRecapSentRepository(db)
	notifRepo := repository.NewPostgresNotificationRepository(db)

	var sender workers.PushSender
	if endpoint := os.Getenv("PUSH_DELIVERY_URL"); endpoint != "" {
		sender = notifier.NewHTTPPushSender(endpoint)
	} else {
		log.Println("PUSH_DELIVERY_URL not set, pushes will only be logged.")
		sender = notifier.NewLogPushSender()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pushWorker := workers.NewPushWorker(sender)
	pushWorker.Start(ctx)

	statsService := services.NewStatsService(groupRepo, goalRepo, completionRepo, rollupRepo)
	streakService := services.NewStreakService(completionRepo)
	gateService := services.NewGateService(recapSentRepo)
	recapService := services.NewRecapService(
		groupRepo, goalRepo, activityRepo, heatRepo, recapSentRepo, notifRepo,
		statsService, streakService, gateService, pushWorker,
	)

	sweepInterval := workers.DefaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			sweepInterval = time.Duration(minutes) * time.Minute
		}
	}

	poolSize := workers.DefaultPoolSize
	if raw := os.Getenv("SWEEP_POOL_SIZE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			poolSize = n
		}
	}

	scheduler := workers.NewScheduler(groupRepo, recapService, sweepInterval, poolSize)
	scheduler.Start(ctx)

	tokenService := services.NewTokenService(
		os.Getenv("TOKEN_SECRET"),
		getEnv("TOKEN_ISSUER", "recap-engine"),
		1*time.Hour,
		os.Getenv("OPERATOR_KEY_HASH"),
	)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(tokenService),
		RecapHandler: adapterHTTP.NewRecapHandler(recapService, scheduler),
		TokenService: tokenService,
		DB:           db,
		Redis:        rdb,
		StartTime:    startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Recap Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
