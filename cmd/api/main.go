package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/adpoint/ad-scheduler/internal/adapter/compositor"
	"github.com/adpoint/ad-scheduler/internal/adapter/handler"
	"github.com/adpoint/ad-scheduler/internal/adapter/locker"
	"github.com/adpoint/ad-scheduler/internal/adapter/notifier"
	"github.com/adpoint/ad-scheduler/internal/adapter/repository/postgres"
	"github.com/adpoint/ad-scheduler/internal/config"
	"github.com/adpoint/ad-scheduler/internal/core/services"
	"github.com/adpoint/ad-scheduler/internal/logger"
	"github.com/adpoint/ad-scheduler/internal/platform/database"
	"github.com/adpoint/ad-scheduler/internal/platform/scheduler"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel)

	tz, err := time.LoadLocation(cfg.ScheduleTZ)
	if err != nil {
		log.WithError(err).Fatalf("invalid schedule timezone %q", cfg.ScheduleTZ)
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db after retries")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		DB:   0,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	log.Info("redis connected")

	reservationRepo := postgres.NewReservationRepository(db)
	playlistRepo := postgres.NewPlaylistRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	adRepo := postgres.NewAdRepository(db)

	capacityLocker := locker.NewRedisLocker(redisClient)
	videoCompositor := compositor.NewKafkaCompositor(cfg.KafkaBroker, cfg.CompositorTopic)
	defer func() {
		if err := videoCompositor.Close(); err != nil {
			log.WithError(err).Error("failed to close compositor writer")
		}
	}()
	operatorNotifier := notifier.NewAMQPNotifier(cfg.AMQPURL)

	availabilityService := services.NewAvailabilityService(reservationRepo, adRepo, locationRepo, capacityLocker, tz, log)
	composerService := services.NewComposerService(playlistRepo, log)
	orchestratorService := services.NewOrchestratorService(
		locationRepo, reservationRepo, playlistRepo, composerService, videoCompositor,
		operatorNotifier, redisClient, tz, cfg.ComposeWorkers, log,
	)

	jobs := scheduler.New(log)
	if err := jobs.RegisterInterval("expire-pending-reservations", cfg.SweepInterval, orchestratorService.RunExpirySweep); err != nil {
		log.WithError(err).Fatal("failed to register expiry sweep")
	}
	if err := jobs.RegisterDaily("compose-daily-playlists", cfg.ComposeHour, cfg.ComposeMinute, tz, func(ctx context.Context) {
		if err := orchestratorService.RunDailyComposition(ctx); err != nil {
			log.WithError(err).Error("daily composition run failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to register daily composition")
	}
	defer jobs.StopAll()

	bookingHandler := handler.NewBookingHandler(availabilityService, playlistRepo, tz)

	mux := http.NewServeMux()

	mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			bookingHandler.ListBookings(w, r)
			return
		}
		bookingHandler.CreateBooking(w, r)
	})
	mux.HandleFunc("/bookings/confirm", bookingHandler.ConfirmBooking)
	mux.HandleFunc("/availability", bookingHandler.GetAvailability)
	mux.HandleFunc("/playlists", bookingHandler.GetPlaylists)
	mux.HandleFunc("/health", bookingHandler.Health)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server startup failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exiting")
}
