package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/config"
	"github.com/spinhall/clubhouse/internal/database"
	"github.com/spinhall/clubhouse/internal/gallery"
	server "github.com/spinhall/clubhouse/internal/http"
	"github.com/spinhall/clubhouse/internal/ladder"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/notifier"
	"github.com/spinhall/clubhouse/internal/notifier/slack"
	"github.com/spinhall/clubhouse/internal/pubsub"
	"github.com/spinhall/clubhouse/internal/schedule"
	"github.com/spinhall/clubhouse/internal/tournament"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	clubStore := club.New(db)
	accessStore := access.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notif := slack.New(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	ps := pubsub.New(cfg.ProjectID)

	blobs, err := gallery.NewBlobStore(context.Background(), gallery.BlobConfig{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		AccessKeySecret: cfg.Storage.AccessKeySecret,
		Bucket:          cfg.Storage.Bucket,
		BaseURL:         cfg.Storage.BaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %s", err)
	}

	ladderSvc := ladder.New(clubStore, accessStore, metricsSvc, ps)
	tournamentStore := tournament.New(db, clubStore)
	tournamentEngine := tournament.NewEngine(tournamentStore, clubStore, accessStore, metricsSvc, ps)
	galleryStore := gallery.New(db)
	scheduleStore := schedule.New(db)

	s := server.NewServer(
		clubStore,
		ladderSvc,
		tournamentEngine,
		accessStore,
		galleryStore,
		blobs,
		scheduleStore,
		notif,
		metricsSvc,
		metricsHandler,
		cfg,
		ps,
	)

	startLeaderboardDigest(clubStore, notif, cfg.DryRun)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// startLeaderboardDigest posts the current leaderboard to the club channel
// every Sunday evening.
func startLeaderboardDigest(store club.ClubStore, notif notifier.Notifier, dryRun bool) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Error("Failed to create scheduler, leaderboard digest disabled", "error", err)
		return
	}

	_, err = sched.NewJob(
		gocron.WeeklyJob(1,
			gocron.NewWeekdays(time.Sunday),
			gocron.NewAtTimes(gocron.NewAtTime(18, 0, 0)),
		),
		gocron.NewTask(func() {
			ranked, err := store.Leaderboard()
			if err != nil {
				log.Error("Failed to load leaderboard for digest", "error", err)
				return
			}
			if err := notif.SendLeaderboard(ranked, dryRun); err != nil {
				log.Error("Failed to send leaderboard digest", "error", err)
			}
		}),
	)
	if err != nil {
		log.Error("Failed to schedule leaderboard digest", "error", err)
		return
	}

	sched.Start()
	log.Info("Leaderboard digest scheduled", "day", "Sunday", "time", "18:00")
}
