package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/balri/busstop/internal/config"
	"github.com/balri/busstop/internal/handlers"
	"github.com/balri/busstop/internal/metrics"
	"github.com/balri/busstop/internal/models"
	"github.com/balri/busstop/internal/realtime"
	"github.com/balri/busstop/internal/repository"
	"github.com/balri/busstop/internal/schedule"
	"github.com/balri/busstop/internal/token"
)

// timetableStore is the full set of timetable operations the server
// needs, satisfied by both the SQLite and Postgres repositories.
type timetableStore interface {
	schedule.TimetableStore
	LoadStops(ctx context.Context) ([]models.Stop, error)
	Ping(ctx context.Context) error
}

func main() {
	// Load .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %q: %v", cfg.Timezone, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Timetable store: Postgres when DATABASE_URL is set, SQLite otherwise
	var store timetableStore
	if cfg.DatabaseURL != "" {
		pg, err := repository.NewPGScheduleRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pg.Close()
		log.Println("Connected to Postgres timetable store")
		store = pg
	} else {
		sqliteDB, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite database: %v", err)
		}
		defer sqliteDB.Close()
		log.Printf("Connected to SQLite database: %s", cfg.DatabasePath)
		store = repository.NewScheduleRepository(sqliteDB.GetDB())
	}

	stops, err := store.LoadStops(ctx)
	if err != nil {
		log.Fatalf("Failed to load stops: %v", err)
	}
	if len(stops) == 0 {
		log.Fatal("No stops in timetable store; run cmd/import-gtfs first")
	}
	log.Printf("Loaded %d stops", len(stops))

	collector := metrics.NewCollector()

	tokens := token.NewStore(cfg.TokenTTL, cfg.TokenSingleUse)
	tokens.StartSweeper(ctx, cfg.SweepInterval)

	sightings := realtime.NewSightingCache(cfg.SightingWindow)
	feed := realtime.NewClient(cfg.FeedURL, cfg.RouteID, cfg.ArrivalGrace, cfg.FeedTimeout, sightings)
	reconciler := schedule.NewReconciler(store, sightings, loc, cfg.Lookahead, cfg.ArrivalGrace)

	statusHandler := handlers.NewStatusHandler(tokens, feed, reconciler, stops, collector, cfg)
	tokenHandler := handlers.NewTokenHandler(tokens, collector)
	healthHandler := handlers.NewHealthHandler(store)

	// Setup router
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", healthHandler.GetHealth)
	r.Handle("/metrics", collector.Handler())
	r.Get("/api/token", tokenHandler.GetToken)
	r.Post("/api/status", statusHandler.PostStatus)

	// Static file serving (if configured)
	if cfg.StaticDir != "" {
		fs := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fs)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on :%s (route %s, proximity %s)", cfg.Port, cfg.RouteID, cfg.ProximityMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Goodbye!")
}
