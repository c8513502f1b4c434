package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/balri/busstop/internal/config"
	"github.com/balri/busstop/internal/gtfs"
	"github.com/balri/busstop/internal/repository"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	dbPath := flag.String("db", cfg.DatabasePath, "Path to SQLite database")
	zipPath := flag.String("gtfs", "data/gtfs.zip", "Path to GTFS zip file")
	routes := flag.String("routes", cfg.RouteID, "Comma-separated route ids to keep")
	flag.Parse()

	routeIDs := strings.Split(*routes, ",")
	for i := range routeIDs {
		routeIDs[i] = strings.TrimSpace(routeIDs[i])
	}

	database, err := repository.NewSQLiteDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	log.Printf("Importing %s (routes %v) into %s", *zipPath, routeIDs, *dbPath)

	data, err := gtfs.Parse(*zipPath)
	if err != nil {
		log.Fatalf("Failed to parse GTFS: %v", err)
	}

	filtered, routesByStop := gtfs.Filter(data, routeIDs)
	if len(filtered.Stops) == 0 {
		log.Fatalf("No stops matched routes %v; check the route ids", routeIDs)
	}

	if err := database.ImportStatic(ctx, filtered, routesByStop); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("SUCCESS: imported %d stops, %d trips, %d stop_times, %d calendars, %d calendar_dates",
		len(filtered.Stops), len(filtered.Trips), len(filtered.StopTimes),
		len(filtered.Calendars), len(filtered.CalendarDates))
}
