// Command sts-server serves the 30-second sit-to-stand analysis over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/sitstand.report/internal/api"
	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/db"
	"github.com/banshee-data/sitstand.report/internal/version"
)

var (
	listen      = flag.String("listen", ":8001", "Listen address")
	configPath  = flag.String("config", "", "Tuning config JSON (defaults when empty)")
	dbPath      = flag.String("db", "", "SQLite file to record runs in (disabled when empty)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("sts-server"))
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		log.Printf("loaded tuning config from %s", *configPath)
	}

	var store api.Recorder
	var reportDB *db.DB
	if *dbPath != "" {
		var err error
		if reportDB, err = db.NewDB(*dbPath); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer reportDB.Close()
		store = reportDB
	}

	srv := api.NewServer(cfg, store)
	mux := srv.ServeMux()
	srv.AttachDebugRoutes(mux)
	if reportDB != nil {
		reportDB.AttachAdminRoutes(mux)
	}

	server := &http.Server{
		Addr:              *listen,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("%s listening on %s", version.String("sts-server"), *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}
