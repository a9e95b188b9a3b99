// Command sts-batch analyses sit-to-stand CSV recordings offline and
// exports the results for research review.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/db"
	"github.com/banshee-data/sitstand.report/internal/norms"
	"github.com/banshee-data/sitstand.report/internal/pipeline"
	"github.com/banshee-data/sitstand.report/internal/version"
)

var (
	mass        = flag.Float64("mass", 0, "Subject mass in kg (required)")
	height      = flag.Float64("height", 0, "Subject height in m (required)")
	age         = flag.Int("age", 0, "Subject age in years (required)")
	sex         = flag.String("sex", "", "Subject sex, F or M (required)")
	configPath  = flag.String("config", "", "Tuning config JSON (defaults when empty)")
	workers     = flag.Int("workers", runtime.NumCPU(), "Recordings analysed in parallel")
	reportPath  = flag.String("report", "", "SQLite report file to append runs to")
	parquetDir  = flag.String("parquet", "", "Directory for per-recording tilt Parquet files")
	plotDir     = flag.String("plot", "", "Directory for per-recording tilt PNG plots")
	listen      = flag.String("listen", "", "After exporting, serve /debug/ over the report on this address")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: sts-batch -mass KG -height M -age N -sex F|M [flags] recording.csv...\n\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(run())
}

// run executes the batch and returns the process exit status.
func run() int {
	if *showVersion {
		fmt.Println(version.String("sts-batch"))
		return 0
	}
	if flag.NArg() == 0 {
		usage()
		return 2
	}
	if *mass <= 0 || *height <= 0 || *age < 0 {
		log.Fatal("-mass and -height must be positive and -age non-negative")
	}
	subjectSex, ok := norms.ParseSex(*sex)
	if !ok {
		log.Fatalf("-sex must be F or M, got %q", *sex)
	}
	if *listen != "" && *reportPath == "" {
		log.Fatal("-listen requires -report")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	for _, dir := range []string{*parquetDir, *plotDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	opts := batchOptions{
		Subject:    pipeline.Request{MassKg: *mass, HeightM: *height, Age: *age, Sex: subjectSex},
		Config:     cfg,
		Workers:    *workers,
		ParquetDir: *parquetDir,
		PlotDir:    *plotDir,
	}
	if *reportPath != "" {
		reportDB, err := db.NewDB(*reportPath)
		if err != nil {
			log.Fatalf("Failed to open report: %v", err)
		}
		defer reportDB.Close()
		opts.Report = reportDB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcomes, err := runBatch(ctx, flag.Args(), opts)
	if err != nil {
		log.Printf("batch aborted: %v", err)
	}
	failed := printSummary(os.Stdout, outcomes)

	if *listen != "" && err == nil {
		serveReport(ctx, opts.Report, *listen)
	}
	if err != nil || failed > 0 {
		return 1
	}
	return 0
}

// serveReport exposes the report through the tailsql debug browser until
// ctx is cancelled.
func serveReport(ctx context.Context, reportDB *db.DB, addr string) {
	mux := http.NewServeMux()
	reportDB.AttachAdminRoutes(mux)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Printf("serving report on http://%s/debug/", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
