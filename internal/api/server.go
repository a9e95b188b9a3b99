package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"tailscale.com/tsweb"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/db"
	"github.com/banshee-data/sitstand.report/internal/httputil"
	"github.com/banshee-data/sitstand.report/internal/norms"
	"github.com/banshee-data/sitstand.report/internal/pipeline"
	"github.com/banshee-data/sitstand.report/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxBodyBytes bounds a request body. A 60 s recording at 100 Hz with
// verbose keys is well under 4 MiB.
const maxBodyBytes = 32 << 20

// Recorder persists finished runs. *db.DB implements it.
type Recorder interface {
	RecordRun(ctx context.Context, r db.Run) error
}

type runFunc func(ctx context.Context, req pipeline.Request, cfg *config.TuningConfig) (*pipeline.ResultSummary, error)

type Server struct {
	cfg   *config.TuningConfig
	store Recorder // optional
	run   runFunc
}

// NewServer returns a server analysing requests with cfg. store may be nil.
func NewServer(cfg *config.TuningConfig, store Recorder) *Server {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Server{cfg: cfg, store: store, run: pipeline.Run}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/processar", s.handleProcess)
	mux.HandleFunc("/processar/grafico", s.handleChart)
	mux.HandleFunc("/normas", s.handleNorms)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// AttachDebugRoutes mounts the effective configuration, the normative
// table and build metadata under /debug/.
func (s *Server) AttachDebugRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	debug.KV("Version", version.Version)
	debug.KV("Git SHA", version.GitSHA)
	debug.KV("Build time", version.BuildTime)
	debug.Handle("config", "Effective tuning configuration", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, s.cfg.Effective())
	}))
	debug.Handle("normas", "Normative sit-to-stand table", http.HandlerFunc(s.handleNorms))
}

func (s *Server) handleNorms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, norms.Table())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{"status": "ok", "version": version.Version})
}
