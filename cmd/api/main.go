package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"todo-backend/internal/analytics"
	"todo-backend/internal/config"
	"todo-backend/internal/db"
	"todo-backend/internal/export"
	"todo-backend/internal/scheduler"
	"todo-backend/internal/tasks"
)

// ----------------------
//        MAIN
// ----------------------

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatal(err)
	}
	log.Println("Shutdown complete.")
}

// run serves until ctx is done. Everything it opens is released before it
// returns.
func run(ctx context.Context, cfg *config.Config) error {
	store, err := db.Open(ctx, cfg.StoreLocation(), db.Options{
		MongoDatabase:   cfg.MongoDatabase,
		MongoCollection: cfg.MongoCollection,
	})
	if err != nil {
		return fmt.Errorf("❌ Failed to connect store: %w", err)
	}
	defer store.Close()

	log.Println("✅ Connected to store")

	if cfg.StoreHeartbeat > 0 {
		sched := scheduler.New(time.Local)
		if _, err := sched.ScheduleInterval(cfg.StoreHeartbeat, scheduler.Heartbeat(store, 5*time.Second)); err != nil {
			return fmt.Errorf("schedule heartbeat: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	srv := &http.Server{
		Handler:           newHandler(cfg, store, analytics.NewLogRecorder(nil)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("🚀 API server is running on %s", cfg.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func newHandler(cfg *config.Config, store db.Store, events analytics.Recorder) http.Handler {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Printf("[WARN] health: %v", err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	})

	// ----- TODOS API -----
	h := tasks.New(store, events)
	h.StrictPriority = cfg.StrictPriority
	h.Register(mux)

	mux.HandleFunc("GET /todos/export", export.Handler(export.NewExporter(store)))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type", "X-Platform", "X-App-Version", "X-Session-Id", "Idempotency-Key",
		},
	})

	return accessLog(c.Handler(mux))
}

// ----------------------
//     ACCESS LOG
// ----------------------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
