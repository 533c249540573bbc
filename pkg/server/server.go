// Package server wires storage, handlers and background tasks into the
// running HTTP service.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"pulseboard/pkg/config"
	"pulseboard/pkg/export"
	"pulseboard/pkg/ingest"
	"pulseboard/pkg/query"
	"pulseboard/pkg/server/monitor"
)

// Run opens the store, starts the HTTP server and blocks until SIGINT or
// SIGTERM arrives, then shuts down gracefully: in-flight requests drain
// while background tasks stop, and the store closes last.
func Run(cfg *config.Config) error {
	store, err := OpenStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// WebSocket hub for live point streaming
	hub := ingest.NewHub()
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	log.Println("📡 WebSocket hub started for live point streaming")

	// Only badger needs scheduled GC; SQL backends manage their own space.
	if gc, ok := store.(gcStore); ok {
		wg.Add(1)
		go runStoreGC(ctx, gc, &wg)
	}

	// Export store growth as Prometheus gauges.
	mon := monitor.NewStorageMonitor(store)
	wg.Add(1)
	go mon.Run(ctx, &wg)

	ingestHandler := ingest.NewHandler(store, hub)
	queryHandler := query.NewHandler(store)
	exportHandler := export.NewHandler(store)

	router := mux.NewRouter()
	SetupRoutes(router, cfg, store, ingestHandler, queryHandler, exportHandler, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
		log.Printf("📊 Dashboard: http://localhost:%s/", cfg.Port)
		if cfg.APIKey != "" {
			log.Println("🔑 Ingest and import require the X-API-Key header")
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		cancel()
		_ = store.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Println("🛑 Shutdown signal received...")

	// Cancel the context first so the hub and GC loop stop taking work
	// while in-flight requests drain below.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Server shutdown error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Println("✅ Background tasks stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("⚠️  Background tasks did not stop in time")
	}

	if err := store.Close(); err != nil {
		log.Printf("⚠️  Storage close error: %v", err)
	}

	log.Println("👋 Server exited cleanly")
	return nil
}
