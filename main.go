package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/medref-api/config"
	"github.com/giygas/medref-api/data"
	"github.com/giygas/medref-api/handlers"
	"github.com/giygas/medref-api/health"
	"github.com/giygas/medref-api/logging"
	"github.com/giygas/medref-api/resolver"
	"github.com/giygas/medref-api/retrieval"
	"github.com/giygas/medref-api/scheduler"
	"github.com/giygas/medref-api/server"
	"github.com/giygas/medref-api/store"
	"github.com/giygas/medref-api/validation"
	"github.com/joho/godotenv"
)

func init() {
	// Get the working directory and read the env variables
	if err := godotenv.Load(); err != nil {
		// If failed, try loading from executable directory
		ex, err := os.Executable()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to get executable path:", err)
			os.Exit(1)
		}
		exPath := filepath.Dir(ex)
		if err := os.Chdir(exPath); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to change directory:", err)
			os.Exit(1)
		}
		// A missing .env is fine: the environment may already carry the values.
		_ = godotenv.Load()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logService := logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Level:          logging.ParseLevel(cfg.LogLevel),
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logService.Close()

	logging.Info("Configuration loaded", "env", cfg.Env.String(), "collections", cfg.Collections.Entries())

	docStore, err := store.New(store.Config{
		Host:    cfg.Qdrant.Host,
		Port:    cfg.Qdrant.GRPCPort,
		APIKey:  cfg.Qdrant.APIKey,
		UseTLS:  cfg.Qdrant.UseTLS,
		Timeout: cfg.Qdrant.Timeout,
	})
	if err != nil {
		logging.Error("Failed to create document store client", "error", err)
		os.Exit(1)
	}

	statusContainer := data.NewStatusContainer()
	statusContainer.SetServerStartTime(time.Now())

	urlResolver := resolver.New(resolver.Config{
		BaseURL: cfg.DrugAPIBaseURL,
		Timeout: cfg.DrugAPITimeout,
	})
	service := retrieval.NewService(docStore, urlResolver, cfg.Collections, nil)

	httpHandler := handlers.NewHTTPHandler(
		service,
		validation.NewInputValidator(),
		health.NewHealthChecker(statusContainer, cfg.StoreProbeInterval),
	)

	probe := scheduler.NewScheduler(docStore, statusContainer, cfg.Collections, cfg.StoreProbeInterval)
	if err := probe.Start(); err != nil {
		logging.Error("Failed to start store probe", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, httpHandler)

	// Profiling endpoint (accessible at /debug/pprof/) - only for local dev
	if cfg.Env == config.EnvDevelopment {
		go func() {
			logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				logging.Error("Profiling server failed", "error", err)
			}
		}()
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serverErr:
		logging.Error("Server failed to start", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error", "error", err)
	}

	probe.Stop()

	if err := docStore.Close(); err != nil {
		logging.Error("Failed to close document store client", "error", err)
	}

	logging.Info("Shutdown complete")
}
