package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	h "github.com/veranemoloko/downloadtask/internal/api/http"
	cfgpkg "github.com/veranemoloko/downloadtask/internal/config"
	"github.com/veranemoloko/downloadtask/internal/httpclient"
	repo "github.com/veranemoloko/downloadtask/internal/repository"
	svc "github.com/veranemoloko/downloadtask/internal/service"
	"github.com/veranemoloko/downloadtask/internal/storage"
	"github.com/veranemoloko/downloadtask/internal/validation"
	"github.com/veranemoloko/downloadtask/internal/worker"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfgpkg.SetupLogger(cfg)
	logger.Info("configuration loaded successfully", "env", cfg.Environment)

	taskStorage, err := repo.NewTaskStorage(cfg.StateFile)
	if err != nil {
		logger.Error("failed to initialize task repository", "error", err)
		os.Exit(1)
	}

	client := httpclient.NewClient(httpclient.Options{
		ConnectTimeout:      cfg.ConnectTimeout,
		ReadTimeout:         cfg.ReadTimeout,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		UserAgent:           cfg.UserAgent,
	})

	downloadWorker := worker.NewDownloadWorker(
		client,
		storage.NewFileStorage(cfg.DownloadDir),
		taskStorage,
		worker.Options{
			PoolSize:      cfg.WorkerPoolSize,
			ChunkSize:     cfg.ChunkSize,
			RemovePartial: cfg.RemovePartial,
		},
		logger,
	)
	taskService := svc.NewTaskService(taskStorage, downloadWorker, logger)

	if err := taskService.RecoverPendingTasks(context.Background()); err != nil {
		logger.Error("failed to recover pending tasks", "error", err)
	}

	validator := validation.New(cfg.AllowPrivateHosts, cfg.MaxURLsPerTask)
	router := h.NewRouter(taskService, validator, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	} else {
		logger.Info("server stopped gracefully")
	}

	// Interrupted downloads are left pending and resume on the next start.
	if err := taskService.Shutdown(shutdownCtx); err != nil {
		logger.Error("task service shutdown failed", "error", err)
	}
}
