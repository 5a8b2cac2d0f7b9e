package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ojpark/agentchess/internal/arena"
	"github.com/ojpark/agentchess/internal/config"
	"github.com/ojpark/agentchess/internal/httpapi"
	"github.com/ojpark/agentchess/internal/obslog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	dir := arena.NewDirectory()
	coord := arena.NewCoordinator(dir, arena.Options{
		ThinkDelay:  cfg.ThinkDelay,
		WaitCeiling: cfg.WaitCeiling,
	}, logger)

	api := httpapi.NewServer(coord, dir, logger, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLevel:   cfg.DefaultLevel,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	if cfg.OpenBrowser {
		openBrowser(logger, dashboardURL(cfg.ListenAddr))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("server_shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server_failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown_incomplete", zap.Error(err))
	}
	coord.Drain()
}

func dashboardURL(addr string) string {
	if addr != "" && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// openBrowser is best-effort; the dashboard URL is logged either way.
func openBrowser(logger *zap.Logger, url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("browser_open_failed", zap.String("url", url), zap.Error(err))
		return
	}
	logger.Info("browser_open", zap.String("url", url))
}
