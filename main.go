package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf_stamper/api"

	"github.com/gin-gonic/gin"
	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	// ServerReadTimeout is the HTTP server read timeout
	ServerReadTimeout = 30 * time.Second

	// ServerWriteTimeout is the HTTP server write timeout
	ServerWriteTimeout = 60 * time.Second

	// ServerIdleTimeout is the HTTP server idle timeout
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	config, err := api.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.SlogLevel()}))
	slog.SetDefault(logger)

	// pdfcpu would otherwise create a config directory under $HOME.
	pdfcpuapi.DisableConfigDir()

	svc, err := api.NewService(config, logger)
	if err != nil {
		logger.Error("failed to initialise service", slog.Any("error", err))
		os.Exit(1)
	}

	r := gin.Default()
	r.MaxMultipartMemory = config.MaxFileSize + config.MaxLogoSize

	api.SetupRoutes(r, svc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pdf_stamper",
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Port),
		Handler:      r,
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: ServerWriteTimeout,
		IdleTimeout:  ServerIdleTimeout,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.Int64("max_file_size", config.MaxFileSize),
			slog.Int64("max_logo_size", config.MaxLogoSize),
			slog.Bool("external_bg_remover", config.BackgroundRemover.Command != ""))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server exited gracefully")
}
