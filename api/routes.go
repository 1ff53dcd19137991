package api

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	pdfPkg "pdf_stamper/pdf"

	"github.com/gin-gonic/gin"
)

// Service bundles what the handlers need.
type Service struct {
	Config  *Config
	Stamper *pdfPkg.Stamper
	Logger  *slog.Logger
}

// NewService wires the background remover selected by config into a Stamper.
func NewService(config *Config, logger *slog.Logger) (*Service, error) {
	remover, err := newBackgroundRemover(config)
	if err != nil {
		return nil, err
	}
	return &Service{
		Config: config,
		Stamper: pdfPkg.NewStamper(
			pdfPkg.WithLogger(logger),
			pdfPkg.WithBackgroundRemover(remover),
		),
		Logger: logger,
	}, nil
}

func newBackgroundRemover(config *Config) (pdfPkg.BackgroundRemover, error) {
	bg := config.BackgroundRemover
	if bg.Command == "" {
		tolerance := bg.Tolerance
		if tolerance < 0 {
			tolerance = pdfPkg.DefaultColorKeyTolerance
		}
		return pdfPkg.ColorKeyRemover{Tolerance: uint8(tolerance)}, nil
	}

	if err := ensureTempDir(config.TempDir); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	remover, err := pdfPkg.NewCommandRemover(bg.Command, config.TempDir, time.Duration(bg.TimeoutSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	if err := remover.CheckAvailable(); err != nil {
		return nil, err
	}
	return remover, nil
}

func SetupRoutes(r *gin.Engine, svc *Service) {
	pdfGroup := r.Group("/api/pdf")
	{
		pdfGroup.POST("/stamp", func(c *gin.Context) { HandleStamp(c, svc) })
		pdfGroup.POST("/inspect", func(c *gin.Context) { HandleInspect(c, svc) })
	}

	logoGroup := r.Group("/api/logo")
	{
		logoGroup.POST("/prepare", func(c *gin.Context) { HandlePrepareLogo(c, svc) })
		logoGroup.POST("/remove-background", func(c *gin.Context) { HandleRemoveBackground(c, svc) })
	}
}

// ensureTempDir creates the temp directory if it doesn't exist
func ensureTempDir(tempDir string) error {
	return os.MkdirAll(tempDir, DefaultFilePermissions)
}
