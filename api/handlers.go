package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	pdfPkg "pdf_stamper/pdf"

	"github.com/gin-gonic/gin"
)

func HandleStamp(c *gin.Context, svc *Service) {
	logger := requestLogger(c, svc)

	var form stampForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, logger, bindingError(err))
		return
	}

	mode, err := form.mode()
	if err != nil {
		respondError(c, logger, err)
		return
	}

	pdfData, header, err := readUpload(c, FieldPDF, svc.Config.MaxFileSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePDF(pdfData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logoData, _, err := readUpload(c, FieldLogo, svc.Config.MaxLogoSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateLogo(logoData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	out, err := svc.Stamper.Stamp(c.Request.Context(), pdfPkg.StampRequest{
		Document:         pdfData,
		Logo:             logoData,
		Size:             form.Size,
		Padding:          form.padding(),
		Mode:             mode,
		RemoveBackground: form.RemoveBackground,
	})
	if err != nil {
		respondError(c, logger, err)
		return
	}

	logger.Info("stamped document",
		slog.String("filename", header.Filename),
		slog.Int("input_bytes", len(pdfData)),
		slog.Int("output_bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)))

	filename := outputFilename(header.Filename, StampedSuffix)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", out)
}

func HandleInspect(c *gin.Context, svc *Service) {
	logger := requestLogger(c, svc)

	pdfData, _, err := readUpload(c, FieldPDF, svc.Config.MaxFileSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePDF(pdfData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := pdfPkg.LoadDocument(pdfData)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	info, err := pdfPkg.Inspect(doc)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func HandlePrepareLogo(c *gin.Context, svc *Service) {
	logger := requestLogger(c, svc)

	var form logoForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, logger, bindingError(err))
		return
	}
	size := pdfPkg.DefaultLogoSize
	if form.Size != nil {
		size = *form.Size
	}

	logoData, _, err := readUpload(c, FieldLogo, svc.Config.MaxLogoSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if form.RemoveBackground {
		if logoData, err = svc.Stamper.RemoveBackground(c.Request.Context(), logoData); err != nil {
			respondError(c, logger, err)
			return
		}
	}

	logo, err := pdfPkg.PrepareLogo(logoData, size)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pixel_width":    logo.PixelWidth,
		"pixel_height":   logo.PixelHeight,
		"display_width":  logo.DisplayWidth,
		"display_height": logo.DisplayHeight,
	})
}

func HandleRemoveBackground(c *gin.Context, svc *Service) {
	logger := requestLogger(c, svc)

	logoData, _, err := readUpload(c, FieldLogo, svc.Config.MaxLogoSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateLogo(logoData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := svc.Stamper.RemoveBackground(c.Request.Context(), logoData)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.Data(http.StatusOK, "image/png", out)
}

// respondError maps engine errors to status codes and writes {"error": msg}.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		paramErr  *pdfPkg.InvalidParameterError
		decodeErr *pdfPkg.DecodeError
		pageErr   *pdfPkg.PageProcessingError
		bgErr     *pdfPkg.BackgroundRemovalError
		serErr    *pdfPkg.SerializationError
	)

	status := http.StatusInternalServerError
	message := "PDF operation failed"

	switch {
	case errors.As(err, &paramErr):
		status, message = http.StatusBadRequest, paramErr.Error()
	case errors.As(err, &decodeErr):
		status, message = http.StatusBadRequest, decodeErr.Error()
	case errors.As(err, &pageErr):
		status, message = http.StatusUnprocessableEntity, pageErr.Error()
	case errors.As(err, &bgErr):
		status, message = http.StatusBadGateway, bgErr.Error()
	case errors.As(err, &serErr):
		message = serErr.Error()
	default:
		if errStr := err.Error(); errStr != "" {
			message = errStr
		}
	}

	if len(message) > MaxErrorMessageLength {
		message = message[:MaxErrorMessageLength] + "..."
	}

	logger.Error("request failed", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": message})
}

func requestLogger(c *gin.Context, svc *Service) *slog.Logger {
	return svc.Logger.With(
		slog.String("request_id", generateUniqueID()),
		slog.String("route", c.FullPath()))
}

// outputFilename derives the download name from the uploaded filename.
func outputFilename(originalName, suffix string) string {
	if originalName == "" {
		return "document_" + suffix + ".pdf"
	}
	base := originalName
	if strings.HasSuffix(strings.ToLower(base), ".pdf") {
		base = base[:len(base)-4]
	}
	return sanitizeFilename(base + "_" + suffix + ".pdf")
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." {
		filename = "document.pdf"
	}

	return filename
}

// generateUniqueID returns a timestamp plus random suffix for log correlation
func generateUniqueID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%d_%s", time.Now().UnixNano(), hex.EncodeToString(b))
}
