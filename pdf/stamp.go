package pdf

import (
	"context"
	"log/slog"
	"time"
)

// StampRequest is the full input of one stamping run.
type StampRequest struct {
	Document []byte
	Logo     []byte
	Size     float64
	Padding  float64
	Mode     Mode

	// RemoveBackground runs the configured BackgroundRemover on Logo first.
	RemoveBackground bool
}

// Stamper runs stamping requests end to end. It holds no per-run state and
// is safe for concurrent use.
type Stamper struct {
	logger  *slog.Logger
	remover BackgroundRemover
}

// StamperOption configures a Stamper.
type StamperOption func(*Stamper)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *slog.Logger) StamperOption {
	return func(s *Stamper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBackgroundRemover sets the remover used when a request asks for it.
func WithBackgroundRemover(r BackgroundRemover) StamperOption {
	return func(s *Stamper) { s.remover = r }
}

func NewStamper(opts ...StamperOption) *Stamper {
	s := &Stamper{logger: discardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stamp validates req, prepares the logo and composites it onto the document.
// The call blocks for the duration of decode, composite and encode; ctx only
// bounds background removal.
func (s *Stamper) Stamp(ctx context.Context, req StampRequest) ([]byte, error) {
	res, err := s.StampWithReport(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// StampWithReport is Stamp, also returning where each logo went.
func (s *Stamper) StampWithReport(ctx context.Context, req StampRequest) (*CompositeResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start := time.Now()

	logo := req.Logo
	if req.RemoveBackground {
		var err error
		if logo, err = s.RemoveBackground(ctx, logo); err != nil {
			return nil, err
		}
	}

	prepared, err := PrepareLogo(logo, req.Size)
	if err != nil {
		return nil, err
	}

	doc, err := LoadDocument(req.Document)
	if err != nil {
		return nil, err
	}

	res, err := compositeDocument(doc, prepared, req.Mode, req.Padding, s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("stamp finished",
		slog.Int("logo_px_width", prepared.PixelWidth),
		slog.Int("logo_px_height", prepared.PixelHeight),
		slog.Float64("display_width", prepared.DisplayWidth),
		slog.Float64("display_height", prepared.DisplayHeight),
		slog.Duration("elapsed", time.Since(start)))

	return res, nil
}

// RemoveBackground runs the configured remover on img.
func (s *Stamper) RemoveBackground(ctx context.Context, img []byte) ([]byte, error) {
	if s.remover == nil {
		return nil, invalidParam("removeBackground", "no background remover is configured")
	}
	out, err := s.remover.RemoveBackground(ctx, img)
	if err != nil {
		return nil, &BackgroundRemovalError{Err: err}
	}
	return out, nil
}

func validateRequest(req StampRequest) error {
	if !(req.Size > 0) {
		return invalidParam("size", "must be greater than 0, got %v", req.Size)
	}
	if !(req.Padding >= 0) {
		return invalidParam("padding", "must be 0 or greater, got %v", req.Padding)
	}
	return ValidateMode(req.Mode)
}
