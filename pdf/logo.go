package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	// Register decoders beyond the ones imaging pulls in (png, jpeg, gif).
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PreparedLogo is a logo re-encoded for embedding, together with the size it
// is drawn at.
type PreparedLogo struct {
	// Pixels holds the logo as PNG at its source pixel dimensions.
	Pixels      []byte
	PixelWidth  int
	PixelHeight int

	// Display dimensions in points. The larger of the two equals the target size.
	DisplayWidth  float64
	DisplayHeight float64
}

// PrepareLogo decodes raw logo bytes and computes display dimensions for a
// target size, preserving aspect ratio.
//
// The pixels are re-encoded as PNG without resampling; the displayed size is
// controlled purely by the draw call.
func PrepareLogo(raw []byte, targetSize float64) (*PreparedLogo, error) {
	if !(targetSize > 0) {
		return nil, invalidParam("size", "must be greater than 0, got %v", targetSize)
	}

	img, err := decodeLogo(raw)
	if err != nil {
		return nil, &DecodeError{Subject: "logo", Err: err}
	}

	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, nrgba, imaging.PNG); err != nil {
		return nil, &DecodeError{Subject: "logo", Err: fmt.Errorf("re-encoding as png: %w", err)}
	}

	dw, dh := DisplayDimensions(w, h, targetSize)
	return &PreparedLogo{
		Pixels:        buf.Bytes(),
		PixelWidth:    w,
		PixelHeight:   h,
		DisplayWidth:  dw,
		DisplayHeight: dh,
	}, nil
}

// DisplayDimensions scales a w x h pixel image so that its larger side
// equals size.
func DisplayDimensions(w, h int, size float64) (float64, float64) {
	r := float64(w) / float64(h)
	if r >= 1 {
		return size, size / r
	}
	return size * r, size
}

func decodeLogo(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty image data")
	}

	mtype := mimetype.Detect(raw)

	var (
		img image.Image
		err error
	)
	if mtype.Is("image/svg+xml") {
		img, err = rasterizeSVG(raw, SVGRasterSize)
	} else {
		if cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(raw)); cfgErr == nil && cfg.Width*cfg.Height > MaxLogoPixels {
			return nil, fmt.Errorf("image of %dx%d pixels exceeds the %d pixel limit", cfg.Width, cfg.Height, MaxLogoPixels)
		}
		img, err = imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("unsupported or corrupt %s image: %w", mtype.String(), err)
	}

	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}
	return img, nil
}
