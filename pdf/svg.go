package pdf

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// rasterizeSVG renders an SVG document so that its longer side is
// longSide pixels. The aspect ratio comes from the viewBox.
func rasterizeSVG(raw []byte, longSide int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(raw), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg has an empty viewBox (%gx%g)", vw, vh)
	}

	w, h := longSide, longSide
	if vw >= vh {
		h = int(math.Round(float64(longSide) * vh / vw))
	} else {
		w = int(math.Round(float64(longSide) * vw / vh))
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	return rgba, nil
}
