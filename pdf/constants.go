package pdf

import "time"

const (
	// DefaultLogoSize is the default target bounding dimension in points
	DefaultLogoSize = 100.0

	// DefaultPadding is the default distance in points from the page edges
	DefaultPadding = 20.0

	// SVGRasterSize is the pixel length of the longer side of a rasterized SVG logo
	SVGRasterSize = 1024

	// MaxLogoPixels caps width*height of a decoded logo (64 megapixels)
	MaxLogoPixels = 64 << 20

	// DefaultColorKeyTolerance is the per-channel distance treated as background
	DefaultColorKeyTolerance = 24

	// MaxPageNumber bounds the page numbers a page specifier may name
	MaxPageNumber = 100000

	// logoResourcePrefix names the XObject resource the logo is registered under
	logoResourcePrefix = "Logo"
)

// CLI operation timeout constants
const (
	DefaultCLITimeout = 30 * time.Second
)
