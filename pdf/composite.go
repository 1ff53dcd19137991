package pdf

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Placement records one logo drawn onto a page, in page user space.
type Placement struct {
	Page     int      `json:"page"`
	Position Position `json:"position"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// CompositeResult is the output of a compositing run.
type CompositeResult struct {
	Document   []byte
	Placements []Placement
	Skipped    []int
}

// Composite draws logo onto the pages of doc selected by mode and returns the
// serialized document.
func Composite(doc *Document, logo *PreparedLogo, mode Mode, padding float64) ([]byte, error) {
	res, err := compositeDocument(doc, logo, mode, padding, discardLogger())
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// CompositeWithReport is Composite, also reporting where each logo went.
func CompositeWithReport(doc *Document, logo *PreparedLogo, mode Mode, padding float64) (*CompositeResult, error) {
	return compositeDocument(doc, logo, mode, padding, discardLogger())
}

func compositeDocument(doc *Document, logo *PreparedLogo, mode Mode, padding float64, logger *slog.Logger) (*CompositeResult, error) {
	if logo == nil {
		return nil, invalidParam("logo", "no prepared logo given")
	}
	if !(padding >= 0) {
		return nil, invalidParam("padding", "must be 0 or greater, got %v", padding)
	}
	if err := ValidateMode(mode); err != nil {
		return nil, err
	}

	total := doc.PageCount()
	warnUnreachablePages(logger, mode, total)

	// The logo is embedded exactly once, on the first stamped page; every
	// stamped page references the same image object and the same opening
	// "q" stream.
	var imgRef, openRef *types.IndirectRef

	result := &CompositeResult{}
	for page := 1; page <= total; page++ {
		pos, ok := mode.PositionFor(page)
		if !ok {
			result.Skipped = append(result.Skipped, page)
			continue
		}

		if imgRef == nil {
			var err error
			if imgRef, err = embedImage(doc, logo.Pixels); err != nil {
				return nil, &DecodeError{Subject: "logo", Err: err}
			}
			if openRef, err = newContentStream(doc, []byte("q\n")); err != nil {
				return nil, &SerializationError{Err: err}
			}
		}

		placement, err := stampPage(doc, page, pos, logo, padding, imgRef, openRef)
		if err != nil {
			return nil, &PageProcessingError{Page: page, Err: err}
		}
		result.Placements = append(result.Placements, placement)
	}

	out, err := doc.Save()
	if err != nil {
		return nil, err
	}
	result.Document = out

	logger.Info("composited logo",
		slog.Int("pages", total),
		slog.Int("stamped", len(result.Placements)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("output_bytes", len(out)))

	return result, nil
}

func stampPage(doc *Document, page int, pos Position, logo *PreparedLogo, padding float64, imgRef, openRef *types.IndirectRef) (Placement, error) {
	pageDict, _, inh, err := doc.ctx.PageDict(page, false)
	if err != nil {
		return Placement{}, err
	}
	if pageDict == nil {
		return Placement{}, fmt.Errorf("page dictionary not found")
	}

	size, err := mediaBoxSize(inh)
	if err != nil {
		return Placement{}, err
	}

	x, y := ResolveOrigin(size.Width, size.Height, logo.DisplayWidth, logo.DisplayHeight, padding, pos)
	x += size.OriginX
	y += size.OriginY

	contents, err := contentRefs(doc, pageDict["Contents"])
	if err != nil {
		return Placement{}, fmt.Errorf("reading contents: %w", err)
	}

	name, err := registerXObject(doc, pageDict, inh.Resources, imgRef)
	if err != nil {
		return Placement{}, fmt.Errorf("updating resources: %w", err)
	}

	drawRef, err := newContentStream(doc, drawImageOps(name, x, y, logo.DisplayWidth, logo.DisplayHeight))
	if err != nil {
		return Placement{}, fmt.Errorf("creating content stream: %w", err)
	}

	arr := make(types.Array, 0, len(contents)+2)
	arr = append(arr, *openRef)
	arr = append(arr, contents...)
	arr = append(arr, *drawRef)
	pageDict["Contents"] = arr

	return Placement{
		Page:     page,
		Position: pos,
		X:        x,
		Y:        y,
		Width:    logo.DisplayWidth,
		Height:   logo.DisplayHeight,
	}, nil
}

// drawImageOps closes the graphics state opened before the existing content
// and paints the named image into the w x h box at (x, y).
func drawImageOps(name string, x, y, w, h float64) []byte {
	var buf bytes.Buffer
	// Existing content may end without a newline.
	buf.WriteString("\nQ\nq\n")
	fmt.Fprintf(&buf, "%s 0 0 %s %s %s cm\n", formatNumber(w), formatNumber(h), formatNumber(x), formatNumber(y))
	fmt.Fprintf(&buf, "/%s Do\nQ\n", name)
	return buf.Bytes()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// registerXObject adds imgRef to a private copy of the page resources and
// returns the resource name. Resource dictionaries may be shared with other
// pages, so they are copied rather than modified.
func registerXObject(doc *Document, pageDict, inherited types.Dict, imgRef *types.IndirectRef) (string, error) {
	res, err := doc.dereferenceDict(pageDict["Resources"])
	if err != nil {
		return "", err
	}
	if res == nil {
		res = inherited
	}
	res = copyDict(res)

	xobjects, err := doc.dereferenceDict(res["XObject"])
	if err != nil {
		return "", fmt.Errorf("XObject resources: %w", err)
	}
	xobjects = copyDict(xobjects)

	name := uniqueResourceName(xobjects, logoResourcePrefix)
	xobjects[name] = *imgRef
	res["XObject"] = xobjects
	pageDict["Resources"] = res

	return name, nil
}

func copyDict(d types.Dict) types.Dict {
	out := types.Dict{}
	for k, v := range d {
		out[k] = v
	}
	return out
}

func uniqueResourceName(d types.Dict, prefix string) string {
	for i := 0; ; i++ {
		name := prefix + strconv.Itoa(i)
		if _, taken := d[name]; !taken {
			return name
		}
	}
}

// contentRefs flattens a page Contents entry into a list of stream objects.
func contentRefs(doc *Document, contents types.Object) (types.Array, error) {
	switch c := contents.(type) {
	case nil:
		return nil, nil
	case types.Array:
		return c, nil
	case types.IndirectRef:
		o, err := doc.dereference(c)
		if err != nil {
			return nil, err
		}
		switch v := o.(type) {
		case types.Array:
			return v, nil
		case types.StreamDict:
			return types.Array{c}, nil
		case nil:
			return nil, nil
		default:
			return nil, fmt.Errorf("unexpected Contents object %T", o)
		}
	default:
		return nil, fmt.Errorf("unexpected Contents entry %T", contents)
	}
}

func newContentStream(doc *Document, content []byte) (*types.IndirectRef, error) {
	sd, err := doc.ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return doc.ctx.IndRefForNewObject(*sd)
}

// embedImage adds a PNG as an RGB image XObject, with a soft mask when any
// pixel is not fully opaque.
func embedImage(doc *Document, pngData []byte) (*types.IndirectRef, error) {
	img, err := imaging.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decoding prepared logo: %w", err)
	}
	rgb, alpha, opaque := splitAlpha(imaging.Clone(img))
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	sd, err := imageStream(doc, rgb, w, h, "DeviceRGB")
	if err != nil {
		return nil, err
	}

	if !opaque {
		mask, err := imageStream(doc, alpha, w, h, "DeviceGray")
		if err != nil {
			return nil, err
		}
		maskRef, err := doc.ctx.IndRefForNewObject(*mask)
		if err != nil {
			return nil, err
		}
		sd.Dict["SMask"] = *maskRef
	}

	return doc.ctx.IndRefForNewObject(*sd)
}

func imageStream(doc *Document, data []byte, w, h int, colorSpace string) (*types.StreamDict, error) {
	sd, err := doc.ctx.NewStreamDictForBuf(data)
	if err != nil {
		return nil, err
	}
	sd.Dict["Type"] = types.Name("XObject")
	sd.Dict["Subtype"] = types.Name("Image")
	sd.Dict["Width"] = types.Integer(w)
	sd.Dict["Height"] = types.Integer(h)
	sd.Dict["ColorSpace"] = types.Name(colorSpace)
	sd.Dict["BitsPerComponent"] = types.Integer(8)
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return sd, nil
}

// splitAlpha separates an NRGBA image into packed RGB samples and an 8-bit
// alpha plane.
func splitAlpha(img *image.NRGBA) (rgb, alpha []byte, opaque bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	rgb = make([]byte, 0, w*h*3)
	alpha = make([]byte, 0, w*h)
	opaque = true

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			rgb = append(rgb, row[x], row[x+1], row[x+2])
			a := row[x+3]
			alpha = append(alpha, a)
			if a != 0xff {
				opaque = false
			}
		}
	}
	return rgb, alpha, opaque
}

func warnUnreachablePages(logger *slog.Logger, mode Mode, total int) {
	var configs []PageConfig
	switch m := mode.(type) {
	case PerPage:
		configs = m.Configs
	case *PerPage:
		configs = m.Configs
	}
	for _, cfg := range configs {
		if cfg.PageNumber > total {
			logger.Warn("page config beyond last page ignored",
				slog.Int("page", cfg.PageNumber),
				slog.Int("page_count", total))
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
