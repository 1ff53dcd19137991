package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document is a loaded, mutable PDF. It is owned by a single run.
type Document struct {
	ctx *model.Context
}

// PageSize is the MediaBox of a page in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Lower-left corner of the MediaBox, usually (0, 0).
	OriginX float64 `json:"-"`
	OriginY float64 `json:"-"`
}

// LoadDocument reads and validates a PDF held in memory.
func LoadDocument(raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Subject: "document", Err: errors.New("empty document")}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(raw[:min(len(raw), 1024)], "\x00\t\r\n "), []byte("%PDF")) {
		return nil, &DecodeError{Subject: "document", Err: errors.New("header does not match %PDF")}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(raw), conf)
	if err != nil {
		return nil, &DecodeError{Subject: "document", Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &DecodeError{Subject: "document", Err: err}
	}

	return &Document{ctx: ctx}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// PageSize returns the MediaBox of the 1-indexed page.
func (d *Document) PageSize(page int) (PageSize, error) {
	_, _, inh, err := d.ctx.PageDict(page, false)
	if err != nil {
		return PageSize{}, err
	}
	return mediaBoxSize(inh)
}

// Save serializes the document.
func (d *Document) Save() ([]byte, error) {
	var out bytes.Buffer
	if err := api.WriteContext(d.ctx, &out); err != nil {
		return nil, &SerializationError{Err: err}
	}
	return out.Bytes(), nil
}

func mediaBoxSize(inh *model.InheritedPageAttrs) (PageSize, error) {
	if inh == nil || inh.MediaBox == nil {
		return PageSize{}, errors.New("page has no MediaBox")
	}
	box := inh.MediaBox
	if box.Width() <= 0 || box.Height() <= 0 {
		return PageSize{}, fmt.Errorf("page has a degenerate MediaBox %v", box)
	}
	return PageSize{
		Width:   box.Width(),
		Height:  box.Height(),
		OriginX: box.LL.X,
		OriginY: box.LL.Y,
	}, nil
}

// dereference resolves indirect references and returns direct objects as is.
func (d *Document) dereference(obj types.Object) (types.Object, error) {
	if obj == nil {
		return nil, nil
	}
	if ref, ok := obj.(types.IndirectRef); ok {
		return d.ctx.Dereference(ref)
	}
	return obj, nil
}

func (d *Document) dereferenceDict(obj types.Object) (types.Dict, error) {
	o, err := d.dereference(obj)
	if err != nil || o == nil {
		return nil, err
	}
	dict, ok := o.(types.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %T", o)
	}
	return dict, nil
}
