package pdf

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageInfo describes one page of a document.
type PageInfo struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Images lists the object numbers of image XObjects the page references.
	Images []int `json:"images"`
}

// ImageObject is an image XObject and the pages referencing it.
type ImageObject struct {
	ObjectNumber int   `json:"object_number"`
	Width        int   `json:"width"`
	Height       int   `json:"height"`
	SoftMask     bool  `json:"soft_mask"`
	Pages        []int `json:"pages"`
}

// DocumentInfo is the result of Inspect.
type DocumentInfo struct {
	PageCount int           `json:"page_count"`
	Pages     []PageInfo    `json:"pages"`
	Images    []ImageObject `json:"images"`
}

// Inspect reports page sizes and the image XObjects referenced from page
// resources. Images drawn through nested form XObjects are not listed.
func Inspect(doc *Document) (*DocumentInfo, error) {
	info := &DocumentInfo{
		PageCount: doc.PageCount(),
		Pages:     make([]PageInfo, 0, doc.PageCount()),
	}
	images := map[int]*ImageObject{}

	for page := 1; page <= doc.PageCount(); page++ {
		pageDict, _, inh, err := doc.ctx.PageDict(page, false)
		if err != nil {
			return nil, &PageProcessingError{Page: page, Err: err}
		}
		size, err := mediaBoxSize(inh)
		if err != nil {
			return nil, &PageProcessingError{Page: page, Err: err}
		}

		pi := PageInfo{Number: page, Width: size.Width, Height: size.Height, Images: []int{}}

		refs, err := pageImageRefs(doc, pageDict, inh.Resources)
		if err != nil {
			return nil, &PageProcessingError{Page: page, Err: err}
		}
		for _, ref := range refs {
			objNr := ref.ObjectNumber.Value()
			img, seen := images[objNr]
			if !seen {
				if img, err = describeImage(doc, ref); err != nil {
					return nil, &PageProcessingError{Page: page, Err: err}
				}
				if img == nil {
					continue
				}
				images[objNr] = img
			}
			img.Pages = append(img.Pages, page)
			pi.Images = append(pi.Images, objNr)
		}

		info.Pages = append(info.Pages, pi)
	}

	info.Images = make([]ImageObject, 0, len(images))
	for _, img := range images {
		info.Images = append(info.Images, *img)
	}
	sort.Slice(info.Images, func(i, j int) bool {
		return info.Images[i].ObjectNumber < info.Images[j].ObjectNumber
	})

	return info, nil
}

// pageImageRefs returns the indirect XObject references of a page's
// resources in resource name order.
func pageImageRefs(doc *Document, pageDict, inherited types.Dict) ([]types.IndirectRef, error) {
	res, err := doc.dereferenceDict(pageDict["Resources"])
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = inherited
	}
	xobjects, err := doc.dereferenceDict(res["XObject"])
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, name)
	}
	sort.Strings(names)

	var refs []types.IndirectRef
	for _, name := range names {
		if ref, ok := xobjects[name].(types.IndirectRef); ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// describeImage returns nil when ref is not an image XObject.
func describeImage(doc *Document, ref types.IndirectRef) (*ImageObject, error) {
	o, err := doc.dereference(ref)
	if err != nil {
		return nil, err
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, fmt.Errorf("XObject %d is a %T, not a stream", ref.ObjectNumber.Value(), o)
	}
	if subtype, _ := sd.Dict["Subtype"].(types.Name); subtype != "Image" {
		return nil, nil
	}

	img := &ImageObject{ObjectNumber: ref.ObjectNumber.Value()}
	if w, ok := sd.Dict["Width"].(types.Integer); ok {
		img.Width = w.Value()
	}
	if h, ok := sd.Dict["Height"].(types.Integer); ok {
		img.Height = h.Value()
	}
	_, img.SoftMask = sd.Dict["SMask"]
	return img, nil
}
