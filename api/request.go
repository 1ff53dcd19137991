package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	pdfPkg "pdf_stamper/pdf"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// stampForm is the non-file part of a stamp request.
type stampForm struct {
	Size             float64  `form:"size" binding:"gt=0"`
	Padding          *float64 `form:"padding" binding:"omitempty,gte=0"`
	ApplyToAll       bool     `form:"applyToAll"`
	Position         string   `form:"position"`
	PageConfigs      string   `form:"pageConfigs"`
	Pages            string   `form:"pages"`
	RemoveBackground bool     `form:"removeBackground"`
}

type logoForm struct {
	Size             *float64 `form:"size" binding:"omitempty,gt=0"`
	RemoveBackground bool     `form:"removeBackground"`
}

func (f *stampForm) padding() float64 {
	if f.Padding == nil {
		return pdfPkg.DefaultPadding
	}
	return *f.Padding
}

// mode resolves the placement mode. applyToAll wins; otherwise any page
// configs select per-page mode, in the order pageConfigs then pages; a bare
// position means every page.
func (f *stampForm) mode() (pdfPkg.Mode, error) {
	if f.ApplyToAll {
		pos, err := pdfPkg.ParsePosition(f.Position)
		if err != nil {
			return nil, err
		}
		return pdfPkg.Uniform{Position: pos}, nil
	}

	var configs []pdfPkg.PageConfig
	if strings.TrimSpace(f.PageConfigs) != "" {
		parsed, err := parsePageConfigs(f.PageConfigs)
		if err != nil {
			return nil, err
		}
		configs = append(configs, parsed...)
	}
	if strings.TrimSpace(f.Pages) != "" {
		pos, err := pdfPkg.ParsePosition(f.Position)
		if err != nil {
			return nil, err
		}
		expanded, err := pdfPkg.PageConfigsForSpecifier(f.Pages, pos)
		if err != nil {
			return nil, err
		}
		configs = append(configs, expanded...)
	}
	if len(configs) > 0 {
		return pdfPkg.NewPerPage(configs), nil
	}

	if strings.TrimSpace(f.Position) != "" {
		pos, err := pdfPkg.ParsePosition(f.Position)
		if err != nil {
			return nil, err
		}
		return pdfPkg.Uniform{Position: pos}, nil
	}

	return nil, &pdfPkg.InvalidParameterError{
		Param:  "mode",
		Reason: "set applyToAll with a position, or provide pageConfigs",
	}
}

// parsePageConfigs decodes a JSON list of {pageNumber, position}.
func parsePageConfigs(raw string) ([]pdfPkg.PageConfig, error) {
	var configs []pdfPkg.PageConfig
	if err := json.Unmarshal([]byte(raw), &configs); err != nil {
		return nil, &pdfPkg.InvalidParameterError{Param: "pageConfigs", Reason: fmt.Sprintf("not a JSON list of {pageNumber, position}: %v", err)}
	}
	for i := range configs {
		pos, err := pdfPkg.ParsePosition(string(configs[i].Position))
		if err != nil {
			return nil, err
		}
		configs[i].Position = pos
		if configs[i].PageNumber < 1 {
			return nil, &pdfPkg.InvalidParameterError{Param: "pageConfigs", Reason: fmt.Sprintf("page numbers must be positive, got %d", configs[i].PageNumber)}
		}
	}
	return configs, nil
}

// bindingError turns gin binding failures into parameter errors.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		param := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "gt":
			return &pdfPkg.InvalidParameterError{Param: param, Reason: "must be greater than " + fe.Param()}
		case "gte":
			return &pdfPkg.InvalidParameterError{Param: param, Reason: "must be " + fe.Param() + " or greater"}
		}
		return &pdfPkg.InvalidParameterError{Param: param, Reason: "failed " + fe.Tag() + " check"}
	}
	return &pdfPkg.InvalidParameterError{Param: "form", Reason: err.Error()}
}

// readUpload reads a multipart file field, enforcing maxSize.
func readUpload(c *gin.Context, field string, maxSize int64) ([]byte, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, fmt.Errorf("no %s file provided", field)
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, nil, fmt.Errorf("%s file size %d exceeds maximum allowed %d bytes", field, header.Size, maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s file: %v", field, err)
	}
	if int64(len(data)) > maxSize {
		return nil, nil, fmt.Errorf("%s file exceeds maximum allowed %d bytes", field, maxSize)
	}
	return data, header, nil
}

// validatePDF checks the upload looks like a PDF before parsing it.
func validatePDF(data []byte) error {
	if !mimetype.Detect(data).Is("application/pdf") {
		return fmt.Errorf("invalid PDF file: header does not match")
	}
	return nil
}

// validateLogo checks the upload is an image or SVG document.
func validateLogo(data []byte) error {
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return nil
		}
	}
	return fmt.Errorf("unsupported logo type %s", mtype.String())
}
