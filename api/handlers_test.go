package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	pdfPkg "pdf_stamper/pdf"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	pdfcpuapi.DisableConfigDir()
	os.Exit(m.Run())
}

type upload struct {
	field, name string
	data        []byte
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	svc, err := NewService(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	r := gin.New()
	SetupRoutes(r, svc)
	return r
}

func postMultipart(t *testing.T, r http.Handler, path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// testPDF writes a minimal PDF with one empty page per size.
func testPDF(t *testing.T, sizes ...[2]float64) []byte {
	t.Helper()

	var (
		buf     bytes.Buffer
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := ""
	for i := range sizes {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(sizes)))
	for _, s := range sizes {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> >>", s[0], s[1]))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// testLogo is a white w x h PNG with a red square in the middle.
func testLogo(t *testing.T, w, h int) []byte {
	t.Helper()

	img := imaging.New(w, h, color.White)
	for y := h / 4; y < 3*h/4; y++ {
		for x := w / 4; x < 3*w/4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func pageImageCounts(t *testing.T, raw []byte) []int {
	t.Helper()

	doc, err := pdfPkg.LoadDocument(raw)
	require.NoError(t, err)
	info, err := pdfPkg.Inspect(doc)
	require.NoError(t, err)

	counts := make([]int, len(info.Pages))
	for i, p := range info.Pages {
		counts[i] = len(p.Images)
	}
	return counts
}

func TestHandleStamp(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	pdfData := testPDF(t, [2]float64{612, 792}, [2]float64{300, 300})
	logo := testLogo(t, 200, 100)

	tests := []struct {
		name   string
		fields map[string]string
		want   []int
	}{
		{
			name:   "apply to all",
			fields: map[string]string{FieldSize: "100", FieldApplyToAll: "true", FieldPosition: "top-right"},
			want:   []int{1, 1},
		},
		{
			name:   "page specifier",
			fields: map[string]string{FieldSize: "80", FieldPages: "2", FieldPosition: "bottom-right"},
			want:   []int{0, 1},
		},
		{
			name:   "page configs",
			fields: map[string]string{FieldSize: "80", FieldPadding: "0", FieldPageConfigs: `[{"pageNumber":1,"position":"bottom-left"}]`},
			want:   []int{1, 0},
		},
		{
			name:   "background removed",
			fields: map[string]string{FieldSize: "60", FieldApplyToAll: "true", FieldPosition: "top-left", FieldRemoveBackground: "true"},
			want:   []int{1, 1},
		},
		{
			name:   "bare position",
			fields: map[string]string{FieldSize: "50", FieldPosition: "Bottom-Left"},
			want:   []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := postMultipart(t, r, "/api/pdf/stamp", tt.fields,
				upload{FieldPDF, "report.pdf", pdfData},
				upload{FieldLogo, "logo.png", logo})

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			require.Contains(t, w.Header().Get("Content-Disposition"), "report_stamped.pdf")
			require.Equal(t, tt.want, pageImageCounts(t, w.Body.Bytes()))
		})
	}
}

func TestHandleStamp_Errors(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	pdfData := testPDF(t, [2]float64{612, 792})
	logo := testLogo(t, 20, 20)
	valid := map[string]string{FieldSize: "100", FieldApplyToAll: "true", FieldPosition: "top-left"}

	with := func(k, v string) map[string]string {
		out := map[string]string{}
		for key, val := range valid {
			out[key] = val
		}
		out[k] = v
		return out
	}

	tests := []struct {
		name    string
		fields  map[string]string
		files   []upload
		wantMsg string
	}{
		{
			name:    "zero size",
			fields:  with(FieldSize, "0"),
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", logo}},
			wantMsg: "size",
		},
		{
			name:    "negative padding",
			fields:  with(FieldPadding, "-1"),
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", logo}},
			wantMsg: "padding",
		},
		{
			name:    "unknown position",
			fields:  with(FieldPosition, "center"),
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", logo}},
			wantMsg: "position",
		},
		{
			name:    "no mode",
			fields:  map[string]string{FieldSize: "100"},
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", logo}},
			wantMsg: "mode",
		},
		{
			name:    "bad page configs",
			fields:  map[string]string{FieldSize: "100", FieldPageConfigs: `{"pageNumber":1}`},
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", logo}},
			wantMsg: "pageConfigs",
		},
		{
			name:    "page range too large",
			fields:  map[string]string{FieldSize: "100", FieldPages: "1-2000000000", FieldPosition: "top-left"},
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", logo}},
			wantMsg: "invalid pages",
		},
		{
			name:    "missing pdf",
			fields:  valid,
			files:   []upload{{FieldLogo, "l.png", logo}},
			wantMsg: "no pdf file",
		},
		{
			name:    "not a pdf",
			fields:  valid,
			files:   []upload{{FieldPDF, "a.pdf", []byte("hello")}, {FieldLogo, "l.png", logo}},
			wantMsg: "invalid PDF",
		},
		{
			name:    "not an image",
			fields:  valid,
			files:   []upload{{FieldPDF, "a.pdf", pdfData}, {FieldLogo, "l.png", []byte("plain text")}},
			wantMsg: "unsupported logo type",
		},
		{
			name:    "corrupt pdf body",
			fields:  valid,
			files:   []upload{{FieldPDF, "a.pdf", []byte("%PDF-1.4\ngarbage")}, {FieldLogo, "l.png", logo}},
			wantMsg: "document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := postMultipart(t, r, "/api/pdf/stamp", tt.fields, tt.files...)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.Contains(t, decodeError(t, w), tt.wantMsg)
		})
	}
}

func TestHandleInspect(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	w := postMultipart(t, r, "/api/pdf/inspect", nil,
		upload{FieldPDF, "a.pdf", testPDF(t, [2]float64{612, 792}, [2]float64{595, 842})})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var info pdfPkg.DocumentInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.Equal(t, 2, info.PageCount)
	require.Len(t, info.Pages, 2)
	require.InDelta(t, 595, info.Pages[1].Width, 0.001)
	require.InDelta(t, 842, info.Pages[1].Height, 0.001)
	require.Empty(t, info.Images)
}

func TestHandlePrepareLogo(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	logo := upload{FieldLogo, "logo.png", testLogo(t, 400, 200)}

	w := postMultipart(t, r, "/api/logo/prepare", map[string]string{FieldSize: "50"}, logo)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, map[string]float64{
		"pixel_width":    400,
		"pixel_height":   200,
		"display_width":  50,
		"display_height": 25,
	}, got)

	w = postMultipart(t, r, "/api/logo/prepare", nil, logo)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.InDelta(t, pdfPkg.DefaultLogoSize, got["display_width"], 0.001)

	w = postMultipart(t, r, "/api/logo/prepare", map[string]string{FieldSize: "40", FieldRemoveBackground: "true"}, logo)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.InDelta(t, 400, got["pixel_width"], 0.001)
	require.InDelta(t, 20, got["display_height"], 0.001)

	w = postMultipart(t, r, "/api/logo/prepare", map[string]string{FieldSize: "-3"}, logo)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, decodeError(t, w), "size")
}

func TestHandleRemoveBackground(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)
	w := postMultipart(t, r, "/api/logo/remove-background", nil,
		upload{FieldLogo, "logo.png", testLogo(t, 40, 40)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	out := imaging.Clone(img)
	require.Equal(t, image.Rect(0, 0, 40, 40), out.Bounds())
	require.Zero(t, out.NRGBAAt(0, 0).A)
	require.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, out.NRGBAAt(20, 20))
}

func TestRespondError_Status(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tests := []struct {
		err  error
		want int
	}{
		{&pdfPkg.InvalidParameterError{Param: "size", Reason: "bad"}, http.StatusBadRequest},
		{&pdfPkg.DecodeError{Subject: "logo", Err: io.ErrUnexpectedEOF}, http.StatusBadRequest},
		{&pdfPkg.PageProcessingError{Page: 2, Err: io.EOF}, http.StatusUnprocessableEntity},
		{&pdfPkg.BackgroundRemovalError{Err: io.EOF}, http.StatusBadGateway},
		{&pdfPkg.SerializationError{Err: io.EOF}, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", &pdfPkg.PageProcessingError{Page: 1, Err: io.EOF}), http.StatusUnprocessableEntity},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, logger, tt.err)
		require.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}

func TestOutputFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "report_stamped.pdf", outputFilename("report.PDF", StampedSuffix))
	require.Equal(t, "document_stamped.pdf", outputFilename("", StampedSuffix))
	require.Equal(t, "__etc_passwd_stamped.pdf", outputFilename("../../etc/passwd", StampedSuffix))
}
