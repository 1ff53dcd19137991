package pdf

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// BackgroundRemover turns image bytes into image bytes with the background
// made transparent. Implementations are opaque to the compositing engine.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, img []byte) ([]byte, error)
}

// BackgroundRemoverFunc adapts a function to BackgroundRemover.
type BackgroundRemoverFunc func(ctx context.Context, img []byte) ([]byte, error)

func (f BackgroundRemoverFunc) RemoveBackground(ctx context.Context, img []byte) ([]byte, error) {
	return f(ctx, img)
}

// Placeholders substituted in CommandRemover arguments.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// CommandRemover runs an external background removal tool, for example
// "rembg i {input} {output}". The tool reads and writes temp files.
type CommandRemover struct {
	Command string
	Args    []string
	TempDir string
	Timeout time.Duration
}

// NewCommandRemover parses a command line such as "rembg i {input} {output}".
// When no placeholders are present, input and output paths are appended.
func NewCommandRemover(commandLine, tempDir string, timeout time.Duration) (*CommandRemover, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, errors.New("empty background remover command")
	}

	args := fields[1:]
	if !strings.Contains(commandLine, InputPlaceholder) {
		args = append(args, InputPlaceholder)
	}
	if !strings.Contains(commandLine, OutputPlaceholder) {
		args = append(args, OutputPlaceholder)
	}
	if timeout <= 0 {
		timeout = DefaultCLITimeout
	}

	return &CommandRemover{
		Command: fields[0],
		Args:    args,
		TempDir: tempDir,
		Timeout: timeout,
	}, nil
}

// CheckAvailable verifies the command can be found in PATH.
func (r *CommandRemover) CheckAvailable() error {
	return lookupCommand(r.Command)
}

func (r *CommandRemover) RemoveBackground(ctx context.Context, img []byte) ([]byte, error) {
	dir, err := os.MkdirTemp(r.TempDir, "bgremove_")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	id := randomID()
	inFile := filepath.Join(dir, "input_"+id+extensionFor(img))
	outFile := filepath.Join(dir, "output_"+id+".png")

	if err := os.WriteFile(inFile, img, 0o600); err != nil {
		return nil, fmt.Errorf("writing input image: %w", err)
	}

	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		a = strings.ReplaceAll(a, InputPlaceholder, inFile)
		args[i] = strings.ReplaceAll(a, OutputPlaceholder, outFile)
	}

	output, err := execCommandWithTimeout(ctx, r.Timeout, r.Command, args...)
	if err != nil {
		if len(output) > 0 {
			return nil, fmt.Errorf("%w\nOutput: %s", err, truncate(string(output), 500))
		}
		return nil, err
	}

	result, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("%s did not produce an output image: %w", r.Command, err)
	}
	return result, nil
}

// ColorKeyRemover makes the background transparent by flood filling from the
// image border. Pixels within Tolerance of the border color on every channel
// count as background. It suits logos on a flat backdrop.
type ColorKeyRemover struct {
	Tolerance uint8
}

func (r ColorKeyRemover) RemoveBackground(_ context.Context, raw []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Subject: "logo", Err: err}
	}
	img := imaging.Clone(src)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, &DecodeError{Subject: "logo", Err: errors.New("image has no pixels")}
	}

	key := borderKey(img)
	visited := make([]bool, w*h)
	queue := make([]image.Point, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if visited[i] {
			return
		}
		visited[i] = true
		if r.matches(img.NRGBAAt(x, y), key) {
			queue = append(queue, image.Pt(x, y))
		}
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		img.SetNRGBA(p.X, p.Y, color.NRGBA{})

		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return buf.Bytes(), nil
}

func (r ColorKeyRemover) matches(c, key color.NRGBA) bool {
	if c.A == 0 {
		return true
	}
	return absDiff(c.R, key.R) <= r.Tolerance &&
		absDiff(c.G, key.G) <= r.Tolerance &&
		absDiff(c.B, key.B) <= r.Tolerance
}

// borderKey averages the four corner pixels.
func borderKey(img *image.NRGBA) color.NRGBA {
	b := img.Bounds()
	corners := []color.NRGBA{
		img.NRGBAAt(b.Min.X, b.Min.Y),
		img.NRGBAAt(b.Max.X-1, b.Min.Y),
		img.NRGBAAt(b.Min.X, b.Max.Y-1),
		img.NRGBAAt(b.Max.X-1, b.Max.Y-1),
	}
	var r, g, bl, a int
	for _, c := range corners {
		r += int(c.R)
		g += int(c.G)
		bl += int(c.B)
		a += int(c.A)
	}
	n := len(corners)
	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: uint8(a / n)}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func extensionFor(img []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || format == "" {
		return ".png"
	}
	return "." + format
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
