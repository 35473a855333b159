package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// ErrElementNotFound is returned when the page has no element matching the
// requested id.
var ErrElementNotFound = errors.New("element not found in page")

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Raster is a screenshot of one element. WidthPx and HeightPx are device
// pixels; divide by Scale for CSS pixels. A zero-height element yields a
// Raster with no PNG.
type Raster struct {
	PNG      []byte
	WidthPx  int
	HeightPx int
	Scale    float64
}

// ChromedpRasterizer screenshots HTML in headless Chrome.
type ChromedpRasterizer struct {
	ExecPath      string
	ViewportWidth int64
	Scale         float64
	Timeout       time.Duration
}

func NewChromedpRasterizer(execPath string, scale float64) *ChromedpRasterizer {
	if scale <= 0 {
		scale = 2
	}
	return &ChromedpRasterizer{
		ExecPath: execPath,
		// 210mm at 96 CSS px per inch
		ViewportWidth: 794,
		Scale:         scale,
		Timeout:       60 * time.Second,
	}
}

// Rasterize loads html from a temporary file and captures the element with
// the given id at the configured device scale on a white background. The
// temporary directory and the browser are gone when it returns.
func (r *ChromedpRasterizer) Rasterize(ctx context.Context, html, elementID string) (Raster, error) {
	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return Raster{}, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return Raster{}, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, r.Timeout)
	defer cancelRun()

	selector := "#" + elementID
	var nodes []*cdp.Node
	err = chromedp.Run(runCtx,
		chromedp.EmulateViewport(r.ViewportWidth, 1123, chromedp.EmulateScale(r.Scale)),
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}),
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return Raster{}, fmt.Errorf("load surface: %w", err)
	}
	if len(nodes) == 0 {
		return Raster{}, fmt.Errorf("%s: %w", selector, ErrElementNotFound)
	}

	// [width, height] in CSS px
	var box []float64
	if err := chromedp.Run(runCtx, chromedp.Evaluate(
		fmt.Sprintf(`(r => [r.width, r.height])(document.getElementById(%q).getBoundingClientRect())`, elementID), &box,
	)); err != nil {
		return Raster{}, fmt.Errorf("measure surface: %w", err)
	}
	if len(box) != 2 || box[0] <= 0 {
		return Raster{}, fmt.Errorf("measure surface: unexpected box %v", box)
	}
	if box[1] <= 0 {
		return Raster{WidthPx: int(box[0] * r.Scale), Scale: r.Scale}, nil
	}

	// The viewport already renders at r.Scale device pixels per CSS pixel,
	// so the capture itself is taken at page scale 1.
	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.Screenshot(selector, &buf, chromedp.ByQuery)); err != nil {
		return Raster{}, fmt.Errorf("capture surface: %w", err)
	}
	return DecodeRaster(buf, box[0])
}

// DecodeRaster checks the PNG signature and reads the image size. Scale is
// derived from the captured width against the element's CSS width, so it
// reports the sampling the browser actually produced.
func DecodeRaster(buf []byte, cssWidth float64) (Raster, error) {
	if !bytes.HasPrefix(buf, pngSignature) {
		return Raster{}, errors.New("capture is not a PNG image")
	}
	if cssWidth <= 0 {
		return Raster{}, fmt.Errorf("invalid element width %v", cssWidth)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return Raster{}, fmt.Errorf("decode capture: %w", err)
	}
	return Raster{PNG: buf, WidthPx: cfg.Width, HeightPx: cfg.Height, Scale: float64(cfg.Width) / cssWidth}, nil
}
