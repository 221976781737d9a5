// Package render draws ticket images: a Code 128 barcode above a block of
// ticket metadata, saved as PNG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarkoPoloResearchLab/tegticket/pkg/ticketing"
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	errorOperationRender = "render"
	errorSubjectBarcode  = "barcode"
	errorSubjectImage    = "image"
	errorSubjectFile     = "file"
	errorCodeEncode      = "encode"
	errorCodeScale       = "scale"
	errorCodeMkdir       = "mkdir"
	errorCodeWrite       = "write"
	errorCodeRename      = "rename"

	DefaultTargetWidth = 800
	DefaultDPI         = 300
	DefaultFontSize    = 20
	DefaultModuleWidth = 3
	DefaultBarHeight   = 150
	DefaultQuietZone   = 10

	verticalMargin = 20
	textLeft       = 10
	textTopPadding = 10
	textAreaExtra  = 20
	lineSpacing    = 6
	imageExtension = ".png"
	tempExtension  = ".tmp"
)

// Config controls the ticket layout.
type Config struct {
	OutputDir   string
	TargetWidth int
	DPI         int
	FontPath    string
	FontSize    float64
	ModuleWidth int
	BarHeight   int
	QuietZone   int
}

func (cfg Config) withDefaults() Config {
	if cfg.TargetWidth <= 0 {
		cfg.TargetWidth = DefaultTargetWidth
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultFontSize
	}
	if cfg.ModuleWidth <= 0 {
		cfg.ModuleWidth = DefaultModuleWidth
	}
	if cfg.BarHeight <= 0 {
		cfg.BarHeight = DefaultBarHeight
	}
	if cfg.QuietZone < 0 {
		cfg.QuietZone = 0
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "."
	}
	return cfg
}

// Renderer implements ticketing.Renderer.
type Renderer struct {
	cfg        Config
	face       font.Face
	fontSource string
}

// New prepares a Renderer. Font loading never fails: a missing or unreadable
// font file falls back to the built-in face.
func New(cfg Config) *Renderer {
	cfg = cfg.withDefaults()
	face, source := loadFace(cfg.FontPath, cfg.FontSize)
	return &Renderer{cfg: cfg, face: face, fontSource: source}
}

// FontSource names the face in use: the font path, "gomono" or "basicfont".
func (renderer *Renderer) FontSource() string {
	return renderer.fontSource
}

// OutputDir returns the directory ticket images are written to.
func (renderer *Renderer) OutputDir() string {
	return renderer.cfg.OutputDir
}

// Close releases the font face.
func (renderer *Renderer) Close() error {
	if renderer.face == nil {
		return nil
	}
	return renderer.face.Close()
}

// Render writes <OutputDir>/<token>.png and returns its path.
func (renderer *Renderer) Render(ctx context.Context, request ticketing.RenderRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if request.Token.IsZero() {
		return "", wrapRenderError(errorSubjectBarcode, errorCodeEncode, ticketing.ErrInvalidToken)
	}
	ticketImage, err := renderer.compose(request)
	if err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&buffer, ticketImage); err != nil {
		return "", wrapRenderError(errorSubjectImage, errorCodeEncode, err)
	}
	data, err := withPhysicalDPI(buffer.Bytes(), renderer.cfg.DPI)
	if err != nil {
		return "", wrapRenderError(errorSubjectImage, errorCodeEncode, err)
	}
	return renderer.save(request.Token, data)
}

func (renderer *Renderer) compose(request ticketing.RenderRequest) (*image.RGBA, error) {
	bars, err := renderer.barcodeImage(request.Token.String())
	if err != nil {
		return nil, err
	}
	width := renderer.cfg.TargetWidth
	sourceBounds := bars.Bounds()
	height := sourceBounds.Dy() * width / sourceBounds.Dx()
	if height < 1 {
		height = 1
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), bars, sourceBounds, draw.Src, nil)

	lines := textLines(request)
	metrics := renderer.face.Metrics()
	lineHeight := metrics.Height.Ceil() + lineSpacing
	textAreaHeight := lineHeight*len(lines) + textAreaExtra

	canvas := image.NewRGBA(image.Rect(0, 0, width, height+textAreaHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, scaled.Bounds(), scaled, image.Point{}, draw.Src)

	drawer := font.Drawer{Dst: canvas, Src: image.NewUniform(color.Black), Face: renderer.face}
	top := height + textTopPadding
	for _, line := range lines {
		drawer.Dot = fixed.Point26_6{X: fixed.I(textLeft), Y: fixed.I(top) + metrics.Ascent}
		drawer.DrawString(line)
		top += lineHeight
	}
	return canvas, nil
}

func (renderer *Renderer) barcodeImage(content string) (*image.RGBA, error) {
	symbol, err := code128.Encode(content)
	if err != nil {
		return nil, wrapRenderError(errorSubjectBarcode, errorCodeEncode, err)
	}
	modules := symbol.Bounds().Dx()
	barsWidth := modules * renderer.cfg.ModuleWidth
	bars, err := barcode.Scale(symbol, barsWidth, renderer.cfg.BarHeight)
	if err != nil {
		return nil, wrapRenderError(errorSubjectBarcode, errorCodeScale, err)
	}
	quiet := renderer.cfg.QuietZone * renderer.cfg.ModuleWidth
	raster := image.NewRGBA(image.Rect(0, 0, barsWidth+2*quiet, renderer.cfg.BarHeight+2*verticalMargin))
	draw.Draw(raster, raster.Bounds(), image.White, image.Point{}, draw.Src)
	target := image.Rect(quiet, verticalMargin, quiet+barsWidth, verticalMargin+renderer.cfg.BarHeight)
	draw.Draw(raster, target, bars, bars.Bounds().Min, draw.Src)
	return raster, nil
}

func textLines(request ticketing.RenderRequest) []string {
	return []string{
		"Token: " + request.Token.String(),
		"Car type: " + request.VehicleType.String(),
		"Brand: " + request.Brand,
		"Plate: " + request.Plate,
		"Date: " + request.GeneratedAt.Format(ticketing.TimestampLayout),
	}
}

func (renderer *Renderer) save(token ticketing.Token, data []byte) (string, error) {
	if err := os.MkdirAll(renderer.cfg.OutputDir, 0o755); err != nil {
		return "", wrapRenderError(errorSubjectFile, errorCodeMkdir, err)
	}
	finalPath := filepath.Join(renderer.cfg.OutputDir, token.String()+imageExtension)
	tempPath := filepath.Join(renderer.cfg.OutputDir, fmt.Sprintf("%s.%s%s", token.String(), uuid.NewString(), tempExtension))
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return "", wrapRenderError(errorSubjectFile, errorCodeWrite, err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return "", wrapRenderError(errorSubjectFile, errorCodeRename, err)
	}
	return finalPath, nil
}

func wrapRenderError(subject string, code string, err error) error {
	return ticketing.WrapError(errorOperationRender, subject, code, err)
}
