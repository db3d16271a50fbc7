package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// RasterCompositor is the in-process layered raster backend: brand-colored
// canvas, optional hero image layer, headline/body text and a CTA pill.
type RasterCompositor struct {
	ttf    *truetype.Font
	http   *http.Client
	logger *zap.Logger
}

// NewRasterCompositor loads the compositor font from fontPath (TTF).
func NewRasterCompositor(fontPath string, logger *zap.Logger) (*RasterCompositor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", fontPath, err)
	}
	ttf, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &RasterCompositor{
		ttf:    ttf,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}, nil
}

func (r *RasterCompositor) face(size float64) font.Face {
	return truetype.NewFace(r.ttf, &truetype.Options{Size: size})
}

// RenderRaster is the rich path: hero image layer (fetched from its URL) over
// the brand background, or a carousel strip when cards are present.
func (r *RasterCompositor) RenderRaster(ctx context.Context, in RasterInput) (Result, error) {
	if len(in.Cards) > 0 {
		return r.renderCarousel(in)
	}

	dc := gg.NewContext(in.Width, in.Height)
	dc.SetColor(hexColor(in.Background))
	dc.Clear()

	textTop := float64(in.Height) * 0.12
	if in.HeroImageURL != "" {
		img, err := r.fetchImage(ctx, in.HeroImageURL)
		if err != nil {
			return Result{}, fmt.Errorf("hero image: %w", err)
		}
		heroH := in.Height / 2
		dc.DrawImage(coverResize(img, in.Width, heroH), 0, 0)
		textTop = float64(heroH) + float64(in.Height)*0.06
	}

	r.drawCopy(dc, in, textTop)
	return r.encode(dc.Image())
}

// RenderFallback is the simplified path: flat brand canvas and text only, no
// network fetches, so it stays usable when the rich path fails.
func (r *RasterCompositor) RenderFallback(_ context.Context, in RasterInput) (Result, error) {
	dc := gg.NewContext(in.Width, in.Height)
	dc.SetColor(hexColor(in.Background))
	dc.Clear()
	r.drawCopy(dc, in, float64(in.Height)*0.2)
	return r.encode(dc.Image())
}

// drawCopy lays out headline, body and the CTA pill below textTop.
func (r *RasterCompositor) drawCopy(dc *gg.Context, in RasterInput, textTop float64) {
	w := float64(dc.Width())
	h := float64(dc.Height())
	margin := w * 0.08

	dc.SetColor(hexColor(in.Accent))
	dc.DrawRectangle(margin, textTop, w*0.18, h*0.008)
	dc.Fill()

	dc.SetFontFace(r.face(w * 0.055))
	dc.SetColor(color.White)
	dc.DrawStringWrapped(in.Headline, margin, textTop+h*0.03, 0, 0, w-2*margin, 1.25, gg.AlignLeft)

	if in.Body != "" {
		dc.SetFontFace(r.face(w * 0.028))
		dc.SetColor(color.NRGBA{R: 230, G: 230, B: 230, A: 255})
		dc.DrawStringWrapped(in.Body, margin, textTop+h*0.16, 0, 0, w-2*margin, 1.4, gg.AlignLeft)
	}

	// CTA pill
	pillW, pillH := w*0.32, h*0.06
	pillX, pillY := margin, h-pillH-h*0.08
	dc.SetColor(hexColor(in.Accent))
	dc.DrawRoundedRectangle(pillX, pillY, pillW, pillH, pillH/2)
	dc.Fill()
	dc.SetFontFace(r.face(pillH * 0.42))
	dc.SetColor(color.White)
	dc.DrawStringAnchored(in.CTALabel, pillX+pillW/2, pillY+pillH/2, 0.5, 0.35)
}

// renderCarousel composes cards as equal tiles on one horizontal sheet.
func (r *RasterCompositor) renderCarousel(in RasterInput) (Result, error) {
	tile := in.Width
	dc := gg.NewContext(tile*len(in.Cards), in.Height)
	for i, card := range in.Cards {
		x := float64(i * tile)
		dc.SetColor(hexColor(in.Background))
		dc.DrawRectangle(x, 0, float64(tile), float64(in.Height))
		dc.Fill()

		margin := float64(tile) * 0.08
		dc.SetColor(hexColor(in.Accent))
		dc.DrawRectangle(x+margin, float64(in.Height)*0.12, float64(tile)*0.18, float64(in.Height)*0.008)
		dc.Fill()

		dc.SetFontFace(r.face(float64(tile) * 0.05))
		dc.SetColor(color.White)
		dc.DrawStringWrapped(card.Heading, x+margin, float64(in.Height)*0.18, 0, 0, float64(tile)-2*margin, 1.25, gg.AlignLeft)

		dc.SetFontFace(r.face(float64(tile) * 0.028))
		dc.SetColor(color.NRGBA{R: 230, G: 230, B: 230, A: 255})
		dc.DrawStringWrapped(card.Body, x+margin, float64(in.Height)*0.4, 0, 0, float64(tile)-2*margin, 1.4, gg.AlignLeft)
	}
	return r.encode(dc.Image())
}

func (r *RasterCompositor) fetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// encode prefers webp; falls back to png when the encoder is unavailable.
func (r *RasterCompositor) encode(img image.Image) (Result, error) {
	var buf bytes.Buffer
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
	if err == nil {
		if err = webp.Encode(&buf, img, opts); err == nil {
			return Result{Bytes: buf.Bytes(), ContentType: "image/webp"}, nil
		}
	}
	r.logger.Debug("webp encode unavailable, using png", zap.Error(err))
	buf.Reset()
	if err := png.Encode(&buf, img); err != nil {
		return Result{}, fmt.Errorf("encode png: %w", err)
	}
	return Result{Bytes: buf.Bytes(), ContentType: "image/png"}, nil
}

// coverResize scales img to fill w x h, cropping overflow.
func coverResize(img image.Image, w, h int) image.Image {
	src := img.Bounds()
	scale := max(float64(w)/float64(src.Dx()), float64(h)/float64(src.Dy()))
	sw, sh := int(float64(src.Dx())*scale), int(float64(src.Dy())*scale)
	scaled := image.NewRGBA(image.Rect(0, 0, sw, sh))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, src, xdraw.Over, nil)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	offX, offY := (sw-w)/2, (sh-h)/2
	xdraw.Copy(out, image.Point{}, scaled, image.Rect(offX, offY, offX+w, offY+h), xdraw.Over, nil)
	return out
}

func hexColor(s string) color.Color {
	c, ok := parseHex(s)
	if !ok {
		return color.NRGBA{R: 31, G: 41, B: 55, A: 255}
	}
	return color.NRGBA{R: c.r, G: c.g, B: c.b, A: 255}
}
