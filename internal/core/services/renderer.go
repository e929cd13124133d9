package services

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"diagnostic-imaging-service/internal/core/domain"
)

// labelPalette holds the fixed overlay colors. A label is mapped onto the
// palette by hashing its identity, so the same label always gets the same
// color within and across renders.
var labelPalette = []color.NRGBA{
	{R: 220, G: 38, B: 38, A: 255},  // red
	{R: 5, G: 150, B: 105, A: 255},  // green
	{R: 59, G: 130, B: 246, A: 255}, // blue
	{R: 245, G: 158, B: 11, A: 255}, // amber
	{R: 147, G: 51, B: 234, A: 255}, // purple
	{R: 13, G: 148, B: 136, A: 255}, // teal
}

func labelColor(label string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(label))
	return labelPalette[h.Sum32()%uint32(len(labelPalette))]
}

// Renderer draws prediction overlays onto a copy of a source image. The zero
// value renders labels with gg's built-in bitmap face; NewRendererWithFont
// loads a TTF face for nicer tags.
type Renderer struct {
	face font.Face
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func NewRendererWithFont(fontPath string, size float64) (*Renderer, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: size})
	return &Renderer{face: face}, nil
}

// Render returns a new pixel buffer with every prediction drawn in input
// order: geometry outline over a semi-transparent fill, plus a filled label
// tag anchored at the geometry's topmost point. Later predictions may overlap
// earlier ones. The source buffer is never touched; with no predictions the
// result is a plain copy.
func (r *Renderer) Render(src image.Image, preds []domain.Prediction) *image.RGBA {
	out := cloneRGBA(src)
	if len(preds) == 0 {
		return out
	}

	dc := gg.NewContextForRGBA(out)
	if r.face != nil {
		dc.SetFontFace(r.face)
	}

	for _, p := range preds {
		col := labelColor(p.Label)
		r.drawGeometry(dc, p, col)
		r.drawLabelTag(dc, p, col)
	}

	return out
}

func (r *Renderer) drawGeometry(dc *gg.Context, p domain.Prediction, col color.NRGBA) {
	if p.IsPolygon() {
		dc.NewSubPath()
		dc.MoveTo(p.Points[0].X, p.Points[0].Y)
		for _, pt := range p.Points[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.ClosePath()
	} else {
		dc.DrawRectangle(p.X-p.Width/2, p.Y-p.Height/2, p.Width, p.Height)
	}

	dc.SetColor(color.NRGBA{R: col.R, G: col.G, B: col.B, A: 102})
	dc.FillPreserve()
	dc.SetColor(col)
	dc.SetLineWidth(2)
	dc.Stroke()
}

func (r *Renderer) drawLabelTag(dc *gg.Context, p domain.Prediction, col color.NRGBA) {
	ax, ay := anchorPoint(p)
	text := fmt.Sprintf("%s %.1f%%", p.Label, p.Confidence*100)

	const pad = 4.0
	tw, th := dc.MeasureString(text)
	tagY := ay - th - 2*pad
	if tagY < 0 {
		tagY = ay
	}

	dc.SetColor(col)
	dc.DrawRectangle(ax, tagY, tw+2*pad, th+2*pad)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawString(text, ax+pad, tagY+pad+th)
}

// anchorPoint is the topmost vertex of the geometry (minimum Y).
func anchorPoint(p domain.Prediction) (float64, float64) {
	if !p.IsPolygon() {
		return p.X - p.Width/2, p.Y - p.Height/2
	}
	ax, ay := p.Points[0].X, p.Points[0].Y
	for _, pt := range p.Points[1:] {
		if pt.Y < ay {
			ax, ay = pt.X, pt.Y
		}
	}
	return ax, ay
}

func cloneRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
