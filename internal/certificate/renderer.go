package certificate

import (
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Fit search tuning: the search walks down from the requested size in
// fitStep decrements until the measured run fits inside the box minus its
// padding, stopping at minFontSize. boxPadding applies per side, so a box
// loses twice that per axis.
const (
	fitStep     = 2
	minFontSize = 10
	boxPadding  = 5
)

// FaceSource resolves a font name and pixel size to a drawable face.
// Implementations must always hand back a usable face; substituting for
// unknown names is the source's job, not the renderer's.
type FaceSource interface {
	Face(name string, size float64) font.Face
}

// Renderer draws text boxes onto certificate templates. It holds no
// per-render state and is safe for concurrent use when its FaceSource is.
type Renderer struct {
	fonts FaceSource
}

// NewRenderer creates a Renderer drawing with faces from fonts.
func NewRenderer(fonts FaceSource) *Renderer {
	return &Renderer{fonts: fonts}
}

// Render clones template and draws each box onto the clone in slice order,
// so later boxes paint over earlier ones. The template itself is never
// modified; one decoded template can serve any number of renders.
func (r *Renderer) Render(template image.Image, boxes []TextBox) *image.NRGBA {
	img := imaging.Clone(template)
	for _, box := range boxes {
		r.drawBox(img, box)
	}
	return img
}

// drawBox fits, aligns and draws a single text box. Boxes with blank text
// are skipped outright: no font load, no measurement.
func (r *Renderer) drawBox(dst *image.NRGBA, box TextBox) {
	if strings.TrimSpace(box.Text) == "" {
		return
	}

	face := r.fitFace(box)
	defer face.Close()
	textW, textH, origin := measure(face, box.Text)

	x, y, w, h := int(box.X), int(box.Y), int(box.W), int(box.H)

	var textX int
	switch box.HAlign {
	case AlignLeft:
		textX = x + boxPadding
	case AlignRight:
		textX = x + w - textW - boxPadding
	default:
		textX = x + (w-textW)/2
	}

	var textY int
	switch box.VAlign {
	case AlignTop:
		textY = y + boxPadding
	case AlignMiddle:
		textY = y + (h-textH)/2
	default:
		textY = y + h - textH - boxPadding
	}

	col, err := ParseColor(box.FontColor)
	if err != nil {
		// Validation happens at the boundary; here an invalid color
		// degrades to black rather than failing the render.
		col = color.NRGBA{A: 0xff}
	}

	// The glyph-run bounding box rarely starts at the dot. Shifting the
	// dot by the measured origin makes the visible pixels land exactly at
	// the computed position.
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(textX) - origin.X,
			Y: fixed.I(textY) - origin.Y,
		},
	}
	d.DrawString(box.Text)
}

// fitFace finds the largest face size whose measured run fits the box on
// both axes. When even the floor size overflows it returns the floor face
// anyway: clipped text beats a failed certificate.
func (r *Renderer) fitFace(box TextBox) font.Face {
	boxW, boxH := int(box.W), int(box.H)
	for size := int(box.FontSize); size >= minFontSize; size -= fitStep {
		face := r.fonts.Face(box.FontFile, float64(size))
		w, h, _ := measure(face, box.Text)
		if w <= boxW-2*boxPadding && h <= boxH-2*boxPadding {
			return face
		}
		face.Close()
	}
	return r.fonts.Face(box.FontFile, minFontSize)
}

// measure returns the pixel span of the rendered run and the bounding box
// origin relative to the dot.
func measure(face font.Face, text string) (w, h int, origin fixed.Point26_6) {
	bounds, _ := font.BoundString(face, text)
	w = (bounds.Max.X - bounds.Min.X).Ceil()
	h = (bounds.Max.Y - bounds.Min.Y).Ceil()
	return w, h, bounds.Min
}
