// Package render draws the game onto camera frames with gocv: bins, falling
// objects, the hand cursor, the HUD panel and the phase overlays.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/ayusman/wastesort/internal/game"
	"github.com/ayusman/wastesort/internal/gesture"
	"gocv.io/x/gocv"
)

const font = gocv.FontHersheySimplex

// Cursor radii in pixels on an 800x600 frame.
const (
	grabRadius  = 25
	pointRadius = 15
)

// unit is the layout scale of a w x h frame, 1 at 800x600. Every length the
// renderer draws is a multiple of it.
func unit(w, h int) float64 {
	return math.Min(float64(w)/800, float64(h)/600)
}

// px scales a length given for an 800x600 frame.
func px(n int, u float64) int {
	return max(1, int(math.Round(float64(n)*u)))
}

func frameUnit(frame *gocv.Mat) float64 {
	return unit(frame.Cols(), frame.Rows())
}

// Renderer draws snapshots. It keeps no per-frame state.
type Renderer struct {
	palette Palette
}

// New creates a Renderer with the given palette, or DefaultPalette when nil.
func New(palette Palette) *Renderer {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Renderer{palette: palette}
}

// Draw renders snap and the hand signal onto frame. Only frame is written.
func (r *Renderer) Draw(frame *gocv.Mat, snap game.Snapshot, sig gesture.Signal) {
	if frame == nil || frame.Empty() {
		return
	}

	r.drawZones(frame, snap.Zones)

	switch snap.Phase {
	case game.PhaseStart:
		r.drawStart(frame)
	case game.PhasePlaying, game.PhasePaused:
		r.drawObjects(frame, snap.Objects)
		r.drawCursor(frame, sig)
		r.drawPanel(frame, snap)
		if snap.Phase == game.PhasePaused {
			r.drawPaused(frame)
		}
	case game.PhaseOver:
		r.drawObjects(frame, snap.Objects)
		r.drawGameOver(frame, snap)
	}
}

func (r *Renderer) drawZones(frame *gocv.Mat, zones []game.Zone) {
	u := frameUnit(frame)
	scale := 0.9 * u
	thick := px(2, u)

	for _, z := range zones {
		rect := toRect(z.Rect)
		gocv.Rectangle(frame, rect, r.palette.Color(z.Category), -1)
		gocv.Rectangle(frame, rect, White, px(3, u))

		label := z.Category.Label()
		size := gocv.GetTextSize(label, font, scale, thick)
		x := rect.Min.X + (rect.Dx()-size.X)/2
		y := rect.Min.Y + (rect.Dy()+size.Y)/2
		gocv.PutText(frame, label, image.Pt(x, y), font, scale, White, thick)
	}
}

func (r *Renderer) drawObjects(frame *gocv.Mat, objects []game.Object) {
	u := frameUnit(frame)
	scale := 0.8 * u
	thick := px(2, u)

	for _, o := range objects {
		rect := image.Rect(int(o.X), int(o.Y), int(o.X+o.Size), int(o.Y+o.Size))
		gocv.Rectangle(frame, rect, r.palette.Color(o.Category), -1)
		gocv.Rectangle(frame, rect, White, thick)
		if o.State == game.Dragged {
			gocv.Rectangle(frame, rect.Inset(-px(3, u)), GrabGreen, thick)
		}

		label := o.Category.Label()
		size := gocv.GetTextSize(label, font, scale, thick)
		x := rect.Min.X + (rect.Dx()-size.X)/2
		gocv.PutText(frame, label, image.Pt(x, rect.Max.Y-px(6, u)), font, scale, Black, thick)
	}
}

func (r *Renderer) drawCursor(frame *gocv.Mat, sig gesture.Signal) {
	if !sig.Present {
		return
	}
	c := image.Pt(int(sig.X), int(sig.Y))
	u := frameUnit(frame)

	if sig.Pinching {
		radius := px(grabRadius, u)
		gocv.Circle(frame, c, radius, GrabGreen, -1)
		gocv.Circle(frame, c, radius, White, px(3, u))
		gocv.PutText(frame, "GRAB", image.Pt(c.X-radius, c.Y-radius-px(10, u)), font, 0.7*u, GrabGreen, px(2, u))
		return
	}
	radius := px(pointRadius, u)
	gocv.Circle(frame, c, radius, Alert, -1)
	gocv.Circle(frame, c, radius, White, px(2, u))
}

func toRect(r game.Rect) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
}

// centerText draws text horizontally centered on the frame at baseline y.
func centerText(frame *gocv.Mat, text string, y int, scale float64, c color.RGBA, thickness int) {
	size := gocv.GetTextSize(text, font, scale, thickness)
	gocv.PutText(frame, text, image.Pt((frame.Cols()-size.X)/2, y), font, scale, c, thickness)
}

// dim blends frame towards black, keeping 1-alpha of the original.
func dim(frame *gocv.Mat, alpha float64) {
	overlay := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frame.Rows(), frame.Cols(), frame.Type())
	defer overlay.Close()
	gocv.AddWeighted(overlay, alpha, *frame, 1-alpha, 0, frame)
}
