package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/wastesort/internal/game"
	"gocv.io/x/gocv"
)

// missedWarning is the miss count from which the counter turns red.
const missedWarning = 3

var instructions = []string{
	"Show your hand to the camera",
	"Pinch to grab trash",
	"Drag to the matching bin",
	"Release to drop",
}

var controls = []string{
	"Press SPACE to Start",
	"Press P to Pause",
	"Press Q to Quit",
}

// hudLayout places the score panel and the baselines of its three lines.
type hudLayout struct {
	panel     image.Rectangle
	textX     int
	baselines [3]int
	scale     float64
	thick     int
}

func panelLayout(w, h int) hudLayout {
	u := unit(w, h)
	margin := px(10, u)
	step := px(30, u)

	l := hudLayout{
		panel: image.Rect(margin, margin, margin+px(260, u), margin+3*step+step/2),
		textX: margin + px(15, u),
		scale: 0.8 * u,
		thick: px(2, u),
	}
	for i := range l.baselines {
		l.baselines[i] = margin + (i+1)*step
	}
	return l
}

// overlayBox centres a box covering the given shares of the frame.
func overlayBox(w, h int, fw, fh float64) image.Rectangle {
	bw, bh := int(float64(w)*fw), int(float64(h)*fh)
	return image.Rect((w-bw)/2, (h-bh)/2, (w+bw)/2, (h+bh)/2)
}

// at returns the row n/d of the way down box.
func at(box image.Rectangle, n, d int) int {
	return box.Min.Y + box.Dy()*n/d
}

func (r *Renderer) drawPanel(frame *gocv.Mat, snap game.Snapshot) {
	l := panelLayout(frame.Cols(), frame.Rows())

	gocv.Rectangle(frame, l.panel, White, -1)
	gocv.Rectangle(frame, l.panel, Gray, l.thick)

	missedColor := Black
	if snap.Missed >= missedWarning {
		missedColor = Alert
	}
	lines := [3]struct {
		text  string
		color color.RGBA
	}{
		{fmt.Sprintf("Score: %d", snap.Score), Black},
		{fmt.Sprintf("Missed: %d/%d", snap.Missed, snap.MaxMissed), missedColor},
		{fmt.Sprintf("Level: %d", snap.Level), Black},
	}
	for i, ln := range lines {
		gocv.PutText(frame, ln.text, image.Pt(l.textX, l.baselines[i]), font, l.scale, ln.color, l.thick)
	}
}

func (r *Renderer) drawStart(frame *gocv.Mat) {
	w, h := frame.Cols(), frame.Rows()
	u := unit(w, h)
	dim(frame, 0.7)

	box := overlayBox(w, h, 0.75, 0.6)
	gocv.Rectangle(frame, box, Forest, -1)
	gocv.Rectangle(frame, box, White, px(3, u))

	centerText(frame, "SMART WASTE", at(box, 1, 6), 1.1*u, White, px(2, u))

	line := box.Dy() * 28 / 360
	y := at(box, 1, 3)
	for _, s := range instructions {
		centerText(frame, s, y, 0.7*u, Hint, 1)
		y += line
	}
	y += line / 2
	for _, s := range controls {
		centerText(frame, s, y, 0.7*u, White, 1)
		y += line
	}
}

func (r *Renderer) drawPaused(frame *gocv.Mat) {
	w, h := frame.Cols(), frame.Rows()
	u := unit(w, h)
	dim(frame, 0.6)

	centerText(frame, "PAUSED", h/2, 1.2*u, White, px(2, u))
	centerText(frame, "Press P to Resume", h/2+px(50, u), 0.7*u, White, 1)
}

func (r *Renderer) drawGameOver(frame *gocv.Mat, snap game.Snapshot) {
	w, h := frame.Cols(), frame.Rows()
	u := unit(w, h)
	dim(frame, 0.8)

	box := overlayBox(w, h, 0.625, 0.5)
	gocv.Rectangle(frame, box, Charcoal, -1)
	gocv.Rectangle(frame, box, Alert, px(3, u))

	centerText(frame, "GAME OVER", at(box, 1, 5), 1.6*u, Alert, px(3, u))
	centerText(frame, fmt.Sprintf("Final Score: %d", snap.Score), at(box, 2, 5), 1.0*u, White, px(2, u))
	centerText(frame, fmt.Sprintf("Level Reached: %d", snap.Level), at(box, 17, 30), 0.9*u, Hint, px(2, u))
	centerText(frame, "Press R to Restart | Q to Quit", at(box, 11, 15), 0.6*u, White, 1)
}
