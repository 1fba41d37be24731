package render

import (
	"image/color"

	"github.com/ayusman/wastesort/internal/game"
)

// Colors are given in RGB; gocv converts them to the frame's BGR order.
var (
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black     = color.RGBA{A: 255}
	Gray      = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	Alert     = color.RGBA{R: 255, G: 50, B: 50, A: 255}
	GrabGreen = color.RGBA{R: 50, G: 255, B: 50, A: 255}
	Hint      = color.RGBA{R: 144, G: 238, B: 144, A: 255}
	Forest    = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	Charcoal  = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	Unknown   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Palette maps each category to its bin and object colour.
type Palette map[game.Category]color.RGBA

// DefaultPalette returns blue plastic, yellow paper, red metal and green organic.
func DefaultPalette() Palette {
	return Palette{
		game.Plastic: {R: 50, G: 100, B: 255, A: 255},
		game.Paper:   {R: 255, G: 215, B: 0, A: 255},
		game.Metal:   {R: 255, G: 50, B: 50, A: 255},
		game.Organic: {R: 50, G: 200, B: 50, A: 255},
	}
}

// Color returns the colour for c, or Unknown.
func (p Palette) Color(c game.Category) color.RGBA {
	if col, ok := p[c]; ok {
		return col
	}
	return Unknown
}
