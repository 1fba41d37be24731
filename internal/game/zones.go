package game

// ZoneLayout splits the bottom band of the play area into equal-width bins,
// one per category, left to right.
type ZoneLayout struct {
	width      float64
	height     float64
	band       float64
	categories []Category
}

// NewZoneLayout creates a layout for a width x height play area.
// The band is clamped to the play-area height.
func NewZoneLayout(width, height, band float64, categories []Category) ZoneLayout {
	cats := make([]Category, len(categories))
	copy(cats, categories)
	l := ZoneLayout{band: band, categories: cats}
	l.Resize(width, height)
	return l
}

// Resize recomputes the layout for a new play-area size.
func (l *ZoneLayout) Resize(width, height float64) {
	l.width = width
	l.height = height
}

func (l ZoneLayout) Width() float64  { return l.width }
func (l ZoneLayout) Height() float64 { return l.height }

// BandHeight returns the effective height of the bin strip.
func (l ZoneLayout) BandHeight() float64 {
	if l.band > l.height {
		return l.height
	}
	return l.band
}

// Len returns the number of zones.
func (l ZoneLayout) Len() int {
	return len(l.categories)
}

// ZoneWidth returns width / N.
func (l ZoneLayout) ZoneWidth() float64 {
	if len(l.categories) == 0 {
		return 0
	}
	return l.width / float64(len(l.categories))
}

// BandTop returns the y coordinate where the bin strip starts.
func (l ZoneLayout) BandTop() float64 {
	return l.height - l.BandHeight()
}

// InBand reports whether y lies below the top of the bin strip.
func (l ZoneLayout) InBand(y float64) bool {
	return y > l.BandTop()
}

// Category returns the category bound to zone i.
func (l ZoneLayout) Category(i int) Category {
	return l.categories[i]
}

// Categories returns a copy of the zone categories in order.
func (l ZoneLayout) Categories() []Category {
	cats := make([]Category, len(l.categories))
	copy(cats, l.categories)
	return cats
}

// Zone returns the rectangle of zone i.
func (l ZoneLayout) Zone(i int) Rect {
	zw := l.ZoneWidth()
	return Rect{X: float64(i) * zw, Y: l.BandTop(), W: zw, H: l.BandHeight()}
}

// ZoneAt returns the zone column containing x. ok is false when x is
// outside the play area or there are no zones.
func (l ZoneLayout) ZoneAt(x float64) (int, bool) {
	if len(l.categories) == 0 || x < 0 || x > l.width {
		return 0, false
	}
	i := int(x / l.ZoneWidth())
	if i >= len(l.categories) {
		i = len(l.categories) - 1
	}
	return i, true
}
