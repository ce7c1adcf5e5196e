package geometry

// Rect is an axis-aligned rectangle in top-left page space.
type Rect struct{ X, Y, W, H float64 }

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects reports whether the two rectangles overlap in both axes once each is
// grown by gap.
func (r Rect) Intersects(other Rect, gap float64) bool {
	return other.Bottom()+gap >= r.Y && other.Y <= r.Bottom()+gap &&
		other.Right()+gap >= r.X && other.X <= r.Right()+gap
}

// Enclose returns the smallest rectangle covering both.
func (r Rect) Enclose(other Rect) Rect {
	x, y := min(r.X, other.X), min(r.Y, other.Y)
	return Rect{X: x, Y: y, W: max(r.Right(), other.Right()) - x, H: max(r.Bottom(), other.Bottom()) - y}
}

// Anchor is the reference point of an element tested for containment. SW shifts the
// point into the element (x by SW, y by 2*SW) because a text anchor can sit on or
// just outside a ruling line.
type Anchor struct{ X, Y, SW float64 }

func (a Anchor) px() float64 { return a.X + a.SW }
func (a Anchor) py() float64 { return a.Y + a.SW*2 }

// Box is a cell rectangle. XE/YE are the right/bottom edges; XU is the last column
// boundary found inside the box.
type Box struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
	XE float64 `json:"xe"`
	YE float64 `json:"ye"`
	XU float64 `json:"-"`
}

func (b Box) Anchor() Anchor { return Anchor{X: b.X, Y: b.Y} }

// Contains tests a against the full extent [X, XE] x [Y, YE].
func (b Box) Contains(a Anchor) bool {
	x, y := a.px(), a.py()
	return x >= b.X && x <= b.XE && y >= b.Y && y <= b.YE
}

// Responsible tests a against [X, X+W] x [Y, Y+H], the part of the box no
// neighbouring cell claims.
func (b Box) Responsible(a Anchor) bool {
	x, y := a.px(), a.py()
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}
