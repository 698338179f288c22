// Package math provides the geometry helpers shared by the portal traversal and
// transfer code: viewport rectangles, planes, bounds, frustums and projection
// adjustments. Vector and matrix types come from mathgl.
package math

// Rect is a viewport rectangle in normalized screen space, origin bottom-left.
type Rect struct {
	X, Y, W, H float32
}

// FullRect returns the whole-screen rectangle [0,1]².
func FullRect() Rect {
	return Rect{X: 0, Y: 0, W: 1, H: 1}
}

// RectFromMinMax builds a rectangle from its corner coordinates.
func RectFromMinMax(minX, minY, maxX, maxY float32) Rect {
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float32 { return r.X + r.W }

// MaxY returns the top edge.
func (r Rect) MaxY() float32 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Clamp01 clips the rectangle to [0,1]².
func (r Rect) Clamp01() Rect {
	minX := clamp(r.X, 0, 1)
	minY := clamp(r.Y, 0, 1)
	maxX := clamp(r.MaxX(), 0, 1)
	maxY := clamp(r.MaxY(), 0, 1)
	return Rect{X: minX, Y: minY, W: max(0, maxX-minX), H: max(0, maxY-minY)}
}

// Expand grows every edge by margin and clips the result to [0,1]².
func (r Rect) Expand(margin float32) Rect {
	return Rect{
		X: r.X - margin,
		Y: r.Y - margin,
		W: r.W + 2*margin,
		H: r.H + 2*margin,
	}.Clamp01()
}

// Overlaps reports whether the two rectangles share a region of positive area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Intersect returns the common region. Disjoint rectangles yield an empty
// rectangle positioned at the nearest edge of o.
func (r Rect) Intersect(o Rect) Rect {
	minX := max(r.X, o.X)
	minY := max(r.Y, o.Y)
	maxX := min(r.MaxX(), o.MaxX())
	maxY := min(r.MaxY(), o.MaxY())
	if maxX < minX {
		maxX = minX
	}
	if maxY < minY {
		maxY = minY
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains reports whether o lies inside r within eps.
func (r Rect) Contains(o Rect, eps float32) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps && o.MaxX() <= r.MaxX()+eps && o.MaxY() <= r.MaxY()+eps
}

// EnsureMinSize grows a degenerate rectangle about its center until both sides
// are at least size, keeping it inside [0,1]².
func (r Rect) EnsureMinSize(size float32) Rect {
	size = clamp(size, 0, 1)
	r = r.Clamp01()
	if r.W < size {
		cx := r.X + r.W/2
		r.W = size
		r.X = clamp(cx-size/2, 0, 1-size)
	}
	if r.H < size {
		cy := r.Y + r.H/2
		r.H = size
		r.Y = clamp(cy-size/2, 0, 1-size)
	}
	return r
}

// EnsureMinSizeWithin grows r like EnsureMinSize and then slides it back
// inside bounds. A bounds side shorter than size pins that side to bounds.
func (r Rect) EnsureMinSizeWithin(bounds Rect, size float32) Rect {
	bounds = bounds.Clamp01()
	r = r.EnsureMinSize(size)
	r.X, r.W = fitSpan(r.X, r.W, bounds.X, bounds.W)
	r.Y, r.H = fitSpan(r.Y, r.H, bounds.Y, bounds.H)
	return r
}

func fitSpan(pos, length, lo, span float32) (float32, float32) {
	if length >= span {
		return lo, span
	}
	return clamp(pos, lo, lo+span-length), length
}

// ToPixels converts the rectangle to integer pixel coordinates for a target of
// the given size.
func (r Rect) ToPixels(width, height int) (x, y, w, h int32) {
	x = int32(r.X * float32(width))
	y = int32(r.Y * float32(height))
	w = int32(r.MaxX()*float32(width)) - x
	h = int32(r.MaxY()*float32(height)) - y
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return x, y, w, h
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
