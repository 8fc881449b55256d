package main

// CheckCollision checks if two circles overlap. Touching circles do not.
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 < radSum*radSum
}

// overlapsX reports whether a circle of radius r at x overlaps the span [left, left+w]
// on the horizontal axis
func overlapsX(x, r, left, w float64) bool {
	return x+r > left && x-r < left+w
}

// within reports whether (x,y) lies within an axis-aligned box of half-size
// radius around (cx,cy)
func within(x, y, cx, cy, radius float64) bool {
	dx := x - cx
	dy := y - cy
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx < radius && dy < radius
}
