package geom

// Project maps a layout-space rectangle into an overlay of the given
// pixel size. It is a pure function of its inputs and must be
// recomputed on every zoom, fit, or resize.
//
// The second return is false when any dimension is zero or negative, a
// normal condition while the page canvas has not been sized yet; the
// box is omitted instead of producing NaN or infinite geometry.
func Project(r Rect, overlayW, overlayH float64) (ScreenRect, bool) {
	if r.LayoutW <= 0 || r.LayoutH <= 0 || overlayW <= 0 || overlayH <= 0 {
		return ScreenRect{}, false
	}
	sx := overlayW / r.LayoutW
	sy := overlayH / r.LayoutH
	return ScreenRect{
		Left:   r.X * sx,
		Top:    r.Y * sy,
		Width:  r.W * sx,
		Height: r.H * sy,
	}, true
}
