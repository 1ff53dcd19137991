package pdf

// ResolveOrigin returns the lower-left corner of the logo bounding box in
// page space (origin at lower-left, y up).
//
// The result is not clamped: a logo larger than the page minus padding ends
// up partly off-page, or at a negative origin.
func ResolveOrigin(pageWidth, pageHeight, displayWidth, displayHeight, padding float64, pos Position) (x, y float64) {
	left := padding
	right := pageWidth - padding - displayWidth
	bottom := padding
	top := pageHeight - padding - displayHeight

	switch pos {
	case TopLeft:
		return left, top
	case TopRight:
		return right, top
	case BottomRight:
		return right, bottom
	default:
		return left, bottom
	}
}
