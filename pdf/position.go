package pdf

import "strings"

// Position is a corner of the page the logo is anchored to.
type Position string

const (
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
)

// Positions lists every supported corner.
var Positions = []Position{TopLeft, TopRight, BottomLeft, BottomRight}

// ParsePosition parses one of the four corner names.
// Matching ignores case and surrounding whitespace.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", invalidParam("position", "%q is not one of top-left, top-right, bottom-left, bottom-right", s)
	}
	return p, nil
}

// Valid reports whether p is one of the supported corners.
func (p Position) Valid() bool {
	switch p {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return true
	}
	return false
}

func (p Position) String() string { return string(p) }
