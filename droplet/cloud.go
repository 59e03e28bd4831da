package droplet

import "time"

// CharLoc describes where a char sits within a Droplet.
type CharLoc int

const (
	LocMiddle CharLoc = iota
	LocTail
	LocHead
)

// String returns the lowercase name of the location.
func (l CharLoc) String() string {
	switch l {
	case LocTail:
		return "tail"
	case LocHead:
		return "head"
	default:
		return "middle"
	}
}

// ShadingMode selects how a Cloud shades the middle of a droplet.
type ShadingMode int

const (
	ShadingRandom           ShadingMode = iota // Random pair per cell
	ShadingDistanceFromHead                    // Pair fades with distance from the head
)

// ColorMode is the color capability a Cloud renders with.
type ColorMode int

const (
	ColorMono ColorMode = iota
	Color16
	Color256
	ColorTrue
)

// String returns the flag spelling of the mode.
func (m ColorMode) String() string {
	switch m {
	case Color16:
		return "16"
	case Color256:
		return "256"
	case ColorTrue:
		return "truecolor"
	default:
		return "mono"
	}
}

// Offset locates a glyph in frozen epoch data.
// The zero value means live, unfrozen data.
type Offset struct {
	Index  int
	Frozen bool
}

// CharAttr holds the paint attributes a Cloud resolves for a cell.
type CharAttr struct {
	Bold      bool
	ColorPair int
}

// Cloud owns the grid a droplet renders into. It supplies glyphs and
// attributes and receives the column spawn signal.
type Cloud interface {
	Lines() int
	Char(line, poolIdx int, off Offset) rune
	ShadingMode() ShadingMode
	ColorMode() ColorMode
	Attr(line, col int, ch rune, loc CharLoc, now time.Time, headLine, length int) CharAttr
	SetColumnSpawn(col int, ok bool)
}

// Cell is a single glyph painted to a Display.
type Cell struct {
	Ch        rune
	Bold      bool
	Colored   bool // ColorPair applies only when set
	ColorPair int
}

// Blank is the cell used to erase the trailing edge of a droplet.
var Blank = Cell{Ch: ' '}

// Display paints cells onto a character grid.
type Display interface {
	PaintCell(line, col int, c Cell)
}
