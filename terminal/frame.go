package terminal

import "neo_rain/droplet"

// Frame represents the in-memory terminal screen state.
type Frame struct {
	cells  [][]droplet.Cell
	height int
	width  int
}

// NewFrame creates a blank Frame with the given dimensions.
func NewFrame(height, width int) *Frame {
	cells := make([][]droplet.Cell, height)
	for i := range cells {
		cells[i] = make([]droplet.Cell, width)
	}
	f := &Frame{cells: cells, height: height, width: width}
	f.clear()
	return f
}

// clear resets every cell to blank.
func (f *Frame) clear() {
	for i := range f.cells {
		for j := range f.cells[i] {
			f.cells[i][j] = droplet.Blank
		}
	}
}

func (f *Frame) set(line, col int, c droplet.Cell) {
	if line < 0 || line >= f.height || col < 0 || col >= f.width {
		return
	}
	f.cells[line][col] = c
}

func (f *Frame) sameSize(o *Frame) bool {
	return o != nil && o.height == f.height && o.width == f.width
}

// copyFrame copies src into dst. Both must have the same size.
func copyFrame(src, dst *Frame) {
	for r := range src.cells {
		copy(dst.cells[r], src.cells[r])
	}
}
