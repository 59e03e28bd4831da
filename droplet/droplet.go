// Package droplet implements a single vertical streak of falling characters.
//
// A Droplet is driven by its owner once per animation tick, always in the
// order Advance, Draw, SyncCurLine. Motion is derived from wall-clock time
// elapsed since the droplet's own last tick, so droplets ticked at irregular
// intervals stay consistent with each other.
package droplet

import (
	"time"
)

// headBrightWindow is how long the head stays bright after it stops.
const headBrightWindow = 100 * time.Millisecond

// Params fixes the geometry and timing of a Droplet at construction.
type Params struct {
	Column      int           // Screen column this droplet renders to
	EndLine     int           // The head will not advance past this line
	CharPoolIdx int           // Index into the cloud's char pool
	Length      int           // Maximum chars between tail and head
	CharsPerSec float64       // How many lines the head moves per second
	Linger      time.Duration // Pause between head stop and tail restart
	Epoch       bool          // Which epoch this droplet was created in
}

// Droplet is a single vertical character string.
type Droplet struct {
	cloud Cloud // Non-owning; the cloud tracks attributes and chars

	alive        bool
	headCrawling bool
	tailCrawling bool
	epoch        bool

	col         int
	headPutLine int // Where we are advancing the head
	headCurLine int // Where the head was last drawn
	tailPutLine int // Where we are advancing the tail, valid once tailStarted
	tailCurLine int // The last erased line in this column
	tailStarted bool
	endLine     int
	charPoolIdx int
	length      int

	frozen        bool
	dataOffset    int // Relative offset of the top frozen char
	topFreezeLine int // Where the upper char was at epoch end

	charsPerSec     float64
	fractionalChars float64 // Sub-line motion carried between ticks
	lastTick        time.Time
	headStopTime    time.Time
	linger          time.Duration
}

// New creates an inert droplet bound to cloud. Call Activate to start it.
func New(cloud Cloud, p Params) *Droplet {
	d := &Droplet{}
	d.Init(cloud, p)
	return d
}

// Init reinitializes d in place as an inert droplet, so pooled droplets can
// be reused without allocating.
func (d *Droplet) Init(cloud Cloud, p Params) {
	*d = Droplet{
		cloud:       cloud,
		col:         p.Column,
		endLine:     p.EndLine,
		charPoolIdx: p.CharPoolIdx,
		length:      p.Length,
		charsPerSec: p.CharsPerSec,
		linger:      p.Linger,
		epoch:       p.Epoch,
	}
}

// Reset returns the droplet to its zero value so it can be pooled.
func (d *Droplet) Reset() {
	*d = Droplet{}
}

// Activate starts both ends crawling from now.
func (d *Droplet) Activate(now time.Time) {
	d.alive = true
	d.headCrawling = true
	d.tailCrawling = true
	d.lastTick = now
}

// Advance moves the head and tail by however many whole lines have
// accumulated since the last tick.
func (d *Droplet) Advance(now time.Time) {
	elapsed := now.Sub(d.lastTick)
	if elapsed < 0 {
		elapsed = 0
	}
	d.fractionalChars += d.charsPerSec * elapsed.Seconds()
	advanced := int(d.fractionalChars)
	if advanced == 0 {
		d.lastTick = now
		return
	}
	d.fractionalChars -= float64(advanced)

	// Threshold detection works against what was last drawn
	oldTailCurLine := d.tailCurLine

	if d.headCrawling {
		d.headPutLine = min(d.headPutLine+advanced, d.endLine)

		if d.headPutLine == d.endLine {
			d.headCrawling = false
			if d.headStopTime.IsZero() {
				d.headStopTime = now
				if d.linger > 0 {
					d.tailCrawling = false
				}
			}
		}
	}

	// The tail waits until the streak is full length or pinned at the end
	if d.tailCrawling && (d.headPutLine >= d.length || d.headPutLine >= d.endLine) {
		if d.tailStarted {
			d.tailPutLine += advanced
		} else {
			d.tailPutLine = advanced
			d.tailStarted = true
		}
		d.tailPutLine = min(d.tailPutLine, d.endLine)

		threshLine := d.cloud.Lines() / 4
		if oldTailCurLine <= threshLine && d.tailPutLine > threshLine {
			d.cloud.SetColumnSpawn(d.col, true)
		}
	}

	if !d.tailCrawling && !d.headStopTime.IsZero() && !now.Before(d.headStopTime.Add(d.linger)) {
		d.tailCrawling = true
	}
	if d.tailStarted && d.tailPutLine == d.headPutLine {
		d.alive = false
	}
	d.lastTick = now
}

// SyncCurLine records the put lines as drawn. It must follow Draw.
func (d *Droplet) SyncCurLine() {
	d.headCurLine = d.headPutLine
	if d.tailStarted {
		d.tailCurLine = d.tailPutLine
	}
}

// Draw erases the lines the tail swept past and paints the lines between
// tail and head. It reads the cur lines but never writes them, so calling
// it twice before SyncCurLine paints the same frame twice.
func (d *Droplet) Draw(scr Display, now time.Time) {
	startLine := 0
	if d.tailStarted {
		for line := d.tailCurLine; line <= d.tailPutLine; line++ {
			scr.PaintCell(line, d.col, Blank)
		}
		startLine = d.tailPutLine + 1
	}

	bright := d.isHeadBright(now)
	shading := d.cloud.ShadingMode()
	colored := d.cloud.ColorMode() != ColorMono

	for line := startLine; line <= d.headPutLine; line++ {
		var off Offset
		if d.frozen && line >= d.topFreezeLine {
			off = Offset{Index: d.dataOffset + line - d.topFreezeLine, Frozen: true}
		}
		ch := d.cloud.Char(line, d.charPoolIdx, off)

		loc := LocMiddle
		if d.tailStarted && line == d.tailPutLine+1 {
			loc = LocTail
		}
		if line == d.headPutLine && bright {
			loc = LocHead
		}

		// Chars between the tail and the last drawn head have not changed
		if loc == LocMiddle && line < d.headCurLine && line != d.endLine &&
			shading != ShadingDistanceFromHead {
			continue
		}

		attr := d.cloud.Attr(line, d.col, ch, loc, now, d.headPutLine, d.length)
		cell := Cell{Ch: ch, Bold: attr.Bold}
		if colored {
			cell.Colored = true
			cell.ColorPair = attr.ColorPair
		}
		scr.PaintCell(line, d.col, cell)
	}
}

func (d *Droplet) isHeadBright(now time.Time) bool {
	if d.headCrawling {
		return true
	}
	return !d.headStopTime.IsZero() && !now.After(d.headStopTime.Add(headBrightWindow))
}

// IsAlive reports whether the droplet is still on screen.
func (d *Droplet) IsAlive() bool { return d.alive }

// Column returns the screen column the droplet renders to.
func (d *Droplet) Column() int { return d.col }

// HeadPutLine returns the line the head is advancing to.
func (d *Droplet) HeadPutLine() int { return d.headPutLine }

// CharPoolIdx returns the droplet's char pool sequence.
func (d *Droplet) CharPoolIdx() int { return d.charPoolIdx }

// Epoch returns the epoch the droplet was created in.
func (d *Droplet) Epoch() bool { return d.epoch }

// HeadCrawling reports whether the head is still moving.
func (d *Droplet) HeadCrawling() bool { return d.headCrawling }

// TailCrawling reports whether the tail is moving, false while lingering.
func (d *Droplet) TailCrawling() bool { return d.tailCrawling }

// TailPutLine reports the tail line and whether the tail has started moving.
func (d *Droplet) TailPutLine() (int, bool) {
	return d.tailPutLine, d.tailStarted
}

// SetCharsPerSec changes the speed from the next tick on.
func (d *Droplet) SetCharsPerSec(cps float64) { d.charsPerSec = cps }

// SetCloud rebinds the droplet to a cloud, e.g. after Reset.
func (d *Droplet) SetCloud(c Cloud) { d.cloud = c }

// SetSimulationData freezes the lines at and below topFreezeLine onto data
// starting at dataOffset.
func (d *Droplet) SetSimulationData(dataOffset, topFreezeLine int) {
	d.dataOffset = dataOffset
	d.topFreezeLine = topFreezeLine
	d.frozen = true
}

// SimulationData returns the freeze parameters, ok is false until set.
func (d *Droplet) SimulationData() (dataOffset, topFreezeLine int, ok bool) {
	return d.dataOffset, d.topFreezeLine, d.frozen
}
