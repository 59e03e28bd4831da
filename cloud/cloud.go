// Package cloud coordinates the droplets of a rain animation. A Cloud owns
// the character grid geometry, the glyph pool and the per-column spawn
// flags, and drives every live droplet once per animation tick.
package cloud

import (
	"log/slog"
	"math/rand"
	"time"

	"neo_rain/droplet"
)

// spawnChance is the per-tick probability of a new droplet in an eligible
// column at density 1.0.
const spawnChance = 0.1

// minPairs is the smallest usable palette: tail, middle and head.
const minPairs = 3

// Options holds the droplet ranges and rendering modes of a Cloud.
type Options struct {
	CharSet   []rune
	MinSpeed  float64 // Lines per second
	MaxSpeed  float64
	MinLength int
	MaxLength int
	MinLinger time.Duration
	MaxLinger time.Duration
	Density   float64
	Shading   droplet.ShadingMode
	ColorMode droplet.ColorMode
	Pairs     int // Number of color pairs, dim to bright
	Epoch     bool
}

// Cloud implements droplet.Cloud and owns every droplet on screen.
type Cloud struct {
	lines, cols int
	opts        Options
	charPool    [][]rune
	spawnable   []bool
	blocker     []*droplet.Droplet // Droplet holding each disarmed column
	droplets    []*droplet.Droplet // Live droplets
	free        []*droplet.Droplet // Reset droplets ready for reuse
	random      *rand.Rand
	logger      *slog.Logger
}

// New creates an empty Cloud. Call Resize before the first Rain.
func New(opts Options, random *rand.Rand, logger *slog.Logger) *Cloud {
	if opts.Pairs < minPairs {
		opts.Pairs = minPairs
	}
	return &Cloud{
		opts:   opts,
		random: random,
		logger: logger.With("component", "cloud"),
	}
}

// Resize adjusts the grid to the new dimensions and recycles all droplets.
// The char pool is only rebuilt when the dimensions change.
func (c *Cloud) Resize(lines, cols int) {
	if lines == c.lines && cols == c.cols {
		c.Clear()
		return
	}
	c.lines, c.cols = lines, cols
	c.spawnable = make([]bool, cols)
	c.blocker = make([]*droplet.Droplet, cols)
	c.Clear()
	c.fillCharPool()

	c.logger.Debug("resized cloud", "lines", lines, "cols", cols, "pool", len(c.charPool))
}

// Clear recycles every droplet and re-arms every column. Call it whenever
// the display was blanked behind the droplets' backs.
func (c *Cloud) Clear() {
	for _, d := range c.droplets {
		c.recycle(d)
	}
	clear(c.droplets)
	c.droplets = c.droplets[:0]

	for col := range c.spawnable {
		c.spawnable[col] = true
		c.blocker[col] = nil
	}
}

// fillCharPool builds one glyph sequence per column. Sequences are twice
// the screen height so frozen offsets past the bottom line still resolve.
func (c *Cloud) fillCharPool() {
	c.charPool = make([][]rune, c.cols)
	size := max(2*c.lines, 1)
	for i := range c.charPool {
		seq := make([]rune, size)
		for j := range seq {
			seq[j] = c.opts.CharSet[c.random.Intn(len(c.opts.CharSet))]
		}
		c.charPool[i] = seq
	}
}

// Rain runs one animation tick: spawn, then advance, draw and sync every
// live droplet. Droplets that died this tick are recycled.
func (c *Cloud) Rain(scr droplet.Display, now time.Time) {
	c.spawn(now)

	live := c.droplets[:0]
	for _, d := range c.droplets {
		d.Advance(now)
		d.Draw(scr, now)
		d.SyncCurLine()
		if d.IsAlive() {
			live = append(live, d)
			continue
		}
		// A droplet too short to cross the spawn threshold never re-armed
		// its column
		if col := d.Column(); col < len(c.blocker) && c.blocker[col] == d {
			c.SetColumnSpawn(col, true)
		}
		c.recycle(d)
	}
	clear(c.droplets[len(live):])
	c.droplets = live
}

func (c *Cloud) spawn(now time.Time) {
	if c.lines == 0 {
		return
	}
	chance := c.opts.Density * spawnChance
	for col, ok := range c.spawnable {
		if !ok || c.random.Float64() >= chance {
			continue
		}
		d := c.take()
		d.Init(c, droplet.Params{
			Column:      col,
			EndLine:     c.lines - 1,
			CharPoolIdx: c.random.Intn(len(c.charPool)),
			Length:      c.randInt(c.opts.MinLength, c.opts.MaxLength),
			CharsPerSec: c.opts.MinSpeed + c.random.Float64()*(c.opts.MaxSpeed-c.opts.MinSpeed),
			Linger:      c.randDuration(c.opts.MinLinger, c.opts.MaxLinger),
			Epoch:       c.opts.Epoch,
		})
		d.Activate(now)
		c.droplets = append(c.droplets, d)
		c.spawnable[col] = false
		c.blocker[col] = d
	}
}

func (c *Cloud) take() *droplet.Droplet {
	if n := len(c.free); n > 0 {
		d := c.free[n-1]
		c.free = c.free[:n-1]
		return d
	}
	return &droplet.Droplet{}
}

func (c *Cloud) recycle(d *droplet.Droplet) {
	d.Reset()
	c.free = append(c.free, d)
}

func (c *Cloud) randInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.random.Intn(hi-lo+1)
}

func (c *Cloud) randDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(c.random.Int63n(int64(hi-lo)+1))
}

// LiveCount returns the number of droplets currently on screen.
func (c *Cloud) LiveCount() int { return len(c.droplets) }

// SetColorMode sets the mode resolved by the display backend.
func (c *Cloud) SetColorMode(m droplet.ColorMode) { c.opts.ColorMode = m }

// Lines returns the screen height.
func (c *Cloud) Lines() int { return c.lines }

// ShadingMode returns how middle chars are shaded.
func (c *Cloud) ShadingMode() droplet.ShadingMode { return c.opts.Shading }

// ColorMode returns the color mode resolved by the display.
func (c *Cloud) ColorMode() droplet.ColorMode { return c.opts.ColorMode }

// Char returns the glyph for line of pool sequence poolIdx, or the glyph at
// the frozen offset when off is frozen.
func (c *Cloud) Char(line, poolIdx int, off droplet.Offset) rune {
	seq := c.charPool[poolIdx%len(c.charPool)]
	idx := line
	if off.Frozen {
		idx = off.Index
	}
	return seq[idx%len(seq)]
}

// Attr resolves bold and color pair for a cell. Pair 0 is the dimmest and
// the last pair is reserved for the head.
func (c *Cloud) Attr(line, col int, ch rune, loc droplet.CharLoc, now time.Time, headLine, length int) droplet.CharAttr {
	head := c.opts.Pairs - 1
	switch loc {
	case droplet.LocHead:
		return droplet.CharAttr{Bold: true, ColorPair: head}
	case droplet.LocTail:
		return droplet.CharAttr{ColorPair: 0}
	}

	// Middle pairs are 1..head-1
	span := head - 1
	if c.opts.Shading == droplet.ShadingDistanceFromHead && length > 0 {
		closeness := 1 - float64(headLine-line)/float64(length)
		closeness = min(max(closeness, 0), 1)
		pair := 1 + int(closeness*float64(span-1)+0.5)
		return droplet.CharAttr{Bold: pair == span, ColorPair: pair}
	}
	return droplet.CharAttr{ColorPair: 1 + c.random.Intn(span)}
}

// SetColumnSpawn marks whether col may take a new droplet.
func (c *Cloud) SetColumnSpawn(col int, ok bool) {
	if col < 0 || col >= len(c.spawnable) {
		return
	}
	c.spawnable[col] = ok
	if ok {
		c.blocker[col] = nil
	}
}
