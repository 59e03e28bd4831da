package terminal

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered set of color pairs, dimmest first. The last pair
// is the droplet head.
type Palette []colorful.Color

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// NewPalette builds n pairs fading from near black up to base, plus a head
// color between base and white.
func NewPalette(base colorful.Color, n int) (Palette, error) {
	if n < 2 {
		return nil, fmt.Errorf("palette needs at least 2 pairs, got %d", n)
	}
	p := make(Palette, n)
	body := n - 1
	for i := 0; i < body; i++ {
		fade := 0.25 + 0.75*float64(i+1)/float64(body)
		p[i] = black.BlendLab(base, fade).Clamped()
	}
	p[body] = base.BlendLab(white, 0.7).Clamped()
	return p, nil
}
