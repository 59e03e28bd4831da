package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"neo_rain/droplet"
)

// TcellScreen paints through a tcell.Screen.
type TcellScreen struct {
	screen tcell.Screen
	opts   Options
	mode   droplet.ColorMode
	styles []tcell.Style
	events chan Event
}

// NewTcellScreen creates a screen on the controlling terminal.
func NewTcellScreen(opts Options) (*TcellScreen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create tcell screen: %w", err)
	}
	return NewTcellScreenWith(screen, opts), nil
}

// NewTcellScreenWith wraps an existing tcell.Screen, such as a simulation
// screen in tests.
func NewTcellScreenWith(screen tcell.Screen, opts Options) *TcellScreen {
	return &TcellScreen{
		screen: screen,
		opts:   opts,
		mode:   opts.ColorMode,
		events: make(chan Event, 16),
	}
}

// Init takes over the terminal and starts delivering events.
func (s *TcellScreen) Init() error {
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("failed to init tcell screen: %w", err)
	}
	s.screen.HideCursor()
	s.screen.Clear()
	if s.opts.AutoColor {
		s.mode = modeFromColors(s.screen.Colors())
	}
	go s.poll()
	return nil
}

// Fini restores the terminal and stops event delivery.
func (s *TcellScreen) Fini() { s.screen.Fini() }

// poll maps tcell events until the screen is finalized.
func (s *TcellScreen) poll() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
				sendEvent(s.events, Event{Kind: EventQuit})
			}
		case *tcell.EventResize:
			sendEvent(s.events, Event{Kind: EventResize})
		}
	}
}

// Size returns the grid dimensions; tcell reports width first.
func (s *TcellScreen) Size() (lines, cols int) {
	cols, lines = s.screen.Size()
	return lines, cols
}

// Clear blanks the screen and forces a full redraw.
func (s *TcellScreen) Clear() {
	s.screen.Clear()
	s.screen.Sync()
}

// Show flushes painted cells to the terminal.
func (s *TcellScreen) Show() error {
	s.screen.Show()
	return nil
}

// ColorMode returns the mode configured or detected at Init.
func (s *TcellScreen) ColorMode() droplet.ColorMode { return s.mode }

// Events returns quit and resize events.
func (s *TcellScreen) Events() <-chan Event { return s.events }

// SetPalette builds one style per color pair.
func (s *TcellScreen) SetPalette(p Palette) {
	s.styles = make([]tcell.Style, len(p))
	for i, c := range p {
		r, g, b := c.RGB255()
		s.styles[i] = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
}

// PaintCell sets the content of one cell; it appears on Show.
func (s *TcellScreen) PaintCell(line, col int, c droplet.Cell) {
	style := tcell.StyleDefault
	if c.Colored && len(s.styles) > 0 {
		style = s.styles[min(max(c.ColorPair, 0), len(s.styles)-1)]
	}
	if c.Bold {
		style = style.Bold(true)
	}
	s.screen.SetContent(col, line, c.Ch, nil, style)
}
