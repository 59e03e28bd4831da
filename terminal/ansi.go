package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"neo_rain/droplet"
)

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// inputPollMs bounds how long Fini waits for the input reader.
const inputPollMs = 50

// ANSIScreen renders frames to a terminal with escape sequences, only
// rewriting the cells that changed since the previous frame.
type ANSIScreen struct {
	out      *termenv.Output
	tty      *os.File
	in       *os.File
	sizeFn   func() (lines, cols int, err error)
	colors   []termenv.Color
	frame    *Frame // Cells painted this tick
	prev     *Frame // Cells on the terminal
	rawState *term.State
	events   chan Event
	sigs     chan os.Signal
	done     chan struct{}
	readers  sync.WaitGroup
}

// NewANSIScreen creates a screen writing to tty and reading keys from in.
func NewANSIScreen(tty, in *os.File, opts Options) *ANSIScreen {
	var out *termenv.Output
	if opts.AutoColor {
		out = termenv.NewOutput(tty)
	} else {
		out = termenv.NewOutput(tty, termenv.WithProfile(ProfileFromMode(opts.ColorMode)))
	}
	s := newANSIScreen(out)
	s.tty, s.in = tty, in
	s.sizeFn = s.windowSize
	return s
}

func newANSIScreen(out *termenv.Output) *ANSIScreen {
	return &ANSIScreen{
		out:    out,
		frame:  NewFrame(0, 0),
		events: make(chan Event, 16),
		sigs:   make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}
}

// windowSize returns the terminal's height and width in characters.
func (s *ANSIScreen) windowSize() (lines, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(int(s.tty.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	if ws.Row == 0 || ws.Col == 0 {
		return 0, 0, errors.New("invalid terminal dimensions")
	}
	return int(ws.Row), int(ws.Col), nil
}

// Init switches to the alternate buffer, hides the cursor and puts the
// input in raw mode.
func (s *ANSIScreen) Init() error {
	lines, cols, err := s.sizeFn()
	if err != nil {
		return err
	}
	if s.in != nil && term.IsTerminal(int(s.in.Fd())) {
		state, err := term.MakeRaw(int(s.in.Fd()))
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		s.rawState = state
	}
	s.resize(lines, cols)

	s.out.AltScreen()
	s.out.HideCursor()
	s.out.ClearScreen()

	signal.Notify(s.sigs, unix.SIGWINCH)
	go s.watchResize()
	if s.in != nil {
		s.readers.Add(1)
		go s.readInput(int(s.in.Fd()))
	}
	return nil
}

// Fini restores the terminal to its original state.
func (s *ANSIScreen) Fini() {
	close(s.done)
	s.readers.Wait()
	signal.Stop(s.sigs)
	close(s.sigs)
	s.out.ShowCursor()
	s.out.ExitAltScreen()
	if s.rawState != nil {
		_ = term.Restore(int(s.in.Fd()), s.rawState)
	}
}

func (s *ANSIScreen) watchResize() {
	for range s.sigs {
		sendEvent(s.events, Event{Kind: EventResize})
	}
}

// readInput polls fd for keys until Fini. Reads only happen once input is
// ready, so no keystroke is consumed after the terminal is restored.
func (s *ANSIScreen) readInput(fd int) {
	defer s.readers.Done()
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	buf := make([]byte, 64)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		ready, err := unix.Poll(fds, inputPollMs)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return
		}
		if ready == 0 {
			continue
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			return // Hangup or error without data
		}

		n, err := unix.Read(fd, buf)
		if err != nil || n == 0 {
			return
		}
		if keyQuits(buf[:n]) {
			sendEvent(s.events, Event{Kind: EventQuit})
		}
	}
}

// keyQuits reports whether a read from raw input is a quit key. Escape
// sequences (arrows, function keys) start with Esc and are ignored.
func keyQuits(b []byte) bool {
	if len(b) == 1 && b[0] == keyEsc {
		return true
	}
	if len(b) > 0 && b[0] == keyEsc {
		return false
	}
	for _, c := range b {
		if c == 'q' || c == 'Q' || c == keyCtrlC {
			return true
		}
	}
	return false
}

func (s *ANSIScreen) resize(lines, cols int) {
	s.frame = NewFrame(lines, cols)
	s.prev = nil
}

// Size returns the dimensions of the current frame.
func (s *ANSIScreen) Size() (lines, cols int) {
	return s.frame.height, s.frame.width
}

// Clear re-reads the terminal size and blanks the screen. The next Show
// renders the full frame.
func (s *ANSIScreen) Clear() {
	lines, cols := s.Size()
	if l, c, err := s.sizeFn(); err == nil {
		lines, cols = l, c
	}
	s.resize(lines, cols)
	s.out.ClearScreen()
}

// ColorMode returns the mode of the output color profile.
func (s *ANSIScreen) ColorMode() droplet.ColorMode { return ModeFromProfile(s.out.Profile) }

// Events returns quit and resize events.
func (s *ANSIScreen) Events() <-chan Event { return s.events }

// SetPalette converts the palette to the output's color profile.
func (s *ANSIScreen) SetPalette(p Palette) {
	s.colors = make([]termenv.Color, len(p))
	for i, c := range p {
		s.colors[i] = s.out.Profile.FromColor(c)
	}
}

// PaintCell stores c in the frame; it reaches the terminal on Show.
func (s *ANSIScreen) PaintCell(line, col int, c droplet.Cell) {
	s.frame.set(line, col, c)
}

// Show renders the frame, using delta rendering when possible.
func (s *ANSIScreen) Show() error {
	var b strings.Builder
	if !s.frame.sameSize(s.prev) {
		s.fullRender(&b)
		s.prev = NewFrame(s.frame.height, s.frame.width)
	} else {
		s.deltaRender(&b)
	}
	copyFrame(s.frame, s.prev)

	if b.Len() == 0 {
		return nil
	}
	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// fullRender draws the entire frame to the terminal.
func (s *ANSIScreen) fullRender(b *strings.Builder) {
	b.Grow(s.frame.height * (s.frame.width*24 + 2))
	fmt.Fprintf(b, termenv.CSI+termenv.CursorPositionSeq, 1, 1)
	for row := 0; row < s.frame.height; row++ {
		for col := 0; col < s.frame.width; col++ {
			b.WriteString(s.styled(s.frame.cells[row][col]))
		}
		if row < s.frame.height-1 {
			b.WriteString("\r\n")
		}
	}
}

// deltaRender draws only changed cells. Droplets move down columns, so
// walking column-major keeps most cursor jumps short.
func (s *ANSIScreen) deltaRender(b *strings.Builder) {
	for col := 0; col < s.frame.width; col++ {
		for row := 0; row < s.frame.height; row++ {
			c := s.frame.cells[row][col]
			if c == s.prev.cells[row][col] {
				continue
			}
			fmt.Fprintf(b, termenv.CSI+termenv.CursorPositionSeq, row+1, col+1)
			b.WriteString(s.styled(c))
		}
	}
}

func (s *ANSIScreen) styled(c droplet.Cell) string {
	ch := string(c.Ch)
	if (!c.Colored || len(s.colors) == 0) && !c.Bold {
		return ch
	}
	st := s.out.String(ch)
	if c.Colored && len(s.colors) > 0 {
		st = st.Foreground(s.colors[min(max(c.ColorPair, 0), len(s.colors)-1)])
	}
	if c.Bold {
		st = st.Bold()
	}
	return st.String()
}
