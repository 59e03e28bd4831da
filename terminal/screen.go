// Package terminal provides the display backends rain is painted on.
package terminal

import (
	"github.com/muesli/termenv"

	"neo_rain/droplet"
)

// EventKind identifies a terminal event.
type EventKind int

const (
	EventQuit EventKind = iota
	EventResize
)

// Event is a user or terminal event delivered by a Screen.
type Event struct {
	Kind EventKind
}

// Options configures a Screen.
type Options struct {
	AutoColor bool              // Detect the color mode from the terminal
	ColorMode droplet.ColorMode // Used when AutoColor is false
}

// Screen is a character grid display with its own event source.
type Screen interface {
	droplet.Display
	Init() error                  // Take over the terminal
	Fini()                        // Restore the terminal to its original state
	Size() (lines, cols int)      // Current grid dimensions
	Clear()                       // Blank the grid and force a full redraw
	Show() error                  // Flush painted cells to the terminal
	ColorMode() droplet.ColorMode // Resolved after Init
	SetPalette(p Palette)
	Events() <-chan Event
}

// ModeFromProfile maps a termenv color profile to a color mode.
func ModeFromProfile(p termenv.Profile) droplet.ColorMode {
	switch p {
	case termenv.TrueColor:
		return droplet.ColorTrue
	case termenv.ANSI256:
		return droplet.Color256
	case termenv.ANSI:
		return droplet.Color16
	default:
		return droplet.ColorMono
	}
}

// ProfileFromMode is the inverse of ModeFromProfile.
func ProfileFromMode(m droplet.ColorMode) termenv.Profile {
	switch m {
	case droplet.ColorTrue:
		return termenv.TrueColor
	case droplet.Color256:
		return termenv.ANSI256
	case droplet.Color16:
		return termenv.ANSI
	default:
		return termenv.Ascii
	}
}

// modeFromColors maps a terminal color count to a color mode.
func modeFromColors(n int) droplet.ColorMode {
	switch {
	case n > 256:
		return droplet.ColorTrue
	case n == 256:
		return droplet.Color256
	case n >= 8:
		return droplet.Color16
	default:
		return droplet.ColorMono
	}
}

// sendEvent delivers ev without blocking; a full queue drops it.
func sendEvent(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
