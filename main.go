package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"

	"neo_rain/cloud"
	"neo_rain/config"
	"neo_rain/logging"
	"neo_rain/terminal"
)

// colorPairs is the palette size: tail, six body shades and the head.
const colorPairs = 8

// === MATRIX RAIN ===

// MatrixRain manages the animation loop.
type MatrixRain struct {
	cfg    *config.Config
	screen terminal.Screen
	cloud  *cloud.Cloud
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewMatrixRain creates the rain animation for a validated configuration.
func NewMatrixRain(cfg *config.Config, screen terminal.Screen, clock clockwork.Clock, random *rand.Rand, logger *slog.Logger) (*MatrixRain, error) {
	shading, err := cfg.ShadingMode()
	if err != nil {
		return nil, err
	}
	mode, _, err := cfg.ColorSetting()
	if err != nil {
		return nil, err
	}
	c := cloud.New(cloud.Options{
		CharSet:   cfg.CharSet(),
		MinSpeed:  cfg.SpeedMin,
		MaxSpeed:  cfg.SpeedMax,
		MinLength: cfg.LengthMin,
		MaxLength: cfg.LengthMax,
		MinLinger: cfg.LingerMin,
		MaxLinger: cfg.LingerMax,
		Density:   cfg.Density,
		Shading:   shading,
		ColorMode: mode,
		Pairs:     colorPairs,
	}, random, logger)

	return &MatrixRain{
		cfg:    cfg,
		screen: screen,
		cloud:  c,
		clock:  clock,
		logger: logger,
	}, nil
}

// Run takes over the screen and animates until ctx is done or the user quits.
func (r *MatrixRain) Run(ctx context.Context) error {
	if err := r.screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer r.screen.Fini()

	palette, err := terminal.NewPalette(r.cfg.BaseColor(), colorPairs)
	if err != nil {
		return fmt.Errorf("failed to build palette: %w", err)
	}
	r.screen.SetPalette(palette)
	r.cloud.SetColorMode(r.screen.ColorMode())
	r.resize()

	frameDuration := time.Second / time.Duration(r.cfg.FPS)
	tick := r.clock.NewTicker(frameDuration)
	defer tick.Stop()

	r.logger.Info("rain started",
		"fps", r.cfg.FPS,
		"color_mode", r.screen.ColorMode().String(),
		"backend", r.cfg.Backend)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("rain stopped", "reason", ctx.Err())
			return nil
		case ev := <-r.screen.Events():
			switch ev.Kind {
			case terminal.EventQuit:
				r.logger.Info("rain stopped", "reason", "quit key")
				return nil
			case terminal.EventResize:
				r.screen.Clear()
				r.resize()
			}
		case now := <-tick.Chan():
			r.cloud.Rain(r.screen, now)
			if err := r.screen.Show(); err != nil {
				return fmt.Errorf("failed to draw frame: %w", err)
			}
		}
	}
}

func (r *MatrixRain) resize() {
	lines, cols := r.screen.Size()
	r.logger.Debug("screen resized", "lines", lines, "cols", cols, "dropped", r.cloud.LiveCount())
	r.cloud.Resize(lines, cols)
}

// newScreen selects the display backend.
func newScreen(cfg *config.Config) (terminal.Screen, error) {
	mode, auto, err := cfg.ColorSetting()
	if err != nil {
		return nil, err
	}
	opts := terminal.Options{AutoColor: auto, ColorMode: mode}
	if cfg.Backend == "tcell" {
		return terminal.NewTcellScreen(opts)
	}
	return terminal.NewANSIScreen(os.Stdout, os.Stdin, opts), nil
}

// === MAIN ===

func run(ctx context.Context, args []string) error {
	cfg, err := config.NewParser(config.DefaultConfigData, os.Stdout).Parse(args)
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if cfg.Debug {
		f, err := logging.OpenDebugFile(cfg.DebugFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = logging.NewLogger(cfg.LogLevel, cfg.LogFormat, f)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("stdout is not a terminal")
	}
	screen, err := newScreen(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	random := rand.New(rand.NewSource(time.Now().UnixNano()))
	rain, err := NewMatrixRain(cfg, screen, clockwork.NewRealClock(), random, logger)
	if err != nil {
		return err
	}
	if err := rain.Run(ctx); err != nil {
		logger.Error("rain failed", "error", err)
		return err
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrListRequested) || errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
