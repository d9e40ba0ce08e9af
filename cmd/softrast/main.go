// softrast - CPU software rasterizer
// Renders OBJ and glTF models in the terminal, or to PNG frames when
// headless.
//
// Controls:
//
//	C           - Cycle culling mode
//	S           - Cycle shading mode
//	N           - Toggle normal map
//	Z           - Toggle depth buffer view
//	B           - Toggle bounding box view
//	U           - Toggle uniform black background
//	P           - Pause rotation
//	W/A/D, Q/E  - Rotate model
//	Space       - Apply random impulse
//	R           - Reset rotation and settings
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/introsent/Dual-Rasterizer/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseOptions(args, os.Stderr)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}

	interactive := opts.out == ""
	if interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal, use -out DIR to render frames")
	}

	logger, closeLog, err := openLogger(opts.logFile, level, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	sc, err := loadScene(opts.model, opts.cfg.Textures, logger)
	if err != nil {
		return err
	}
	if interactive {
		return runViewer(ctx, opts, sc, logger)
	}
	return runTurntable(ctx, opts, sc, logger, os.Stderr)
}

// openLogger logs to path when given. Without a path the interactive
// viewer discards logs, since stderr shares the screen with the frame.
func openLogger(path string, level log.Level, interactive bool) (*log.Logger, func() error, error) {
	if path == "" && interactive {
		return logging.New(io.Discard, level), func() error { return nil }, nil
	}
	return logging.Open(path, level)
}
