package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dirtree/internal/dirtree"
)

func logic(options dirtree.Options) error {
	jsonOutput := strings.ToLower(options.Output) == "json"

	enableProgress := !jsonOutput &&
		!options.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	level := log.InfoLevel
	if options.Debug {
		level = log.DebugLevel
	}

	// Timestamps off so repeated runs over an unchanged tree are identical.
	options.Logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})

	ctx := context.Background()

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	clearProgress := func() {
		if enableProgress {
			fmt.Fprint(os.Stderr, "\r\033[2K\r")
		}
	}

	if options.TopN > 0 {
		result, err := dirtree.RunTop(ctx, options, progressHook)

		clearProgress()

		if err != nil {
			return err
		}

		if jsonOutput {
			return PrintJSON(result, os.Stdout)
		}

		return PrintTop(result, os.Stdout)
	}

	result, err := dirtree.Run(ctx, options, progressHook)

	clearProgress()

	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(result.Root, os.Stdout)
	}

	return PrintTree(result.Root, options.Depth, os.Stdout)
}
