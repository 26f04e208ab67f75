package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/idelchi/dirtree/internal/dirtree"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

func help() {
	//nolint:forbidigo // Help output to console
	fmt.Println(heredoc.Doc(`
		dirtree reports the aggregate storage footprint of a directory subtree
		as a sorted tree, largest entries first.

		Usage:

			dirtree [flags] [path]

		Positional Arguments:
		  path                   Directory to scan. Defaults to current directory if not specified.

		Modes:
		  Default mode prints one line per filesystem entry, depth-first, with
		  each entry's size and its share of its parent directory.
		  Use --top to list the N largest files instead of the full tree.

		Errors reading individual files or directories are reported on stderr;
		the affected entry is counted as 0 bytes and the scan continues.

		Flags:
	`))
	pflag.PrintDefaults()
}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute() error {
	var (
		options    dirtree.Options
		minSizeStr string
	)

	allowedOutputs := []string{"table", "json"}

	pflag.IntVarP(&options.TopN, "top", "t", 0, "List the N largest files instead of the tree (0=tree report)")
	pflag.StringVar(&minSizeStr, "min-size", "0B", "Minimum file size for --top (e.g., 1KB)")
	pflag.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	pflag.StringSliceVarP(&options.Excludes, "exclude", "e", nil, "Regex patterns to exclude")
	pflag.IntVarP(&options.Depth, "depth", "d", 0,
		"Maximum depth (0=unlimited). Tree mode: limits display only, sizes cover the full subtree; --top mode: prunes the walk")
	pflag.IntVarP(&options.Concurrency, "jobs", "j", dirtree.DefaultConcurrency(),
		"Maximum concurrent directory reads (0=one goroutine per subdirectory, unbounded)")
	pflag.BoolVar(&options.LenientRoot, "lenient-root", false,
		"Report an unreadable root as an empty tree instead of failing")
	pflag.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	pflag.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")

	pflag.CommandLine.SortFlags = false
	pflag.Usage = help
	pflag.Parse()

	if options.Version {
		//nolint:forbidigo // Version output to console
		fmt.Println(c.version)

		return nil
	}

	if !slices.Contains(allowedOutputs, options.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
	}

	if options.Depth < 0 {
		return errors.New("depth cannot be negative")
	}

	if options.Concurrency < 0 {
		return errors.New("jobs cannot be negative")
	}

	if options.TopN < 0 {
		return errors.New("top cannot be negative")
	}

	if pflag.NArg() > 1 {
		return fmt.Errorf("expected at most one path argument, got %d", pflag.NArg())
	}

	if pflag.NArg() == 0 {
		options.Path = "."
	} else {
		options.Path = pflag.Args()[0]
	}

	// Parse minSize string to bytes
	if minSizeStr != "" {
		size, err := humanize.ParseBytes(minSizeStr)
		if err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}

		options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	return logic(options)
}
