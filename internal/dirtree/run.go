package dirtree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// DefaultConcurrency returns the default bound on concurrent directory
// listings, matching fastwalk's default worker count.
func DefaultConcurrency() int {
	return 4 * runtime.GOMAXPROCS(0)
}

// Options configures aggregation and CLI behavior.
type Options struct {
	// Path is the root directory to scan.
	Path string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Concurrency bounds the number of directory listings in flight.
	// 0 removes the bound: one goroutine per subdirectory, no limit.
	Concurrency int
	// Depth limits the printed tree depth (0=unlimited). In the tree
	// report sizes always cover the full subtree; in the largest-files
	// report the walk itself is pruned, so totals shrink with it.
	Depth int
	// TopN switches to the largest-files report when positive.
	TopN int
	// MinSize is the minimum file size in bytes for the largest-files report.
	MinSize int64
	// LenientRoot degrades an unreadable root to an empty size-0 tree
	// instead of surfacing an error.
	LenientRoot bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives warnings and debug output. Nil uses a default
	// stderr logger.
	Logger *log.Logger
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (table or json).
	Output string
	// Version indicates whether to show version and exit.
	Version bool
}

// logger returns the configured logger, or a default stderr logger with
// timestamps off so repeated runs produce identical output.
func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	level := log.InfoLevel
	if o.Debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
}

// Result holds the outcome of one aggregation run.
type Result struct {
	// Root is the fully resolved result tree.
	Root *Entry `json:"root"`
	// FileCount is the number of files aggregated.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the root's total size.
	TotalBytes int64 `json:"total_bytes"`
	// Elapsed is the total time taken for aggregation.
	Elapsed time.Duration `json:"elapsed"`
}

// compileExcludes compiles the exclusion patterns from opt.
func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		out = append(out, re)
	}

	return out, nil
}

// validateRoot checks that path exists, is a directory, and can be opened
// for listing.
func validateRoot(path string) error {
	statInfo, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("accessing path %q: %w", path, err)
	}

	if !statInfo.IsDir() {
		return fmt.Errorf("path %q is not a directory", path)
	}

	// Stat succeeds on a directory whose contents cannot be listed; probe
	// the listing itself so an unreadable root surfaces here instead of
	// degrading to an empty tree.
	handle, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening path %q: %w", path, err)
	}

	return handle.Close()
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, snapshot func() (files, bytes int64), hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run aggregates the subtree at opt.Path and returns the resolved tree.
//
// Filesystem failures below the root never surface as errors: the affected
// node degrades to size 0, a warning is logged, and aggregation continues.
// Run itself errors only on configuration problems, or on an invalid root
// when opt.LenientRoot is false. Once aggregation has started it always
// runs to completion; ctx only scopes the progress reporter.
//
// Progress updates are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Result, error) {
	logger := opt.logger()

	if opt.Path == "" {
		opt.Path = "."
	}

	// Normalize to native format to handle both C:/Path and C:\Path inputs.
	opt.Path = filepath.Clean(opt.Path)

	excludes, err := compileExcludes(opt.Excludes)
	if err != nil {
		return nil, err
	}

	if err := validateRoot(opt.Path); err != nil {
		if !opt.LenientRoot {
			return nil, err
		}

		logger.Warn("unreadable root, reporting empty tree", "path", opt.Path, "err", err)

		return &Result{
			Root: &Entry{Path: opt.Path, Kind: KindDir},
		}, nil
	}

	resolver := newResolver(opt.Concurrency, excludes, logger)

	// Child context to ensure progress reporter cleanup.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, func() (int64, int64) {
		return resolver.files.Load(), resolver.bytes.Load()
	}, progressHook, opt.ProgressInterval)

	start := time.Now()

	root := resolver.resolveDir(opt.Path)

	return &Result{
		Root:       root,
		FileCount:  resolver.files.Load(),
		TotalBytes: root.Size,
		Elapsed:    time.Since(start),
	}, nil
}
