package dirtree

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// FileStat is a single file path and size in the largest-files report.
type FileStat struct {
	// Path is the file path.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// TopResult holds the outcome of a largest-files walk.
type TopResult struct {
	// Files contains the N largest files, largest first.
	Files []FileStat `json:"files"`
	// FileCount is the total number of files seen.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all files seen.
	TotalBytes int64 `json:"total_bytes"`
	// Elapsed is the total time taken for the walk.
	Elapsed time.Duration `json:"elapsed"`
	// TopN is the number of top results tracked.
	TopN int `json:"top_n"`
}

// topCollector aggregates results under a mutex since fastwalk calls the
// walk callback from multiple goroutines concurrently.
type topCollector struct {
	mu    sync.Mutex
	files []FileStat
	count int64
	bytes int64
}

// add records one file. Files below minSize still count toward the totals
// but are not candidates for the top list.
func (c *topCollector) add(path string, size, minSize int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	c.bytes += size

	if size >= minSize {
		c.files = append(c.files, FileStat{Path: filepath.ToSlash(path), Size: size})
	}
}

func (c *topCollector) snapshot() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.count, c.bytes
}

// finalize sorts the collected files largest first and trims to topN.
func (c *topCollector) finalize(topN int, elapsed time.Duration) *TopResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.Slice(c.files, func(i, j int) bool {
		if c.files[i].Size != c.files[j].Size {
			return c.files[i].Size > c.files[j].Size
		}

		return c.files[i].Path < c.files[j].Path
	})

	files := c.files
	if len(files) > topN {
		files = files[:topN]
	}

	return &TopResult{
		Files:      files,
		FileCount:  c.count,
		TotalBytes: c.bytes,
		Elapsed:    elapsed,
		TopN:       topN,
	}
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// RunTop walks the subtree at opt.Path in parallel and returns the
// opt.TopN largest regular files at least opt.MinSize bytes.
//
// The walk can be cancelled via ctx. Progress updates are sent to
// progressHook if provided.
func RunTop(ctx context.Context, opt Options, progressHook func(int64, int64)) (*TopResult, error) {
	logger := opt.logger()

	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	excludes, err := compileExcludes(opt.Excludes)
	if err != nil {
		return nil, err
	}

	if err := validateRoot(opt.Path); err != nil {
		return nil, err
	}

	collector := &topCollector{}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector.snapshot, progressHook, opt.ProgressInterval)

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping inaccessible path", "path", path, "err", err)

			return nil
		}

		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		if opt.Depth > 0 && calculateDepth(path, opt.Path) > opt.Depth {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if re := matchExclude(path, excludes); re != nil {
			logger.Debug("excluded", "path", path, "pattern", re.String())

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("size unavailable, skipping", "path", path, "err", err)

			return nil
		}

		collector.add(path, info.Size(), opt.MinSize)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return collector.finalize(opt.TopN, time.Since(start)), nil
}
