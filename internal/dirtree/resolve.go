package dirtree

import (
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// resolver carries the shared, read-mostly pieces of one aggregation pass.
// The only mutable shared state is the pair of atomic progress counters;
// every unit of work builds its own Entry and hands ownership to its parent
// on return.
type resolver struct {
	sem     chan struct{} // bounds concurrent directory listings; nil = unbounded
	exclude []*regexp.Regexp
	log     *log.Logger

	files atomic.Int64
	bytes atomic.Int64
}

func newResolver(concurrency int, exclude []*regexp.Regexp, logger *log.Logger) *resolver {
	r := &resolver{
		exclude: exclude,
		log:     logger,
	}

	if concurrency > 0 {
		r.sem = make(chan struct{}, concurrency)
	}

	return r
}

func (r *resolver) acquire() {
	if r.sem != nil {
		r.sem <- struct{}{}
	}
}

func (r *resolver) release() {
	if r.sem != nil {
		<-r.sem
	}
}

// resolveDir computes the fully resolved Entry for one directory.
//
// File children are summed synchronously; every subdirectory child is
// resolved by its own goroutine, and the directory's size and children
// become final only after all of them have returned (join barrier).
//
// The semaphore token is held only across the listing itself and returned
// before the barrier, so a parent waiting on its children can never starve
// the descendants it is waiting for.
func (r *resolver) resolveDir(path string) *Entry {
	r.acquire()
	children := r.listDir(path)
	r.release()

	entry := &Entry{Path: path, Kind: KindDir}

	var (
		total   int64
		subdirs []string
	)

	for _, c := range children {
		if c.dir {
			subdirs = append(subdirs, c.path)

			continue
		}

		total += c.size
		r.files.Add(1)
		r.bytes.Add(c.size)

		entry.Children = append(entry.Children, &Entry{Path: c.path, Size: c.size, Kind: KindFile})
	}

	resolved := make([]*Entry, len(subdirs))

	var wg sync.WaitGroup

	for i, sub := range subdirs {
		i, sub := i, sub

		wg.Add(1)

		go func() {
			defer wg.Done()

			resolved[i] = r.resolveDir(sub)
		}()
	}

	wg.Wait()

	for _, sub := range resolved {
		total += sub.Size

		entry.Children = append(entry.Children, sub)
	}

	entry.Size = total
	sortChildren(entry.Children)

	return entry
}
