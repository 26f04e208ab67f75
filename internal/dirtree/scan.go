package dirtree

import (
	"os"
	"path/filepath"
	"regexp"
)

// child is one classified entry from a single directory listing.
type child struct {
	path string
	size int64 // resolved for files only
	dir  bool
}

// listDir lists and classifies the immediate children of dir.
//
// Failure to list the directory at all degrades it to zero children; a
// per-entry failure skips that entry; a stat failure on a classified file
// keeps the entry with size 0. None of these abort the listing.
func (r *resolver) listDir(dir string) []child {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Warn("unreadable directory, counting as empty", "path", dir, "err", err)

		return nil
	}

	out := make([]child, 0, len(entries))

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if re := matchExclude(path, r.exclude); re != nil {
			r.log.Debug("excluded", "path", path, "pattern", re.String())

			continue
		}

		if entry.IsDir() {
			out = append(out, child{path: path, dir: true})

			continue
		}

		info, err := entry.Info()
		if err != nil {
			// The entry exists and is a file of some sort; only its size
			// is unknown. Keep it at 0 rather than dropping it.
			r.log.Warn("size unavailable, counting as 0", "path", path, "err", err)

			out = append(out, child{path: path})

			continue
		}

		var size int64
		if info.Mode().IsRegular() {
			size = info.Size()
		}

		// Symlinks and special files are size-0 leaves; never followed.
		out = append(out, child{path: path, size: size})
	}

	return out
}

// matchExclude returns the first pattern matching path, or nil.
func matchExclude(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}
