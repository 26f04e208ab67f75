package dirtree

import (
	"fmt"
	"sort"
)

// Kind classifies a tree entry.
type Kind uint8

const (
	// KindFile is a regular file (or any non-directory leaf).
	KindFile Kind = iota
	// KindDir is a directory with zero or more children.
	KindDir
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a kind from its string name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"file"`:
		*k = KindFile
	case `"dir"`:
		*k = KindDir
	default:
		return fmt.Errorf("unknown entry kind %s", data)
	}

	return nil
}

// Entry is one resolved node of the result tree. It is built and frozen
// inside a single aggregation pass; afterwards it is read-only.
//
// A directory exclusively owns its children. There are no parent pointers
// and no cycles, so the tree can be marshalled directly.
type Entry struct {
	// Path is the entry's filesystem path, absolute or relative to the
	// scan root depending on how the root was given.
	Path string `json:"path"`
	// Size is the entry's total size in bytes. For a directory this is the
	// sum of all direct children's sizes; 0 where metadata was unreadable.
	Size int64 `json:"size"`
	// Kind distinguishes files from directories.
	Kind Kind `json:"kind"`
	// Children holds a directory's direct children, sorted. Nil for files.
	Children []*Entry `json:"children,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Kind == KindDir
}

// Walk visits the tree depth-first in pre-order: each entry is visited
// before any of its children, and a directory's children are exhausted
// before the next sibling. The callback receives the entry, its direct
// parent (nil for the root) and its depth (root = 0).
func (e *Entry) Walk(visit func(entry, parent *Entry, depth int)) {
	e.walk(nil, 0, visit)
}

func (e *Entry) walk(parent *Entry, depth int, visit func(entry, parent *Entry, depth int)) {
	visit(e, parent, depth)

	for _, child := range e.Children {
		child.walk(e, depth+1, visit)
	}
}

// sortChildren orders a directory's children: directories before files,
// then size descending, then path ascending as the deterministic tiebreak.
// It is applied exactly once per directory, after all children resolved.
func sortChildren(children []*Entry) {
	sort.Slice(children, func(i, j int) bool {
		a, b := children[i], children[j]

		if a.Kind != b.Kind {
			return a.Kind == KindDir
		}

		if a.Size != b.Size {
			return a.Size > b.Size
		}

		return a.Path < b.Path
	})
}
