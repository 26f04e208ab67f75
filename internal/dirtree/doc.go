// Package dirtree computes the aggregate storage footprint of a directory
// subtree and produces an immutable, deterministically sorted result tree.
//
// Aggregation is concurrent: every subdirectory is resolved by its own unit
// of work, bounded by a semaphore, and a directory's size becomes visible
// only after all of its children have resolved. Filesystem failures degrade
// the affected node to size 0 and never abort the run.
package dirtree
