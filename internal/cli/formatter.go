package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dirtree/internal/dirtree"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2

	// maxDisplayPath is the longest path printed without truncation.
	maxDisplayPath = 50
	// truncKeep is how many runes of each end survive truncation.
	truncKeep = 20

	// indentStep is the per-level indentation of the tree report.
	indentStep = "  "
)

// PrintJSON outputs a result in JSON format.
func PrintJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTree writes the tree report: one line per entry, depth-first, a
// directory's children before its next sibling. Each line carries the
// entry's kind, human-readable size, share of its direct parent's size,
// depth indentation and (possibly truncated) path.
//
// maxDepth limits the printed depth (0=unlimited); entries below the limit
// are still part of every ancestor's size.
func PrintTree(root *dirtree.Entry, maxDepth int, writer io.Writer) error {
	var err error

	root.Walk(func(entry, parent *dirtree.Entry, depth int) {
		if err != nil {
			return
		}

		if maxDepth > 0 && depth > maxDepth {
			return
		}

		_, err = fmt.Fprintf(writer, "%-4s %10s [%6.2f%%] %s%s\n",
			kindLabel(entry),
			humanize.IBytes(uint64(entry.Size)), //nolint:gosec // Sizes are never negative
			percentOfParent(entry, parent),
			strings.Repeat(indentStep, depth),
			truncatePath(entry.Path),
		)
	})

	return err
}

// PrintTop outputs the largest-files report in human-readable table format.
func PrintTop(result *dirtree.TopResult, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "Top files:\t\t")

	for i, f := range result.Files {
		pct := 0.0
		if result.TotalBytes > 0 {
			pct = 100.0 * float64(f.Size) / float64(result.TotalBytes)
		}

		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			i+1, f.Path, humanize.IBytes(uint64(f.Size)), pct) //nolint:gosec // Sizes are never negative
	}

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", result.FileCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(result.TotalBytes)), result.TotalBytes) //nolint:gosec // Sizes are never negative
	fmt.Fprintf(w, "\nElapsed:\t%v\n", result.Elapsed)

	return w.Flush()
}

// kindLabel maps an entry's kind to its report label.
func kindLabel(entry *dirtree.Entry) string {
	if entry.IsDir() {
		return "DIR"
	}

	return "FILE"
}

// percentOfParent returns the entry's share of its direct parent's size.
// A parent of size 0 yields 0 to avoid division by zero. The root has no
// parent and reports 100% of itself (0 when empty).
func percentOfParent(entry, parent *dirtree.Entry) float64 {
	switch {
	case parent == nil:
		if entry.Size > 0 {
			return 100.0
		}

		return 0.0
	case parent.Size > 0:
		return 100.0 * float64(entry.Size) / float64(parent.Size)
	default:
		return 0.0
	}
}

// truncatePath middle-truncates paths longer than maxDisplayPath runes,
// keeping both ends.
func truncatePath(path string) string {
	runes := []rune(path)
	if len(runes) <= maxDisplayPath {
		return path
	}

	return string(runes[:truncKeep]) + "..." + string(runes[len(runes)-truncKeep:])
}
