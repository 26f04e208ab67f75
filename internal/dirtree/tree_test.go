package dirtree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortChildrenOrdering(t *testing.T) {
	children := []*Entry{
		{Path: "r/z", Size: 500, Kind: KindFile},
		{Path: "r/small", Size: 1, Kind: KindDir},
		{Path: "r/a", Size: 500, Kind: KindFile},
		{Path: "r/big", Size: 900, Kind: KindDir},
		{Path: "r/empty", Size: 0, Kind: KindFile},
	}

	sortChildren(children)

	paths := make([]string, 0, len(children))
	for _, c := range children {
		paths = append(paths, c.Path)
	}

	// Directories first, then size descending, then path ascending.
	assert.Equal(t, []string{"r/big", "r/small", "r/a", "r/z", "r/empty"}, paths)
}

func TestSortChildrenProperty(t *testing.T) {
	children := []*Entry{
		{Path: "d", Size: 3, Kind: KindFile},
		{Path: "c", Size: 3, Kind: KindDir},
		{Path: "b", Size: 7, Kind: KindFile},
		{Path: "a", Size: 3, Kind: KindFile},
	}

	sortChildren(children)

	for i := 1; i < len(children); i++ {
		a, b := children[i-1], children[i]

		assert.GreaterOrEqual(t, uint8(a.Kind), uint8(b.Kind), "kind order at %d", i)

		if a.Kind == b.Kind {
			assert.GreaterOrEqual(t, a.Size, b.Size, "size order at %d", i)

			if a.Size == b.Size {
				assert.LessOrEqual(t, a.Path, b.Path, "path order at %d", i)
			}
		}
	}
}

func TestWalkPreOrder(t *testing.T) {
	root := &Entry{
		Path: "a",
		Size: 6,
		Kind: KindDir,
		Children: []*Entry{
			{
				Path: "a/b",
				Size: 3,
				Kind: KindDir,
				Children: []*Entry{
					{Path: "a/b/c", Size: 3, Kind: KindFile},
				},
			},
			{Path: "a/d", Size: 3, Kind: KindFile},
		},
	}

	var (
		visited []string
		depths  []int
		parents []string
	)

	root.Walk(func(entry, parent *Entry, depth int) {
		visited = append(visited, entry.Path)
		depths = append(depths, depth)

		if parent == nil {
			parents = append(parents, "")
		} else {
			parents = append(parents, parent.Path)
		}
	})

	// Children exhausted before the next sibling.
	assert.Equal(t, []string{"a", "a/b", "a/b/c", "a/d"}, visited)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
	assert.Equal(t, []string{"", "a", "a/b", "a"}, parents)
}

func TestKindJSON(t *testing.T) {
	entry := Entry{Path: "x", Size: 1, Kind: KindDir}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"dir"`)

	var decoded Entry

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry, decoded)

	var bad Kind

	require.Error(t, json.Unmarshal([]byte(`"socket"`), &bad))
}
