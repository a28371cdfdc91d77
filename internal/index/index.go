// Package index holds the tag -> location table of one run.
package index

import (
	"slices"
	"strconv"

	"eer/internal/source"
)

// DefaultTag is the key of the most salient location of a run.
const DefaultTag = ""

// Index maps tags to locations. A non-empty Index always has DefaultTag.
type Index map[string]source.Location

// Lookup resolves tag.
func (ix Index) Lookup(tag string) (source.Location, bool) {
	loc, ok := ix[tag]
	return loc, ok
}

// Default returns the location under DefaultTag.
func (ix Index) Default() (source.Location, bool) {
	return ix.Lookup(DefaultTag)
}

// Empty reports whether nothing was tagged.
func (ix Index) Empty() bool {
	return len(ix) == 0
}

// Keys returns the tags with DefaultTag first, then numeric tags in
// ascending order, then any other keys lexically.
func (ix Index) Keys() []string {
	keys := make([]string, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareTags)
	return keys
}

func compareTags(a, b string) int {
	if a == b {
		return 0
	}
	if a == DefaultTag {
		return -1
	}
	if b == DefaultTag {
		return 1
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	if a < b {
		return -1
	}
	return 1
}
