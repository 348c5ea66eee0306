// Package selection holds the set arithmetic behind the group pickers: the
// "Add All" / "Clear All" controls used by the post, album and event edit
// flows, and the group-inheritance copy for albums created under an event.
package selection

import "sort"

// SelectAll unions the candidate IDs into the current selection. The result
// is deduplicated and sorted, so applying it twice with the same candidates
// is a no-op.
func SelectAll(candidates, selected []uint) []uint {
	set := make(map[uint]struct{}, len(candidates)+len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}
	for _, id := range candidates {
		set[id] = struct{}{}
	}
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClearAll resets a selection unconditionally.
func ClearAll() []uint {
	return []uint{}
}

// Contains reports whether id is in the selection.
func Contains(selection []uint, id uint) bool {
	for _, s := range selection {
		if s == id {
			return true
		}
	}
	return false
}

// Dedupe returns the IDs with duplicates removed, sorted.
func Dedupe(ids []uint) []uint {
	return SelectAll(ids, nil)
}
