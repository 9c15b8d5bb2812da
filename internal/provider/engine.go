package provider

import (
	"slices"

	"github.com/newthinker/copyhub/internal/core"
)

// Dedupe drops providers whose ID was already seen. The first occurrence wins and the
// relative order of kept records is preserved.
func Dedupe(list []core.Provider) []core.Provider {
	if list == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(list))
	result := make([]core.Provider, 0, len(list))
	for _, p := range list {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		result = append(result, p)
	}
	return result
}

// Filter keeps the providers matching every clause of c.
func Filter(list []core.Provider, c FilterCriteria) []core.Provider {
	result := make([]core.Provider, 0, len(list))
	for _, p := range list {
		if c.Matches(p) {
			result = append(result, p)
		}
	}
	return result
}

// Sort returns a stably sorted copy of list. DESC negates the comparator instead of
// reversing the output, so ties keep their input order in both directions.
func Sort(list []core.Provider, s SortCriteria) []core.Provider {
	result := slices.Clone(list)
	if result == nil {
		result = []core.Provider{}
	}
	slices.SortStableFunc(result, comparatorFor(s))
	return result
}

// Apply dedupes, filters and sorts source in one pass.
func Apply(source []core.Provider, c FilterCriteria, s SortCriteria) []core.Provider {
	return Sort(Filter(Dedupe(source), c), s)
}

// Paginate returns the window [offset, offset+limit). A zero limit means no upper bound.
func Paginate(list []core.Provider, offset, limit int) []core.Provider {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []core.Provider{}
	}
	list = list[offset:]

	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
