package provider

import (
	"math"

	"github.com/newthinker/copyhub/internal/core"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two providers ascending: negative when a sorts first.
type Comparator func(a, b core.Provider) int

// comparatorFactory builds a comparator for a single sort pass. Collators keep internal
// buffers, so NAME gets a fresh one per pass.
type comparatorFactory func() Comparator

var comparators = map[SortKey]comparatorFactory{
	SortReturns: func() Comparator {
		return func(a, b core.Provider) int {
			return compareFloat(a.TotalReturns(), b.TotalReturns())
		}
	},
	SortDate: func() Comparator {
		return func(a, b core.Provider) int {
			switch {
			case a.CreatedAt < b.CreatedAt:
				return -1
			case a.CreatedAt > b.CreatedAt:
				return 1
			}
			return 0
		}
	},
	SortName: func() Comparator {
		c := collate.New(language.English)
		return func(a, b core.Provider) int {
			return c.CompareString(a.Name, b.Name)
		}
	},
	SortFee: func() Comparator {
		return func(a, b core.Provider) int {
			return compareFloat(a.Price, b.Price)
		}
	},
}

// compareFloat treats NaN on either side as a tie.
func compareFloat(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// comparatorFor returns the directional comparator for s. Invalid criteria fall back to
// DefaultSort.
func comparatorFor(s SortCriteria) Comparator {
	if !s.Valid() {
		s = DefaultSort
	}
	cmp := comparators[s.Key]()
	if s.Direction == Desc {
		return func(a, b core.Provider) int { return -cmp(a, b) }
	}
	return cmp
}
