// Package provider filters and orders provider collections for browsing.
package provider

import (
	"fmt"
	"strings"

	"github.com/newthinker/copyhub/internal/core"
)

// All disables a filter clause.
const All = "ALL"

// FilterCriteria selects providers by quote asset, exchange and exchange type.
// An empty value behaves like All.
type FilterCriteria struct {
	Coin         string `json:"coin"`
	Exchange     string `json:"exchange"`
	ExchangeType string `json:"exchangeType"`
}

// DefaultFilters returns criteria that keep every provider.
func DefaultFilters() FilterCriteria {
	return FilterCriteria{Coin: All, Exchange: All, ExchangeType: All}
}

// Matches reports whether p satisfies all three clauses.
func (c FilterCriteria) Matches(p core.Provider) bool {
	if !isAll(c.Coin) && p.Quote != c.Coin {
		return false
	}
	if !isAll(c.Exchange) && !p.HasExchange(c.Exchange) {
		return false
	}
	if !isAll(c.ExchangeType) && !strings.EqualFold(string(p.ExchangeType), c.ExchangeType) {
		return false
	}
	return true
}

func isAll(v string) bool {
	return v == "" || v == All
}

// SortKey selects the field providers are ordered by.
type SortKey string

const (
	SortReturns SortKey = "RETURNS"
	SortDate    SortKey = "DATE"
	SortName    SortKey = "NAME"
	SortFee     SortKey = "FEE"
)

// SortKeys lists every supported key in display order.
var SortKeys = []SortKey{SortReturns, SortDate, SortName, SortFee}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SortCriteria is a key plus direction, encoded as "KEY_DIRECTION".
type SortCriteria struct {
	Key       SortKey
	Direction Direction
}

// DefaultSort orders by total returns, best first.
var DefaultSort = SortCriteria{Key: SortReturns, Direction: Desc}

// ParseSort decodes a "KEY_DIRECTION" token such as "RETURNS_DESC".
func ParseSort(token string) (SortCriteria, error) {
	key, dir, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(token)), "_")
	if !ok {
		return SortCriteria{}, core.WrapError(core.ErrInvalidSort,
			fmt.Errorf("malformed sort token %q", token))
	}

	s := SortCriteria{Key: SortKey(key), Direction: Direction(dir)}
	if !s.Valid() {
		return SortCriteria{}, core.WrapError(core.ErrInvalidSort,
			fmt.Errorf("unknown sort token %q", token))
	}
	return s, nil
}

// Valid reports whether both the key and the direction are known.
func (s SortCriteria) Valid() bool {
	if _, ok := comparators[s.Key]; !ok {
		return false
	}
	return s.Direction == Asc || s.Direction == Desc
}

// String encodes the criteria as its "KEY_DIRECTION" token.
func (s SortCriteria) String() string {
	return string(s.Key) + "_" + string(s.Direction)
}

// Reverse returns the same key with the opposite direction.
func (s SortCriteria) Reverse() SortCriteria {
	if s.Direction == Asc {
		s.Direction = Desc
	} else {
		s.Direction = Asc
	}
	return s
}
