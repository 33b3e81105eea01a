package query

import (
	"fmt"
	"strings"
)

// DefaultPageSize is the page size the directory listing has always used.
const DefaultPageSize = 6

// SortKey selects the field Remote records are ordered by.
type SortKey string

const (
	SortByName  SortKey = "name"
	SortByEmail SortKey = "email"
)

// ParseSortKey parses "name" or "email", ignoring case and surrounding space.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByName, SortByEmail:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want name or email)", s)
	}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder parses "asc" or "desc", ignoring case and surrounding space.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want asc or desc)", s)
	}
}

// Params are the inputs of a view.
type Params struct {
	Search    string
	SortBy    SortKey
	SortOrder SortOrder
	Page      int
	PageSize  int

	// Where is an optional extra filter. Nil keeps every record.
	Where *Predicate
}

// DefaultParams returns page 1 of an unfiltered listing sorted by name ascending.
func DefaultParams() Params {
	return Params{
		SortBy:    SortByName,
		SortOrder: Asc,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

func (p Params) pageSize() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}
