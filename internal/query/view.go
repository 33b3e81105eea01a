package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// Page is one page of a view.
type Page struct {
	Items      []record.Record `json:"items" yaml:"items"`
	Count      int             `json:"count" yaml:"count"`
	TotalPages int             `json:"total_pages" yaml:"total_pages"`
	Page       int             `json:"page" yaml:"page"`
}

// Compute filters, orders and paginates records. The input is not modified.
func Compute(records []record.Record, p Params) Page {
	matched := Filter(records, p.Search, p.Where)
	Sort(matched, p.SortBy, p.SortOrder)
	return Paginate(matched, p.Page, p.pageSize())
}

// Filter returns a copy of the records whose name or email contains search
// and that satisfy where. A blank search keeps every record. A record the
// predicate fails to evaluate on is dropped.
func Filter(records []record.Record, search string, where *Predicate) []record.Record {
	needle := Fold(strings.TrimSpace(search))

	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if needle != "" && !containsFolded(r.Name, needle) && !containsFolded(r.Email, needle) {
			continue
		}
		if where != nil {
			if ok, err := where.Match(r); err != nil || !ok {
				continue
			}
		}
		out = append(out, r.Clone())
	}
	return out
}

// Compare returns the view ordering:
//
//  1. Local before Remote.
//  2. Among Local records, newer CreatedAt first. The sort key is ignored.
//  3. Among Remote records, the folded sort field in the given order.
//
// Records that tie compare equal so a stable sort keeps their stored order.
func Compare(by SortKey, order SortOrder) func(a, b record.Record) int {
	return func(a, b record.Record) int {
		if c := cmp.Compare(originRank(a), originRank(b)); c != 0 {
			return c
		}
		if a.IsLocal() {
			return createdAt(b).Compare(createdAt(a))
		}
		c := strings.Compare(Fold(sortField(a, by)), Fold(sortField(b, by)))
		if order == Desc {
			return -c
		}
		return c
	}
}

// Sort orders records in place with Compare.
func Sort(records []record.Record, by SortKey, order SortOrder) {
	slices.SortStableFunc(records, Compare(by, order))
}

// TotalPages returns max(1, ceil(count/size)).
func TotalPages(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return max(1, (count+size-1)/size)
}

// Paginate returns page number page (1-based) of records. A page outside
// [1, TotalPages] yields no items; the page number is reported unchanged.
func Paginate(records []record.Record, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	out := Page{
		Items:      []record.Record{},
		Count:      len(records),
		TotalPages: TotalPages(len(records), size),
		Page:       page,
	}
	if page < 1 {
		return out
	}

	start := (page - 1) * size
	if start >= len(records) {
		return out
	}
	end := min(start+size, len(records))
	out.Items = records[start:end]
	return out
}

func originRank(r record.Record) int {
	if r.IsLocal() {
		return 0
	}
	return 1
}

func createdAt(r record.Record) time.Time {
	if r.CreatedAt == nil {
		return time.Time{}
	}
	return *r.CreatedAt
}

func sortField(r record.Record, by SortKey) string {
	if by == SortByEmail {
		return r.Email
	}
	return r.Name
}
