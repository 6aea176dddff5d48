package listquery

import (
	"sort"
	"strings"
)

// Result is one evaluated page of a query.
type Result[T any] struct {
	Items     []T `json:"items"`
	Total     int `json:"total"`
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`
}

// Sorter orders records for a query. It receives a copy it may reorder.
type Sorter[T any] func(records []T, field string, desc bool)

// FilterStatus keeps records whose status equals status. StatusAll and the
// empty string return records unchanged; unknown values match nothing.
func FilterStatus[T Record](records []T, status string) []T {
	status = normalizeStatus(status)
	if status == StatusAll {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r.RecordStatus() == status {
			out = append(out, r)
		}
	}
	return out
}

// FilterOwner keeps records owned by owner. Records that do not implement
// Owned never match a non-empty owner.
func FilterOwner[T Record](records []T, owner string) []T {
	if owner == "" {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if o, ok := any(r).(Owned); ok && o.OwnerID() == owner {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps records with at least one searchable field containing term,
// compared case-insensitively. A blank term returns records unchanged.
func Search[T Record](records []T, term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if matches(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Record, term string) bool {
	if containsAny(r.SearchFields(), term) {
		return true
	}
	if n, ok := r.(NestedSearcher); ok {
		return containsAny(n.NestedSearchFields(), term)
	}
	return false
}

func containsAny(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Sort returns a stably ordered copy of records.
func Sort[T any](records []T, less func(a, b T) bool) []T {
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Paginate returns the window [page*size, page*size+size) of records,
// clamped to the slice bounds. Out of range windows are empty.
func Paginate[T any](records []T, page, size int) []T {
	if page < 0 || size <= 0 {
		return []T{}
	}
	// Compare by division so huge pages cannot overflow page*size.
	if page >= PageCount(len(records), size) {
		return []T{}
	}
	start := page * size
	end := len(records)
	if size < end-start {
		end = start + size
	}
	return records[start:end:end]
}

// PageCount is the number of non-empty pages for total records.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return 1 + (total-1)/size
}

// Filter runs the status, owner and search stages.
func Filter[T Record](records []T, q Query) []T {
	out := FilterStatus(records, q.Status)
	out = FilterOwner(out, q.Owner)
	return Search(out, q.Search)
}

// Apply runs the full pipeline: status, owner, search, sort, paginate.
// sorter may be nil to keep source order.
func Apply[T Record](records []T, q Query, sorter Sorter[T]) Result[T] {
	filtered := All(records, q, sorter)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	page := q.Page
	if page < 0 {
		page = 0
	}
	return Result[T]{
		Items:     Paginate(filtered, page, size),
		Total:     len(filtered),
		Page:      page,
		PageSize:  size,
		PageCount: PageCount(len(filtered), size),
	}
}

// All returns the filtered and sorted records without pagination.
func All[T Record](records []T, q Query, sorter Sorter[T]) []T {
	filtered := Filter(records, q)
	if sorter == nil || q.Sort == "" {
		return filtered
	}
	ordered := make([]T, len(filtered))
	copy(ordered, filtered)
	sorter(ordered, q.Sort, q.Descending())
	return ordered
}
