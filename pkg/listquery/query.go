// Package listquery filters, searches and paginates in-memory record
// collections. Every stage is a pure function over its input slice.
package listquery

import "strings"

// StatusAll disables the status filter.
const StatusAll = "all"

// DefaultPageSize is used when a query carries no page size.
const DefaultPageSize = 20

// Record is an entity that can flow through the pipeline.
type Record interface {
	RecordID() string
	RecordStatus() string
	SearchFields() []string
}

// NestedSearcher exposes searchable text owned by a child entity, such as
// the exercise names of a workout.
type NestedSearcher interface {
	NestedSearchFields() []string
}

// Owned is implemented by records that belong to another entity and can be
// narrowed with Query.Owner.
type Owned interface {
	OwnerID() string
}

// Query is the transient filter state of a list view. Values are copied;
// the With* helpers return a new query with the page cursor reset whenever
// the eligible set may change.
type Query struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	Owner    string `json:"owner,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
}

// NewQuery returns a query that matches everything on the first page.
func NewQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Query{Status: StatusAll, PageSize: pageSize}
}

// WithSearch sets the free-text term.
func (q Query) WithSearch(term string) Query {
	if q.Search != term {
		q.Search = term
		q.Page = 0
	}
	return q
}

// WithStatus sets the status filter. Empty means StatusAll.
func (q Query) WithStatus(status string) Query {
	status = normalizeStatus(status)
	if normalizeStatus(q.Status) != status {
		q.Page = 0
	}
	q.Status = status
	return q
}

// WithOwner sets the owner filter.
func (q Query) WithOwner(owner string) Query {
	if q.Owner != owner {
		q.Owner = owner
		q.Page = 0
	}
	return q
}

// WithSort sets ordering and resets the cursor to the first page.
func (q Query) WithSort(field, order string) Query {
	if q.Sort != field || q.Order != order {
		q.Sort = field
		q.Order = order
		q.Page = 0
	}
	return q
}

// WithPageSize changes the window size.
func (q Query) WithPageSize(size int) Query {
	if size <= 0 {
		size = DefaultPageSize
	}
	if q.PageSize != size {
		q.PageSize = size
		q.Page = 0
	}
	return q
}

// WithPage moves the cursor. Negative pages clamp to zero.
func (q Query) WithPage(page int) Query {
	if page < 0 {
		page = 0
	}
	q.Page = page
	return q
}

// Descending reports whether Order asks for descending results.
func (q Query) Descending() bool {
	return strings.EqualFold(q.Order, "desc")
}

func normalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return StatusAll
	}
	return status
}
