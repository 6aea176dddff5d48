package listquery

import (
	"sync"
	"time"

	"github.com/romdo/go-debounce"
)

// DefaultDebounce is the quiet period applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// ViewOptions configures a View.
type ViewOptions[T Record] struct {
	Debounce time.Duration
	Sorter   Sorter[T]
	// OnChange receives evaluated results in evaluation order. A result
	// overtaken by a newer one is dropped. Calls are serialised and made
	// without the view lock held. OnChange may call Result or Query but must
	// not call setters.
	OnChange func(Result[T])
}

// View owns a base collection and the query applied to it. Search input is
// debounced; only the most recently scheduled term is evaluated.
type View[T Record] struct {
	mu       sync.Mutex
	records  []T
	query    Query
	pending  *string
	result   Result[T]
	sorter   Sorter[T]
	onChange func(Result[T])
	closed   bool
	seq      uint64

	deliverMu sync.Mutex
	delivered uint64

	debounced func()
	cancel    func()
}

// NewView evaluates the initial query immediately.
func NewView[T Record](records []T, query Query, opts ViewOptions[T]) *View[T] {
	wait := opts.Debounce
	if wait <= 0 {
		wait = DefaultDebounce
	}
	if query.PageSize <= 0 {
		query.PageSize = DefaultPageSize
	}
	v := &View[T]{
		records:  records,
		query:    query,
		sorter:   opts.Sorter,
		onChange: opts.OnChange,
	}
	v.debounced, v.cancel = debounce.New(wait, v.applyPending)
	v.mu.Lock()
	res, seq := v.evaluateLocked()
	v.mu.Unlock()
	v.notify(res, seq)
	return v
}

// SetSearch schedules term to be applied after the debounce interval.
// A later call replaces any term still waiting.
func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.pending = &term
	v.mu.Unlock()
	v.debounced()
}

// Flush applies a pending search term now instead of waiting. The timer
// still fires later but finds nothing pending.
func (v *View[T]) Flush() {
	v.applyPending()
}

// SetStatus applies a status filter immediately.
func (v *View[T]) SetStatus(status string) {
	v.update(func(q Query) Query { return q.WithStatus(status) })
}

// SetOwner applies an owner filter immediately.
func (v *View[T]) SetOwner(owner string) {
	v.update(func(q Query) Query { return q.WithOwner(owner) })
}

// SetSort changes ordering immediately.
func (v *View[T]) SetSort(field, order string) {
	v.update(func(q Query) Query { return q.WithSort(field, order) })
}

// SetPage moves the page cursor.
func (v *View[T]) SetPage(page int) {
	v.update(func(q Query) Query { return q.WithPage(page) })
}

// SetPageSize changes the window size.
func (v *View[T]) SetPageSize(size int) {
	v.update(func(q Query) Query { return q.WithPageSize(size) })
}

// Replace swaps the base collection, e.g. after a refetch, and re-evaluates.
// The page is reset when it would fall past the new last page.
func (v *View[T]) Replace(records []T) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.records = records
	res, seq := v.evaluateLocked()
	if res.Page > 0 && res.Page >= res.PageCount {
		v.query = v.query.WithPage(0)
		res, seq = v.evaluateLocked()
	}
	v.mu.Unlock()
	v.notify(res, seq)
}

// Result returns the last evaluated result.
func (v *View[T]) Result() Result[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// Query returns the current query.
func (v *View[T]) Query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Close cancels any pending evaluation. Subsequent setters are ignored.
func (v *View[T]) Close() {
	v.mu.Lock()
	v.closed = true
	v.pending = nil
	v.mu.Unlock()
	v.cancel()
}

func (v *View[T]) update(fn func(Query) Query) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.query = fn(v.query)
	res, seq := v.evaluateLocked()
	v.mu.Unlock()
	v.notify(res, seq)
}

func (v *View[T]) applyPending() {
	v.mu.Lock()
	if v.closed || v.pending == nil {
		v.mu.Unlock()
		return
	}
	v.query = v.query.WithSearch(*v.pending)
	v.pending = nil
	res, seq := v.evaluateLocked()
	v.mu.Unlock()
	v.notify(res, seq)
}

// evaluateLocked stores a fresh result tagged with its evaluation number.
func (v *View[T]) evaluateLocked() (Result[T], uint64) {
	v.result = Apply(v.records, v.query, v.sorter)
	v.seq++
	return v.result, v.seq
}

// notify delivers res unless a later evaluation was already delivered, so
// the last OnChange call always matches Result.
func (v *View[T]) notify(res Result[T], seq uint64) {
	if v.onChange == nil {
		return
	}
	v.deliverMu.Lock()
	defer v.deliverMu.Unlock()
	if seq <= v.delivered {
		return
	}
	v.delivered = seq
	res.Items = append([]T(nil), res.Items...)
	v.onChange(res)
}
