package listquery

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id     string
	status string
	owner  string
	fields []string
	nested []string
}

func (i item) RecordID() string             { return i.id }
func (i item) RecordStatus() string         { return i.status }
func (i item) SearchFields() []string       { return i.fields }
func (i item) NestedSearchFields() []string { return i.nested }
func (i item) OwnerID() string              { return i.owner }

type plain struct {
	id   string
	name string
}

func (p plain) RecordID() string       { return p.id }
func (p plain) RecordStatus() string   { return "active" }
func (p plain) SearchFields() []string { return []string{p.name} }

func ids(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.id)
	}
	return out
}

func sampleItems() []item {
	return []item{
		{id: "1", status: "active", owner: "c1", fields: []string{"Ronit Cohen", "ronit@example.com"}},
		{id: "2", status: "pending", owner: "c2", fields: []string{"Alon Levi", "alon@example.com"}},
		{id: "3", status: "active", owner: "c1", fields: []string{"Upper Body"}, nested: []string{"Bench Press", "Pull Up"}},
		{id: "4", status: "inactive", owner: "c3", fields: []string{"Leg Day"}, nested: []string{"Squat", "Lunge"}},
		{id: "5", status: "active", owner: "c2", fields: []string{"Noa Bar", "050-1234567"}},
	}
}

func TestFilterStatusAllReturnsInput(t *testing.T) {
	records := sampleItems()
	assert.Equal(t, records, FilterStatus(records, StatusAll))
	assert.Equal(t, records, FilterStatus(records, ""))
}

func TestFilterStatusExactMatch(t *testing.T) {
	clients := []item{
		{id: "ronit", status: "active", fields: []string{"Ronit Cohen"}},
		{id: "alon", status: "pending", fields: []string{"Alon Levi"}},
	}
	got := FilterStatus(clients, "active")
	require.Len(t, got, 1)
	assert.Equal(t, "ronit", got[0].id)

	for _, status := range []string{"active", "pending", "inactive"} {
		out := FilterStatus(sampleItems(), status)
		assert.LessOrEqual(t, len(out), len(sampleItems()))
		for _, r := range out {
			assert.Equal(t, status, r.status)
		}
	}
}

func TestFilterStatusUnknownMatchesNothing(t *testing.T) {
	assert.Empty(t, FilterStatus(sampleItems(), "archived"))
}

func TestFilterOwner(t *testing.T) {
	assert.Equal(t, []string{"2", "5"}, ids(FilterOwner(sampleItems(), "c2")))
	assert.Len(t, FilterOwner(sampleItems(), ""), 5)

	records := []plain{{id: "p", name: "x"}}
	assert.Empty(t, FilterOwner(records, "c1"))
}

func TestSearchBlankTermReturnsInput(t *testing.T) {
	records := sampleItems()
	assert.Equal(t, records, Search(records, ""))
	assert.Equal(t, records, Search(records, "   "))
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	assert.Equal(t, []string{"1"}, ids(Search(sampleItems(), "RONIT")))
	assert.Equal(t, []string{"1", "2"}, ids(Search(sampleItems(), "example.com")))
	assert.Equal(t, []string{"5"}, ids(Search(sampleItems(), "1234")))
}

func TestSearchMatchesNestedFields(t *testing.T) {
	got := Search(sampleItems(), "squ")
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].id)
}

func TestSearchEveryResultContainsTerm(t *testing.T) {
	for _, term := range []string{"a", "on", "press", "day", "x"} {
		for _, r := range Search(sampleItems(), term) {
			assert.True(t, matches(r, term), "record %s should contain %q", r.id, term)
		}
	}
}

func TestComposedStagesEqualIntersection(t *testing.T) {
	records := sampleItems()
	for _, status := range []string{"all", "active", "pending", "inactive"} {
		for _, term := range []string{"", "o", "squat", "levi", "nothing"} {
			composed := ids(Search(FilterStatus(records, status), term))

			searched := map[string]bool{}
			for _, r := range Search(records, term) {
				searched[r.id] = true
			}
			var expected []string
			for _, r := range FilterStatus(records, status) {
				if searched[r.id] {
					expected = append(expected, r.id)
				}
			}
			if expected == nil {
				expected = []string{}
			}
			assert.Equal(t, expected, composed, "status=%s term=%s", status, term)
		}
	}
}

func TestFilteringDoesNotMutateSource(t *testing.T) {
	records := sampleItems()
	snapshot := append([]item(nil), records...)

	_ = Apply(records, Query{Status: "active", Search: "o", PageSize: 1, Sort: "id", Order: "desc"}, sortItems)

	assert.Equal(t, snapshot, records)
}

func TestPaginate(t *testing.T) {
	records := sampleItems()

	got := Paginate(records, 2, 2)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].id)

	assert.Equal(t, []string{"1", "2"}, ids(Paginate(records, 0, 2)))
	assert.Empty(t, Paginate(records, 3, 2))
	assert.Empty(t, Paginate(records, -1, 2))
	assert.Empty(t, Paginate(records, 0, 0))
	assert.NotNil(t, Paginate(records, 10, 2))

	for size := 1; size <= 6; size++ {
		for page := 0; page <= 6; page++ {
			out := Paginate(records, page, size)
			assert.LessOrEqual(t, len(out), size)
			if page*size >= len(records) {
				assert.Empty(t, out)
			}
		}
	}
}

func TestPaginateHugeWindowsStayEmpty(t *testing.T) {
	records := sampleItems()

	for _, size := range []int{1, 2, 4, 1 << 40} {
		assert.NotPanics(t, func() {
			assert.Empty(t, Paginate(records, 1<<62, size))
			assert.Empty(t, Paginate(records, math.MaxInt, size))
		})
	}
	assert.Len(t, Paginate(records, 0, math.MaxInt), len(records))
	assert.Empty(t, Paginate(records, 1, math.MaxInt))
	assert.Equal(t, 1, PageCount(5, math.MaxInt))

	res := Apply(records, Query{Page: 1 << 62, PageSize: 4}, nil)
	assert.Empty(t, res.Items)
	assert.Equal(t, len(records), res.Total)
}

func TestPaginateResultCannotGrowIntoSource(t *testing.T) {
	records := sampleItems()
	page := Paginate(records, 0, 2)
	page = append(page, item{id: "x"})
	assert.Equal(t, "3", records[2].id)
	assert.Len(t, page, 3)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 3, PageCount(5, 2))
	assert.Equal(t, 0, PageCount(5, 0))
}

func sortItems(records []item, field string, desc bool) {
	if field != "id" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return records[i].id > records[j].id
		}
		return records[i].id < records[j].id
	})
}

func TestApply(t *testing.T) {
	q := NewQuery(2).WithStatus("active")
	res := Apply(sampleItems(), q, nil)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, []string{"1", "3"}, ids(res.Items))

	res = Apply(sampleItems(), q.WithSort("id", "desc"), sortItems)
	assert.Equal(t, []string{"5", "3"}, ids(res.Items))

	res = Apply(sampleItems(), q.WithOwner("c1").WithSearch("press"), sortItems)
	assert.Equal(t, []string{"3"}, ids(res.Items))
	assert.Equal(t, 1, res.Total)
}

func TestApplyIsIdempotent(t *testing.T) {
	q := Query{Status: "active", Search: "o", Page: 0, PageSize: 2}
	first := Apply(sampleItems(), q, sortItems)
	second := Apply(sampleItems(), q, sortItems)
	assert.Equal(t, first, second)
}

func TestApplyDefaultsPageSize(t *testing.T) {
	records := make([]item, 0, 45)
	for i := 0; i < 45; i++ {
		records = append(records, item{id: fmt.Sprint(i), status: "active"})
	}
	res := Apply(records, Query{}, nil)
	assert.Len(t, res.Items, DefaultPageSize)
	assert.Equal(t, 3, res.PageCount)
}

func TestQueryFilterChangesResetPage(t *testing.T) {
	q := NewQuery(2).WithPage(3)
	assert.Equal(t, 3, q.Page)

	assert.Equal(t, 0, q.WithSearch("a").Page)
	assert.Equal(t, 0, q.WithStatus("active").Page)
	assert.Equal(t, 0, q.WithOwner("c1").Page)
	assert.Equal(t, 0, q.WithPageSize(5).Page)
	assert.Equal(t, 0, q.WithSort("name", "asc").Page)

	// unchanged values keep the cursor
	assert.Equal(t, 3, q.WithSearch("").Page)
	assert.Equal(t, 3, q.WithStatus("").Page)
	assert.Equal(t, 3, q.WithPageSize(2).Page)
	assert.Equal(t, 0, q.WithPage(-4).Page)
}
