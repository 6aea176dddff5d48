package models

import (
	"sort"
	"strings"
	"time"
)

// Sortable fields accepted by list endpoints.
var (
	ClientSortFields  = []string{"name", "start_date", "last_active", "created_at", "status"}
	WorkoutSortFields = []string{"scheduled_for", "title", "client_name", "created_at"}
)

// SortClients orders clients in place by field. Unknown fields leave the
// order untouched.
func SortClients(clients []Client, field string, desc bool) {
	var cmp func(a, b Client) int
	switch field {
	case "name":
		cmp = func(a, b Client) int { return compareFold(a.Name, b.Name) }
	case "status":
		cmp = func(a, b Client) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case "start_date":
		cmp = func(a, b Client) int { return compareTime(a.StartDate, b.StartDate) }
	case "last_active":
		cmp = func(a, b Client) int { return compareTime(deref(a.LastActive), deref(b.LastActive)) }
	case "created_at":
		cmp = func(a, b Client) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return ordered(cmp(clients[i], clients[j]), desc)
	})
}

// SortWorkouts orders workouts in place by field.
func SortWorkouts(workouts []Workout, field string, desc bool) {
	var cmp func(a, b Workout) int
	switch field {
	case "scheduled_for":
		cmp = func(a, b Workout) int { return compareTime(a.ScheduledFor, b.ScheduledFor) }
	case "title":
		cmp = func(a, b Workout) int { return compareFold(a.Title, b.Title) }
	case "client_name":
		cmp = func(a, b Workout) int { return compareFold(a.ClientName, b.ClientName) }
	case "created_at":
		cmp = func(a, b Workout) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(workouts, func(i, j int) bool {
		return ordered(cmp(workouts[i], workouts[j]), desc)
	})
}

// ValidSortField reports whether field is in allowed.
func ValidSortField(field string, allowed []string) bool {
	for _, f := range allowed {
		if f == field {
			return true
		}
	}
	return false
}

func ordered(cmp int, desc bool) bool {
	if desc {
		return cmp > 0
	}
	return cmp < 0
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
