package dto

import "time"

// CoachDashboardResponse is the aggregated coach dashboard payload.
type CoachDashboardResponse struct {
	CoachID        string            `json:"coach_id"`
	GeneratedAt    time.Time         `json:"generated_at"`
	Source         string            `json:"source"`
	Clients        ClientCounts      `json:"clients"`
	Week           WeekStats         `json:"week"`
	CompletionRate float64           `json:"completion_rate"`
	Upcoming       []UpcomingWorkout `json:"upcoming"`
	RecentClients  []RecentClient    `json:"recent_clients"`
}

// ClientCounts breaks the roster down by status.
type ClientCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Pending  int `json:"pending"`
	Inactive int `json:"inactive"`
}

// WeekStats summarises workouts scheduled in the current week.
type WeekStats struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Scheduled int       `json:"scheduled"`
	Completed int       `json:"completed"`
	Pending   int       `json:"pending"`
}

// UpcomingWorkout is a pending workout scheduled in the future.
type UpcomingWorkout struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ClientID     string    `json:"client_id"`
	ClientName   string    `json:"client_name"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Exercises    int       `json:"exercises"`
}

// RecentClient is a recently added client.
type RecentClient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
