package models

import "time"

// ClientStatus describes where a client is in the coaching lifecycle.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusPending  ClientStatus = "pending"
	ClientStatusInactive ClientStatus = "inactive"
)

// ClientStatuses lists the recognised client statuses.
var ClientStatuses = []ClientStatus{ClientStatusActive, ClientStatusPending, ClientStatusInactive}

// Client represents a person coached by a coach account.
type Client struct {
	ID          string       `db:"id" json:"id"`
	CoachID     string       `db:"coach_id" json:"coach_id"`
	Name        string       `db:"name" json:"name"`
	Email       string       `db:"email" json:"email"`
	Phone       string       `db:"phone" json:"phone"`
	ProgramType string       `db:"program_type" json:"program_type"`
	Status      ClientStatus `db:"status" json:"status"`
	Goals       string       `db:"goals" json:"goals"`
	StartDate   time.Time    `db:"start_date" json:"start_date"`
	LastActive  *time.Time   `db:"last_active" json:"last_active,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

func (c Client) RecordID() string     { return c.ID }
func (c Client) RecordStatus() string { return string(c.Status) }

// SearchFields are the client attributes matched by free-text search.
func (c Client) SearchFields() []string {
	return []string{c.Name, c.Email, c.Phone, c.ProgramType}
}

// ClientQuery carries list parameters for clients.
type ClientQuery struct {
	Search    string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
