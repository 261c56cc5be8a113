package domain

import "time"

type Notification struct {
	ID         string            `json:"id"`
	GuestID    string            `json:"guest_id"`
	EventID    string            `json:"event_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}
