package domain

import (
	"slices"
	"time"
)

// Agent is a travel agent operating one or more events.
type Agent struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	EventIDs     []string  `json:"event_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Agent) OwnsEvent(eventID string) bool {
	return slices.Contains(a.EventIDs, eventID)
}
