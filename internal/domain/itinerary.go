package domain

import "time"

type ItinerarySession struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	Title            string    `json:"title"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	IsMandatory      bool      `json:"is_mandatory"`
	Capacity         *int      `json:"capacity,omitempty"` // nil = unlimited
	CurrentAttendees int       `json:"current_attendees"`
}

// Overlaps compares the half-open intervals [StartTime, EndTime).
func (s ItinerarySession) Overlaps(o ItinerarySession) bool {
	return s.StartTime.Before(o.EndTime) && o.StartTime.Before(s.EndTime)
}

func (s ItinerarySession) IsFull() bool {
	return s.Capacity != nil && s.CurrentAttendees >= *s.Capacity
}

type ItineraryRegistration struct {
	ID        string    `json:"id"`
	GuestID   string    `json:"guest_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
