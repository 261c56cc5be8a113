package notify

import (
	"fmt"

	"guestflow-backend/internal/domain"
)

// Message is what a guest sees for one effect.
type Message struct {
	Title      string
	Body       string
	Attributes map[string]string
}

// Render builds the guest-facing message for an effect. ok is false for kinds
// that are recorded but not announced.
func Render(e domain.Effect, g domain.Guest) (msg Message, ok bool) {
	attrs := map[string]string{"kind": string(e.Kind), "event_id": e.EventID}
	switch e.Kind {
	case domain.EffectGuestConfirmed:
		msg = Message{Title: "You're confirmed", Body: fmt.Sprintf("Hi %s, your attendance is confirmed for %s.", g.Name, seats(e.Seats))}
	case domain.EffectGuestWaitlisted:
		msg = Message{Title: "You're on the waitlist", Body: fmt.Sprintf("Hi %s, we have no room for %s right now. We'll confirm you as soon as space frees up.", g.Name, seats(e.Seats))}
	case domain.EffectGuestPromoted:
		msg = Message{Title: "A place opened up", Body: fmt.Sprintf("Good news %s, you've been confirmed from the waitlist for %s.", g.Name, seats(e.Seats))}
	case domain.EffectGuestDeclined:
		msg = Message{Title: "RSVP received", Body: fmt.Sprintf("Hi %s, sorry you can't make it. Your response has been recorded.", g.Name)}
	case domain.EffectGuestArrived:
		msg = Message{Title: "Welcome", Body: fmt.Sprintf("Welcome %s, you're checked in.", g.Name)}
	case domain.EffectRequestApproved:
		msg = Message{Title: "Request approved", Body: "Your request has been approved."}
		attrs["request_id"] = e.RequestID
	case domain.EffectRequestPendingReview:
		msg = Message{Title: "Request received", Body: "Your request is waiting for review by the event team."}
		attrs["request_id"] = e.RequestID
	case domain.EffectRequestForwarded:
		msg = Message{Title: "Request under review", Body: "Your request has been passed to the host for a decision."}
		attrs["request_id"] = e.RequestID
	case domain.EffectRequestRejected:
		msg = Message{Title: "Request declined", Body: "Unfortunately your request could not be approved."}
		attrs["request_id"] = e.RequestID
	case domain.EffectSessionRegistered:
		msg = Message{Title: "Session booked", Body: "You're registered for the session."}
		attrs["session_id"] = e.SessionID
	case domain.EffectSessionUnregistered:
		msg = Message{Title: "Session cancelled", Body: "Your registration for the session was removed."}
		attrs["session_id"] = e.SessionID
	case domain.EffectGuestNoShow, domain.EffectWaitlistLeft:
		return Message{}, false
	default:
		return Message{}, false
	}
	msg.Attributes = attrs
	return msg, true
}

func seats(n int) string {
	if n == 1 {
		return "1 seat"
	}
	return fmt.Sprintf("%d seats", n)
}
