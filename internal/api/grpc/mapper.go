package grpc

import (
	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/service"
)

func mapWaitlist(poolID string, positions []service.WaitlistPosition) *WaitlistResponse {
	out := &WaitlistResponse{PoolID: poolID, Entries: make([]WaitlistEntry, 0, len(positions))}
	for _, p := range positions {
		out.Entries = append(out.Entries, WaitlistEntry{
			Position:       p.Position,
			GuestID:        p.Entry.GuestID,
			Priority:       p.Entry.Priority,
			RequestedSeats: p.Entry.RequestedSeats,
			JoinedAt:       p.Entry.JoinedAt,
		})
	}
	return out
}

func mapRegistration(r *engine.Registration) *RegistrationResponse {
	if r == nil {
		return nil
	}
	return &RegistrationResponse{
		Session:    r.Session,
		Registered: r.Created != nil,
		Implicit:   r.Implicit,
		Removed:    r.Removed != nil,
	}
}

func mapSwitchResult(r *engine.SwitchResult) *SwitchSessionResponse {
	out := &SwitchSessionResponse{Unregistered: []string{}}
	for _, u := range r.Unregistered {
		if u.Removed != nil {
			out.Unregistered = append(out.Unregistered, u.Session.ID)
		}
	}
	out.Registered = mapRegistration(r.Registered)
	return out
}

func mapBulkResult(r engine.BulkResult) *BulkApproveResponse {
	out := &BulkApproveResponse{Approved: r.Approved, Failed: r.Failed}
	if len(r.Errors) > 0 {
		out.Errors = make(map[string]string, len(r.Errors))
		for id, err := range r.Errors {
			out.Errors[id] = err.Error()
		}
	}
	return out
}

func mapPool(p *domain.ResourcePool) *PoolResponse {
	return &PoolResponse{Pool: p, Available: p.Available()}
}

func mapRSVP(r *service.RSVPResult) *RSVPResponse {
	g := r.Guest
	return &RSVPResponse{Guest: &g, Waitlisted: r.Waitlisted, Position: r.Position}
}
