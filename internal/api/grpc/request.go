package grpc

import (
	"context"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/service"
)

type RequestHandler struct {
	requestSvc service.RequestService
	guestSvc   service.GuestService
}

func NewRequestHandler(requestSvc service.RequestService, guestSvc service.GuestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc, guestSvc: guestSvc}
}

var requestServiceDesc = serviceDesc("RequestService",
	unary("RequestService", "CreateRequest", (*RequestHandler).CreateRequest),
	unary("RequestService", "ReviewRequest", (*RequestHandler).ReviewRequest),
	unary("RequestService", "BulkApprove", (*RequestHandler).BulkApprove),
	unary("RequestService", "ListRequests", (*RequestHandler).ListRequests),
	unary("RequestService", "GetBudgetSummary", (*RequestHandler).GetBudgetSummary),
)

func (h *RequestHandler) CreateRequest(ctx context.Context, req *CreateRequestRequest) (*GuestRequestResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	r, err := h.requestSvc.CreateRequest(ctx, req.GuestID, req.PerkID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &GuestRequestResponse{Request: r}, nil
}

func (h *RequestHandler) ReviewRequest(ctx context.Context, req *ReviewRequestRequest) (*GuestRequestResponse, error) {
	agentID, err := GetAgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	action, err := domain.ParseReviewAction(req.Action)
	if err != nil {
		return nil, err
	}
	existing, err := h.requestSvc.GetRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEvent(ctx, existing.EventID); err != nil {
		return nil, err
	}
	r, err := h.requestSvc.ReviewRequest(ctx, req.RequestID, action, agentID, req.Note)
	if err != nil {
		return nil, err
	}
	return &GuestRequestResponse{Request: r}, nil
}

func (h *RequestHandler) BulkApprove(ctx context.Context, req *BulkApproveRequest) (*BulkApproveResponse, error) {
	agentID, err := GetAgentIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	return mapBulkResult(h.requestSvc.BulkApprove(ctx, req.EventID, req.RequestIDs, agentID)), nil
}

func (h *RequestHandler) ListRequests(ctx context.Context, req *ListRequestsRequest) (*ListRequestsResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	requests, err := h.requestSvc.ListRequests(ctx, req.EventID, domain.RequestStatus(req.Status))
	if err != nil {
		return nil, err
	}
	return &ListRequestsResponse{Requests: requests}, nil
}

func (h *RequestHandler) GetBudgetSummary(ctx context.Context, req *GuestIDRequest) (*BudgetSummaryResponse, error) {
	if _, err := loadAuthorizedGuest(ctx, h.guestSvc, req.GuestID); err != nil {
		return nil, err
	}
	summary, err := h.requestSvc.GetBudgetSummary(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	return &BudgetSummaryResponse{Summary: summary}, nil
}
