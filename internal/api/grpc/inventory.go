package grpc

import (
	"context"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/service"
)

type InventoryHandler struct {
	inventorySvc service.InventoryService
}

func NewInventoryHandler(inventorySvc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventorySvc: inventorySvc}
}

var inventoryServiceDesc = serviceDesc("InventoryService",
	unary("InventoryService", "CreatePool", (*InventoryHandler).CreatePool),
	unary("InventoryService", "GetPool", (*InventoryHandler).GetPool),
	unary("InventoryService", "GetWaitlist", (*InventoryHandler).GetWaitlist),
	unary("InventoryService", "AdjustBlocked", (*InventoryHandler).AdjustBlocked),
	unary("InventoryService", "ReleaseUnits", (*InventoryHandler).ReleaseUnits),
)

func (h *InventoryHandler) CreatePool(ctx context.Context, req *CreatePoolRequest) (*PoolResponse, error) {
	if err := authorizeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}
	pool := &domain.ResourcePool{
		EventID:             req.EventID,
		Name:                req.Name,
		Kind:                domain.PoolKind(req.Kind),
		IsPrimary:           req.IsPrimary,
		Blocked:             req.Blocked,
		NegotiatedRateCents: req.NegotiatedRateCents,
		ValidFrom:           req.ValidFrom,
		ValidTo:             req.ValidTo,
	}
	if err := h.inventorySvc.CreatePool(ctx, pool); err != nil {
		return nil, err
	}
	return mapPool(pool), nil
}

func (h *InventoryHandler) GetPool(ctx context.Context, req *PoolIDRequest) (*PoolResponse, error) {
	pool, err := h.authorizedPool(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}
	return mapPool(pool), nil
}

func (h *InventoryHandler) GetWaitlist(ctx context.Context, req *PoolIDRequest) (*WaitlistResponse, error) {
	if _, err := h.authorizedPool(ctx, req.PoolID); err != nil {
		return nil, err
	}
	positions, err := h.inventorySvc.GetWaitlist(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}
	return mapWaitlist(req.PoolID, positions), nil
}

func (h *InventoryHandler) AdjustBlocked(ctx context.Context, req *AdjustBlockedRequest) (*PoolResponse, error) {
	if _, err := h.authorizedPool(ctx, req.PoolID); err != nil {
		return nil, err
	}
	pool, err := h.inventorySvc.AdjustBlocked(ctx, req.PoolID, req.Blocked)
	if err != nil {
		return nil, err
	}
	return mapPool(pool), nil
}

func (h *InventoryHandler) ReleaseUnits(ctx context.Context, req *ReleaseUnitsRequest) (*PoolResponse, error) {
	if _, err := h.authorizedPool(ctx, req.PoolID); err != nil {
		return nil, err
	}
	pool, err := h.inventorySvc.Release(ctx, req.PoolID, req.Units)
	if err != nil {
		return nil, err
	}
	return mapPool(pool), nil
}

func (h *InventoryHandler) authorizedPool(ctx context.Context, poolID string) (*domain.ResourcePool, error) {
	pool, err := h.inventorySvc.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEvent(ctx, pool.EventID); err != nil {
		return nil, err
	}
	return pool, nil
}
