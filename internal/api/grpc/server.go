package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/security"
	"guestflow-backend/internal/service"
)

// Services bundles what the gRPC handlers call into.
type Services struct {
	Auth          service.AuthService
	Guests        service.GuestService
	Inventory     service.InventoryService
	Requests      service.RequestService
	Itinerary     service.ItineraryService
	Notifications service.NotificationService
	Tokens        security.TokenManager
}

// NewServer builds the gRPC server with every API service, health and
// reflection registered. auth runs after panic recovery and call logging.
func NewServer(svcs Services, auth grpc.UnaryServerInterceptor) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoverUnary, logUnary, auth),
	)
	Register(s, svcs)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}

// Register adds the API services to any service registrar.
func Register(s grpc.ServiceRegistrar, svcs Services) {
	s.RegisterService(authServiceDesc, NewAuthHandler(svcs.Auth))
	s.RegisterService(guestServiceDesc, NewGuestHandler(svcs.Guests, svcs.Tokens))
	s.RegisterService(inventoryServiceDesc, NewInventoryHandler(svcs.Inventory))
	s.RegisterService(requestServiceDesc, NewRequestHandler(svcs.Requests, svcs.Guests))
	s.RegisterService(itineraryServiceDesc, NewItineraryHandler(svcs.Itinerary, svcs.Guests))
	s.RegisterService(notificationServiceDesc, NewNotificationHandler(svcs.Notifications, svcs.Guests))
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start)}
	if err != nil && status.Code(err) == codes.Internal {
		logger.Error("gRPC call failed", append(args, "error", err)...)
	} else {
		logger.Debug("gRPC call", args...)
	}
	return resp, err
}

func recoverUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in gRPC handler", "method", info.FullMethod, "panic", r)
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
