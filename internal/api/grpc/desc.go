package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const apiPackage = "guestflow.api.v1"

// unary binds a handler method expression to a gRPC method of service.
func unary[H any, Req any, Resp any](service, name string, fn func(H, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + apiPackage + "." + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := srv.(H)
			call := func(ctx context.Context, req any) (any, error) {
				out, err := fn(h, ctx, req.(*Req))
				if err != nil {
					return nil, toStatus(err)
				}
				return out, nil
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, call)
		},
	}
}

// serviceDesc declares a service whose methods are bound by unary. Handlers are
// plain structs, so any implementation satisfies the handler type.
func serviceDesc(service string, methods ...grpc.MethodDesc) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: apiPackage + "." + service,
		HandlerType: (*any)(nil),
		Methods:     methods,
		Streams:     []grpc.StreamDesc{},
		Metadata:    "guestflow/api/v1",
	}
}
