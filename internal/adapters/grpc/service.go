package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName      = "portsched.oracle.v1.Oracle"
	setDockMethod    = "/" + serviceName + "/SetDock"
	guessMethod      = "/" + serviceName + "/Guess"
	serviceProtoFile = "portsched/oracle/v1/oracle.proto"
)

// OracleHandler is the server API of the oracle service
type OracleHandler interface {
	SetDock(ctx context.Context, req *DockRef) (*Ack, error)
	Guess(ctx context.Context, req *GuessRequest) (*Verdict, error)
}

// RegisterOracleHandler registers srv with a gRPC server
func RegisterOracleHandler(s grpc.ServiceRegistrar, srv OracleHandler) {
	s.RegisterService(&oracleServiceDesc, srv)
}

var oracleServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OracleHandler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetDock", Handler: setDockHandler},
		{MethodName: "Guess", Handler: guessHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceProtoFile,
}

func setDockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DockRef)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OracleHandler).SetDock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: setDockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OracleHandler).SetDock(ctx, req.(*DockRef))
	}
	return interceptor(ctx, in, info, handler)
}

func guessHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GuessRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OracleHandler).Guess(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: guessMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OracleHandler).Guess(ctx, req.(*GuessRequest))
	}
	return interceptor(ctx, in, info, handler)
}
