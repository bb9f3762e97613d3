package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/metrics"
	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
)

// daemonServiceImpl bridges gRPC calls to the mediator
type daemonServiceImpl struct {
	mediator common.Mediator
	logger   common.Logger
}

func newDaemonServiceImpl(mediator common.Mediator, logger common.Logger) *daemonServiceImpl {
	return &daemonServiceImpl{mediator: mediator, logger: logger}
}

// serviceDesc describes the daemon service without generated stubs: one unary method per
// route, every message a structpb.Struct
func (s *daemonServiceImpl) serviceDesc() *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*interface{})(nil),
		Metadata:    "fabtycoon/daemon.proto",
	}
	for _, r := range routes {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: r.method,
			Handler:    s.unaryHandler(r),
		})
	}
	return desc
}

func (s *daemonServiceImpl) unaryHandler(r route) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(_ interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handle := func(ctx context.Context, req interface{}) (interface{}, error) {
			return s.dispatch(ctx, r, req.(*structpb.Struct))
		}
		if interceptor == nil {
			return handle(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: s, FullMethod: fullMethod(r.method)}
		return interceptor(ctx, in, info, handle)
	}
}

func (s *daemonServiceImpl) dispatch(ctx context.Context, r route, in *structpb.Struct) (*structpb.Struct, error) {
	request := r.newRequest()
	if err := fromStruct(in, request); err != nil {
		return nil, toStatus(fmt.Errorf("%s: %w", r.method, err))
	}

	ctx = common.WithLogger(ctx, s.logger)
	response, err := s.mediator.Send(ctx, request)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := toStruct(response)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

// metricsInterceptor records every call with its status code
func metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	metrics.RecordRPC(methodName(info.FullMethod), status.Code(err).String(), time.Since(start).Seconds())
	return resp, err
}

func methodName(fullMethod string) string {
	for i := len(fullMethod) - 1; i >= 0; i-- {
		if fullMethod[i] == '/' {
			return fullMethod[i+1:]
		}
	}
	return fullMethod
}
