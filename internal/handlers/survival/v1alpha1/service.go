package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "deadgrid.survival.v1alpha1.SimulationService"

// Full method names
const (
	MethodStartPlaythrough = "/" + ServiceName + "/StartPlaythrough"
	MethodSubmitAction     = "/" + ServiceName + "/SubmitAction"
	MethodResolveChoice    = "/" + ServiceName + "/ResolveChoice"
	MethodGetSnapshot      = "/" + ServiceName + "/GetSnapshot"
)

// SimulationServiceServer is the server API. Every message is a
// google.protobuf.Struct carrying the JSON form of the request types.
type SimulationServiceServer interface {
	StartPlaythrough(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SubmitAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ResolveChoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSimulationServiceServer registers srv with s
func RegisterSimulationServiceServer(s grpc.ServiceRegistrar, srv SimulationServiceServer) {
	s.RegisterService(&SimulationServiceDesc, srv)
}

type unaryMethod func(SimulationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SimulationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SimulationServiceDesc describes the service for grpc.Server
var SimulationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StartPlaythrough",
			Handler:    unaryHandler(MethodStartPlaythrough, SimulationServiceServer.StartPlaythrough),
		},
		{
			MethodName: "SubmitAction",
			Handler:    unaryHandler(MethodSubmitAction, SimulationServiceServer.SubmitAction),
		},
		{
			MethodName: "ResolveChoice",
			Handler:    unaryHandler(MethodResolveChoice, SimulationServiceServer.ResolveChoice),
		},
		{
			MethodName: "GetSnapshot",
			Handler:    unaryHandler(MethodGetSnapshot, SimulationServiceServer.GetSnapshot),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "deadgrid/survival/v1alpha1/simulation.proto",
}

// SimulationServiceClient is the client API
type SimulationServiceClient interface {
	StartPlaythrough(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitAction(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResolveChoice(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSnapshot(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type simulationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSimulationServiceClient creates a client over cc
func NewSimulationServiceClient(cc grpc.ClientConnInterface) SimulationServiceClient {
	return &simulationServiceClient{cc: cc}
}

func (c *simulationServiceClient) invoke(ctx context.Context, method string, req *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulationServiceClient) StartPlaythrough(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStartPlaythrough, req, opts)
}

func (c *simulationServiceClient) SubmitAction(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSubmitAction, req, opts)
}

func (c *simulationServiceClient) ResolveChoice(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodResolveChoice, req, opts)
}

func (c *simulationServiceClient) GetSnapshot(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetSnapshot, req, opts)
}
