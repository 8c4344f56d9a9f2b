package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName 完整服务名
const ServiceName = "nkmodel.v1.SimulationService"

// 方法全名
const (
	RunSimulationMethod = "/" + ServiceName + "/RunSimulation"
	RunBatchMethod      = "/" + ServiceName + "/RunBatch"
	GetSimulationMethod = "/" + ServiceName + "/GetSimulation"
	PreviewShockMethod  = "/" + ServiceName + "/PreviewShock"
)

// SimulationServiceServer 服务端接口，消息体均为 google.protobuf.Struct，字段与 HTTP JSON 一致
type SimulationServiceServer interface {
	RunSimulation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSimulation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewShock(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(SimulationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(SimulationServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var simulationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunSimulation", Handler: unaryHandler(RunSimulationMethod, SimulationServiceServer.RunSimulation)},
		{MethodName: "RunBatch", Handler: unaryHandler(RunBatchMethod, SimulationServiceServer.RunBatch)},
		{MethodName: "GetSimulation", Handler: unaryHandler(GetSimulationMethod, SimulationServiceServer.GetSimulation)},
		{MethodName: "PreviewShock", Handler: unaryHandler(PreviewShockMethod, SimulationServiceServer.PreviewShock)},
	},
	Streams:  []grpc.StreamDesc{},
}

// RegisterSimulationServiceServer 注册服务
func RegisterSimulationServiceServer(s grpc.ServiceRegistrar, srv SimulationServiceServer) {
	s.RegisterService(&simulationServiceDesc, srv)
}

// toStruct 经 JSON 将任意值转为 Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("message must be a JSON object: %w", err)
	}
	return structpb.NewStruct(m)
}

// fromStruct 经 JSON 将 Struct 解码到 dest
func fromStruct(s *structpb.Struct, dest any) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
