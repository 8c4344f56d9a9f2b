package grpc

import (
	"context"
	"errors"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type getRequest struct {
	RunID string `json:"run_id"`
}

type batchRequest struct {
	Scenarios []application.RunSimulationCommand `json:"scenarios"`
}

type batchResponse struct {
	Items []*application.SimulationDTO `json:"items"`
}

type previewRequest struct {
	Shock   domain.ShockSpec `json:"shock"`
	Horizon int              `json:"horizon"`
}

type Server struct {
	app *application.SimulationApplicationService
}

func NewServer(s *grpc.Server, app *application.SimulationApplicationService) *Server {
	srv := &Server{app: app}
	RegisterSimulationServiceServer(s, srv)
	return srv
}

func (s *Server) RunSimulation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var cmd application.RunSimulationCommand
	if err := fromStruct(req, &cmd); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	dto, err := s.app.RunSimulation(ctx, cmd)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(dto)
}

func (s *Server) RunBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in batchRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	dtos, err := s.app.RunBatch(ctx, in.Scenarios)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(batchResponse{Items: dtos})
}

func (s *Server) GetSimulation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in getRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	dto, err := s.app.GetSimulation(ctx, in.RunID)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(dto)
}

func (s *Server) PreviewShock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in previewRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	series, err := s.app.PreviewShock(ctx, in.Shock, in.Horizon)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(series)
}

func reply(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus 领域错误映射为 gRPC 状态码
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNumericDegeneracy):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrCalibrationUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
