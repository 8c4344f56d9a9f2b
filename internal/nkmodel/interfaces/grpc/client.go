package grpc

import (
	"context"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client 远程模拟客户端
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient 基于已有连接创建客户端
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// RunSimulation 远程运行一次模拟
func (c *Client) RunSimulation(ctx context.Context, cmd application.RunSimulationCommand) (*application.SimulationDTO, error) {
	var dto application.SimulationDTO
	if err := c.call(ctx, RunSimulationMethod, cmd, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// RunBatch 远程批量运行
func (c *Client) RunBatch(ctx context.Context, cmds []application.RunSimulationCommand) ([]*application.SimulationDTO, error) {
	var out batchResponse
	if err := c.call(ctx, RunBatchMethod, batchRequest{Scenarios: cmds}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetSimulation 远程查询模拟记录
func (c *Client) GetSimulation(ctx context.Context, runID string) (*application.SimulationDTO, error) {
	var dto application.SimulationDTO
	if err := c.call(ctx, GetSimulationMethod, getRequest{RunID: runID}, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

// PreviewShock 远程展开冲击序列
func (c *Client) PreviewShock(ctx context.Context, spec domain.ShockSpec, horizon int) (*domain.ShockSeries, error) {
	var s domain.ShockSeries
	if err := c.call(ctx, PreviewShockMethod, previewRequest{Shock: spec, Horizon: horizon}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
