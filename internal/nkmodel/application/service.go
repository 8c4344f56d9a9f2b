// Package application 新凯恩斯模型模拟的应用服务：运行、批量、校准运行与查询
package application

import (
	"context"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
)

// Options 服务侧约束
type Options struct {
	MaxHorizon       int
	BatchConcurrency int
	MaxBatchSize     int
	// 事件 topic
	CompletedTopic string
	FailedTopic    string
}

func (o Options) withDefaults() Options {
	if o.MaxHorizon <= 0 {
		o.MaxHorizon = 1000
	}
	if o.BatchConcurrency <= 0 {
		o.BatchConcurrency = 4
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = 64
	}
	if o.CompletedTopic == "" {
		o.CompletedTopic = domain.SimulationCompletedEventType
	}
	if o.FailedTopic == "" {
		o.FailedTopic = domain.SimulationFailedEventType
	}
	return o
}

// Dependencies 应用服务依赖，除 Repo 外均可为空
type Dependencies struct {
	Repo      domain.SimulationRunRepository
	Cache     domain.ResultCache
	Publisher domain.EventPublisher
	Source    ParameterSource
	Metrics   *metrics.Metrics
}

// SimulationApplicationService 模拟服务门面，整合命令服务和查询服务
type SimulationApplicationService struct {
	commandService *SimulationCommandService
	queryService   *SimulationQueryService
}

// NewSimulationApplicationService 创建模拟服务门面
func NewSimulationApplicationService(deps Dependencies, opts Options) *SimulationApplicationService {
	return &SimulationApplicationService{
		commandService: NewSimulationCommandService(deps.Repo, deps.Cache, deps.Publisher, deps.Source, deps.Metrics, opts),
		queryService:   NewSimulationQueryService(deps.Repo, opts),
	}
}

// RunSimulation 运行一次模拟
func (s *SimulationApplicationService) RunSimulation(ctx context.Context, cmd RunSimulationCommand) (*SimulationDTO, error) {
	return s.commandService.RunSimulation(ctx, cmd)
}

// RunBatch 批量运行
func (s *SimulationApplicationService) RunBatch(ctx context.Context, cmds []RunSimulationCommand) ([]*SimulationDTO, error) {
	return s.commandService.RunBatch(ctx, cmds)
}

// RunCalibrated 校准后运行
func (s *SimulationApplicationService) RunCalibrated(ctx context.Context, cmd RunCalibratedCommand) (*CalibratedSimulationDTO, error) {
	return s.commandService.RunCalibrated(ctx, cmd)
}

// GetSimulation 获取模拟记录
func (s *SimulationApplicationService) GetSimulation(ctx context.Context, runID string) (*SimulationDTO, error) {
	return s.queryService.GetSimulation(ctx, runID)
}

// ListSimulations 分页列出模拟记录
func (s *SimulationApplicationService) ListSimulations(ctx context.Context, page, pageSize int) (*SimulationListDTO, error) {
	return s.queryService.ListSimulations(ctx, page, pageSize)
}

// PreviewShock 预览冲击序列
func (s *SimulationApplicationService) PreviewShock(ctx context.Context, spec domain.ShockSpec, horizon int) (*domain.ShockSeries, error) {
	return s.queryService.PreviewShock(ctx, spec, horizon)
}
