package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/pkg/utils"
)

// SimulationQueryService 模拟查询服务
type SimulationQueryService struct {
	repo domain.SimulationRunRepository
	opts Options
}

// NewSimulationQueryService 创建模拟查询服务
func NewSimulationQueryService(repo domain.SimulationRunRepository, opts Options) *SimulationQueryService {
	return &SimulationQueryService{repo: repo, opts: opts.withDefaults()}
}

// GetSimulation 根据 RunID 获取模拟记录
func (s *SimulationQueryService) GetSimulation(ctx context.Context, runID string) (*SimulationDTO, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: run_id is required", domain.ErrInvalidArgument)
	}
	run, err := s.repo.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	return toSimulationDTO(run), nil
}

// ListSimulations 按创建时间倒序分页列出模拟记录
func (s *SimulationQueryService) ListSimulations(ctx context.Context, page, pageSize int) (*SimulationListDTO, error) {
	p := utils.NewPagination(page, pageSize, 0)
	runs, total, err := s.repo.List(ctx, p.Offset(), p.Limit())
	if err != nil {
		return nil, err
	}
	return &SimulationListDTO{
		Items:      toSimulationDTOs(runs),
		Pagination: utils.NewPagination(p.Page, p.PageSize, total),
	}, nil
}

// PreviewShock 展开冲击设定，不运行引擎
func (s *SimulationQueryService) PreviewShock(_ context.Context, spec domain.ShockSpec, horizon int) (*domain.ShockSeries, error) {
	if horizon > s.opts.MaxHorizon {
		return nil, fmt.Errorf("%w: horizon %d exceeds maximum %d", domain.ErrInvalidArgument, horizon, s.opts.MaxHorizon)
	}
	return domain.BuildShockSeries(spec, horizon)
}
