package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	caldomain "github.com/wyfcoding/nkmodel/internal/calibration/domain"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/pkg/logger"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
	"github.com/wyfcoding/nkmodel/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// ParameterSource 宏观校准来源
type ParameterSource interface {
	Calibrate(ctx context.Context) (*caldomain.Calibration, error)
}

// 模拟结果分类，对应 simulations_total 的 outcome 标签
const (
	outcomeCompleted  = "completed"
	outcomeCached     = "cached"
	outcomeInvalid    = "invalid"
	outcomeDegenerate = "degenerate"
	outcomeError      = "error"
)

// SimulationCommandService 模拟命令服务
type SimulationCommandService struct {
	repo      domain.SimulationRunRepository
	cache     domain.ResultCache
	publisher domain.EventPublisher
	source    ParameterSource
	metrics   *metrics.Metrics
	opts      Options
}

// NewSimulationCommandService 创建模拟命令服务；cache、publisher、source、m 均可为 nil
func NewSimulationCommandService(
	repo domain.SimulationRunRepository,
	cache domain.ResultCache,
	publisher domain.EventPublisher,
	source ParameterSource,
	m *metrics.Metrics,
	opts Options,
) *SimulationCommandService {
	return &SimulationCommandService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		source:    source,
		metrics:   m,
		opts:      opts.withDefaults(),
	}
}

// fingerprintInput 参与摘要计算的全部输入
type fingerprintInput struct {
	Parameters domain.ModelParameters   `json:"parameters"`
	Initial    domain.InitialConditions `json:"initial"`
	Shock      domain.ShockSpec         `json:"shock"`
	Horizon    int                      `json:"horizon"`
}

// RunSimulation 校验输入，命中缓存则复用结果，否则运行引擎；结果持久化并发布事件
func (s *SimulationCommandService) RunSimulation(ctx context.Context, cmd RunSimulationCommand) (*SimulationDTO, error) {
	start := time.Now()

	if cmd.Horizon > s.opts.MaxHorizon {
		s.record(outcomeInvalid, cmd.Horizon, start)
		return nil, fmt.Errorf("%w: horizon %d exceeds maximum %d", domain.ErrInvalidArgument, cmd.Horizon, s.opts.MaxHorizon)
	}
	// 构造冲击序列的同时完成冲击与期数校验
	shock, err := domain.BuildShockSeries(cmd.Shock, cmd.Horizon)
	if err != nil {
		s.record(outcomeInvalid, cmd.Horizon, start)
		return nil, err
	}

	fp, err := utils.Fingerprint(fingerprintInput{
		Parameters: cmd.Parameters,
		Initial:    cmd.Initial,
		Shock:      cmd.Shock,
		Horizon:    cmd.Horizon,
	})
	if err != nil {
		s.record(outcomeError, cmd.Horizon, start)
		return nil, fmt.Errorf("fingerprint input: %w", err)
	}

	run := domain.NewSimulationRun(cmd.Name, fp, cmd.Parameters, cmd.Initial, cmd.Shock, cmd.Horizon)

	if result := s.lookupCache(ctx, fp); result != nil {
		run.Complete(result)
		if err := s.repo.Save(ctx, run); err != nil {
			s.record(outcomeError, cmd.Horizon, start)
			return nil, fmt.Errorf("save simulation run: %w", err)
		}
		s.publish(ctx, s.opts.CompletedTopic, run.RunID, domain.NewCompletedEvent(run))
		s.record(outcomeCached, cmd.Horizon, start)

		dto := toSimulationDTO(run)
		dto.Cached = true
		return dto, nil
	}

	done := logger.LogDuration(ctx, "simulation engine run", "run_id", run.RunID, "horizon", cmd.Horizon)
	result, err := domain.Simulate(cmd.Parameters, cmd.Initial, shock, cmd.Horizon)
	done()
	if err != nil {
		return nil, s.handleEngineError(ctx, run, err, start)
	}

	run.Complete(result)
	if err := s.repo.Save(ctx, run); err != nil {
		s.record(outcomeError, cmd.Horizon, start)
		return nil, fmt.Errorf("save simulation run: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, fp, result); err != nil {
			logger.Warn(ctx, "failed to cache simulation result", "fingerprint", fp, "error", err)
		}
	}
	s.publish(ctx, s.opts.CompletedTopic, run.RunID, domain.NewCompletedEvent(run))
	s.record(outcomeCompleted, cmd.Horizon, start)

	logger.Info(ctx, "simulation completed", "run_id", run.RunID, "name", run.Name, "horizon", run.Horizon)
	return toSimulationDTO(run), nil
}

// handleEngineError 数值退化的运行会留下 FAILED 记录，参数错误直接返回
func (s *SimulationCommandService) handleEngineError(ctx context.Context, run *domain.SimulationRun, err error, start time.Time) error {
	if !errors.Is(err, domain.ErrNumericDegeneracy) {
		s.record(outcomeInvalid, run.Horizon, start)
		return err
	}

	s.record(outcomeDegenerate, run.Horizon, start)
	run.Fail(err)
	if saveErr := s.repo.Save(ctx, run); saveErr != nil {
		logger.Error(ctx, "failed to save failed simulation run", "run_id", run.RunID, "error", saveErr)
	}
	s.publish(ctx, s.opts.FailedTopic, run.RunID, domain.NewFailedEvent(run))
	logger.Warn(ctx, "simulation degenerated", "run_id", run.RunID, "error", err)
	return err
}

// RunBatch 有界并发地运行多组场景，结果与输入顺序一致，任一失败则整体失败
func (s *SimulationCommandService) RunBatch(ctx context.Context, cmds []RunSimulationCommand) ([]*SimulationDTO, error) {
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", domain.ErrInvalidArgument)
	}
	if len(cmds) > s.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: batch size %d exceeds maximum %d", domain.ErrInvalidArgument, len(cmds), s.opts.MaxBatchSize)
	}

	results := make([]*SimulationDTO, len(cmds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)

	for i, cmd := range cmds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dto, err := s.RunSimulation(gctx, cmd)
			if err != nil {
				return fmt.Errorf("scenario %d (%s): %w", i, cmd.Name, err)
			}
			results[i] = dto
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunCalibrated 以最新宏观数据作为初始条件与实际利率运行模拟。
// 校准值为百分比，模型使用小数，这里除以 100。
func (s *SimulationCommandService) RunCalibrated(ctx context.Context, cmd RunCalibratedCommand) (*CalibratedSimulationDTO, error) {
	if s.source == nil {
		return nil, domain.ErrCalibrationUnavailable
	}
	c, err := s.source.Calibrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}

	params := cmd.Parameters
	params.RealInterestRate = c.RealInterestRate / 100

	dto, err := s.RunSimulation(ctx, RunSimulationCommand{
		Name:       cmd.Name,
		Parameters: params,
		Initial: domain.InitialConditions{
			Pi0:        c.Inflation / 100,
			OutputGap0: c.OutputGap / 100,
			W0:         cmd.W0,
		},
		Shock:   cmd.Shock,
		Horizon: cmd.Horizon,
	})
	if err != nil {
		return nil, err
	}

	return &CalibratedSimulationDTO{
		Calibration: CalibrationDTO{
			Inflation:        c.Inflation,
			OutputGap:        c.OutputGap,
			RealInterestRate: c.RealInterestRate,
			AsOf:             c.AsOf,
		},
		Simulation: dto,
	}, nil
}

func (s *SimulationCommandService) lookupCache(ctx context.Context, fp string) *domain.PathResult {
	if s.cache == nil {
		return nil
	}
	result, err := s.cache.Get(ctx, fp)
	if err != nil {
		logger.Warn(ctx, "result cache lookup failed", "fingerprint", fp, "error", err)
		return nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result != nil)
	}
	return result
}

func (s *SimulationCommandService) publish(ctx context.Context, topic, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		logger.Warn(ctx, "failed to publish simulation event", "topic", topic, "key", key, "error", err)
	}
}

func (s *SimulationCommandService) record(outcome string, horizon int, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordSimulation(outcome, horizon, time.Since(start).Seconds())
	}
}
