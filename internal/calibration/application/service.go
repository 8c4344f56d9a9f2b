// Package application 宏观校准服务：拉取序列并计算模拟所需标量
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/nkmodel/internal/calibration/domain"
	"github.com/wyfcoding/nkmodel/pkg/logger"
	"github.com/wyfcoding/nkmodel/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Options 序列 ID 与滤波参数
type Options struct {
	GDPSeries       string
	InflationSeries string
	RealRateSeries  string
	HPLambda        float64
}

// CalibrationService 校准服务
type CalibrationService struct {
	source  domain.MacroDataSource
	opts    Options
	metrics *metrics.Metrics
}

// NewCalibrationService 创建校准服务，m 可为 nil
func NewCalibrationService(source domain.MacroDataSource, opts Options, m *metrics.Metrics) *CalibrationService {
	return &CalibrationService{source: source, opts: opts, metrics: m}
}

// Calibrate 并发拉取三个序列，返回最新通胀、产出缺口与实际利率
func (s *CalibrationService) Calibrate(ctx context.Context) (*domain.Calibration, error) {
	defer logger.LogDuration(ctx, "calibration finished")()

	ids := []string{s.opts.GDPSeries, s.opts.InflationSeries, s.opts.RealRateSeries}
	series := make([]*domain.Series, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			sr, err := s.source.FetchSeries(gctx, id)
			if s.metrics != nil {
				s.metrics.RecordCalibrationFetch(id, err)
			}
			if err != nil {
				return err
			}
			series[i] = sr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error(ctx, "calibration fetch failed", "error", err)
		return nil, err
	}
	gdp, inflation, realRate := series[0], series[1], series[2]

	gap, err := domain.OutputGapPercent(gdp.Values, s.opts.HPLambda)
	if err != nil {
		return nil, fmt.Errorf("output gap from %s: %w", gdp.ID, err)
	}
	gdpDate, _, _ := gdp.Last()
	infDate, infValue, err := inflation.Last()
	if err != nil {
		return nil, err
	}
	rateDate, rateValue, err := realRate.Last()
	if err != nil {
		return nil, err
	}

	c := &domain.Calibration{
		Inflation:        infValue,
		OutputGap:        gap,
		RealInterestRate: rateValue,
		AsOf:             earliest(gdpDate, infDate, rateDate),
	}
	logger.Info(ctx, "calibration computed",
		"inflation", c.Inflation,
		"output_gap", c.OutputGap,
		"real_interest_rate", c.RealInterestRate,
		"as_of", c.AsOf.Format(time.DateOnly),
	)
	return c, nil
}

func earliest(ts ...time.Time) time.Time {
	out := ts[0]
	for _, t := range ts[1:] {
		if t.Before(out) {
			out = t
		}
	}
	return out
}
