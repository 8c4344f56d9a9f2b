// Package domain 宏观数据校准：时间序列、HP 滤波与产出缺口估计
package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInsufficientData 序列长度不足
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidSeries 序列取值非法
	ErrInvalidSeries = errors.New("invalid series")
)

// Series 单个宏观时间序列，按日期升序
type Series struct {
	ID     string
	Dates  []time.Time
	Values []float64
}

// Len 观测数
func (s *Series) Len() int {
	return len(s.Values)
}

// Last 最新观测
func (s *Series) Last() (time.Time, float64, error) {
	if s == nil || len(s.Values) == 0 {
		return time.Time{}, 0, fmt.Errorf("%w: series has no observations", ErrInsufficientData)
	}
	n := len(s.Values) - 1
	return s.Dates[n], s.Values[n], nil
}

// Calibration 校准结果，单位均为百分比
type Calibration struct {
	// 最新通胀率
	Inflation float64
	// 产出缺口：实际产出对 HP 趋势的偏离
	OutputGap float64
	// 最新实际利率
	RealInterestRate float64
	// 三个序列共同可得的最新日期
	AsOf time.Time
}

// MacroDataSource 宏观数据来源
type MacroDataSource interface {
	FetchSeries(ctx context.Context, seriesID string) (*Series, error)
}

// OutputGapPercent 在对数产出上做 HP 滤波，返回最后一期的缺口 100·(ln y_T − τ_T)
func OutputGapPercent(levels []float64, lambda float64) (float64, error) {
	logs := make([]float64, len(levels))
	for i, v := range levels {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: output level %v at index %d", ErrInvalidSeries, v, i)
		}
		logs[i] = math.Log(v)
	}
	_, cycle, err := HPFilter(logs, lambda)
	if err != nil {
		return 0, err
	}
	return 100 * cycle[len(cycle)-1], nil
}
