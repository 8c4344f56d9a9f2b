package domain

import (
	"fmt"
	"math"
)

// PathResult 各变量的时间路径，下标 t 即第 t 期
type PathResult struct {
	Pi            []float64 `json:"pi"`
	OutputGap     []float64 `json:"output_gap"`
	InterestRate  []float64 `json:"interest_rate"`
	WageInflation []float64 `json:"wage_inflation,omitempty"`
	WageLevel     []float64 `json:"wage_level,omitempty"`
}

// Horizon 返回期数
func (r *PathResult) Horizon() int {
	return len(r.Pi)
}

// Scaled 返回乘以 factor 后的副本（用于百分比展示），工资水平保持指数口径
func (r *PathResult) Scaled(factor float64) *PathResult {
	scale := func(in []float64) []float64 {
		if in == nil {
			return nil
		}
		out := make([]float64, len(in))
		for i, v := range in {
			out[i] = v * factor
		}
		return out
	}
	return &PathResult{
		Pi:            scale(r.Pi),
		OutputGap:     scale(r.OutputGap),
		InterestRate:  scale(r.InterestRate),
		WageInflation: scale(r.WageInflation),
		WageLevel:     append([]float64(nil), r.WageLevel...),
	}
}

// Simulate 前向递推求解冲击响应路径。
//
// 预期采用静态预期：下一期预期值等于本期实现值。
// t = 0..T-2 推进产出缺口、通胀（及工资），泰勒规则在每一期（含末期）按当期值计算。
// 工资通胀末期值不参与递推，保持为 0。
func Simulate(params ModelParameters, init InitialConditions, shock *ShockSeries, horizon int) (*PathResult, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be >= 1, got %d", ErrInvalidArgument, horizon)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := init.Validate(); err != nil {
		return nil, err
	}
	if shock == nil {
		shock = NoShock(horizon)
	}
	if len(shock.Values) != horizon {
		return nil, fmt.Errorf("%w: shock series length %d, horizon %d", ErrInvalidArgument, len(shock.Values), horizon)
	}

	res := &PathResult{
		Pi:           make([]float64, horizon),
		OutputGap:    make([]float64, horizon),
		InterestRate: make([]float64, horizon),
	}
	res.Pi[0] = init.Pi0
	res.OutputGap[0] = init.OutputGap0

	wage := params.WageEnabled()
	var lambdaW float64
	if wage {
		lambdaW = params.LambdaW()
		res.WageInflation = make([]float64, horizon)
		res.WageLevel = make([]float64, horizon)
		res.WageLevel[0] = init.WageIndex()
	}

	invSigma := 1 / params.Sigma

	for t := 0; t < horizon-1; t++ {
		expectedGap := res.OutputGap[t]
		expectedPi := res.Pi[t]

		res.InterestRate[t] = taylor(params, res.Pi[t], res.OutputGap[t])
		res.OutputGap[t+1] = expectedGap - invSigma*(res.InterestRate[t]-expectedPi) + shock.termFor(ShockLocationIS, t)
		res.Pi[t+1] = params.Beta*expectedPi + params.Gamma*res.OutputGap[t] + shock.termFor(ShockLocationPhillips, t)

		if err := checkFinite(t, "interest_rate", res.InterestRate[t]); err != nil {
			return nil, err
		}
		if err := checkFinite(t+1, "output_gap", res.OutputGap[t+1]); err != nil {
			return nil, err
		}
		if err := checkFinite(t+1, "pi", res.Pi[t+1]); err != nil {
			return nil, err
		}

		if wage {
			expectedPiW := res.WageInflation[t]
			res.WageInflation[t] = params.Beta*expectedPiW - lambdaW*(res.WageLevel[t]-res.OutputGap[t])
			res.WageLevel[t+1] = res.WageLevel[t] + res.WageInflation[t]
			if err := checkFinite(t+1, "wage_level", res.WageLevel[t+1]); err != nil {
				return nil, err
			}
		}
	}

	last := horizon - 1
	res.InterestRate[last] = taylor(params, res.Pi[last], res.OutputGap[last])
	if err := checkFinite(last, "interest_rate", res.InterestRate[last]); err != nil {
		return nil, err
	}

	return res, nil
}

func taylor(p ModelParameters, pi, gap float64) float64 {
	return p.RealInterestRate + p.PhiPi*pi + p.PhiY*gap
}

func checkFinite(t int, series string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is %v at period %d", ErrNumericDegeneracy, series, v, t)
	}
	return nil
}
