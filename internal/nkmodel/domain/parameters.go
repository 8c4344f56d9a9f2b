// Package domain 新凯恩斯模型（泰勒规则、IS 曲线、菲利普斯曲线及工资扩展）的领域模型与递推引擎
package domain

import (
	"fmt"
	"math"
)

// DefaultWageIndex 启用工资扩展且未指定初始工资时使用的工资指数
const DefaultWageIndex = 100.0

// WageParameters 工资菲利普斯曲线扩展参数
type WageParameters struct {
	// Theta Calvo 粘性，取值 (0,1)
	Theta float64 `json:"theta"`
	// NSE 劳动供给弹性，>0
	NSE float64 `json:"nse"`
}

// ModelParameters 结构参数
type ModelParameters struct {
	Sigma            float64         `json:"sigma"`
	Gamma            float64         `json:"gamma"`
	Beta             float64         `json:"beta"`
	PhiPi            float64         `json:"phi_pi"`
	PhiY             float64         `json:"phi_y"`
	RealInterestRate float64         `json:"real_interest_rate"`
	Wage             *WageParameters `json:"wage,omitempty"`
}

// InitialConditions 初始条件
type InitialConditions struct {
	Pi0        float64 `json:"pi0"`
	OutputGap0 float64 `json:"output_gap0"`
	// W0 初始工资指数，仅工资扩展使用，0 表示取 DefaultWageIndex
	W0 float64 `json:"w0,omitempty"`
}

// WageEnabled 是否启用工资扩展
func (p ModelParameters) WageEnabled() bool {
	return p.Wage != nil
}

// LambdaW 计算工资调整系数 (1-θ)(1-βθ) / (θ(1+nse))
func (p ModelParameters) LambdaW() float64 {
	if p.Wage == nil {
		return 0
	}
	theta := p.Wage.Theta
	return (1 - theta) * (1 - p.Beta*theta) / (theta * (1 + p.Wage.NSE))
}

// Validate 校验结构参数。sigma == 0 属于数值退化而非参数非法。
func (p ModelParameters) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"sigma", p.Sigma},
		{"gamma", p.Gamma},
		{"beta", p.Beta},
		{"phi_pi", p.PhiPi},
		{"phi_y", p.PhiY},
		{"real_interest_rate", p.RealInterestRate},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidArgument, f.name, f.value)
		}
	}
	if p.Sigma < 0 {
		return fmt.Errorf("%w: sigma must be positive, got %v", ErrInvalidArgument, p.Sigma)
	}
	if p.Sigma == 0 {
		return fmt.Errorf("%w: sigma is zero, 1/sigma is undefined", ErrNumericDegeneracy)
	}
	if p.Wage != nil {
		if !isFinite(p.Wage.Theta) || p.Wage.Theta <= 0 || p.Wage.Theta >= 1 {
			return fmt.Errorf("%w: theta must be in (0,1), got %v", ErrInvalidArgument, p.Wage.Theta)
		}
		if !isFinite(p.Wage.NSE) || p.Wage.NSE <= 0 {
			return fmt.Errorf("%w: nse must be positive, got %v", ErrInvalidArgument, p.Wage.NSE)
		}
	}
	return nil
}

// Validate 校验初始条件
func (c InitialConditions) Validate() error {
	if !isFinite(c.Pi0) || !isFinite(c.OutputGap0) || !isFinite(c.W0) {
		return fmt.Errorf("%w: initial conditions must be finite", ErrInvalidArgument)
	}
	return nil
}

// WageIndex 返回实际使用的初始工资指数
func (c InitialConditions) WageIndex() float64 {
	if c.W0 == 0 {
		return DefaultWageIndex
	}
	return c.W0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
