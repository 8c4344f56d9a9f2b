package domain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// HPFilter Hodrick-Prescott 滤波。求解 (I + λ·DᵀD)τ = y，D 为二阶差分矩阵，
// 返回趋势 τ 与周期 y − τ。
func HPFilter(y []float64, lambda float64) (trend, cycle []float64, err error) {
	n := len(y)
	if n < 3 {
		return nil, nil, fmt.Errorf("%w: hp filter needs at least 3 observations, got %d", ErrInsufficientData, n)
	}
	if lambda < 0 {
		return nil, nil, fmt.Errorf("%w: hp lambda must be >= 0, got %v", ErrInvalidSeries, lambda)
	}

	a := mat.NewSymDense(n, nil)
	for i := range n {
		a.SetSym(i, i, 1)
	}
	// DᵀD 按行累加，每行系数 [1, -2, 1]
	coef := [3]float64{1, -2, 1}
	for k := 0; k+2 < n; k++ {
		for p := range 3 {
			for q := p; q < 3; q++ {
				i, j := k+p, k+q
				a.SetSym(i, j, a.At(i, j)+lambda*coef[p]*coef[q])
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, nil, fmt.Errorf("%w: hp system is not positive definite", ErrInvalidSeries)
	}

	tau := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(tau, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, nil, fmt.Errorf("hp solve failed: %w", err)
	}

	trend = make([]float64, n)
	cycle = make([]float64, n)
	for i := range n {
		trend[i] = tau.AtVec(i)
		cycle[i] = y[i] - trend[i]
	}
	return trend, cycle, nil
}
