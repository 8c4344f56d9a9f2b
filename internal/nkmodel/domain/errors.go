package domain

import "errors"

var (
	// ErrInvalidArgument 输入参数非法（期数、冲击区间、结构参数取值）
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNumericDegeneracy 数值退化：sigma 为 0 或递推过程中出现 NaN/Inf
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
	// ErrRunNotFound 模拟记录不存在
	ErrRunNotFound = errors.New("simulation run not found")
	// ErrCalibrationUnavailable 未配置宏观数据校准来源
	ErrCalibrationUnavailable = errors.New("calibration is not configured")
)
