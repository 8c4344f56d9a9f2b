package domain

import "fmt"

// ShockLocation 冲击作用的方程
type ShockLocation string

const (
	ShockLocationPhillips ShockLocation = "PHILLIPS" // 菲利普斯曲线
	ShockLocationIS       ShockLocation = "IS"       // IS 曲线
)

// ShockKind 冲击类型
type ShockKind string

const (
	ShockKindNone       ShockKind = "NONE"       // 无冲击
	ShockKindSingle     ShockKind = "SINGLE"     // 单期冲击
	ShockKindPersistent ShockKind = "PERSISTENT" // 持续冲击
)

// ShockSign 菲利普斯曲线冲击的符号约定
type ShockSign string

const (
	ShockSignAdd      ShockSign = "ADD"      // 加到通胀方程上（默认）
	ShockSignSubtract ShockSign = "SUBTRACT" // 从通胀方程中减去
)

// ShockSpec 冲击设定
type ShockSpec struct {
	Location    ShockLocation `json:"location"`
	Kind        ShockKind     `json:"kind"`
	Size        float64       `json:"size"`
	StartPeriod int           `json:"start_period"`
	// Duration 仅 PERSISTENT 使用
	Duration int `json:"duration"`
	// Sign 仅作用于 PHILLIPS，空值等同 ADD
	Sign ShockSign `json:"sign,omitempty"`
}

// ShockSeries 由 ShockSpec 展开得到的逐期冲击序列
type ShockSeries struct {
	Location ShockLocation `json:"location"`
	Sign     ShockSign     `json:"sign"`
	Values   []float64     `json:"values"`
}

// NoShock 返回长度为 horizon 的零冲击序列
func NoShock(horizon int) *ShockSeries {
	return &ShockSeries{
		Location: ShockLocationPhillips,
		Sign:     ShockSignAdd,
		Values:   make([]float64, horizon),
	}
}

func (s ShockSpec) normalized() ShockSpec {
	if s.Kind == "" {
		s.Kind = ShockKindNone
	}
	if s.Location == "" {
		s.Location = ShockLocationPhillips
	}
	if s.Sign == "" {
		s.Sign = ShockSignAdd
	}
	return s
}

// Validate 校验冲击设定在 horizon 期内是否合法
func (s ShockSpec) Validate(horizon int) error {
	s = s.normalized()
	if horizon < 1 {
		return fmt.Errorf("%w: horizon must be >= 1, got %d", ErrInvalidArgument, horizon)
	}
	switch s.Location {
	case ShockLocationPhillips, ShockLocationIS:
	default:
		return fmt.Errorf("%w: unknown shock location %q", ErrInvalidArgument, s.Location)
	}
	switch s.Sign {
	case ShockSignAdd, ShockSignSubtract:
	default:
		return fmt.Errorf("%w: unknown shock sign %q", ErrInvalidArgument, s.Sign)
	}
	switch s.Kind {
	case ShockKindNone:
		return nil
	case ShockKindSingle, ShockKindPersistent:
	default:
		return fmt.Errorf("%w: unknown shock kind %q", ErrInvalidArgument, s.Kind)
	}
	if !isFinite(s.Size) {
		return fmt.Errorf("%w: shock size must be finite", ErrInvalidArgument)
	}
	if s.StartPeriod < 0 || s.StartPeriod >= horizon {
		return fmt.Errorf("%w: start_period %d outside [0,%d)", ErrInvalidArgument, s.StartPeriod, horizon)
	}
	if s.Kind == ShockKindPersistent && s.Duration < 0 {
		return fmt.Errorf("%w: duration must be >= 0, got %d", ErrInvalidArgument, s.Duration)
	}
	return nil
}

// BuildShockSeries 将冲击设定展开为长度 horizon 的序列。
// 持续冲击超出末期的部分被截断，不报错。
func BuildShockSeries(spec ShockSpec, horizon int) (*ShockSeries, error) {
	if err := spec.Validate(horizon); err != nil {
		return nil, err
	}
	spec = spec.normalized()

	series := &ShockSeries{
		Location: spec.Location,
		Sign:     spec.Sign,
		Values:   make([]float64, horizon),
	}

	switch spec.Kind {
	case ShockKindSingle:
		series.Values[spec.StartPeriod] = spec.Size
	case ShockKindPersistent:
		// 先比较再相加，避免超大 duration 溢出
		end := horizon
		if spec.Duration < horizon-spec.StartPeriod {
			end = spec.StartPeriod + spec.Duration
		}
		for t := spec.StartPeriod; t < end; t++ {
			series.Values[t] = spec.Size
		}
	}
	return series, nil
}

// termFor 返回 t 期冲击对给定方程的贡献
func (s *ShockSeries) termFor(location ShockLocation, t int) float64 {
	if s.Location != location {
		return 0
	}
	u := s.Values[t]
	if location == ShockLocationPhillips && s.Sign == ShockSignSubtract {
		return -u
	}
	return u
}
