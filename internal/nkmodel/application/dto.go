package application

import (
	"time"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/pkg/utils"
)

// RunSimulationCommand 运行一次确定性模拟
type RunSimulationCommand struct {
	Name       string                   `json:"name"`
	Parameters domain.ModelParameters   `json:"parameters"`
	Initial    domain.InitialConditions `json:"initial"`
	Shock      domain.ShockSpec         `json:"shock"`
	Horizon    int                      `json:"horizon"`
}

// RunCalibratedCommand 初始条件与实际利率由宏观数据校准给出
type RunCalibratedCommand struct {
	Name       string                 `json:"name"`
	Parameters domain.ModelParameters `json:"parameters"`
	Shock      domain.ShockSpec       `json:"shock"`
	Horizon    int                    `json:"horizon"`
	// W0 名义工资指数初值，0 表示默认 100
	W0 float64 `json:"w0"`
}

// SimulationDTO 模拟记录的对外表示
type SimulationDTO struct {
	RunID       string                   `json:"run_id"`
	Name        string                   `json:"name"`
	Fingerprint string                   `json:"fingerprint"`
	Status      string                   `json:"status"`
	Error       string                   `json:"error,omitempty"`
	Horizon     int                      `json:"horizon"`
	Parameters  domain.ModelParameters   `json:"parameters"`
	Initial     domain.InitialConditions `json:"initial"`
	Shock       domain.ShockSpec         `json:"shock"`
	Result      *domain.PathResult       `json:"result,omitempty"`
	// Cached 结果是否来自缓存
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"created_at"`
}

// SimulationListDTO 分页列表
type SimulationListDTO struct {
	Items      []*SimulationDTO  `json:"items"`
	Pagination *utils.Pagination `json:"pagination"`
}

// CalibrationDTO 校准得到的宏观标量，单位为百分比
type CalibrationDTO struct {
	Inflation        float64   `json:"inflation"`
	OutputGap        float64   `json:"output_gap"`
	RealInterestRate float64   `json:"real_interest_rate"`
	AsOf             time.Time `json:"as_of"`
}

// CalibratedSimulationDTO 校准模拟结果
type CalibratedSimulationDTO struct {
	Calibration CalibrationDTO `json:"calibration"`
	Simulation  *SimulationDTO `json:"simulation"`
}

func toSimulationDTO(run *domain.SimulationRun) *SimulationDTO {
	if run == nil {
		return nil
	}
	return &SimulationDTO{
		RunID:       run.RunID,
		Name:        run.Name,
		Fingerprint: run.Fingerprint,
		Status:      string(run.Status),
		Error:       run.Error,
		Horizon:     run.Horizon,
		Parameters:  run.Parameters,
		Initial:     run.Initial,
		Shock:       run.Shock,
		Result:      run.Result,
		CreatedAt:   run.CreatedAt,
	}
}

func toSimulationDTOs(runs []*domain.SimulationRun) []*SimulationDTO {
	dtos := make([]*SimulationDTO, 0, len(runs))
	for _, r := range runs {
		dtos = append(dtos, toSimulationDTO(r))
	}
	return dtos
}
