package mysql

import (
	"encoding/json"
	"fmt"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"gorm.io/gorm"
)

// SimulationRunModel 模拟记录数据库模型，输入与结果以 JSON 文本存储
type SimulationRunModel struct {
	gorm.Model
	RunID       string `gorm:"column:run_id;type:varchar(36);uniqueIndex;not null"`
	Name        string `gorm:"column:name;type:varchar(100)"`
	Fingerprint string `gorm:"column:fingerprint;type:varchar(64);index;not null"`
	Parameters  string `gorm:"column:parameters;type:text;not null"`
	Initial     string `gorm:"column:initial_conditions;type:text;not null"`
	Shock       string `gorm:"column:shock;type:text;not null"`
	Horizon     int    `gorm:"column:horizon;not null"`
	Result      string `gorm:"column:result;type:longtext"`
	Status      string `gorm:"column:status;type:varchar(20);not null"`
	Error       string `gorm:"column:error;type:text"`
}

func (SimulationRunModel) TableName() string { return "simulation_runs" }

func toModel(run *domain.SimulationRun) (*SimulationRunModel, error) {
	params, err := json.Marshal(run.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters: %w", err)
	}
	initial, err := json.Marshal(run.Initial)
	if err != nil {
		return nil, fmt.Errorf("marshal initial conditions: %w", err)
	}
	shock, err := json.Marshal(run.Shock)
	if err != nil {
		return nil, fmt.Errorf("marshal shock: %w", err)
	}
	var result []byte
	if run.Result != nil {
		if result, err = json.Marshal(run.Result); err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
	}

	m := &SimulationRunModel{
		RunID:       run.RunID,
		Name:        run.Name,
		Fingerprint: run.Fingerprint,
		Parameters:  string(params),
		Initial:     string(initial),
		Shock:       string(shock),
		Horizon:     run.Horizon,
		Result:      string(result),
		Status:      string(run.Status),
		Error:       run.Error,
	}
	m.CreatedAt = run.CreatedAt
	return m, nil
}

func toDomain(m *SimulationRunModel) (*domain.SimulationRun, error) {
	run := &domain.SimulationRun{
		RunID:       m.RunID,
		Name:        m.Name,
		Fingerprint: m.Fingerprint,
		Horizon:     m.Horizon,
		Status:      domain.RunStatus(m.Status),
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
	}
	if err := json.Unmarshal([]byte(m.Parameters), &run.Parameters); err != nil {
		return nil, fmt.Errorf("unmarshal parameters of %s: %w", m.RunID, err)
	}
	if err := json.Unmarshal([]byte(m.Initial), &run.Initial); err != nil {
		return nil, fmt.Errorf("unmarshal initial conditions of %s: %w", m.RunID, err)
	}
	if err := json.Unmarshal([]byte(m.Shock), &run.Shock); err != nil {
		return nil, fmt.Errorf("unmarshal shock of %s: %w", m.RunID, err)
	}
	if m.Result != "" {
		run.Result = &domain.PathResult{}
		if err := json.Unmarshal([]byte(m.Result), run.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result of %s: %w", m.RunID, err)
		}
	}
	return run, nil
}
