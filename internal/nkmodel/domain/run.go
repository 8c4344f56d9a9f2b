package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunStatus 模拟记录状态
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// SimulationRun 一次模拟的完整记录：输入、输出与状态
type SimulationRun struct {
	// RunID 唯一标识
	RunID string `json:"run_id"`
	// Name 调用方给出的场景名
	Name string `json:"name"`
	// Fingerprint 输入的内容摘要，相同输入得到相同摘要
	Fingerprint string            `json:"fingerprint"`
	Parameters  ModelParameters   `json:"parameters"`
	Initial     InitialConditions `json:"initial"`
	Shock       ShockSpec         `json:"shock"`
	Horizon     int               `json:"horizon"`
	Result      *PathResult       `json:"result,omitempty"`
	Status      RunStatus         `json:"status"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewSimulationRun 创建模拟记录
func NewSimulationRun(name, fingerprint string, params ModelParameters, init InitialConditions, shock ShockSpec, horizon int) *SimulationRun {
	return &SimulationRun{
		RunID:       uuid.New().String(),
		Name:        name,
		Fingerprint: fingerprint,
		Parameters:  params,
		Initial:     init,
		Shock:       shock,
		Horizon:     horizon,
		CreatedAt:   time.Now(),
	}
}

// Complete 记录成功结果
func (r *SimulationRun) Complete(result *PathResult) {
	r.Result = result
	r.Status = RunStatusCompleted
	r.Error = ""
}

// Fail 记录失败原因，不保留部分结果
func (r *SimulationRun) Fail(err error) {
	r.Result = nil
	r.Status = RunStatusFailed
	r.Error = err.Error()
}

// SimulationRunRepository 模拟记录仓储接口
type SimulationRunRepository interface {
	// Save 保存模拟记录
	Save(ctx context.Context, run *SimulationRun) error
	// Get 根据 RunID 获取，不存在时返回 ErrRunNotFound
	Get(ctx context.Context, runID string) (*SimulationRun, error)
	// List 按创建时间倒序分页，返回总数
	List(ctx context.Context, offset, limit int) ([]*SimulationRun, int64, error)
}

// ResultCache 以输入摘要为键的结果缓存
type ResultCache interface {
	// Get 未命中时返回 nil, nil
	Get(ctx context.Context, fingerprint string) (*PathResult, error)
	Set(ctx context.Context, fingerprint string, result *PathResult) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
