package domain

import "time"

const (
	SimulationCompletedEventType = "nkmodel.simulation.completed"
	SimulationFailedEventType    = "nkmodel.simulation.failed"
)

// SimulationCompletedEvent 模拟完成事件，携带完整路径供展示层消费
type SimulationCompletedEvent struct {
	RunID       string      `json:"run_id"`
	Name        string      `json:"name"`
	Fingerprint string      `json:"fingerprint"`
	Horizon     int         `json:"horizon"`
	Result      *PathResult `json:"result"`
	Timestamp   time.Time   `json:"timestamp"`
}

// SimulationFailedEvent 模拟失败事件
type SimulationFailedEvent struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCompletedEvent 由成功的模拟记录构造事件
func NewCompletedEvent(run *SimulationRun) SimulationCompletedEvent {
	return SimulationCompletedEvent{
		RunID:       run.RunID,
		Name:        run.Name,
		Fingerprint: run.Fingerprint,
		Horizon:     run.Horizon,
		Result:      run.Result,
		Timestamp:   time.Now(),
	}
}

// NewFailedEvent 由失败的模拟记录构造事件
func NewFailedEvent(run *SimulationRun) SimulationFailedEvent {
	return SimulationFailedEvent{
		RunID:     run.RunID,
		Name:      run.Name,
		Error:     run.Error,
		Timestamp: time.Now(),
	}
}
