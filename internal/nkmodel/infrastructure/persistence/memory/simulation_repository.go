// Package memory 进程内模拟记录仓储，用于 CLI 与 driver = "memory"
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
)

type simulationRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.SimulationRun
}

// NewSimulationRunRepository 创建内存仓储
func NewSimulationRunRepository() domain.SimulationRunRepository {
	return &simulationRunRepository{runs: make(map[string]*domain.SimulationRun)}
}

func (r *simulationRunRepository) Save(_ context.Context, run *domain.SimulationRun) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("%w: run_id is required", domain.ErrInvalidArgument)
	}
	cp := *run
	r.mu.Lock()
	r.runs[run.RunID] = &cp
	r.mu.Unlock()
	return nil
}

func (r *simulationRunRepository) Get(_ context.Context, runID string) (*domain.SimulationRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}
	cp := *run
	return &cp, nil
}

func (r *simulationRunRepository) List(_ context.Context, offset, limit int) ([]*domain.SimulationRun, int64, error) {
	r.mu.RLock()
	all := make([]*domain.SimulationRun, 0, len(r.runs))
	for _, run := range r.runs {
		cp := *run
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].RunID > all[j].RunID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*domain.SimulationRun{}, total, nil
	}
	end := len(all)
	if limit > 0 {
		end = min(offset+limit, len(all))
	}
	return all[offset:end], total, nil
}
