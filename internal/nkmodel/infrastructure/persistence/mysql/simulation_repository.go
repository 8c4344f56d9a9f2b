// Package mysql 提供了模拟记录仓储接口的 GORM 实现，兼容 MySQL 与 PostgreSQL。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// simulationRunRepositoryImpl 模拟记录仓储实现
type simulationRunRepositoryImpl struct {
	db *gorm.DB
}

// NewSimulationRunRepository 创建模拟记录仓储实例
func NewSimulationRunRepository(db *gorm.DB) domain.SimulationRunRepository {
	return &simulationRunRepositoryImpl{db: db}
}

// AutoMigrate 创建或更新表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SimulationRunModel{})
}

func (r *simulationRunRepositoryImpl) Save(ctx context.Context, run *domain.SimulationRun) error {
	m, err := toModel(run)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"result", "status", "error", "updated_at"}),
	}).Create(m).Error
}

func (r *simulationRunRepositoryImpl) Get(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	var m SimulationRunModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
		}
		return nil, err
	}
	return toDomain(&m)
}

func (r *simulationRunRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*domain.SimulationRun, int64, error) {
	var total int64
	db := r.db.WithContext(ctx).Model(&SimulationRunModel{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []SimulationRunModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	runs := make([]*domain.SimulationRun, 0, len(models))
	for i := range models {
		run, err := toDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, nil
}
