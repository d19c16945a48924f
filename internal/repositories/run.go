package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type RunRepository interface {
	Create(run *models.ScreeningRun) error
	FindRecent(limit int) ([]models.ScreeningRun, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

// Create implements RunRepository.
func (r *runRepository) Create(run *models.ScreeningRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create screening run: %w", err)
	}
	return nil
}

// FindRecent implements RunRepository.
func (r *runRepository) FindRecent(limit int) ([]models.ScreeningRun, error) {
	var runs []models.ScreeningRun
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find screening runs: %w", err)
	}

	return runs, nil
}
