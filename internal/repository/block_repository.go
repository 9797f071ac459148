package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type BlockRepository interface {
	// Блоки мастера, пересекающие интервал (любого типа).
	ListOverlapping(ctx context.Context, masterID uuid.UUID, start, end time.Time) ([]model.AvailabilityBlock, error)
	// Получить блок по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.AvailabilityBlock, error)
}

type GormBlockRepository struct {
	db *gorm.DB
}

func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

func (r *GormBlockRepository) ListOverlapping(
	ctx context.Context,
	masterID uuid.UUID,
	start, end time.Time,
) ([]model.AvailabilityBlock, error) {
	var blocks []model.AvailabilityBlock
	err := r.db.WithContext(ctx).
		Where("master_id = ?", masterID).
		Where("start_at < ? AND ? < end_at", end, start).
		Order("start_at ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *GormBlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AvailabilityBlock, error) {
	var b model.AvailabilityBlock
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
