package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type ServiceRepository interface {
	// Активная строка каталога по коду услуги.
	GetActiveByCode(ctx context.Context, code string) (*model.ServiceCatalog, error)
	// Список активных услуг в стабильном порядке.
	ListActive(ctx context.Context) ([]model.ServiceCatalog, error)
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) GetActiveByCode(ctx context.Context, code string) (*model.ServiceCatalog, error) {
	var s model.ServiceCatalog
	if err := r.db.WithContext(ctx).First(&s, "code = ? AND is_active = ?", code, true).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) ListActive(ctx context.Context) ([]model.ServiceCatalog, error) {
	var services []model.ServiceCatalog
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
