package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

// MasterContext — типизированный результат разрешения мастера по
// Telegram-идентификатору (для операций от имени мастера).
type MasterContext struct {
	MasterID     uuid.UUID
	MasterUserID uuid.UUID
}

type MasterRepository interface {
	// Активный мастер по ID.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*model.Master, error)
	// Мастер по ID без учёта активности.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Master, error)
	// Список активных мастеров в стабильном порядке.
	ListActive(ctx context.Context) ([]model.Master, error)
	// Контекст активного мастера по Telegram ID его пользователя.
	ResolveContext(ctx context.Context, telegramID int64) (*MasterContext, error)
}

type GormMasterRepository struct {
	db *gorm.DB
}

func NewGormMasterRepository(db *gorm.DB) *GormMasterRepository {
	return &GormMasterRepository{db: db}
}

func (r *GormMasterRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*model.Master, error) {
	var m model.Master
	if err := r.db.WithContext(ctx).First(&m, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMasterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Master, error) {
	var m model.Master
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMasterRepository) ListActive(ctx context.Context) ([]model.Master, error) {
	var masters []model.Master
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&masters).Error
	if err != nil {
		return nil, err
	}
	return masters, nil
}

func (r *GormMasterRepository) ResolveContext(ctx context.Context, telegramID int64) (*MasterContext, error) {
	var row struct {
		MasterID     uuid.UUID
		MasterUserID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Table("masters").
		Select("masters.id AS master_id, users.id AS master_user_id").
		Joins("JOIN users ON users.id = masters.user_id").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.telegram_id = ?", telegramID).
		Where("roles.name = ?", model.RoleMaster).
		Where("masters.is_active = ?", true).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &MasterContext{MasterID: row.MasterID, MasterUserID: row.MasterUserID}, nil
}
