package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

// BookingNotificationContext — данные записи для построения
// уведомлений. Контакты клиента берутся из снимков на момент
// создания с откатом на живой профиль (COALESCE).
type BookingNotificationContext struct {
	SlotStart        time.Time
	ServiceCode      string
	ManualClientName string
	ClientUsername   string
	ClientPhone      string
	ClientTelegramID int64
	MasterTelegramID int64
}

type BookingRepository interface {
	// Получить запись по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Активные записи мастера, пересекающие интервал (полуоткрытый тест).
	ListActiveOverlapping(ctx context.Context, masterID uuid.UUID, start, end time.Time) ([]model.Booking, error)
	// Есть ли у клиента активная запись со слотом строго в будущем.
	HasActiveFuture(ctx context.Context, clientUserID uuid.UUID, now time.Time) (bool, error)
	// Список записей клиента за период с пагинацией.
	ListByClientAndRange(ctx context.Context, clientUserID uuid.UUID, from, to time.Time, limit, offset int) ([]model.Booking, int64, error)
	// Контекст уведомлений по записи.
	NotificationContext(ctx context.Context, bookingID uuid.UUID) (*BookingNotificationContext, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) ListActiveOverlapping(
	ctx context.Context,
	masterID uuid.UUID,
	start, end time.Time,
) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("master_id = ?", masterID).
		Where("status = ?", model.BookingStatusActive).
		Where("slot_start < ? AND ? < slot_end", end, start).
		Order("slot_start ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) HasActiveFuture(
	ctx context.Context,
	clientUserID uuid.UUID,
	now time.Time,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("client_user_id = ?", clientUserID).
		Where("status = ?", model.BookingStatusActive).
		Where("slot_start > ?", now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBookingRepository) ListByClientAndRange(
	ctx context.Context,
	clientUserID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("client_user_id = ?", clientUserID).
		Where("slot_start >= ? AND slot_start <= ?", from, to)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("slot_start ASC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) NotificationContext(
	ctx context.Context,
	bookingID uuid.UUID,
) (*BookingNotificationContext, error) {
	var row BookingNotificationContext
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.slot_start,
			bookings.service_code,
			bookings.manual_client_name,
			COALESCE(NULLIF(bookings.client_username_snapshot, ''), clients.telegram_username) AS client_username,
			COALESCE(NULLIF(bookings.client_phone_snapshot, ''), clients.phone_number) AS client_phone,
			clients.telegram_id AS client_telegram_id,
			master_users.telegram_id AS master_telegram_id`).
		Joins("JOIN masters ON masters.id = bookings.master_id").
		Joins("JOIN users AS master_users ON master_users.id = masters.user_id").
		Joins("LEFT JOIN users AS clients ON clients.id = bookings.client_user_id").
		Where("bookings.id = ?", bookingID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
