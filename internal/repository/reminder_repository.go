package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type ReminderRepository interface {
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.BookingReminder, error)
	Create(ctx context.Context, reminder *model.BookingReminder) error
	// Ожидающие напоминания с наступившим сроком, чья запись всё ещё
	// активна. Порядок: due_at, затем id — стабильный при равных сроках.
	ListDuePending(ctx context.Context, now time.Time, limit int) ([]model.BookingReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	// Подавляет напоминание насовсем (адресат недостижим).
	MarkSkipped(ctx context.Context, id uuid.UUID, message string) error
	// Оставляет напоминание в pending и записывает текст ошибки.
	RecordFailure(ctx context.Context, id uuid.UUID, message string) error
}

type GormReminderRepository struct {
	db *gorm.DB
}

func NewGormReminderRepository(db *gorm.DB) *GormReminderRepository {
	return &GormReminderRepository{db: db}
}

func (r *GormReminderRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.BookingReminder, error) {
	var rem model.BookingReminder
	if err := r.db.WithContext(ctx).First(&rem, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *GormReminderRepository) Create(ctx context.Context, reminder *model.BookingReminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

func (r *GormReminderRepository) ListDuePending(ctx context.Context, now time.Time, limit int) ([]model.BookingReminder, error) {
	var reminders []model.BookingReminder
	q := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = booking_reminders.booking_id").
		Where("booking_reminders.status = ?", model.ReminderStatusPending).
		Where("booking_reminders.due_at <= ?", now).
		Where("bookings.status = ?", model.BookingStatusActive).
		Order("booking_reminders.due_at ASC, booking_reminders.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *GormReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.BookingReminder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     model.ReminderStatusSent,
			"sent_at":    at,
			"last_error": "",
		}).Error
}

func (r *GormReminderRepository) MarkSkipped(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&model.BookingReminder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     model.ReminderStatusSkipped,
			"last_error": message,
		}).Error
}

func (r *GormReminderRepository) RecordFailure(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&model.BookingReminder{}).
		Where("id = ?", id).
		Update("last_error", message).
		Error
}
