package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusActive            BookingStatus = "active"
	BookingStatusCancelledByClient BookingStatus = "cancelled_by_client"
	BookingStatusCancelledByMaster BookingStatus = "cancelled_by_master"
	BookingStatusCompleted         BookingStatus = "completed"
)

// Таблица переходов статусов. Терминальные статусы живут в таблице
// без исходящих переходов: из них выйти нельзя.
var bookingStatusTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusActive: {
		BookingStatusCancelledByClient,
		BookingStatusCancelledByMaster,
		BookingStatusCompleted,
	},
}

var cancellationReasonRequired = map[BookingStatus]bool{
	BookingStatusCancelledByClient: false,
	BookingStatusCancelledByMaster: true,
}

// CanTransitionBookingStatus проверяет допустимость перехода статуса.
func CanTransitionBookingStatus(current, target BookingStatus) bool {
	for _, allowed := range bookingStatusTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsCancellationReasonRequired — обязательна ли причина для целевого
// статуса отмены.
func IsCancellationReasonRequired(target BookingStatus) bool {
	return cancellationReasonRequired[target]
}

// bookings
//
// Частичный уникальный индекс по (master_id, slot_start) среди active —
// последняя линия обороны от гонки двух конкурентных создателей,
// даже если проверка пересечений внутри транзакции не сработала.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	MasterID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_bookings_master_active_slot,where:status = 'active'"`
	ClientUserID uuid.UUID `gorm:"type:uuid;not null;index:ix_bookings_client_status_slot,priority:1"`

	ServiceCode string `gorm:"type:varchar(32);not null"`

	SlotStart time.Time `gorm:"type:timestamp with time zone;not null;uniqueIndex:uq_bookings_master_active_slot,where:status = 'active'"`
	SlotEnd   time.Time `gorm:"type:timestamp with time zone;not null"`

	Status BookingStatus `gorm:"type:varchar(32);not null;default:'active';index:ix_bookings_client_status_slot,priority:2"`

	CancellationReason string `gorm:"type:text"`

	// Имя "ручного" клиента, записанного мастером без Telegram-аккаунта.
	ManualClientName string `gorm:"type:varchar(160)"`

	// Снимки контактов клиента на момент создания: последующие правки
	// профиля не меняют историю.
	ClientUsernameSnapshot string `gorm:"type:varchar(64)"`
	ClientPhoneSnapshot    string `gorm:"type:varchar(32)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Master *Master `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Client *User   `gorm:"foreignKey:ClientUserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
