package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	// skipped — запись сделана слишком близко к слоту, напоминание
	// осознанно подавлено и повторно не планируется.
	ReminderStatusSkipped ReminderStatus = "skipped"
)

// booking_reminders — одно напоминание на запись.
type BookingReminder struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	DueAt  time.Time      `gorm:"type:timestamp with time zone;not null;index:ix_reminders_pending_due,where:status = 'pending'"`
	Status ReminderStatus `gorm:"type:varchar(16);not null;default:'pending'"`

	SentAt    *time.Time `gorm:"type:timestamp with time zone"`
	LastError string     `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
