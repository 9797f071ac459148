package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated    EventType = "booking_created"
	EventTypeBookingCancelled  EventType = "booking_cancelled"
	EventTypeDayOffUpserted    EventType = "day_off_upserted"
	EventTypeLunchBreakUpdated EventType = "lunch_break_updated"
	EventTypeMasterAdded       EventType = "master_added"
	EventTypeMasterRemoved     EventType = "master_removed"
)

// audit_events — события аудита
type AuditEvent struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ActorUserID *uuid.UUID `gorm:"type:uuid;index"`

	EventType  EventType `gorm:"type:varchar(64);not null;index"`
	EntityType string    `gorm:"type:varchar(64);not null"`
	EntityID   string    `gorm:"type:varchar(64);not null"`

	// Детали события в JSONB.
	Payload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	Actor *User `gorm:"foreignKey:ActorUserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
