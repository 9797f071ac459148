package model

import (
	"time"

	"github.com/google/uuid"
)

type BlockType string

const (
	BlockTypeDayOff      BlockType = "day_off"
	BlockTypeLunchBreak  BlockType = "lunch_break"
	BlockTypeManualBlock BlockType = "manual_block"
)

// availability_blocks — исключающие интервалы мастера (выходной,
// удлинённый обед, ручная блокировка). Генератор доступности читает
// их как ещё один источник занятости.
type AvailabilityBlock struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	MasterID  uuid.UUID `gorm:"type:uuid;not null;index:ix_blocks_master_start_end,priority:1"`
	BlockType BlockType `gorm:"type:varchar(32);not null"`

	StartAt time.Time `gorm:"type:timestamp with time zone;not null;index:ix_blocks_master_start_end,priority:2"`
	EndAt   time.Time `gorm:"type:timestamp with time zone;not null;index:ix_blocks_master_start_end,priority:3"`

	Reason string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Master *Master `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
