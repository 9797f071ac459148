package model

import (
	"time"

	"github.com/google/uuid"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	TelegramID       int64  `gorm:"not null;uniqueIndex"`
	TelegramUsername string `gorm:"type:varchar(64);index"`
	PhoneNumber      string `gorm:"type:varchar(32)"`

	RoleID int64 `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля (опционально)
	Role   *Role   `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Master *Master `gorm:"foreignKey:UserID"`
}
