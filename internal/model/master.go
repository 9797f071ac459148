package model

import (
	"time"

	"github.com/google/uuid"
)

// Master — мастер, оказывающий услуги по фиксированному дневному
// графику. Рабочее окно и обед хранятся настенным временем "ЧЧ:ММ"
// в бизнес-зоне. Мастера не удаляются, только деактивируются.
type Master struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// Внешний ключ на таблицу пользователей.
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	// Имя/отображаемое название в интерфейсе.
	DisplayName string `gorm:"type:varchar(120);not null"`

	WorkStart  string `gorm:"type:varchar(5);not null"`
	WorkEnd    string `gorm:"type:varchar(5);not null"`
	LunchStart string `gorm:"type:varchar(5);not null"`
	LunchEnd   string `gorm:"type:varchar(5);not null"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля для GORM (опционально, но удобно для Preload).
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Bookings []Booking           `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Blocks   []AvailabilityBlock `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
