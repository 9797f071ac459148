package model

import (
	"time"

	"github.com/google/uuid"
)

// Коды услуг, известные движку даже без строк каталога.
const (
	ServiceCodeHaircut      = "haircut"
	ServiceCodeBeard        = "beard"
	ServiceCodeHaircutBeard = "haircut_beard"
)

// services — живой каталог услуг. Строка каталога имеет приоритет
// над зашитой таблицей длительностей.
type ServiceCatalog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Code  string `gorm:"type:varchar(32);not null;uniqueIndex"`
	Label string `gorm:"type:varchar(120);not null"`

	// В минутах, строго положительная.
	DurationMinutes int `gorm:"not null;check:duration_minutes > 0"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (ServiceCatalog) TableName() string { return "services" }
