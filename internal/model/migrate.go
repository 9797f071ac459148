package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей движка записи.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&User{},
		&Master{},
		&ServiceCatalog{},
		&Booking{},
		&AvailabilityBlock{},
		&BookingReminder{},
		&AuditEvent{},
	)
}
