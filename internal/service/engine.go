package service

import "github.com/Leganyst/booking-core/internal/guard"

// Engine — синхронная поверхность движка для транспортного слоя:
// операции сервисов плюс предохранители перед мутациями.
type Engine struct {
	Availability *AvailabilityService
	Bookings     *BookingService
	Schedule     *ScheduleService
	Admin        *MasterAdminService
	Identity     *IdentityService
	Reminders    *ReminderService
	Catalog      *CatalogService

	Guard *guard.Guard
}
