// Package service — операции движка записи: генерация доступности,
// создание и отмена записей, календарь мастера, напоминания.
//
// Доменные отказы (конфликт слота, вторая запись, чужая запись) — это
// нормальные результаты, а не ошибки: методы возвращают структуру с
// признаком OK и стабильным кодом причины. Ошибка (error) означает
// инфраструктурный сбой — недоступную БД, прерванную транзакцию.
package service

// Reason — стабильный машинный код отказа. Человекочитаемый текст —
// забота вызывающего слоя.
type Reason string

const (
	// Неизвестная/чужая сущность схлопывается в один код, чтобы не
	// раскрывать факт существования чужих записей.
	ReasonNotAllowed Reason = "not_allowed"

	ReasonInvalidServiceType         Reason = "invalid_service_type"
	ReasonSlotAlreadyPassed          Reason = "slot_already_passed"
	ReasonSlotNotAvailable           Reason = "slot_not_available"
	ReasonFutureBookingExists        Reason = "future_booking_exists"
	ReasonCancellationReasonRequired Reason = "cancellation_reason_required"
	ReasonInvalidInterval            Reason = "invalid_interval"
	ReasonLunchDurationInvalid       Reason = "lunch_duration_invalid"
	ReasonLunchOutsideWork           Reason = "lunch_outside_work"
	ReasonDayOffConflict             Reason = "day_off_conflict"
	ReasonDayOffHasBookings          Reason = "day_off_has_bookings"
)
