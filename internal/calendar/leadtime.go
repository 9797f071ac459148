package calendar

import (
	"time"
)

// DefaultMinLeadMinutes — минимальный зазор между "сейчас" и ближайшим
// доступным слотом того же дня.
const DefaultMinLeadMinutes = 30

// SameDayMinSlotStart возвращает нижнюю границу начала слота для даты
// onDate: nil, если дата не совпадает с бизнес-датой "сейчас", иначе
// now+minLead, округлённое вверх до ближайшего шага сетки, отсчитанного
// от начала бизнес-дня.
func SameDayMinSlotStart(onDate, now time.Time, stepMinutes, minLeadMinutes int, loc *time.Location) *time.Time {
	if !SameBusinessDate(onDate, now, loc) {
		return nil
	}

	dayStart, _ := BusinessDayBounds(onDate, loc)
	threshold := NormalizeUTC(now).Add(time.Duration(minLeadMinutes) * time.Minute)

	elapsed := threshold.Sub(dayStart)
	step := time.Duration(stepMinutes) * time.Minute
	rounded := elapsed / step * step
	if rounded < elapsed {
		rounded += step
	}

	min := dayStart.Add(rounded)
	return &min
}

// IsSlotStartAllowed проверяет, что начало слота не раньше нижней
// границы того же дня. Для будущих дат всегда true.
func IsSlotStartAllowed(slotStart, now time.Time, stepMinutes, minLeadMinutes int, loc *time.Location) bool {
	slotStart = NormalizeUTC(slotStart)
	min := SameDayMinSlotStart(slotStart, now, stepMinutes, minLeadMinutes, loc)
	if min == nil {
		return true
	}
	return !slotStart.Before(*min)
}
