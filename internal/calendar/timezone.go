package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Все инстанты храним в UTC; бизнес-зона нужна только для проекции
// "какой это день / который час" с точки зрения салона.

const (
	BusinessTimezoneEnv     = "BUSINESS_TIMEZONE"
	BusinessTimezoneDefault = "Europe/Moscow"
)

// ResolveBusinessTimezone разбирает имя IANA-зоны. Пустое имя — дефолт.
func ResolveBusinessTimezone(raw string) (*time.Location, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = BusinessTimezoneDefault
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid IANA timezone, got %q: %w", BusinessTimezoneEnv, name, err)
	}
	return loc, nil
}

// BusinessTimezone читает зону из окружения.
func BusinessTimezone() (*time.Location, error) {
	return ResolveBusinessTimezone(os.Getenv(BusinessTimezoneEnv))
}

// NormalizeUTC приводит значение к UTC.
func NormalizeUTC(value time.Time) time.Time {
	return value.UTC()
}

// ToBusiness проецирует инстант в бизнес-зону.
func ToBusiness(value time.Time, loc *time.Location) time.Time {
	return value.In(loc)
}

// BusinessDate возвращает календарную дату инстанта в бизнес-зоне.
func BusinessDate(value time.Time, loc *time.Location) (year int, month time.Month, day int) {
	return value.In(loc).Date()
}

// SameBusinessDate — один ли календарный день у двух инстантов в бизнес-зоне.
func SameBusinessDate(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// CombineBusinessDateTime собирает UTC-инстант из календарной даты
// и настенного времени, интерпретированных в бизнес-зоне.
func CombineBusinessDateTime(onDate time.Time, clock WallClock, loc *time.Location) time.Time {
	y, m, d := onDate.In(loc).Date()
	return time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, loc).UTC()
}

// BusinessDayBounds возвращает [начало, конец) бизнес-дня в UTC.
// Конец — локальная полночь следующего календарного дня, поэтому
// границы корректны и в дни перевода часов.
func BusinessDayBounds(onDate time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := onDate.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}
