package calendar

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// TimeRange представляет полуоткрытый временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и делает простую валидацию.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Duration возвращает длительность интервала.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов:
// a.Start < b.End && b.Start < a.End. Касание концами
// (a.End == b.Start) пересечением не считается — записи "впритык"
// друг к другу допустимы.
func Overlaps(a, b TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// IsBlocked проверяет, пересекается ли кандидат хотя бы с одним
// из занятых интервалов.
func IsBlocked(candidate TimeRange, blocked []TimeRange) bool {
	for _, b := range blocked {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}

// HasOverlap возвращает признак пересечения и список конфликтующих
// интервалов (для сообщений об ошибке).
func HasOverlap(candidate TimeRange, existing []TimeRange) (bool, []TimeRange) {
	var conflicts []TimeRange
	for _, tr := range existing {
		if Overlaps(candidate, tr) {
			conflicts = append(conflicts, tr)
		}
	}
	return len(conflicts) > 0, conflicts
}
