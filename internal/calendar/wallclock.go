package calendar

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWallClock = errors.New("invalid wall clock value")

// WallClock — настенное время "ЧЧ:ММ" без привязки к дате и зоне.
// Так хранятся рабочие окна и обед мастера.
type WallClock struct {
	Hour   int
	Minute int
}

// ParseWallClock разбирает строку вида "10:00".
func ParseWallClock(value string) (WallClock, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return WallClock{}, fmt.Errorf("%w: %q", ErrInvalidWallClock, value)
	}
	return WallClock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String форматирует обратно в "ЧЧ:ММ".
func (w WallClock) String() string {
	return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute)
}

// Minutes — минуты от полуночи, удобно для сравнения окон.
func (w WallClock) Minutes() int {
	return w.Hour*60 + w.Minute
}

// Before сравнивает два настенных времени.
func (w WallClock) Before(other WallClock) bool {
	return w.Minutes() < other.Minutes()
}
