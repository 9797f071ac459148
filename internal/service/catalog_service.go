package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// Зашитая таблица длительностей на случай пустого каталога.
// Живая строка каталога всегда имеет приоритет.
var fallbackServiceDurations = map[string]int{
	model.ServiceCodeHaircut:      30,
	model.ServiceCodeBeard:        30,
	model.ServiceCodeHaircutBeard: 60,
}

var fallbackServiceLabels = map[string]string{
	model.ServiceCodeHaircut:      "Стрижка",
	model.ServiceCodeBeard:        "Оформление бороды",
	model.ServiceCodeHaircutBeard: "Стрижка + борода",
}

// CatalogService отвечает на вопрос "сколько длится услуга code".
type CatalogService struct {
	services repository.ServiceRepository
}

func NewCatalogService(services repository.ServiceRepository) *CatalogService {
	return &CatalogService{services: services}
}

// ResolveDuration возвращает длительность услуги в минутах.
// known=false — код неизвестен ни каталогу, ни запасной таблице.
func (s *CatalogService) ResolveDuration(ctx context.Context, code string) (minutes int, known bool, err error) {
	row, err := s.services.GetActiveByCode(ctx, code)
	if err == nil {
		return row.DurationMinutes, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	minutes, known = fallbackServiceDurations[code]
	return minutes, known, nil
}

// ResolveLabel возвращает человекочитаемое название услуги для
// сообщений. Неизвестный код возвращается как есть.
func (s *CatalogService) ResolveLabel(ctx context.Context, code string) string {
	row, err := s.services.GetActiveByCode(ctx, code)
	if err == nil && row.Label != "" {
		return row.Label
	}
	if label, ok := fallbackServiceLabels[code]; ok {
		return label
	}
	return code
}
