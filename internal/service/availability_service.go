package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// AvailabilityService перечисляет свободные слоты мастера на день.
type AvailabilityService struct {
	masters  repository.MasterRepository
	bookings repository.BookingRepository
	blocks   repository.BlockRepository
	catalog  *CatalogService

	loc            *time.Location
	stepMinutes    int
	minLeadMinutes int
}

func NewAvailabilityService(
	masters repository.MasterRepository,
	bookings repository.BookingRepository,
	blocks repository.BlockRepository,
	catalog *CatalogService,
	loc *time.Location,
	stepMinutes, minLeadMinutes int,
) *AvailabilityService {
	return &AvailabilityService{
		masters:        masters,
		bookings:       bookings,
		blocks:         blocks,
		catalog:        catalog,
		loc:            loc,
		stepMinutes:    stepMinutes,
		minLeadMinutes: minLeadMinutes,
	}
}

// ListSlots возвращает упорядоченный список кандидатов [start, end)
// на дату onDate. Неизвестный или неактивный мастер и неизвестная
// услуга дают пустой список, а не ошибку.
func (s *AvailabilityService) ListSlots(
	ctx context.Context,
	masterID uuid.UUID,
	onDate time.Time,
	serviceCode string,
	now time.Time,
) ([]calendar.TimeRange, error) {
	master, err := s.masters.GetActiveByID(ctx, masterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	duration, known, err := s.catalog.ResolveDuration(ctx, serviceCode)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, nil
	}

	workStart, workEnd, lunch, err := masterDayWindows(master, onDate, s.loc)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := calendar.BusinessDayBounds(onDate, s.loc)

	blocked := []calendar.TimeRange{lunch}

	bookings, err := s.bookings.ListActiveOverlapping(ctx, masterID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		blocked = append(blocked, calendar.TimeRange{Start: b.SlotStart, End: b.SlotEnd})
	}

	blocks, err := s.blocks.ListOverlapping(ctx, masterID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		blocked = append(blocked, calendar.TimeRange{Start: b.StartAt, End: b.EndAt})
	}

	minStart := calendar.SameDayMinSlotStart(onDate, now, s.stepMinutes, s.minLeadMinutes, s.loc)

	serviceLen := time.Duration(duration) * time.Minute
	step := time.Duration(s.stepMinutes) * time.Minute

	var slots []calendar.TimeRange
	for start := workStart; !start.Add(serviceLen).After(workEnd); start = start.Add(step) {
		if minStart != nil && start.Before(*minStart) {
			continue
		}
		candidate := calendar.TimeRange{Start: start, End: start.Add(serviceLen)}
		if calendar.IsBlocked(candidate, blocked) {
			continue
		}
		slots = append(slots, candidate)
	}

	return slots, nil
}

// masterDayWindows проецирует настенные окна мастера на дату:
// рабочее окно и обед как UTC-интервалы.
func masterDayWindows(master *model.Master, onDate time.Time, loc *time.Location) (workStart, workEnd time.Time, lunch calendar.TimeRange, err error) {
	ws, err := calendar.ParseWallClock(master.WorkStart)
	if err != nil {
		return time.Time{}, time.Time{}, calendar.TimeRange{}, err
	}
	we, err := calendar.ParseWallClock(master.WorkEnd)
	if err != nil {
		return time.Time{}, time.Time{}, calendar.TimeRange{}, err
	}
	ls, err := calendar.ParseWallClock(master.LunchStart)
	if err != nil {
		return time.Time{}, time.Time{}, calendar.TimeRange{}, err
	}
	le, err := calendar.ParseWallClock(master.LunchEnd)
	if err != nil {
		return time.Time{}, time.Time{}, calendar.TimeRange{}, err
	}

	workStart = calendar.CombineBusinessDateTime(onDate, ws, loc)
	workEnd = calendar.CombineBusinessDateTime(onDate, we, loc)
	lunch = calendar.TimeRange{
		Start: calendar.CombineBusinessDateTime(onDate, ls, loc),
		End:   calendar.CombineBusinessDateTime(onDate, le, loc),
	}
	return workStart, workEnd, lunch, nil
}
