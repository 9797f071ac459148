package service

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/audit"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// ScheduleResult — итог операции над календарём мастера.
type ScheduleResult struct {
	OK     bool
	Reason Reason
	Block  *model.AvailabilityBlock
}

// ScheduleService — управление календарём мастера: выходные,
// обеденное окно, ручные записи без Telegram-клиента.
type ScheduleService struct {
	db       *gorm.DB
	bookings *BookingService
	users    repository.UserRepository
	audit    *audit.Recorder
	log      *zap.Logger

	loc                  *time.Location
	lunchDurationMinutes int
}

func NewScheduleService(
	db *gorm.DB,
	bookings *BookingService,
	users repository.UserRepository,
	auditor *audit.Recorder,
	log *zap.Logger,
	loc *time.Location,
	lunchDurationMinutes int,
) *ScheduleService {
	return &ScheduleService{
		db:                   db,
		bookings:             bookings,
		users:                users,
		audit:                auditor,
		log:                  log,
		loc:                  loc,
		lunchDurationMinutes: lunchDurationMinutes,
	}
}

// UpsertDayOff создаёт или обновляет выходной мастера.
// Отказывает при пересечении с другим выходным и при наличии активных
// записей в интервале: выходной не отменяет записи клиентов молча.
func (s *ScheduleService) UpsertDayOff(
	ctx context.Context,
	master repository.MasterContext,
	start, end time.Time,
	blockID *uuid.UUID,
	reason string,
) (*ScheduleResult, error) {
	start = calendar.NormalizeUTC(start)
	end = calendar.NormalizeUTC(end)
	if _, err := calendar.NewTimeRange(start, end); err != nil {
		return &ScheduleResult{Reason: ReasonInvalidInterval}, nil
	}

	res := &ScheduleResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		blocks := repository.NewGormBlockRepository(tx)
		bookings := repository.NewGormBookingRepository(tx)

		overlapping, err := blocks.ListOverlapping(ctx, master.MasterID, start, end)
		if err != nil {
			return err
		}
		for _, b := range overlapping {
			if b.BlockType != model.BlockTypeDayOff {
				continue
			}
			if blockID != nil && b.ID == *blockID {
				continue
			}
			res.Reason = ReasonDayOffConflict
			return nil
		}

		booked, err := bookings.ListActiveOverlapping(ctx, master.MasterID, start, end)
		if err != nil {
			return err
		}
		if len(booked) > 0 {
			res.Reason = ReasonDayOffHasBookings
			return nil
		}

		if blockID != nil {
			existing, err := blocks.GetByID(ctx, *blockID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					res.Reason = ReasonNotAllowed
					return nil
				}
				return err
			}
			if existing.MasterID != master.MasterID || existing.BlockType != model.BlockTypeDayOff {
				res.Reason = ReasonNotAllowed
				return nil
			}

			updates := map[string]any{
				"start_at": start,
				"end_at":   end,
				"reason":   reason,
			}
			if err := tx.Model(&model.AvailabilityBlock{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			existing.StartAt = start
			existing.EndAt = end
			existing.Reason = reason
			res.OK = true
			res.Block = existing
			return nil
		}

		block := model.AvailabilityBlock{
			ID:        uuid.New(),
			MasterID:  master.MasterID,
			BlockType: model.BlockTypeDayOff,
			StartAt:   start,
			EndAt:     end,
			Reason:    reason,
		}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}
		res.OK = true
		res.Block = &block
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OK {
		s.audit.Record(ctx, &master.MasterUserID, model.EventTypeDayOffUpserted, "availability_block", res.Block.ID.String(), map[string]any{
			"start_at": start,
			"end_at":   end,
		})
	}
	return res, nil
}

// UpdateLunchBreak меняет обеденное окно мастера. Окно должно длиться
// ровно сколько положено и целиком помещаться в рабочие часы.
// Генератор доступности видит новое окно сразу: кэша нет.
func (s *ScheduleService) UpdateLunchBreak(
	ctx context.Context,
	master repository.MasterContext,
	lunchStart, lunchEnd string,
) (*ScheduleResult, error) {
	start, err := calendar.ParseWallClock(lunchStart)
	if err != nil {
		return &ScheduleResult{Reason: ReasonInvalidInterval}, nil
	}
	end, err := calendar.ParseWallClock(lunchEnd)
	if err != nil {
		return &ScheduleResult{Reason: ReasonInvalidInterval}, nil
	}
	if !start.Before(end) {
		return &ScheduleResult{Reason: ReasonInvalidInterval}, nil
	}
	if end.Minutes()-start.Minutes() != s.lunchDurationMinutes {
		return &ScheduleResult{Reason: ReasonLunchDurationInvalid}, nil
	}

	res := &ScheduleResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		masters := repository.NewGormMasterRepository(tx)
		m, err := masters.GetActiveByID(ctx, master.MasterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonNotAllowed
				return nil
			}
			return err
		}

		workStart, err := calendar.ParseWallClock(m.WorkStart)
		if err != nil {
			return err
		}
		workEnd, err := calendar.ParseWallClock(m.WorkEnd)
		if err != nil {
			return err
		}
		if start.Before(workStart) || workEnd.Before(end) {
			res.Reason = ReasonLunchOutsideWork
			return nil
		}

		updates := map[string]any{
			"lunch_start": start.String(),
			"lunch_end":   end.String(),
		}
		if err := tx.Model(&model.Master{}).Where("id = ?", m.ID).Updates(updates).Error; err != nil {
			return err
		}
		res.OK = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OK {
		s.audit.Record(ctx, &master.MasterUserID, model.EventTypeLunchBreakUpdated, "master", master.MasterID.String(), map[string]any{
			"lunch_start": start.String(),
			"lunch_end":   end.String(),
		})
	}
	return res, nil
}

// CreateManualBooking — запись, которую мастер делает сам за клиента
// без Telegram-аккаунта. Клиентом выступает синтетический пользователь
// мастера, поэтому правило "одна будущая запись" не применяется.
func (s *ScheduleService) CreateManualBooking(
	ctx context.Context,
	master repository.MasterContext,
	serviceCode string,
	slotStart time.Time,
	clientName string,
	now time.Time,
) (*CreateResult, error) {
	client, err := s.ensureManualClient(ctx, master.MasterID)
	if err != nil {
		return nil, err
	}

	res, err := s.bookings.create(ctx, createParams{
		masterID:         master.MasterID,
		clientUserID:     client.ID,
		serviceCode:      serviceCode,
		slotStart:        slotStart,
		now:              now,
		manual:           true,
		manualClientName: clientName,
	})
	if err != nil {
		return nil, err
	}
	if res.OK {
		s.bookings.afterCreate(ctx, &master.MasterUserID, res.Booking)
	}
	return res, nil
}

// manualClientTelegramID детерминированно выводит отрицательный
// Telegram ID синтетического клиента из ID мастера. Отрицательные
// значения не пересекаются с настоящими аккаунтами.
func manualClientTelegramID(masterID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(masterID[:])
	v := h.Sum64() % uint64(math.MaxInt64)
	if v == 0 {
		v = 1
	}
	return -int64(v)
}

// ensureManualClient лениво создаёт (и переиспользует) синтетического
// клиента мастера для ручных записей.
func (s *ScheduleService) ensureManualClient(ctx context.Context, masterID uuid.UUID) (*model.User, error) {
	telegramID := manualClientTelegramID(masterID)

	client, err := s.users.FindByTelegramID(ctx, telegramID)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.users.UpsertUser(ctx, telegramID, "", "", model.RoleClient)
}
