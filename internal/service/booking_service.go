package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/audit"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// CreateResult — итог попытки создать запись.
type CreateResult struct {
	OK      bool
	Reason  Reason
	Booking *model.Booking
}

// CancelResult — итог попытки отменить запись.
type CancelResult struct {
	OK      bool
	Reason  Reason
	Booking *model.Booking
}

// BookingService — транзакционное создание и отмена записей.
// Все проверки конфликтов и сама вставка выполняются в одной
// транзакции; частичный уникальный индекс по (master_id, slot_start)
// среди активных — последний рубеж при гонке.
type BookingService struct {
	db       *gorm.DB
	catalog  *CatalogService
	reminder *ReminderService
	notifier *NotificationService
	audit    *audit.Recorder
	log      *zap.Logger

	loc            *time.Location
	stepMinutes    int
	minLeadMinutes int
}

func NewBookingService(
	db *gorm.DB,
	catalog *CatalogService,
	reminder *ReminderService,
	notifier *NotificationService,
	auditor *audit.Recorder,
	log *zap.Logger,
	loc *time.Location,
	stepMinutes, minLeadMinutes int,
) *BookingService {
	return &BookingService{
		db:             db,
		catalog:        catalog,
		reminder:       reminder,
		notifier:       notifier,
		audit:          auditor,
		log:            log,
		loc:            loc,
		stepMinutes:    stepMinutes,
		minLeadMinutes: minLeadMinutes,
	}
}

type createParams struct {
	masterID     uuid.UUID
	clientUserID uuid.UUID
	serviceCode  string
	slotStart    time.Time
	now          time.Time

	// Ручная запись мастера: синтетический клиент, правило
	// "одна будущая запись" не применяется.
	manual           bool
	manualClientName string
}

// Create создаёт запись клиента на слот.
func (s *BookingService) Create(
	ctx context.Context,
	masterID, clientUserID uuid.UUID,
	serviceCode string,
	slotStart, now time.Time,
) (*CreateResult, error) {
	res, err := s.create(ctx, createParams{
		masterID:     masterID,
		clientUserID: clientUserID,
		serviceCode:  serviceCode,
		slotStart:    slotStart,
		now:          now,
	})
	if err != nil {
		return nil, err
	}
	if res.OK {
		s.afterCreate(ctx, &clientUserID, res.Booking)
	}
	return res, nil
}

func (s *BookingService) create(ctx context.Context, p createParams) (*CreateResult, error) {
	duration, known, err := s.catalog.ResolveDuration(ctx, p.serviceCode)
	if err != nil {
		return nil, err
	}
	if !known {
		return &CreateResult{Reason: ReasonInvalidServiceType}, nil
	}

	slotStart := calendar.NormalizeUTC(p.slotStart)
	now := calendar.NormalizeUTC(p.now)
	slot := calendar.TimeRange{
		Start: slotStart,
		End:   slotStart.Add(time.Duration(duration) * time.Minute),
	}

	res := &CreateResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		masters := repository.NewGormMasterRepository(tx)
		bookings := repository.NewGormBookingRepository(tx)
		blocks := repository.NewGormBlockRepository(tx)

		master, err := masters.GetActiveByID(ctx, p.masterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonNotAllowed
				return nil
			}
			return err
		}

		if !slotStart.After(now) ||
			!calendar.IsSlotStartAllowed(slotStart, now, s.stepMinutes, s.minLeadMinutes, s.loc) {
			res.Reason = ReasonSlotAlreadyPassed
			return nil
		}

		workStart, workEnd, lunch, err := masterDayWindows(master, slotStart, s.loc)
		if err != nil {
			return err
		}
		if slot.Start.Before(workStart) || slot.End.After(workEnd) || calendar.Overlaps(slot, lunch) {
			res.Reason = ReasonSlotNotAvailable
			return nil
		}

		if !p.manual {
			hasFuture, err := bookings.HasActiveFuture(ctx, p.clientUserID, now)
			if err != nil {
				return err
			}
			if hasFuture {
				res.Reason = ReasonFutureBookingExists
				return nil
			}
		}

		conflicting, err := bookings.ListActiveOverlapping(ctx, p.masterID, slot.Start, slot.End)
		if err != nil {
			return err
		}
		if len(conflicting) > 0 {
			res.Reason = ReasonSlotNotAvailable
			return nil
		}

		blocking, err := blocks.ListOverlapping(ctx, p.masterID, slot.Start, slot.End)
		if err != nil {
			return err
		}
		if len(blocking) > 0 {
			res.Reason = ReasonSlotNotAvailable
			return nil
		}

		// Снимки контактов: последующие правки профиля не трогают историю.
		var client model.User
		if err := tx.First(&client, "id = ?", p.clientUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonNotAllowed
				return nil
			}
			return err
		}

		booking := model.Booking{
			ID:                     uuid.New(),
			MasterID:               p.masterID,
			ClientUserID:           p.clientUserID,
			ServiceCode:            p.serviceCode,
			SlotStart:              slot.Start,
			SlotEnd:                slot.End,
			Status:                 model.BookingStatusActive,
			ManualClientName:       p.manualClientName,
			ClientUsernameSnapshot: client.TelegramUsername,
			ClientPhoneSnapshot:    client.PhoneNumber,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Гонка двух создателей: индекс пропустил ровно одного.
				res.Reason = ReasonSlotNotAvailable
				return nil
			}
			return err
		}

		res.OK = true
		res.Booking = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// afterCreate — побочные эффекты после коммита: напоминание, аудит,
// уведомление мастера. Их сбои не откатывают созданную запись.
func (s *BookingService) afterCreate(ctx context.Context, actorUserID *uuid.UUID, booking *model.Booking) {
	outcome, err := s.reminder.ScheduleForBooking(ctx, booking.ID, booking.SlotStart, booking.CreatedAt)
	if err != nil {
		s.log.Error("booking: schedule reminder",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	} else if outcome == ScheduleOutcomeSkipped {
		s.log.Info("booking: reminder skipped, slot too close",
			zap.String("booking_id", booking.ID.String()))
	}

	s.audit.Record(ctx, actorUserID, model.EventTypeBookingCreated, "booking", booking.ID.String(), map[string]any{
		"master_id":    booking.MasterID.String(),
		"service_code": booking.ServiceCode,
		"slot_start":   booking.SlotStart,
		"manual":       booking.ManualClientName != "",
	})

	s.notifier.NotifyBookingCreated(ctx, booking.ID)
}

// CancelByClient отменяет запись по инициативе клиента-владельца.
// Причина не обязательна; слот должен быть строго в будущем.
func (s *BookingService) CancelByClient(
	ctx context.Context,
	bookingID, clientUserID uuid.UUID,
	now time.Time,
) (*CancelResult, error) {
	now = calendar.NormalizeUTC(now)

	res := &CancelResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking model.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonNotAllowed
				return nil
			}
			return err
		}
		if booking.ClientUserID != clientUserID {
			res.Reason = ReasonNotAllowed
			return nil
		}
		if !booking.SlotStart.After(now) {
			res.Reason = ReasonSlotAlreadyPassed
			return nil
		}
		if !model.CanTransitionBookingStatus(booking.Status, model.BookingStatusCancelledByClient) {
			res.Reason = ReasonNotAllowed
			return nil
		}

		updates := map[string]any{
			"status":              model.BookingStatusCancelledByClient,
			"cancellation_reason": "",
		}
		if err := tx.Model(&model.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
			return err
		}

		booking.Status = model.BookingStatusCancelledByClient
		booking.CancellationReason = ""
		res.OK = true
		res.Booking = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OK {
		s.audit.Record(ctx, &clientUserID, model.EventTypeBookingCancelled, "booking", bookingID.String(), map[string]any{
			"by":         "client",
			"slot_start": res.Booking.SlotStart,
		})
		s.notifier.NotifyCancelledByClient(ctx, bookingID)
	}
	return res, nil
}

// CancelByMaster отменяет запись по инициативе мастера-владельца.
// Причина обязательна; результат несёт очищенный текст причины и
// исходное время слота для сообщения клиенту.
func (s *BookingService) CancelByMaster(
	ctx context.Context,
	bookingID uuid.UUID,
	master repository.MasterContext,
	reason string,
	now time.Time,
) (*CancelResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return &CancelResult{Reason: ReasonCancellationReasonRequired}, nil
	}
	now = calendar.NormalizeUTC(now)

	res := &CancelResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking model.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonNotAllowed
				return nil
			}
			return err
		}
		if booking.MasterID != master.MasterID {
			res.Reason = ReasonNotAllowed
			return nil
		}
		if !booking.SlotStart.After(now) {
			res.Reason = ReasonSlotAlreadyPassed
			return nil
		}
		if !model.CanTransitionBookingStatus(booking.Status, model.BookingStatusCancelledByMaster) {
			res.Reason = ReasonNotAllowed
			return nil
		}

		updates := map[string]any{
			"status":              model.BookingStatusCancelledByMaster,
			"cancellation_reason": reason,
		}
		if err := tx.Model(&model.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
			return err
		}

		booking.Status = model.BookingStatusCancelledByMaster
		booking.CancellationReason = reason
		res.OK = true
		res.Booking = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OK {
		s.audit.Record(ctx, &master.MasterUserID, model.EventTypeBookingCancelled, "booking", bookingID.String(), map[string]any{
			"by":         "master",
			"reason":     reason,
			"slot_start": res.Booking.SlotStart,
		})
		s.notifier.NotifyCancelledByMaster(ctx, bookingID, reason)
	}
	return res, nil
}
