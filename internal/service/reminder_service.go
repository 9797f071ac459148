package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// Исход планирования напоминания.
type ScheduleOutcome string

const (
	ScheduleOutcomeScheduled        ScheduleOutcome = "scheduled"
	ScheduleOutcomeSkipped          ScheduleOutcome = "skipped"
	ScheduleOutcomeAlreadyScheduled ScheduleOutcome = "already_scheduled"
)

const reminderErrorMaxLen = 500

// ReminderService планирует напоминание при создании записи и
// рассылает наступившие напоминания фоновыми проходами.
type ReminderService struct {
	reminders repository.ReminderRepository
	notifier  *NotificationService
	log       *zap.Logger

	lead        time.Duration
	sendTimeout time.Duration
}

func NewReminderService(
	reminders repository.ReminderRepository,
	notifier *NotificationService,
	log *zap.Logger,
	lead, sendTimeout time.Duration,
) *ReminderService {
	return &ReminderService{
		reminders:   reminders,
		notifier:    notifier,
		log:         log,
		lead:        lead,
		sendTimeout: sendTimeout,
	}
}

// ScheduleForBooking планирует одно напоминание на запись.
// Идемпотентно: повторный вызов для той же записи — no-op с исходом
// already_scheduled. Запись, сделанная ближе чем за lead до слота,
// получает статус skipped: подавление фиксируется, а не теряется.
func (s *ReminderService) ScheduleForBooking(ctx context.Context, bookingID uuid.UUID, slotStart, createdAt time.Time) (ScheduleOutcome, error) {
	if _, err := s.reminders.GetByBookingID(ctx, bookingID); err == nil {
		return ScheduleOutcomeAlreadyScheduled, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	status := model.ReminderStatusPending
	outcome := ScheduleOutcomeScheduled
	if slotStart.Sub(createdAt) < s.lead {
		status = model.ReminderStatusSkipped
		outcome = ScheduleOutcomeSkipped
	}

	reminder := &model.BookingReminder{
		ID:        uuid.New(),
		BookingID: bookingID,
		DueAt:     slotStart.Add(-s.lead),
		Status:    status,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Конкурентный планировщик успел первым.
			return ScheduleOutcomeAlreadyScheduled, nil
		}
		return "", err
	}
	return outcome, nil
}

// DispatchDue — один проход рассылки: pending-напоминания с
// наступившим сроком по всё ещё активным записям. Успех — sent,
// неудача — остаётся pending с текстом ошибки до следующего прохода.
// Каждая отправка ограничена по времени, чтобы один зависший вызов
// не заблокировал остаток пачки.
func (s *ReminderService) DispatchDue(ctx context.Context, sender Sender, now time.Time, limit int) (sent int, err error) {
	due, err := s.reminders.ListDuePending(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	for _, reminder := range due {
		if err := s.deliver(ctx, sender, reminder); err != nil {
			if errors.Is(err, ErrUnreachableClient) {
				// Писать некому и не станет кому: подавляем навсегда.
				if skipErr := s.reminders.MarkSkipped(ctx, reminder.ID, truncateError(err)); skipErr != nil {
					return sent, skipErr
				}
				continue
			}
			s.log.Warn("reminder: delivery failed",
				zap.String("reminder_id", reminder.ID.String()),
				zap.String("booking_id", reminder.BookingID.String()),
				zap.Error(err))
			if recErr := s.reminders.RecordFailure(ctx, reminder.ID, truncateError(err)); recErr != nil {
				return sent, recErr
			}
			continue
		}
		if err := s.reminders.MarkSent(ctx, reminder.ID, now); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (s *ReminderService) deliver(ctx context.Context, sender Sender, reminder model.BookingReminder) error {
	telegramID, text, err := s.notifier.ReminderMessage(ctx, reminder.BookingID)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return sender(sendCtx, telegramID, text)
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > reminderErrorMaxLen {
		msg = msg[:reminderErrorMaxLen]
	}
	return msg
}
