package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-core/internal/repository"
)

// Sender доставляет сообщение пользователю по его Telegram ID.
// Внедряется транспортным слоем; может падать и подвисать.
type Sender func(ctx context.Context, telegramID int64, text string) error

// NotificationService строит и отправляет перекрёстные уведомления
// сторонам записи. Ошибки доставки логируются и никогда не влияют
// на исход основной операции.
type NotificationService struct {
	bookings repository.BookingRepository
	catalog  *CatalogService
	sender   Sender
	log      *zap.Logger
	loc      *time.Location
}

func NewNotificationService(
	bookings repository.BookingRepository,
	catalog *CatalogService,
	sender Sender,
	log *zap.Logger,
	loc *time.Location,
) *NotificationService {
	return &NotificationService{
		bookings: bookings,
		catalog:  catalog,
		sender:   sender,
		log:      log,
		loc:      loc,
	}
}

func (s *NotificationService) slotLabel(slotStart time.Time) string {
	return slotStart.In(s.loc).Format("02.01.2006 15:04")
}

// clientLabel — как показать клиента мастеру: ручное имя, иначе
// @username, иначе телефон.
func clientLabel(nc *repository.BookingNotificationContext) string {
	switch {
	case nc.ManualClientName != "":
		return nc.ManualClientName
	case nc.ClientUsername != "":
		return "@" + nc.ClientUsername
	case nc.ClientPhone != "":
		return nc.ClientPhone
	default:
		return "клиент"
	}
}

// NotifyBookingCreated сообщает мастеру о новой записи.
func (s *NotificationService) NotifyBookingCreated(ctx context.Context, bookingID uuid.UUID) {
	nc, err := s.bookings.NotificationContext(ctx, bookingID)
	if err != nil {
		s.log.Warn("notify: load booking context",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
		return
	}

	text := fmt.Sprintf("Новая запись: %s — %s, %s",
		s.slotLabel(nc.SlotStart),
		s.catalog.ResolveLabel(ctx, nc.ServiceCode),
		clientLabel(nc))
	s.send(ctx, nc.MasterTelegramID, text, bookingID)
}

// NotifyCancelledByClient сообщает мастеру об отмене клиентом.
func (s *NotificationService) NotifyCancelledByClient(ctx context.Context, bookingID uuid.UUID) {
	nc, err := s.bookings.NotificationContext(ctx, bookingID)
	if err != nil {
		s.log.Warn("notify: load booking context",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
		return
	}

	text := fmt.Sprintf("Отмена записи: %s — %s, %s",
		s.slotLabel(nc.SlotStart),
		s.catalog.ResolveLabel(ctx, nc.ServiceCode),
		clientLabel(nc))
	s.send(ctx, nc.MasterTelegramID, text, bookingID)
}

// NotifyCancelledByMaster сообщает клиенту об отмене мастером
// с указанной причиной.
func (s *NotificationService) NotifyCancelledByMaster(ctx context.Context, bookingID uuid.UUID, reason string) {
	nc, err := s.bookings.NotificationContext(ctx, bookingID)
	if err != nil {
		s.log.Warn("notify: load booking context",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
		return
	}
	if nc.ClientTelegramID <= 0 {
		// Ручная запись: уведомлять некого.
		return
	}

	text := fmt.Sprintf("Ваша запись %s отменена мастером.\nПричина: %s",
		s.slotLabel(nc.SlotStart), reason)
	s.send(ctx, nc.ClientTelegramID, text, bookingID)
}

// ErrUnreachableClient — у записи нет клиента, которому можно писать
// (ручная запись с синтетическим клиентом).
var ErrUnreachableClient = errors.New("booking client is unreachable")

// ReminderMessage строит текст напоминания и адресата для записи.
func (s *NotificationService) ReminderMessage(ctx context.Context, bookingID uuid.UUID) (telegramID int64, text string, err error) {
	nc, err := s.bookings.NotificationContext(ctx, bookingID)
	if err != nil {
		return 0, "", err
	}
	if nc.ClientTelegramID <= 0 {
		return 0, "", fmt.Errorf("booking %s: %w", bookingID, ErrUnreachableClient)
	}

	text = fmt.Sprintf("Напоминание: вы записаны на %s, %s",
		s.catalog.ResolveLabel(ctx, nc.ServiceCode),
		s.slotLabel(nc.SlotStart))
	return nc.ClientTelegramID, text, nil
}

func (s *NotificationService) send(ctx context.Context, telegramID int64, text string, bookingID uuid.UUID) {
	if s.sender == nil || telegramID <= 0 {
		return
	}
	if err := s.sender(ctx, telegramID, text); err != nil {
		s.log.Warn("notify: send failed",
			zap.Int64("telegram_id", telegramID),
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
	}
}
