package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/audit"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// Дефолтный график нового мастера.
const (
	defaultWorkStart  = "10:00"
	defaultWorkEnd    = "21:00"
	defaultLunchStart = "13:00"
	defaultLunchEnd   = "14:00"
)

var nicknameRe = regexp.MustCompile(`^[A-Za-z0-9_]{5,32}$`)

// AdminResult — итог административной операции над мастерами.
type AdminResult struct {
	OK     bool
	Reason Reason
	Master *model.Master
}

// MasterAdminService — назначение и снятие мастеров. Мастер-основатель
// (bootstrap) защищён от снятия.
type MasterAdminService struct {
	db      *gorm.DB
	users   repository.UserRepository
	masters repository.MasterRepository
	audit   *audit.Recorder
	log     *zap.Logger

	bootstrapTelegramID int64
}

func NewMasterAdminService(
	db *gorm.DB,
	users repository.UserRepository,
	masters repository.MasterRepository,
	auditor *audit.Recorder,
	log *zap.Logger,
	bootstrapTelegramID int64,
) *MasterAdminService {
	return &MasterAdminService{
		db:                  db,
		users:               users,
		masters:             masters,
		audit:               auditor,
		log:                 log,
		bootstrapTelegramID: bootstrapTelegramID,
	}
}

// AddMasterByNickname назначает мастером пользователя по @nickname.
// Неизвестный или неоднозначный ник отклоняется без деталей.
func (s *MasterAdminService) AddMasterByNickname(ctx context.Context, actorUserID uuid.UUID, nickname, displayName string) (*AdminResult, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(nickname), "@"))
	if !nicknameRe.MatchString(normalized) {
		return &AdminResult{Reason: ReasonNotAllowed}, nil
	}

	candidates, err := s.users.FindByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AdminResult{Reason: ReasonNotAllowed}, nil
		}
		return nil, err
	}
	if len(candidates) != 1 {
		return &AdminResult{Reason: ReasonNotAllowed}, nil
	}
	return s.promote(ctx, actorUserID, &candidates[0], displayName)
}

// AddMasterByTelegramID назначает мастером пользователя по Telegram ID.
func (s *MasterAdminService) AddMasterByTelegramID(ctx context.Context, actorUserID uuid.UUID, telegramID int64, displayName string) (*AdminResult, error) {
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AdminResult{Reason: ReasonNotAllowed}, nil
		}
		return nil, err
	}
	return s.promote(ctx, actorUserID, user, displayName)
}

func (s *MasterAdminService) promote(ctx context.Context, actorUserID uuid.UUID, user *model.User, displayName string) (*AdminResult, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "@" + user.TelegramUsername
	}

	res := &AdminResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repository.NewGormUserRepository(tx)
		if err := users.SetRole(ctx, user.ID, model.RoleMaster); err != nil {
			return err
		}

		var master model.Master
		err := tx.First(&master, "user_id = ?", user.ID).Error
		switch {
		case err == nil:
			// Повторное назначение реактивирует существующую строку.
			updates := map[string]any{
				"is_active":    true,
				"display_name": displayName,
			}
			if err := tx.Model(&model.Master{}).Where("id = ?", master.ID).Updates(updates).Error; err != nil {
				return err
			}
			master.IsActive = true
			master.DisplayName = displayName
		case errors.Is(err, gorm.ErrRecordNotFound):
			master = model.Master{
				ID:          uuid.New(),
				UserID:      user.ID,
				DisplayName: displayName,
				WorkStart:   defaultWorkStart,
				WorkEnd:     defaultWorkEnd,
				LunchStart:  defaultLunchStart,
				LunchEnd:    defaultLunchEnd,
				IsActive:    true,
			}
			if err := tx.Create(&master).Error; err != nil {
				return err
			}
		default:
			return err
		}

		res.OK = true
		res.Master = &master
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OK {
		s.audit.Record(ctx, &actorUserID, model.EventTypeMasterAdded, "master", res.Master.ID.String(), map[string]any{
			"user_id":      user.ID.String(),
			"display_name": res.Master.DisplayName,
		})
	}
	return res, nil
}

// RemoveMaster деактивирует мастера. Строка не удаляется: история
// записей ссылается на неё. Мастер-основатель защищён.
func (s *MasterAdminService) RemoveMaster(ctx context.Context, actorUserID, masterID uuid.UUID) (*AdminResult, error) {
	res := &AdminResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var master model.Master
		if err := tx.First(&master, "id = ?", masterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Reason = ReasonNotAllowed
				return nil
			}
			return err
		}

		var user model.User
		if err := tx.First(&user, "id = ?", master.UserID).Error; err != nil {
			return err
		}
		if s.bootstrapTelegramID != 0 && user.TelegramID == s.bootstrapTelegramID {
			res.Reason = ReasonNotAllowed
			return nil
		}

		if err := tx.Model(&model.Master{}).Where("id = ?", master.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		master.IsActive = false
		res.OK = true
		res.Master = &master
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OK {
		s.audit.Record(ctx, &actorUserID, model.EventTypeMasterRemoved, "master", masterID.String(), nil)
	}
	return res, nil
}

// ListMasters — страница активных мастеров для выбора в интерфейсе.
func (s *MasterAdminService) ListMasters(ctx context.Context, page, pageSize int) (calendar.Page[model.Master], error) {
	masters, err := s.masters.ListActive(ctx)
	if err != nil {
		return calendar.Page[model.Master]{}, err
	}
	return calendar.Paginate(masters, page, pageSize), nil
}
