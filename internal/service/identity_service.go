package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// RoleUnknown возвращается для незарегистрированных пользователей.
const RoleUnknown = "unknown"

// IdentityService — регистрация и контакты пользователей по Telegram ID.
type IdentityService struct {
	users repository.UserRepository
}

func NewIdentityService(users repository.UserRepository) *IdentityService {
	return &IdentityService{users: users}
}

// Register создаёт пользователя или обновляет контакты существующего.
// Новые пользователи получают роль клиента.
func (s *IdentityService) Register(ctx context.Context, telegramID int64, username, phone string) (*model.User, error) {
	return s.users.UpsertUser(ctx, telegramID, username, phone, model.RoleClient)
}

// UpdateContacts обновляет username и телефон; пустые значения не трогаются.
func (s *IdentityService) UpdateContacts(ctx context.Context, telegramID int64, username, phone string) (*model.User, error) {
	return s.users.UpdateContacts(ctx, telegramID, username, phone)
}

// ResolveRole возвращает имя роли вызывающего или RoleUnknown.
// Используется транспортным слоем до обращения к движку.
func (s *IdentityService) ResolveRole(ctx context.Context, telegramID int64) (string, error) {
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleUnknown, nil
		}
		return "", err
	}

	role, err := s.users.GetRoleName(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return RoleUnknown, nil
	}
	return role, nil
}
