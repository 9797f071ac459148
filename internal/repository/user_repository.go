package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type UserRepository interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	// Поиск по нормализованному (lowercase, без @) username.
	FindByUsername(ctx context.Context, username string) ([]model.User, error)
	// Создать пользователя или обновить контакты существующего.
	UpsertUser(ctx context.Context, telegramID int64, username, phone, roleName string) (*model.User, error)
	UpdateContacts(ctx context.Context, telegramID int64, username, phone string) (*model.User, error)
	// Имя роли пользователя; пустая строка, если роль не найдена.
	GetRoleName(ctx context.Context, userID uuid.UUID) (string, error)
	SetRole(ctx context.Context, userID uuid.UUID, roleName string) error
	// Роль по имени, создаётся при отсутствии.
	EnsureRole(ctx context.Context, roleName string) (*model.Role, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	// Оставляем только цифры, форматирование отбрасываем.
	b := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			b = append(b, c)
		}
	}
	return string(b)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	n := normalizeUsername(username)
	if n == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var users []model.User
	err := r.db.WithContext(ctx).
		Where("telegram_username <> '' AND lower(telegram_username) = ?", n).
		Order("telegram_id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) UpsertUser(ctx context.Context, telegramID int64, username, phone, roleName string) (*model.User, error) {
	phone = normalizePhone(phone)
	username = normalizeUsername(username)

	var u model.User
	tx := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u)
	if tx.Error != nil {
		if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, tx.Error
		}
		role, err := r.EnsureRole(ctx, roleName)
		if err != nil {
			return nil, err
		}
		u = model.User{
			ID:               uuid.New(),
			TelegramID:       telegramID,
			TelegramUsername: username,
			PhoneNumber:      phone,
			RoleID:           role.ID,
		}
		if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}

	// Обновляем контакты существующего.
	updates := map[string]any{
		"telegram_username": username,
		"phone_number":      phone,
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("telegram_id = ?", telegramID).Updates(updates).Error; err != nil {
		return nil, err
	}
	u.TelegramUsername = username
	u.PhoneNumber = phone
	return &u, nil
}

func (r *GormUserRepository) UpdateContacts(ctx context.Context, telegramID int64, username, phone string) (*model.User, error) {
	updates := map[string]any{}
	if username != "" {
		updates["telegram_username"] = normalizeUsername(username)
	}
	if phone != "" {
		updates["phone_number"] = normalizePhone(phone)
	}
	if len(updates) == 0 {
		// Обновлять нечего — возвращаем текущего пользователя.
		return r.FindByTelegramID(ctx, telegramID)
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("telegram_id = ?", telegramID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByTelegramID(ctx, telegramID)
}

func (r *GormUserRepository) GetRoleName(ctx context.Context, userID uuid.UUID) (string, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return "", err
	}
	var role model.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", u.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return role.Name, nil
}

func (r *GormUserRepository) SetRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := r.EnsureRole(ctx, roleName)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("role_id", role.ID).
		Error
}

func (r *GormUserRepository) EnsureRole(ctx context.Context, roleName string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role = model.Role{Name: roleName}
	if err := r.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
