package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

func TestIdentity_RegisterAndResolveRole(t *testing.T) {
	env := newTestEnv(t, nil)
	identity := NewIdentityService(repository.NewGormUserRepository(env.db))

	role, err := identity.ResolveRole(testCtx, 42)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if role != RoleUnknown {
		t.Fatalf("role = %q, want unknown", role)
	}

	user, err := identity.Register(testCtx, 42, "@SomeUser", "+7 (999) 000-11-22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("user.ID is nil")
	}
	// Нормализация контактов: lowercase без @, только цифры телефона.
	if user.TelegramUsername != "someuser" {
		t.Fatalf("username = %q", user.TelegramUsername)
	}
	if user.PhoneNumber != "79990001122" {
		t.Fatalf("phone = %q", user.PhoneNumber)
	}

	role, err = identity.ResolveRole(testCtx, 42)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if role != model.RoleClient {
		t.Fatalf("role = %q, want %q", role, model.RoleClient)
	}

	// Повторная регистрация обновляет контакты, не плодя строки.
	if _, err := identity.Register(testCtx, 42, "renamed", ""); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if n := mustCount(t, env.db, &model.User{}, ""); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}
