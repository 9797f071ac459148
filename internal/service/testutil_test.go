package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/audit"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Минимальная схема для логики запросов (sqlite-диалект).
	schema := []string{
		`CREATE TABLE roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			telegram_id INTEGER NOT NULL UNIQUE,
			telegram_username TEXT,
			phone_number TEXT,
			role_id INTEGER NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE masters (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			work_start TEXT NOT NULL,
			work_end TEXT NOT NULL,
			lunch_start TEXT NOT NULL,
			lunch_end TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE services (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE bookings (
			id TEXT PRIMARY KEY,
			master_id TEXT NOT NULL,
			client_user_id TEXT NOT NULL,
			service_code TEXT NOT NULL,
			slot_start DATETIME NOT NULL,
			slot_end DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			cancellation_reason TEXT,
			manual_client_name TEXT,
			client_username_snapshot TEXT,
			client_phone_snapshot TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE UNIQUE INDEX uq_bookings_master_active_slot
			ON bookings (master_id, slot_start) WHERE status = 'active';`,
		`CREATE TABLE availability_blocks (
			id TEXT PRIMARY KEY,
			master_id TEXT NOT NULL,
			block_type TEXT NOT NULL,
			start_at DATETIME NOT NULL,
			end_at DATETIME NOT NULL,
			reason TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE booking_reminders (
			id TEXT PRIMARY KEY,
			booking_id TEXT NOT NULL UNIQUE,
			due_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			sent_at DATETIME,
			last_error TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE audit_events (
			id TEXT PRIMARY KEY,
			actor_user_id TEXT,
			event_type TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func seedRole(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	role := model.Role{Name: name}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}
	return role.ID
}

func seedUser(t *testing.T, db *gorm.DB, telegramID int64, username string, roleID int64) *model.User {
	t.Helper()
	u := model.User{
		ID:               uuid.New(),
		TelegramID:       telegramID,
		TelegramUsername: username,
		PhoneNumber:      "79990001122",
		RoleID:           roleID,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}

// seedMaster создаёт мастера с графиком 10:00–21:00 и обедом 13:00–14:00.
func seedMaster(t *testing.T, db *gorm.DB, user *model.User) *model.Master {
	t.Helper()
	m := model.Master{
		ID:          uuid.New(),
		UserID:      user.ID,
		DisplayName: "Мастер",
		WorkStart:   "10:00",
		WorkEnd:     "21:00",
		LunchStart:  "13:00",
		LunchEnd:    "14:00",
		IsActive:    true,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed master: %v", err)
	}
	return &m
}

func seedBooking(t *testing.T, db *gorm.DB, masterID, clientUserID uuid.UUID, start, end time.Time, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := model.Booking{
		ID:           uuid.New(),
		MasterID:     masterID,
		ClientUserID: clientUserID,
		ServiceCode:  model.ServiceCodeHaircut,
		SlotStart:    start,
		SlotEnd:      end,
		Status:       status,
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return &b
}

func seedBlock(t *testing.T, db *gorm.DB, masterID uuid.UUID, blockType model.BlockType, start, end time.Time) *model.AvailabilityBlock {
	t.Helper()
	b := model.AvailabilityBlock{
		ID:        uuid.New(),
		MasterID:  masterID,
		BlockType: blockType,
		StartAt:   start,
		EndAt:     end,
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("seed block: %v", err)
	}
	return &b
}

// testEnv — собранный движок поверх одной sqlite-базы.
type testEnv struct {
	db       *gorm.DB
	catalog  *CatalogService
	bookings *BookingService
	schedule *ScheduleService
	reminder *ReminderService
	notify   *NotificationService
}

const (
	testStepMinutes = 30
	testLeadMinutes = 30
)

func newTestEnv(t *testing.T, sender Sender) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()
	auditor := audit.NewRecorder(db, log)

	bookingRepo := repository.NewGormBookingRepository(db)
	reminderRepo := repository.NewGormReminderRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	catalog := NewCatalogService(serviceRepo)
	notify := NewNotificationService(bookingRepo, catalog, sender, log, time.UTC)
	reminder := NewReminderService(reminderRepo, notify, log, 2*time.Hour, time.Second)
	bookings := NewBookingService(db, catalog, reminder, notify, auditor, log, time.UTC, testStepMinutes, testLeadMinutes)
	schedule := NewScheduleService(db, bookings, userRepo, auditor, log, time.UTC, 60)

	return &testEnv{
		db:       db,
		catalog:  catalog,
		bookings: bookings,
		schedule: schedule,
		reminder: reminder,
		notify:   notify,
	}
}

func mustCount(t *testing.T, db *gorm.DB, entity any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(entity)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

var testCtx = context.Background()
