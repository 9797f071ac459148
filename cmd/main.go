package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Leganyst/booking-core/internal/audit"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/config"
	"github.com/Leganyst/booking-core/internal/db"
	"github.com/Leganyst/booking-core/internal/guard"
	"github.com/Leganyst/booking-core/internal/logger"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/service"
)

func main() {
	// 1. .env, если есть; в контейнере переменные приходят из окружения.
	_ = godotenv.Load()

	appCfg := config.LoadAppConfig()

	zlog, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	loc, err := calendar.ResolveBusinessTimezone(appCfg.BusinessTimezone)
	if err != nil {
		zlog.Fatal("resolve business timezone", zap.Error(err))
	}

	// 2. Подключаемся к БД через GORM.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		zlog.Fatal("load db config", zap.Error(err))
	}
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		zlog.Fatal("init db", zap.Error(err))
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		zlog.Fatal("auto migrate", zap.Error(err))
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		zlog.Fatal("sql DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	blockRepo := repository.NewGormBlockRepository(gormDB)
	masterRepo := repository.NewGormMasterRepository(gormDB)
	serviceRepo := repository.NewGormServiceRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	reminderRepo := repository.NewGormReminderRepository(gormDB)

	// 5. Сервисы движка. Отправитель сообщений внедряется транспортным
	// слоем; без него уведомления просто не уходят.
	var sender service.Sender

	auditor := audit.NewRecorder(gormDB, zlog)
	catalogSvc := service.NewCatalogService(serviceRepo)
	notifySvc := service.NewNotificationService(bookingRepo, catalogSvc, sender, zlog, loc)
	reminderSvc := service.NewReminderService(
		reminderRepo,
		notifySvc,
		zlog,
		time.Duration(appCfg.ReminderLeadHours)*time.Hour,
		time.Duration(appCfg.SendTimeoutSec)*time.Second,
	)
	bookingSvc := service.NewBookingService(
		gormDB, catalogSvc, reminderSvc, notifySvc, auditor, zlog,
		loc, appCfg.SlotStepMinutes, appCfg.MinLeadMinutes,
	)
	availabilitySvc := service.NewAvailabilityService(
		masterRepo, bookingRepo, blockRepo, catalogSvc,
		loc, appCfg.SlotStepMinutes, appCfg.MinLeadMinutes,
	)
	scheduleSvc := service.NewScheduleService(
		gormDB, bookingSvc, userRepo, auditor, zlog,
		loc, appCfg.LunchDurationMinutes,
	)
	adminSvc := service.NewMasterAdminService(
		gormDB, userRepo, masterRepo, auditor, zlog,
		appCfg.BootstrapMasterTelegramID,
	)
	identitySvc := service.NewIdentityService(userRepo)

	// Движок целиком: транспортный слой (бот) получает его и вызывает
	// мутирующие операции через Guard.
	engine := &service.Engine{
		Availability: availabilitySvc,
		Bookings:     bookingSvc,
		Schedule:     scheduleSvc,
		Admin:        adminSvc,
		Identity:     identitySvc,
		Reminders:    reminderSvc,
		Catalog:      catalogSvc,
		Guard: guard.New(
			guard.NewIdempotencyStore(time.Duration(appCfg.IdempotencyWindowSec)*time.Second),
			guard.NewThrottle(appCfg.ThrottleLimit, time.Duration(appCfg.ThrottleWindowSec)*time.Second),
		),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Фоновая рассылка напоминаний.
	go runReminderDispatch(ctx, zlog, engine.Reminders, sender, appCfg)

	zlog.Info("booking core started",
		zap.String("business_timezone", loc.String()),
		zap.Int("slot_step_minutes", appCfg.SlotStepMinutes))

	// 7. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zlog.Info("shutting down")
	cancel()
}

// runReminderDispatch периодически прогоняет рассылку наступивших
// напоминаний до отмены контекста.
func runReminderDispatch(ctx context.Context, zlog *zap.Logger, reminders *service.ReminderService, sender service.Sender, cfg *config.AppConfig) {
	if sender == nil {
		zlog.Warn("reminder dispatch disabled: no sender configured")
		return
	}

	ticker := time.NewTicker(time.Duration(cfg.DispatchIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, err := reminders.DispatchDue(ctx, sender, time.Now().UTC(), cfg.DispatchBatchSize)
			if err != nil {
				zlog.Error("reminder dispatch pass", zap.Error(err))
				continue
			}
			if sent > 0 {
				zlog.Info("reminders sent", zap.Int("count", sent))
			}
		}
	}
}
