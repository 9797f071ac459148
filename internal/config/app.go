package config

// AppConfig — параметры движка записи. Все значения читаются из
// окружения с разумными дефолтами.
type AppConfig struct {
	BusinessTimezone string

	SlotStepMinutes      int
	MinLeadMinutes       int
	ReminderLeadHours    int
	LunchDurationMinutes int

	ThrottleLimit        int
	ThrottleWindowSec    int
	IdempotencyWindowSec int

	DispatchIntervalSec int
	DispatchBatchSize   int
	SendTimeoutSec      int

	// Telegram ID мастера-основателя: защищён от снятия.
	BootstrapMasterTelegramID int64
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "Europe/Moscow"),

		SlotStepMinutes:      getEnvInt("SLOT_STEP_MINUTES", 30),
		MinLeadMinutes:       getEnvInt("MIN_LEAD_MINUTES", 30),
		ReminderLeadHours:    getEnvInt("REMINDER_LEAD_HOURS", 2),
		LunchDurationMinutes: getEnvInt("LUNCH_DURATION_MINUTES", 60),

		ThrottleLimit:        getEnvInt("THROTTLE_LIMIT", 20),
		ThrottleWindowSec:    getEnvInt("THROTTLE_WINDOW_SEC", 60),
		IdempotencyWindowSec: getEnvInt("IDEMPOTENCY_WINDOW_SEC", 120),

		DispatchIntervalSec: getEnvInt("REMINDER_DISPATCH_INTERVAL_SEC", 60),
		DispatchBatchSize:   getEnvInt("REMINDER_DISPATCH_BATCH", 50),
		SendTimeoutSec:      getEnvInt("SEND_TIMEOUT_SEC", 5),

		BootstrapMasterTelegramID: getEnvInt64("BOOTSTRAP_MASTER_TELEGRAM_ID", 0),
	}
}
