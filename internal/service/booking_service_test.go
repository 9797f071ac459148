package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

type bookingFixture struct {
	env    *testEnv
	master *model.Master
	client *model.User
	now    time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	env := newTestEnv(t, nil)
	masterRoleID := seedRole(t, env.db, model.RoleMaster)
	clientRoleID := seedRole(t, env.db, model.RoleClient)

	masterUser := seedUser(t, env.db, 100, "master", masterRoleID)
	return &bookingFixture{
		env:    env,
		master: seedMaster(t, env.db, masterUser),
		client: seedUser(t, env.db, 200, "client", clientRoleID),
		// Рабочий день 2027-03-02, "сейчас" — утро накануне открытия.
		now: time.Date(2027, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func (f *bookingFixture) slot(h, m int) time.Time {
	return time.Date(2027, 3, 2, h, m, 0, 0, time.UTC)
}

func TestBookingCreate_Success(t *testing.T) {
	f := newBookingFixture(t)

	res, err := f.env.bookings.Create(testCtx, f.master.ID, f.client.ID, model.ServiceCodeHaircut, f.slot(10, 0), f.now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got reason=%q", res.Reason)
	}

	b := res.Booking
	if b.Status != model.BookingStatusActive {
		t.Fatalf("status = %q", b.Status)
	}
	if !b.SlotEnd.Equal(f.slot(10, 30)) {
		t.Fatalf("slot end = %s, want 10:30", b.SlotEnd)
	}
	// Снимки контактов взяты в момент создания.
	if b.ClientUsernameSnapshot != "client" || b.ClientPhoneSnapshot != "79990001122" {
		t.Fatalf("snapshots = %q / %q", b.ClientUsernameSnapshot, b.ClientPhoneSnapshot)
	}

	// Напоминание запланировано: до слота больше двух часов.
	rem, err := repository.NewGormReminderRepository(f.env.db).GetByBookingID(testCtx, b.ID)
	if err != nil {
		t.Fatalf("reminder: %v", err)
	}
	if rem.Status != model.ReminderStatusPending {
		t.Fatalf("reminder status = %q", rem.Status)
	}
	if !rem.DueAt.Equal(f.slot(8, 0)) {
		t.Fatalf("reminder due = %s, want 08:00", rem.DueAt)
	}
}

func TestBookingCreate_SecondFutureBookingRejected(t *testing.T) {
	f := newBookingFixture(t)

	if res, _ := f.env.bookings.Create(testCtx, f.master.ID, f.client.ID, model.ServiceCodeHaircut, f.slot(10, 0), f.now); !res.OK {
		t.Fatalf("first create failed: %q", res.Reason)
	}

	res, err := f.env.bookings.Create(testCtx, f.master.ID, f.client.ID, model.ServiceCodeHaircut, f.slot(16, 0), f.now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.OK || res.Reason != ReasonFutureBookingExists {
		t.Fatalf("got OK=%v reason=%q, want future_booking_exists", res.OK, res.Reason)
	}
	if n := mustCount(t, f.env.db, &model.Booking{}, ""); n != 1 {
		t.Fatalf("bookings in table = %d, want 1", n)
	}
}

func TestBookingCreate_Conflicts(t *testing.T) {
	f := newBookingFixture(t)
	other := seedUser(t, f.env.db, 300, "other", f.client.RoleID)

	seedBooking(t, f.env.db, f.master.ID, other.ID, f.slot(11, 0), f.slot(12, 0), model.BookingStatusActive)
	seedBlock(t, f.env.db, f.master.ID, model.BlockTypeManualBlock, f.slot(15, 0), f.slot(16, 0))

	cases := []struct {
		name   string
		code   string
		start  time.Time
		reason Reason
	}{
		{"unknown service", "massage", f.slot(10, 0), ReasonInvalidServiceType},
		{"overlaps booking", model.ServiceCodeHaircut, f.slot(11, 30), ReasonSlotNotAvailable},
		{"overlaps block", model.ServiceCodeHaircut, f.slot(15, 30), ReasonSlotNotAvailable},
		{"inside lunch", model.ServiceCodeHaircut, f.slot(13, 0), ReasonSlotNotAvailable},
		{"before work window", model.ServiceCodeHaircut, f.slot(9, 0), ReasonSlotNotAvailable},
		{"ends past work window", model.ServiceCodeHaircutBeard, f.slot(20, 30), ReasonSlotNotAvailable},
		{"already passed", model.ServiceCodeHaircut, f.slot(7, 0), ReasonSlotAlreadyPassed},
	}
	for _, tc := range cases {
		res, err := f.env.bookings.Create(testCtx, f.master.ID, f.client.ID, tc.code, tc.start, f.now)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if res.OK || res.Reason != tc.reason {
			t.Fatalf("%s: OK=%v reason=%q, want %q", tc.name, res.OK, res.Reason, tc.reason)
		}
	}

	// Тот же мастер, тот же слот: второй создатель получает конфликт.
	if res, _ := f.env.bookings.Create(testCtx, f.master.ID, f.client.ID, model.ServiceCodeHaircut, f.slot(11, 0), f.now); res.OK {
		t.Fatalf("duplicate slot accepted")
	}
	if n := mustCount(t, f.env.db, &model.Booking{}, "status = ?", model.BookingStatusActive); n != 1 {
		t.Fatalf("active rows = %d, want 1", n)
	}
}

// Проверки в транзакции не видят запись, закоммиченную конкурентом между
// чтением и вставкой. Нулевой интервал проскакивает мимо запроса пересечений,
// и единственной преградой остаётся частичный уникальный индекс.
func TestBookingCreate_RacedInsertLosesToUniqueIndex(t *testing.T) {
	f := newBookingFixture(t)
	rival := seedUser(t, f.env.db, 300, "rival", f.client.RoleID)
	seedBooking(t, f.env.db, f.master.ID, rival.ID, f.slot(10, 0), f.slot(10, 0), model.BookingStatusActive)

	res, err := f.env.bookings.Create(testCtx, f.master.ID, f.client.ID, model.ServiceCodeHaircut, f.slot(10, 0), f.now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.OK || res.Reason != ReasonSlotNotAvailable {
		t.Fatalf("OK=%v reason=%q, want slot_not_available", res.OK, res.Reason)
	}
	if n := mustCount(t, f.env.db, &model.Booking{}, "master_id = ? AND slot_start = ? AND status = ?",
		f.master.ID, f.slot(10, 0), model.BookingStatusActive); n != 1 {
		t.Fatalf("active bookings at slot = %d, want 1", n)
	}
}

func TestBookingCreate_UnknownMaster(t *testing.T) {
	f := newBookingFixture(t)

	res, err := f.env.bookings.Create(testCtx, uuid.New(), f.client.ID, model.ServiceCodeHaircut, f.slot(10, 0), f.now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.OK || res.Reason != ReasonNotAllowed {
		t.Fatalf("OK=%v reason=%q, want not_allowed", res.OK, res.Reason)
	}
}

func TestCancelByClient(t *testing.T) {
	f := newBookingFixture(t)
	booking := seedBooking(t, f.env.db, f.master.ID, f.client.ID, f.slot(16, 0), f.slot(16, 30), model.BookingStatusActive)

	// Чужая запись отклоняется без деталей.
	res, err := f.env.bookings.CancelByClient(testCtx, booking.ID, uuid.New(), f.now)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.OK || res.Reason != ReasonNotAllowed {
		t.Fatalf("foreign booking: OK=%v reason=%q", res.OK, res.Reason)
	}

	res, err = f.env.bookings.CancelByClient(testCtx, booking.ID, f.client.ID, f.now)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got %q", res.Reason)
	}
	if res.Booking.Status != model.BookingStatusCancelledByClient {
		t.Fatalf("status = %q", res.Booking.Status)
	}

	// Терминальный статус: повторная отмена невозможна.
	res, _ = f.env.bookings.CancelByClient(testCtx, booking.ID, f.client.ID, f.now)
	if res.OK || res.Reason != ReasonNotAllowed {
		t.Fatalf("second cancel: OK=%v reason=%q", res.OK, res.Reason)
	}
}

func TestCancelByClient_PastSlot(t *testing.T) {
	f := newBookingFixture(t)
	booking := seedBooking(t, f.env.db, f.master.ID, f.client.ID, f.slot(7, 0), f.slot(7, 30), model.BookingStatusActive)

	res, err := f.env.bookings.CancelByClient(testCtx, booking.ID, f.client.ID, f.now)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.OK || res.Reason != ReasonSlotAlreadyPassed {
		t.Fatalf("OK=%v reason=%q, want slot_already_passed", res.OK, res.Reason)
	}
}

func TestCancelByMaster_ReasonRequired(t *testing.T) {
	f := newBookingFixture(t)
	booking := seedBooking(t, f.env.db, f.master.ID, f.client.ID, f.slot(16, 0), f.slot(16, 30), model.BookingStatusActive)
	mctx := repository.MasterContext{MasterID: f.master.ID, MasterUserID: f.master.UserID}

	for _, reason := range []string{"", "   ", "\t\n"} {
		res, err := f.env.bookings.CancelByMaster(testCtx, booking.ID, mctx, reason, f.now)
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if res.OK || res.Reason != ReasonCancellationReasonRequired {
			t.Fatalf("reason %q: OK=%v reason=%q", reason, res.OK, res.Reason)
		}
	}

	var fresh model.Booking
	if err := f.env.db.First(&fresh, "id = ?", booking.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Status != model.BookingStatusActive {
		t.Fatalf("status changed to %q", fresh.Status)
	}
}

func TestCancelByMaster_Success(t *testing.T) {
	f := newBookingFixture(t)
	booking := seedBooking(t, f.env.db, f.master.ID, f.client.ID, f.slot(16, 0), f.slot(16, 30), model.BookingStatusActive)
	mctx := repository.MasterContext{MasterID: f.master.ID, MasterUserID: f.master.UserID}

	res, err := f.env.bookings.CancelByMaster(testCtx, booking.ID, mctx, "  болею  ", f.now)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got %q", res.Reason)
	}
	if res.Booking.Status != model.BookingStatusCancelledByMaster {
		t.Fatalf("status = %q", res.Booking.Status)
	}
	if res.Booking.CancellationReason != "болею" {
		t.Fatalf("reason = %q, want trimmed", res.Booking.CancellationReason)
	}
	if !res.Booking.SlotStart.Equal(f.slot(16, 0)) {
		t.Fatalf("result lost slot time")
	}

	// Чужой мастер отменить не может.
	other := repository.MasterContext{MasterID: uuid.New(), MasterUserID: uuid.New()}
	booking2 := seedBooking(t, f.env.db, f.master.ID, f.client.ID, f.slot(18, 0), f.slot(18, 30), model.BookingStatusActive)
	res, _ = f.env.bookings.CancelByMaster(testCtx, booking2.ID, other, "причина", f.now)
	if res.OK || res.Reason != ReasonNotAllowed {
		t.Fatalf("foreign master: OK=%v reason=%q", res.OK, res.Reason)
	}
}
