package guard

import (
	"bytes"
	"testing"
	"time"
)

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time { return c.at }

func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{at: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
}

func TestMakeKey_Deterministic(t *testing.T) {
	payload := map[string]any{"master_id": "m1", "slot_start": "2026-03-02T10:00:00Z"}

	k1, err := MakeKey("booking:create", 42, payload)
	if err != nil {
		t.Fatalf("make key: %v", err)
	}
	k2, err := MakeKey("booking:create", 42, map[string]any{
		"slot_start": "2026-03-02T10:00:00Z",
		"master_id":  "m1",
	})
	if err != nil {
		t.Fatalf("make key: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("key depends on map ordering: %s != %s", k1, k2)
	}

	k3, _ := MakeKey("booking:create", 43, payload)
	if k1 == k3 {
		t.Fatalf("key ignores actor")
	}
	k4, _ := MakeKey("booking:cancel", 42, payload)
	if k1 == k4 {
		t.Fatalf("key ignores route")
	}
}

func TestIdempotencyStore_ReplayWithinWindow(t *testing.T) {
	clock := newFakeClock()
	store := NewIdempotencyStore(2 * time.Minute)
	store.now = clock.now

	resp := CachedResponse{Status: 200, Body: []byte(`{"created":true}`)}
	store.Put("k", resp)

	got, ok := store.Get("k")
	if !ok {
		t.Fatalf("expected cached response")
	}
	if got.Status != resp.Status || !bytes.Equal(got.Body, resp.Body) {
		t.Fatalf("cached response mutated: %+v", got)
	}

	if _, ok := store.Get("other"); ok {
		t.Fatalf("unknown key replayed")
	}
}

func TestIdempotencyStore_EvictsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	store := NewIdempotencyStore(2 * time.Minute)
	store.now = clock.now

	store.Put("k", CachedResponse{Status: 200})

	clock.advance(time.Minute)
	if _, ok := store.Get("k"); !ok {
		t.Fatalf("entry evicted too early")
	}

	clock.advance(2 * time.Minute)
	if _, ok := store.Get("k"); ok {
		t.Fatalf("entry survived past the window")
	}
}

func TestGuard_Flow(t *testing.T) {
	clock := newFakeClock()
	store := NewIdempotencyStore(2 * time.Minute)
	store.now = clock.now
	throttle := NewThrottle(10, time.Minute)
	throttle.now = clock.now
	g := New(store, throttle)

	payload := map[string]any{"booking_id": "b1"}
	calls := 0
	fn := func() (CachedResponse, bool, error) {
		calls++
		return CachedResponse{Status: 200, Body: []byte("ok")}, true, nil
	}

	res, err := g.Do("booking:cancel", 7, payload, fn)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if res.Outcome != OutcomeProcessed || calls != 1 {
		t.Fatalf("first call outcome = %s, calls = %d", res.Outcome, calls)
	}

	res, err = g.Do("booking:cancel", 7, payload, fn)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if res.Outcome != OutcomeReplayed {
		t.Fatalf("second call outcome = %s, want replayed", res.Outcome)
	}
	if calls != 1 {
		t.Fatalf("replay invoked the engine: calls = %d", calls)
	}
	if string(res.Response.Body) != "ok" {
		t.Fatalf("replayed body = %q", res.Response.Body)
	}
}

func TestGuard_DoesNotCacheRejections(t *testing.T) {
	clock := newFakeClock()
	store := NewIdempotencyStore(2 * time.Minute)
	store.now = clock.now
	throttle := NewThrottle(10, time.Minute)
	throttle.now = clock.now
	g := New(store, throttle)

	payload := map[string]any{"booking_id": "b1"}
	calls := 0
	fn := func() (CachedResponse, bool, error) {
		calls++
		// Отказ доменного уровня: не кэшируется.
		return CachedResponse{Status: 409, Body: []byte("conflict")}, false, nil
	}

	for i := 0; i < 2; i++ {
		res, err := g.Do("booking:create", 7, payload, fn)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if res.Outcome != OutcomeProcessed {
			t.Fatalf("call %d outcome = %s, want processed", i, res.Outcome)
		}
	}
	if calls != 2 {
		t.Fatalf("rejected outcome was cached: calls = %d", calls)
	}
}
