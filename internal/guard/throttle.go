package guard

import (
	"sync"
	"time"
)

// ThrottleDecision — результат проверки частоты.
type ThrottleDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Throttle — скользящее окно меток времени на пользователя.
// Локален для процесса, между инстансами не координируется.
type Throttle struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	events map[int64][]time.Time

	now func() time.Time
}

func NewThrottle(limit int, window time.Duration) *Throttle {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Throttle{
		limit:  limit,
		window: window,
		events: make(map[int64][]time.Time),
		now:    time.Now,
	}
}

// Check допускает запрос и записывает его метку, либо отклоняет
// с задержкой до истечения самой старой метки в окне.
func (t *Throttle) Check(actorID int64) ThrottleDecision {
	now := t.now()
	windowStart := now.Add(-t.window)

	t.mu.Lock()
	defer t.mu.Unlock()

	events := t.events[actorID]
	kept := events[:0]
	for _, at := range events {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= t.limit {
		retryAfter := kept[0].Add(t.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		t.events[actorID] = kept
		return ThrottleDecision{Allowed: false, RetryAfter: retryAfter}
	}

	t.events[actorID] = append(kept, now)
	return ThrottleDecision{Allowed: true}
}
