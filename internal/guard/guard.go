package guard

import "time"

// Outcome — как именно был обработан запрос.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeReplayed  Outcome = "replayed"
	OutcomeThrottled Outcome = "throttled"
)

// Result — итог прохода через предохранители.
type Result struct {
	Outcome    Outcome
	Response   CachedResponse
	RetryAfter time.Duration
}

// Guard связывает троттлинг и идемпотентность перед мутирующей
// операцией: сначала частота, затем повтор по ключу, затем вызов.
type Guard struct {
	idempotency *IdempotencyStore
	throttle    *Throttle
}

func New(idempotency *IdempotencyStore, throttle *Throttle) *Guard {
	return &Guard{idempotency: idempotency, throttle: throttle}
}

// Do выполняет fn под обоими предохранителями. fn возвращает ответ и
// признак "операция применилась": только такие ответы кэшируются,
// неуспех клиент вправе повторить сразу после исправления входа.
func (g *Guard) Do(route string, actorID int64, payload map[string]any, fn func() (CachedResponse, bool, error)) (Result, error) {
	if decision := g.throttle.Check(actorID); !decision.Allowed {
		return Result{Outcome: OutcomeThrottled, RetryAfter: decision.RetryAfter}, nil
	}

	key, err := MakeKey(route, actorID, payload)
	if err != nil {
		return Result{}, err
	}

	if cached, ok := g.idempotency.Get(key); ok {
		// Повтор: движок не вызываем, отдаём сохранённый ответ как есть.
		return Result{Outcome: OutcomeReplayed, Response: cached}, nil
	}

	response, applied, err := fn()
	if err != nil {
		return Result{}, err
	}
	if applied {
		g.idempotency.Put(key, response)
	}
	return Result{Outcome: OutcomeProcessed, Response: response}, nil
}
