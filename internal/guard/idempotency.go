// Package guard содержит процессные предохранители перед мутирующими
// операциями движка: at-most-once повтор ответа по идемпотентному
// ключу и ограничение частоты запросов на пользователя.
package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CachedResponse — сохранённый результат успешно применённой операции.
type CachedResponse struct {
	Status int
	Body   []byte
}

type idempotencyEntry struct {
	createdAt time.Time
	response  CachedResponse
}

// IdempotencyStore — процессный кэш ответов по ключу запроса.
// Кэшируются только успешные терминальные исходы; отказ кэшировать
// неуспех позволяет клиенту безопасно повторить после исправления.
type IdempotencyStore struct {
	window time.Duration

	mu    sync.Mutex
	items map[string]idempotencyEntry

	now func() time.Time
}

func NewIdempotencyStore(window time.Duration) *IdempotencyStore {
	if window <= 0 {
		window = time.Second
	}
	return &IdempotencyStore{
		window: window,
		items:  make(map[string]idempotencyEntry),
		now:    time.Now,
	}
}

// MakeKey строит ключ из (маршрут, пользователь, канонизированный
// payload). encoding/json сортирует ключи карт, поэтому сериализация
// детерминирована.
func MakeKey(route string, actorID int64, payload map[string]any) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|", route, actorID)
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get возвращает закэшированный ответ, если ключ ещё в окне.
func (s *IdempotencyStore) Get(key string) (CachedResponse, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(now)
	entry, ok := s.items[key]
	if !ok {
		return CachedResponse{}, false
	}
	return entry.response, true
}

// Put сохраняет ответ под ключом.
func (s *IdempotencyStore) Put(key string, response CachedResponse) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(now)
	s.items[key] = idempotencyEntry{createdAt: now, response: response}
}

// evictLocked выбрасывает записи старше окна. Вызывается под мьютексом.
func (s *IdempotencyStore) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	for key, entry := range s.items {
		if !entry.createdAt.After(cutoff) {
			delete(s.items, key)
		}
	}
}
