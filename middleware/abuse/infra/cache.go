package infra

import (
	"strings"
	"sync"
	"time"
)

// Cache é um store genérico chave→valor com TTL e limpeza periódica.
//
// A expiração é preguiçosa: um Get sobre entrada vencida apaga a entrada e
// conta como miss. O janitor existe só para recuperar memória, não para
// correção. Um miss é resultado válido e esperado, não erro.
type Cache[T any] struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry[T]
	hits       int64
	misses     int64
	sweepEvery time.Duration
}

type cacheEntry[T any] struct {
	data      T
	expiresAt time.Time
	createdAt time.Time
	hitCount  int64
}

type CacheStats struct {
	Hits       int64
	Misses     int64
	HitRate    float64
	ApproxSize int
}

type CacheOption[T any] func(*Cache[T])

func WithSweepEvery[T any](d time.Duration) CacheOption[T] {
	return func(c *Cache[T]) { c.sweepEvery = d }
}

func NewCache[T any](opts ...CacheOption[T]) *Cache[T] {
	c := &Cache[T]{
		entries:    make(map[string]*cacheEntry[T]),
		sweepEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if !now.Before(ent.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return zero, false
	}

	ent.hitCount++
	c.hits++
	return ent.data, true
}

func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry[T]{
		data:      value,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
}

func (c *Cache[T]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// InvalidatePattern remove toda chave que casa com o padrão, onde `*` casa
// qualquer substring. Usado para invalidar um namespace inteiro (ex: todos os
// contadores de um ator). O(n) sobre as chaves armazenadas — aceitável porque
// o tamanho do cache é limitado pelos atores ativos, não pelo volume de
// requests.
func (c *Cache[T]) InvalidatePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if matchGlob(pattern, k) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry[T])
}

func (c *Cache[T]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CacheStats{
		Hits:       c.hits,
		Misses:     c.misses,
		ApproxSize: len(c.entries),
	}
	if total := c.hits + c.misses; total > 0 {
		st.HitRate = float64(c.hits) / float64(total)
	}
	return st
}

// Sweep remove entradas vencidas. Retorna quantas saíram.
func (c *Cache[T]) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, ent := range c.entries {
		if !now.Before(ent.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que varre entradas vencidas
// periodicamente. Pare cancelando o contexto.
func (c *Cache[T]) StartJanitor(ctx DoneContext) {
	if c.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(c.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Sweep()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar
// context aqui. (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}

// matchGlob casa `*` com qualquer substring, sem regex: os trechos literais
// entre asteriscos precisam aparecer na ordem.
func matchGlob(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if parts[0] != "" {
		if !strings.HasPrefix(s, parts[0]) {
			return false
		}
		s = s[len(parts[0]):]
	}

	last := len(parts) - 1
	for _, part := range parts[1:last] {
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}

	return strings.HasSuffix(s, parts[last])
}
