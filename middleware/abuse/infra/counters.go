package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

// WindowLimiter implementa rate limit de janela fixa por (ator, ação), com os
// contadores guardados no Cache (TTL = duração da janela).
//
// Janela fixa é um reset, não média móvel: rajadas encostadas na borda da
// janela podem somar até 2x o limite nominal. Tradeoff aceito pela
// simplicidade; quem precisar de garantia estrita troca por sliding-window ou
// token-bucket.
type WindowLimiter struct {
	// mu serializa o ler-incrementar-gravar de cada checagem: dois requests
	// simultâneos do mesmo (ator, ação) não podem ambos observar count-1 e
	// ambos passar quando só resta uma vaga.
	mu      sync.Mutex
	cache   *Cache[*WindowCounter]
	tracker domain.ViolationTracker
}

// WindowCounter é o estado de uma janela corrente. Exportado só para o
// parâmetro de tipo do cache; os campos são detalhe do limiter.
type WindowCounter struct {
	windowStart time.Time
	count       int
}

// NewWindowLimiter cria o limiter sobre o cache dado. O tracker recebe uma
// notificação a cada negação, antes do Check retornar; pode ser nil em testes.
func NewWindowLimiter(cache *Cache[*WindowCounter], tracker domain.ViolationTracker) *WindowLimiter {
	return &WindowLimiter{cache: cache, tracker: tracker}
}

func NewCounterCache(opts ...CacheOption[*WindowCounter]) *Cache[*WindowCounter] {
	return NewCache[*WindowCounter](opts...)
}

func counterKey(actor domain.Key, action domain.ActionType) string {
	return "ratelimit:" + string(actor) + ":" + string(action)
}

// Check implementa domain.RateLimiter.
func (l *WindowLimiter) Check(actor domain.Key, action domain.ActionType, cfg domain.TierConfig) domain.RateResult {
	now := time.Now()
	key := counterKey(actor, action)

	l.mu.Lock()
	defer l.mu.Unlock()

	ctr, ok := l.cache.Get(key)
	if !ok || now.Sub(ctr.windowStart) >= cfg.Window {
		// primeira ação do par, ou janela vencida: abre janela nova com
		// count=1 e sempre permite.
		l.cache.Set(key, &WindowCounter{windowStart: now, count: 1}, cfg.Window)
		return domain.RateResult{Allowed: true}
	}

	ctr.count++
	if ctr.count <= cfg.Limit {
		return domain.RateResult{Allowed: true}
	}

	retry := cfg.Window - now.Sub(ctr.windowStart)
	if l.tracker != nil {
		l.tracker.Record(actor, action)
	}
	return domain.RateResult{Allowed: false, RetryAfter: retry}
}

// InvalidateActor derruba todos os contadores de um ator (ex: após unblock
// manual, para zerar as janelas correntes).
func (l *WindowLimiter) InvalidateActor(actor domain.Key) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.cache.InvalidatePattern("ratelimit:" + string(actor) + ":*")
}
