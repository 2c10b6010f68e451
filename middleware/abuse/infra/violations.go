package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

// ViolationTracker acumula negações do limiter por (ator, ação).
//
// Distinto do contador de rate limit: este nunca zera por virada de janela.
// O lock único sobre o mapa garante que as gravações do stream de um ator
// são aplicadas em ordem de chegada por chave (Count/LastSeen monotônicos).
type ViolationTracker struct {
	mu         sync.Mutex
	records    map[string]*domain.ViolationRecord
	maxAge     time.Duration
	pruneEvery time.Duration
}

type TrackerOption func(*ViolationTracker)

// WithMaxAge define o corte padrão do janitor (padrão 24h).
func WithMaxAge(d time.Duration) TrackerOption {
	return func(t *ViolationTracker) { t.maxAge = d }
}

func WithPruneEvery(d time.Duration) TrackerOption {
	return func(t *ViolationTracker) { t.pruneEvery = d }
}

func NewViolationTracker(opts ...TrackerOption) *ViolationTracker {
	t := &ViolationTracker{
		records:    make(map[string]*domain.ViolationRecord),
		maxAge:     24 * time.Hour,
		pruneEvery: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func violationKey(actor domain.Key, action domain.ActionType) string {
	return string(actor) + "|" + string(action)
}

func (t *ViolationTracker) Record(actor domain.Key, action domain.ActionType) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	key := violationKey(actor, action)
	if rec, ok := t.records[key]; ok {
		rec.Count++
		rec.LastSeen = now
		return
	}
	t.records[key] = &domain.ViolationRecord{
		Actor:     actor,
		Action:    action,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
}

func (t *ViolationTracker) Count(actor domain.Key, action domain.ActionType) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec, ok := t.records[violationKey(actor, action)]; ok {
		return rec.Count
	}
	return 0
}

func (t *ViolationTracker) All() []domain.ViolationRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.ViolationRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	return out
}

// ByActor implementa domain.ViolationHistory para o detector.
func (t *ViolationTracker) ByActor(actor domain.Key) []domain.ViolationRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []domain.ViolationRecord
	for _, rec := range t.records {
		if rec.Actor == actor {
			out = append(out, *rec)
		}
	}
	return out
}

// Prune remove registros cuja última ocorrência é mais antiga que o corte.
func (t *ViolationTracker) Prune(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, rec := range t.records {
		if rec.LastSeen.Before(cutoff) {
			delete(t.records, k)
			removed++
		}
	}
	return removed
}

// StartJanitor remove registros velhos periodicamente.
// Pare cancelando o contexto.
func (t *ViolationTracker) StartJanitor(ctx DoneContext) {
	if t.pruneEvery <= 0 {
		return
	}

	tick := time.NewTicker(t.pruneEvery)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				t.Prune(t.maxAge)
			}
		}
	}()
}
