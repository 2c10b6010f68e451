package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

// BlockRegistry implementa o conjunto de bloqueio e a allowlist como
// operações de conjunto idempotentes sob um lock.
//
// A precedência da allowlist é resolvida na leitura: IsBlocked de um ator
// confiável responde false mesmo que exista entrada de bloqueio antiga.
type BlockRegistry struct {
	mu      sync.Mutex
	blocked map[domain.Key]domain.BlockEntry
	allowed map[domain.Key]struct{}
}

func NewBlockRegistry() *BlockRegistry {
	return &BlockRegistry{
		blocked: make(map[domain.Key]domain.BlockEntry),
		allowed: make(map[domain.Key]struct{}),
	}
}

// Block adiciona o ator ao conjunto de bloqueio. Retorna false (no-op) se o
// ator já está bloqueado ou está na allowlist.
func (r *BlockRegistry) Block(actor domain.Key, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.allowed[actor]; ok {
		return false
	}
	if _, ok := r.blocked[actor]; ok {
		return false
	}
	r.blocked[actor] = domain.BlockEntry{
		Actor:     actor,
		Reason:    reason,
		BlockedAt: time.Now(),
	}
	return true
}

func (r *BlockRegistry) Unblock(actor domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blocked[actor]; !ok {
		return false
	}
	delete(r.blocked, actor)
	return true
}

func (r *BlockRegistry) IsBlocked(actor domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.allowed[actor]; ok {
		return false
	}
	_, ok := r.blocked[actor]
	return ok
}

func (r *BlockRegistry) AllowlistAdd(actor domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.allowed[actor]; ok {
		return false
	}
	r.allowed[actor] = struct{}{}
	return true
}

func (r *BlockRegistry) AllowlistRemove(actor domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.allowed[actor]; !ok {
		return false
	}
	delete(r.allowed, actor)
	return true
}

func (r *BlockRegistry) IsAllowlisted(actor domain.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.allowed[actor]
	return ok
}

func (r *BlockRegistry) Blocked() []domain.BlockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.BlockEntry, 0, len(r.blocked))
	for _, ent := range r.blocked {
		out = append(out, ent)
	}
	return out
}

func (r *BlockRegistry) Allowlisted() []domain.Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Key, 0, len(r.allowed))
	for actor := range r.allowed {
		out = append(out, actor)
	}
	return out
}
