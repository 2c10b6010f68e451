package domain

import "time"

// BlockEntry registra a presença de um ator no conjunto de bloqueio.
type BlockEntry struct {
	Actor     Key
	Reason    string
	BlockedAt time.Time
}

// BlockRegistry é o conjunto autoritativo de negação/permissão de atores.
//
// Regras:
//   - A allowlist tem precedência: ator confiável nunca está bloqueado e
//     passa por fora do rate limiter, independente do histórico.
//   - Block/Unblock são operações de conjunto idempotentes, não eventos
//     contados. O retorno bool informa se algo mudou (no-op explicado, não
//     erro), para a superfície administrativa reportar.
type BlockRegistry interface {
	Block(actor Key, reason string) bool
	Unblock(actor Key) bool
	IsBlocked(actor Key) bool
	AllowlistAdd(actor Key) bool
	AllowlistRemove(actor Key) bool
	IsAllowlisted(actor Key) bool
	Blocked() []BlockEntry
	Allowlisted() []Key
}
