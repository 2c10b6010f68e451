package domain

import "time"

// ViolationRecord acumula negações do limiter por (ator, ação).
//
// O contador é cumulativo durante a vida do registro: nunca zera por virada
// de janela do rate limit. É esse número que sustenta decisões de escalada
// (ex: exigir CAPTCHA na terceira violação do mesmo tipo).
type ViolationRecord struct {
	Actor     Key
	Action    ActionType
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// ViolationTracker registra e expõe violações por ator.
type ViolationTracker interface {
	Record(actor Key, action ActionType)
	Count(actor Key, action ActionType) int
	All() []ViolationRecord
	// Prune remove registros cuja última ocorrência é mais antiga que o corte.
	Prune(olderThan time.Duration) int
}

// ViolationHistory é a visão mínima que o detector precisa do tracker.
type ViolationHistory interface {
	ByActor(actor Key) []ViolationRecord
}
