package domain

import (
	"context"
	"time"
)

// DecisionEvent representa uma decisão do motor para fins de estatística.
//
// Ele é propositalmente "agnóstico de HTTP": Action é uma string genérica e
// pode vir de web, gRPC, etc.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type DecisionEvent struct {
	Key     Key
	Action  ActionType
	Allowed bool
	Reason  DenyReason

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de decisão.
//
// Implementações podem armazenar em Redis, memória, etc.
// O middleware deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev DecisionEvent) error
}
