package application

import (
	"sentinela-gateway/middleware/abuse/domain"
)

// ViolationCounter é o que o Engine precisa do tracker para decidir escalada.
type ViolationCounter interface {
	Count(actor domain.Key, action domain.ActionType) int
}

// PatternAnalyzer é o que o Engine precisa do detector.
type PatternAnalyzer interface {
	Analyze(actor domain.Key) []domain.AbusePattern
}

// ActorGate é a visão do registro de bloqueio usada no caminho de request.
type ActorGate interface {
	IsBlocked(actor domain.Key) bool
	IsAllowlisted(actor domain.Key) bool
}

// Engine concentra a regra de aplicação do hook por request.
//
// Ordem de avaliação:
//  1. allowlist: ator confiável passa por fora de tudo;
//  2. bloqueio: ator bloqueado é negado sem tocar no limiter;
//  3. rate limit: janela fixa por (ator, ação); o limiter registra a
//     violação em toda negação;
//  4. após negar por rate, o detector reanalisa o ator (padrões critical
//     bloqueiam automaticamente) e a contagem cumulativa decide se a
//     próxima tentativa exige verificação humana.
//
// Campos nil degradam para permitir (mesma semântica do store ausente):
// negar tudo por falta de fiação seria um vetor de negação de serviço.
type Engine struct {
	Limiter    domain.RateLimiter
	Violations ViolationCounter
	Detector   PatternAnalyzer
	Gate       ActorGate
	// ChallengeAfter é a violação cumulativa do mesmo (ator, ação) a partir
	// da qual a decisão carrega RequiresChallenge. <= 0 usa 3.
	ChallengeAfter int
}

func (e Engine) Evaluate(actor domain.Key, action domain.ActionType, tier domain.TierConfig) domain.Decision {
	challengeAfter := e.ChallengeAfter
	if challengeAfter <= 0 {
		challengeAfter = 3
	}

	if e.Gate != nil {
		if e.Gate.IsAllowlisted(actor) {
			return domain.Decision{Allowed: true}
		}
		if e.Gate.IsBlocked(actor) {
			return domain.Decision{Allowed: false, Reason: domain.ReasonBlocked}
		}
	}

	if e.Limiter == nil {
		return domain.Decision{Allowed: true}
	}

	res := e.Limiter.Check(actor, action, tier)
	if res.Allowed {
		return domain.Decision{Allowed: true}
	}

	// o limiter já registrou a violação; aqui só reagimos a ela.
	if e.Detector != nil {
		e.Detector.Analyze(actor)
	}

	dec := domain.Decision{
		Allowed:    false,
		RetryAfter: res.RetryAfter,
		Reason:     domain.ReasonRateLimit,
	}
	if e.Violations != nil && e.Violations.Count(actor, action) >= challengeAfter {
		dec.RequiresChallenge = true
	}
	return dec
}
