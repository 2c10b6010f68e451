package domain

// Tipos centrais do motor de abuso.
//
// A "Key" identifica o ator particionado (IP ou identidade autenticada) e é
// usada de forma uniforme por todos os subcomponentes: contadores, violações,
// padrões, bloqueio.

import "time"

type Key string

// ActionType classifica a ação do request (ex: "login", "signup", "search").
// Para o motor é uma string opaca; as regras de detecção é que dão significado.
type ActionType string

const (
	ActionLogin  ActionType = "login"
	ActionSignup ActionType = "signup"
)

// TierConfig é o par (janela, limite) já resolvido pelo chamador conforme o
// nível de privilégio do ator. O limiter em si não conhece privilégio.
type TierConfig struct {
	Window time.Duration
	Limit  int
}

// DenyReason explica por que uma decisão negou o request.
type DenyReason string

const (
	ReasonBlocked   DenyReason = "blocked"
	ReasonRateLimit DenyReason = "rate_limit"
)

// Decision é o resultado de Evaluate para um request.
//
// Negações de política são decisões estruturadas, nunca erros: rate limit
// excedido e ator bloqueado são resultados esperados do caminho de decisão.
type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando negar por
	// rate limit. Se 0, não há recomendação.
	RetryAfter time.Duration
	// RequiresChallenge indica que o chamador deve exigir verificação humana
	// antes de aceitar novas tentativas deste ator.
	RequiresChallenge bool
	Reason            DenyReason
}

// RateResult é a saída do limiter: permitido agora, ou negado com sugestão
// de espera até o fim da janela corrente.
type RateResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateLimiter decide se uma ação do ator é permitida agora.
//
// Contrato: toda negação DEVE notificar o rastreador de violações antes de
// retornar; é esse sinal que alimenta a detecção de padrões.
type RateLimiter interface {
	Check(actor Key, action ActionType, cfg TierConfig) RateResult
}
