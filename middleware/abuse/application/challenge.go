package application

import (
	"context"
	"time"
)

// Verifier é o colaborador externo de verificação humana (CAPTCHA ou
// similar). Fora da responsabilidade deste núcleo: aqui ele é só um
// pass/fail com timeout próprio.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// UnconfiguredPolicy torna explícito o comportamento quando NENHUM verifier
// foi configurado. O padrão histórico é "sempre passa" — um default relevante
// para segurança, então ele é configuração visível, não implícito.
type UnconfiguredPolicy int

const (
	UnconfiguredAllow UnconfiguredPolicy = iota
	UnconfiguredDeny
)

// ChallengeService embrulha o verifier com timeout e política de ausência.
type ChallengeService struct {
	Verifier     Verifier
	Timeout      time.Duration
	Unconfigured UnconfiguredPolicy
}

// Verify executa a verificação humana.
//   - Sem verifier configurado: responde conforme a política.
//   - Erro do verifier: falha fechado (false) — o desafio pode ser repetido,
//     então o conservador aqui não vira negação de serviço.
func (s ChallengeService) Verify(ctx context.Context, token string) bool {
	if s.Verifier == nil {
		return s.Unconfigured == UnconfiguredAllow
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	ok, err := s.Verifier.Verify(ctx, token)
	if err != nil {
		return false
	}
	return ok
}
