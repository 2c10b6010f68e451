package infra

import "golang.org/x/time/rate"

// UpstreamShield é um token-bucket global (x/time/rate) aplicado DEPOIS do
// motor por ator: protege o upstream de vazão agregada, sem particionar por
// chave. Complementa a janela fixa por (ator, ação), não a substitui.
type UpstreamShield struct {
	lim *rate.Limiter
}

// NewUpstreamShield cria o shield. rps <= 0 desliga (Allow sempre true).
func NewUpstreamShield(rps float64, burst int) *UpstreamShield {
	if rps <= 0 {
		return &UpstreamShield{}
	}
	return &UpstreamShield{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (s *UpstreamShield) Allow() bool {
	if s == nil || s.lim == nil {
		return true
	}
	return s.lim.Allow()
}

func (s *UpstreamShield) RPS() float64 {
	if s == nil || s.lim == nil {
		return 0
	}
	return float64(s.lim.Limit())
}

func (s *UpstreamShield) Burst() int {
	if s == nil || s.lim == nil {
		return 0
	}
	return s.lim.Burst()
}
