package domain

import "time"

// PatternKind é a enumeração fechada de formas de ataque reconhecidas.
type PatternKind string

const (
	PatternBruteForce         PatternKind = "brute_force"
	PatternCredentialStuffing PatternKind = "credential_stuffing"
	PatternResourceExhaustion PatternKind = "resource_exhaustion"
	PatternEndpointScanning   PatternKind = "endpoint_scanning"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank dá a ordem total das severidades, usada para garantir que uma
// classificação só escala e nunca rebaixa automaticamente.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// AbusePattern é um registro por (ator, tipo de padrão). A evidência acumula
// entre análises; a severidade é monotônica.
type AbusePattern struct {
	Actor          Key
	Kind           PatternKind
	Severity       Severity
	EvidenceCount  int
	FirstSeen      time.Time
	LastSeen       time.Time
	Recommendation string
}

// Rule descreve uma regra de detecção como dado, não como função: o detector
// avalia todas as regras com o mesmo laço. Isso mantém o conjunto aberto a
// extensão sem tocar no núcleo.
//
// Semântica dos campos:
//   - Action != "": casa quando as violações daquela ação somam >= MinCount.
//   - Action == "" e MinDistinct == 0: casa quando o total de violações de
//     qualquer tipo soma >= MinCount.
//   - Action == "" e MinDistinct > 0: casa quando há >= MinDistinct ações
//     distintas entre >= MinCount violações totais.
type Rule struct {
	Kind           PatternKind
	Severity       Severity
	Action         ActionType
	MinCount       int
	MinDistinct    int
	Recommendation string
}

// MatchCount avalia a regra contra o resumo do histórico do ator: contagem
// por ação, total e número de ações distintas, já restritos à janela de
// detecção. Retorna a evidência que casou e se a regra disparou.
func (r Rule) MatchCount(byAction map[ActionType]int, total, distinct int) (int, bool) {
	if r.Action != "" {
		n := byAction[r.Action]
		return n, n >= r.MinCount
	}
	if r.MinDistinct > 0 {
		return total, distinct >= r.MinDistinct && total >= r.MinCount
	}
	return total, total >= r.MinCount
}

// Detector analisa o histórico recente de violações de um ator e mantém os
// padrões detectados. Qualquer padrão com severidade critical dispara bloqueio
// automático e idempotente no registro de bloqueio.
type Detector interface {
	Analyze(actor Key) []AbusePattern
	Patterns() []AbusePattern
}
