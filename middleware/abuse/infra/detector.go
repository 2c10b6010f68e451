package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/abuse/domain"
)

// DefaultRules é o conjunto de regras de detecção de fábrica. Cada regra é
// dado puro avaliado pelo mesmo laço do detector.
func DefaultRules() []domain.Rule {
	return []domain.Rule{
		{
			Kind:           domain.PatternBruteForce,
			Severity:       domain.SeverityCritical,
			Action:         domain.ActionLogin,
			MinCount:       5,
			Recommendation: "bloquear ator e exigir redefinição de credencial",
		},
		{
			Kind:           domain.PatternCredentialStuffing,
			Severity:       domain.SeverityHigh,
			Action:         domain.ActionSignup,
			MinCount:       3,
			Recommendation: "exigir verificação humana no cadastro",
		},
		{
			Kind:           domain.PatternResourceExhaustion,
			Severity:       domain.SeverityHigh,
			MinCount:       10,
			Recommendation: "reduzir o tier do ator e observar",
		},
		{
			Kind:           domain.PatternEndpointScanning,
			Severity:       domain.SeverityMedium,
			MinCount:       10,
			MinDistinct:    5,
			Recommendation: "auditar os endpoints atingidos",
		},
	}
}

// PatternDetector avalia o histórico de violações de um ator (janela móvel,
// padrão 24h) contra o conjunto de regras e mantém um registro de padrão por
// (ator, tipo).
//
// Severidade só escala; evidência só acumula. Qualquer padrão critical
// dispara Block no registro — idempotente, então re-análises são baratas.
type PatternDetector struct {
	mu       sync.Mutex
	patterns map[string]*domain.AbusePattern
	rules    []domain.Rule
	history  domain.ViolationHistory
	registry domain.BlockRegistry
	window   time.Duration
}

type DetectorOption func(*PatternDetector)

func WithRules(rules []domain.Rule) DetectorOption {
	return func(d *PatternDetector) { d.rules = rules }
}

func WithDetectionWindow(w time.Duration) DetectorOption {
	return func(d *PatternDetector) { d.window = w }
}

// NewPatternDetector cria o detector. registry pode ser nil (sem auto-block,
// útil em testes de regra).
func NewPatternDetector(history domain.ViolationHistory, registry domain.BlockRegistry, opts ...DetectorOption) *PatternDetector {
	d := &PatternDetector{
		patterns: make(map[string]*domain.AbusePattern),
		rules:    DefaultRules(),
		history:  history,
		registry: registry,
		window:   24 * time.Hour,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func patternKey(actor domain.Key, kind domain.PatternKind) string {
	return string(actor) + "|" + string(kind)
}

// Analyze classifica o histórico recente do ator. Retorna os padrões do ator
// após a análise (cópias).
func (d *PatternDetector) Analyze(actor domain.Key) []domain.AbusePattern {
	now := time.Now()
	cutoff := now.Add(-d.window)

	recs := d.history.ByActor(actor)

	total := 0
	distinct := 0
	byAction := make(map[domain.ActionType]int)
	for _, rec := range recs {
		if rec.LastSeen.Before(cutoff) {
			continue
		}
		if byAction[rec.Action] == 0 {
			distinct++
		}
		byAction[rec.Action] += rec.Count
		total += rec.Count
	}

	d.mu.Lock()

	var critical []*domain.AbusePattern
	for _, rule := range d.rules {
		evidence, ok := rule.MatchCount(byAction, total, distinct)
		if !ok {
			continue
		}

		key := patternKey(actor, rule.Kind)
		pat, exists := d.patterns[key]
		if !exists {
			pat = &domain.AbusePattern{
				Actor:          actor,
				Kind:           rule.Kind,
				Severity:       rule.Severity,
				EvidenceCount:  evidence,
				FirstSeen:      now,
				LastSeen:       now,
				Recommendation: rule.Recommendation,
			}
			d.patterns[key] = pat
		} else {
			pat.EvidenceCount++
			pat.LastSeen = now
			if rule.Severity.Rank() > pat.Severity.Rank() {
				pat.Severity = rule.Severity
			}
		}

		if pat.Severity == domain.SeverityCritical {
			critical = append(critical, pat)
		}
	}

	out := d.byActorLocked(actor)
	d.mu.Unlock()

	// Block fora do lock do detector: o registry tem o próprio lock e o
	// caminho de request não pode depender da ordem entre os dois.
	if d.registry != nil {
		for _, pat := range critical {
			d.registry.Block(actor, "auto: "+string(pat.Kind))
		}
	}

	return out
}

// Patterns retorna cópias de todos os padrões detectados (leitura admin).
func (d *PatternDetector) Patterns() []domain.AbusePattern {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.AbusePattern, 0, len(d.patterns))
	for _, pat := range d.patterns {
		out = append(out, *pat)
	}
	return out
}

func (d *PatternDetector) byActorLocked(actor domain.Key) []domain.AbusePattern {
	var out []domain.AbusePattern
	for _, pat := range d.patterns {
		if pat.Actor == actor {
			out = append(out, *pat)
		}
	}
	return out
}
