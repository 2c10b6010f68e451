package abuse

import (
	"net"
	"net/http"
	"strings"
	"time"

	"sentinela-gateway/middleware/abuse/application"
	"sentinela-gateway/middleware/abuse/domain"
)

type KeyFunc func(r *http.Request) string

// ActionFunc classifica o request em um tipo de ação do motor
// (ex: POST /login → "login").
type ActionFunc func(r *http.Request) domain.ActionType

// TierFunc resolve o par (janela, limite) conforme o privilégio do ator.
// O motor em si é agnóstico de privilégio: a resolução acontece aqui.
type TierFunc func(r *http.Request, key string) domain.TierConfig

type Options struct {
	Engine             application.Engine
	Stats              domain.StatsStore
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	ActionFn           ActionFunc
	TierFn             TierFunc
	DefaultTier        domain.TierConfig
	RejectStatus       int
	AddDecisionHeaders bool
	ChallengeHeader    string
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if len(parts) > 0 {
					ip := strings.TrimSpace(parts[0])
					if ip != "" {
						return ip
					}
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// DefaultActionFunc mapeia o último segmento do path para o tipo de ação
// (ex: /api/v1/login → "login"). Serve como padrão razoável; o chamador
// substitui quando o roteamento tem semântica própria.
func DefaultActionFunc() ActionFunc {
	return func(r *http.Request) domain.ActionType {
		p := strings.Trim(r.URL.Path, "/")
		if p == "" {
			return "root"
		}
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			p = p[idx+1:]
		}
		return domain.ActionType(strings.ToLower(p))
	}
}

// Middleware aplica o hook por request do motor: extrai a chave do ator,
// resolve o tier, decide e traduz a decisão em status/headers.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.ActionFn == nil {
		opts.ActionFn = DefaultActionFunc()
	}
	if opts.ChallengeHeader == "" {
		opts.ChallengeHeader = "X-Challenge-Required"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			action := opts.ActionFn(r)

			tier := opts.DefaultTier
			if opts.TierFn != nil {
				tier = opts.TierFn(r, key)
			}

			if opts.AddDecisionHeaders {
				w.Header().Set("X-Abuse-Key", key)
				w.Header().Set("X-Abuse-Action", string(action))
				w.Header().Set("X-Abuse-Limit", formatInt(tier.Limit))
			}

			dec := opts.Engine.Evaluate(domain.Key(key), action, tier)
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.DecisionEvent{
					Key:     domain.Key(key),
					Action:  action,
					Allowed: dec.Allowed,
					Reason:  dec.Reason,
					At:      time.Now(),
				})
			}
			if !dec.Allowed {
				if dec.RetryAfter > 0 {
					w.Header().Set("Retry-After", formatInt(retryAfterSeconds(dec.RetryAfter)))
				}
				if dec.RequiresChallenge {
					w.Header().Set(opts.ChallengeHeader, "true")
				}
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds arredonda para cima: Retry-After de 0s com janela ainda
// aberta induziria retry imediato.
func retryAfterSeconds(d time.Duration) int {
	s := int(d / time.Second)
	if d%time.Second != 0 {
		s++
	}
	return s
}
