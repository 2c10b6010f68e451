package abuse

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"sentinela-gateway/middleware/abuse/application"
)

// Claims é o conjunto mínimo de claims já verificadas que o gateway precisa.
// Assinatura e parsing do token são responsabilidade de quem preencheu isto.
type Claims struct {
	TokenHash string
	UserID    string
	IssuedAt  time.Time
}

// ClaimsFunc extrai as claims verificadas do request. ok=false significa
// request anônimo (sem credencial para checar).
type ClaimsFunc func(r *http.Request) (Claims, bool)

type CredentialOptions struct {
	Service      application.CredentialService
	ClaimsFn     ClaimsFunc
	RejectStatus int
}

// HeaderClaimsFunc lê claims de headers confiáveis colocados por um proxy de
// autenticação à frente (hash do token, usuário e issued-at em unix seconds).
func HeaderClaimsFunc(hashHeader, userHeader, issuedAtHeader string) ClaimsFunc {
	return func(r *http.Request) (Claims, bool) {
		hash := strings.TrimSpace(r.Header.Get(hashHeader))
		if hash == "" {
			return Claims{}, false
		}
		c := Claims{
			TokenHash: hash,
			UserID:    strings.TrimSpace(r.Header.Get(userHeader)),
		}
		if raw := strings.TrimSpace(r.Header.Get(issuedAtHeader)); raw != "" {
			if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
				c.IssuedAt = time.Unix(sec, 0)
			}
		}
		return c, true
	}
}

// CredentialMiddleware aplica o hook por credencial: toda credencial presente
// é checada contra blacklist e marcador de revogação antes de qualquer lógica
// de negócio. Request sem credencial passa — autenticação obrigatória é
// decisão do upstream, não deste motor.
func CredentialMiddleware(opts CredentialOptions) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusUnauthorized
	}

	return func(next http.Handler) http.Handler {
		if opts.ClaimsFn == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := opts.ClaimsFn(r)
			if ok && !opts.Service.IsCredentialValid(claims.TokenHash, claims.UserID, claims.IssuedAt) {
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
