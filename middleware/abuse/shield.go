package abuse

import (
	"net/http"

	"sentinela-gateway/middleware/abuse/infra"
)

type ShieldOptions struct {
	Shield       *infra.UpstreamShield
	RejectStatus int
	AddHeaders   bool
}

// ShieldMiddleware aplica o token-bucket global de proteção do upstream.
// Vem depois do motor por ator na cadeia: quem chega aqui já passou pelas
// regras de abuso; isto só segura vazão agregada.
func ShieldMiddleware(opts ShieldOptions) func(next http.Handler) http.Handler {
	if opts.Shield == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.AddHeaders {
				w.Header().Set("X-Shield-RPS", formatFloat(opts.Shield.RPS()))
				w.Header().Set("X-Shield-Burst", formatInt(opts.Shield.Burst()))
			}
			if !opts.Shield.Allow() {
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
