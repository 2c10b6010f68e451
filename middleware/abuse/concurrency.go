package abuse

import (
	"context"
	"net/http"
	"time"

	"sentinela-gateway/middleware/abuse/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita requests simultâneos com um pool de vagas.
// Complementa o motor por ator: protege o processo, não pune ninguém.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	pool := infra.NewChanPool(opts.Max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := acquire(r.Context(), pool, opts.AcquireTimeout)
			if !ok {
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

// acquire tenta adquirir uma vaga.
//   - Se `timeout <= 0`, espera indefinidamente (até ctx cancelar).
//   - Se `timeout > 0`, espera até o timeout.
func acquire(ctx context.Context, pool infra.SlotPool, timeout time.Duration) (func(), bool) {
	if timeout <= 0 {
		return pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return pool.Acquire(acqCtx)
}
