package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinela-gateway/middleware/abuse"
	"sentinela-gateway/middleware/abuse/application"
	"sentinela-gateway/middleware/abuse/domain"
	"sentinela-gateway/middleware/abuse/infra"
)

func main() {
	// Exemplo: injetando o motor diretamente no seu webserver (sem proxy)
	tracker := infra.NewViolationTracker()
	cache := infra.NewCounterCache()
	limiter := infra.NewWindowLimiter(cache, tracker)
	blocks := infra.NewBlockRegistry()
	detector := infra.NewPatternDetector(tracker, blocks)
	revocation := infra.NewRevocationRegistry()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cache.StartJanitor(ctx)
	tracker.StartJanitor(ctx)
	revocation.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	h := http.Handler(mux)
	h = abuse.ConcurrencyMiddleware(abuse.ConcurrencyOptions{Max: 50})(h)
	h = abuse.Middleware(abuse.Options{
		Engine: application.Engine{
			Limiter:    limiter,
			Violations: tracker,
			Detector:   detector,
			Gate:       blocks,
		},
		KeyHeader:          "X-Api-Key", // ou vazio para usar IP
		TrustXForwardedFor: true,
		DefaultTier:        domain.TierConfig{Window: 1 * time.Minute, Limit: 30},
		AddDecisionHeaders: true,
	})(h)
	h = abuse.CredentialMiddleware(abuse.CredentialOptions{
		Service:  application.CredentialService{Registry: revocation},
		ClaimsFn: abuse.HeaderClaimsFunc("X-Auth-Token-Hash", "X-Auth-User", "X-Auth-Issued-At"),
	})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
