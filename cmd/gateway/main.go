package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sentinela-gateway/middleware/abuse"
	"sentinela-gateway/middleware/abuse/application"
	"sentinela-gateway/middleware/abuse/domain"
	"sentinela-gateway/middleware/abuse/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy error: %v", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	// fiação do motor: cache → limiter → tracker → detector → blocklist
	tracker := infra.NewViolationTracker(
		infra.WithMaxAge(cfg.violationMaxAge),
		infra.WithPruneEvery(cfg.janitorEvery),
	)
	counterCache := infra.NewCounterCache(infra.WithSweepEvery[*infra.WindowCounter](cfg.janitorEvery))
	limiter := infra.NewWindowLimiter(counterCache, tracker)
	blocks := infra.NewBlockRegistry()
	detector := infra.NewPatternDetector(tracker, blocks,
		infra.WithDetectionWindow(cfg.violationMaxAge))
	revocation := infra.NewRevocationRegistry(
		infra.WithRevocationSweepEvery(cfg.janitorEvery))

	engine := application.Engine{
		Limiter:        limiter,
		Violations:     tracker,
		Detector:       detector,
		Gate:           blocks,
		ChallengeAfter: cfg.challengeAfter,
	}
	credentials := application.CredentialService{Registry: revocation}

	memStats := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.statsTrackKeys))
	stats := domain.StatsStore(memStats)
	if cfg.statsRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		stats = teeStats{
			memStats,
			infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.statsPrefix),
				infra.WithStatsTTL(cfg.statsTTL),
				infra.WithStatsTrackKeys(cfg.statsTrackKeys),
			),
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	counterCache.StartJanitor(ctx)
	tracker.StartJanitor(ctx)
	revocation.StartJanitor(ctx)

	shield := infra.NewUpstreamShield(cfg.shieldRPS, cfg.shieldBurst)

	h := http.Handler(proxy)
	h = abuse.ShieldMiddleware(abuse.ShieldOptions{Shield: shield})(h)
	h = abuse.ConcurrencyMiddleware(abuse.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)
	h = abuse.Middleware(abuse.Options{
		Engine:             engine,
		Stats:              stats,
		KeyHeader:          cfg.keyHeader,
		TrustXForwardedFor: cfg.trustXFF,
		TierFn:             tierResolver(cfg),
		DefaultTier:        cfg.standardTier,
		AddDecisionHeaders: cfg.addHeaders,
	})(h)
	h = abuse.CredentialMiddleware(abuse.CredentialOptions{
		Service:  credentials,
		ClaimsFn: abuse.HeaderClaimsFunc(cfg.tokenHashHeader, cfg.userHeader, cfg.issuedAtHeader),
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	admin := &http.Server{
		Addr: cfg.adminAddr,
		Handler: abuse.AdminHandler(abuse.AdminDeps{
			Cache:      counterCache,
			Stats:      memStats,
			Violations: tracker,
			Detector:   detector,
			Blocks:     blocks,
			Revocation: revocation,
			Limiter:    limiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("admin server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = admin.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s -> %s (admin on %s)", cfg.listenAddr, target, cfg.adminAddr)
	log.Printf("rate: window=%s limit=%d elevatedLimit=%d challengeAfter=%d keyHeader=%q trustXFF=%v",
		cfg.standardTier.Window, cfg.standardTier.Limit, cfg.elevatedTier.Limit, cfg.challengeAfter, cfg.keyHeader, cfg.trustXFF)
	log.Printf("stats: redisAddr=%q prefix=%q ttl=%s trackKeys=%v", cfg.statsRedisAddr, cfg.statsPrefix, cfg.statsTTL, cfg.statsTrackKeys)
	log.Printf("shield: rps=%.3f burst=%d concurrency: max=%d acquireTimeout=%s",
		cfg.shieldRPS, cfg.shieldBurst, cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// teeStats grava em memória (leitura admin local) e no Redis (projeção
// externa). Erro do Redis não derruba a gravação local.
type teeStats [2]domain.StatsStore

func (t teeStats) Record(ctx context.Context, ev domain.DecisionEvent) error {
	_ = t[0].Record(ctx, ev)
	return t[1].Record(ctx, ev)
}

// tierResolver devolve o tier conforme o header de privilégio: atores
// elevados recebem limite maior para a mesma janela. O motor em si continua
// agnóstico de privilégio.
func tierResolver(cfg config) abuse.TierFunc {
	return func(r *http.Request, _ string) domain.TierConfig {
		if cfg.privilegeHeader != "" &&
			strings.EqualFold(strings.TrimSpace(r.Header.Get(cfg.privilegeHeader)), "elevated") {
			return cfg.elevatedTier
		}
		return cfg.standardTier
	}
}

type config struct {
	listenAddr  string
	adminAddr   string
	upstreamURL string

	standardTier    domain.TierConfig
	elevatedTier    domain.TierConfig
	privilegeHeader string
	challengeAfter  int
	violationMaxAge time.Duration
	janitorEvery    time.Duration

	keyHeader  string
	trustXFF   bool
	addHeaders bool

	tokenHashHeader string
	userHeader      string
	issuedAtHeader  string

	shieldRPS          float64
	shieldBurst        int
	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.adminAddr = getenvDefault("ADMIN_ADDR", ":8090")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")

	cfg.standardTier = domain.TierConfig{
		Window: getenvDurationDefault("RATE_WINDOW", 1*time.Minute),
		Limit:  getenvIntDefault("RATE_LIMIT", 60),
	}
	cfg.elevatedTier = domain.TierConfig{
		Window: cfg.standardTier.Window,
		Limit:  getenvIntDefault("RATE_ELEVATED_LIMIT", cfg.standardTier.Limit*5),
	}
	cfg.privilegeHeader = getenvDefault("PRIVILEGE_HEADER", "X-Privilege-Tier")
	cfg.challengeAfter = getenvIntDefault("CHALLENGE_AFTER", 3)
	cfg.violationMaxAge = getenvDurationDefault("VIOLATION_MAX_AGE", 24*time.Hour)
	cfg.janitorEvery = getenvDurationDefault("JANITOR_EVERY", 2*time.Minute)

	cfg.keyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.addHeaders = getenvBoolDefault("ADD_DECISION_HEADERS", false)

	cfg.tokenHashHeader = getenvDefault("TOKEN_HASH_HEADER", "X-Auth-Token-Hash")
	cfg.userHeader = getenvDefault("USER_HEADER", "X-Auth-User")
	cfg.issuedAtHeader = getenvDefault("ISSUED_AT_HEADER", "X-Auth-Issued-At")

	cfg.shieldRPS = getenvFloatDefault("SHIELD_RPS", 0)
	cfg.shieldBurst = getenvIntDefault("SHIELD_BURST", 50)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "abuse:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	// configuração de tier inválida é fatal na subida, nunca por request.
	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.standardTier.Window <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.standardTier.Limit <= 0 {
		return config{}, errors.New("RATE_LIMIT must be > 0")
	}
	if cfg.elevatedTier.Limit < cfg.standardTier.Limit {
		return config{}, errors.New("RATE_ELEVATED_LIMIT must be >= RATE_LIMIT")
	}
	if cfg.challengeAfter <= 0 {
		return config{}, errors.New("CHALLENGE_AFTER must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
