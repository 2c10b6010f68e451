package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/abuse/domain"

	"github.com/google/uuid"
)

// RevocationRegistry combina três estruturas sob um lock:
//
//   - blacklist individual por hash de token, com vida limitada pela
//     expiração natural do token;
//   - marcador por usuário: qualquer credencial emitida estritamente antes
//     dele é inválida, independente de assinatura ou blacklist;
//   - sessões, só para introspecção e revogação seletiva por id.
type RevocationRegistry struct {
	mu         sync.Mutex
	blacklist  map[string]domain.RevokedToken
	markers    map[string]time.Time
	sessions   map[string]*domain.SessionRecord
	byUser     map[string]map[string]struct{}
	sweepEvery time.Duration
}

type RevocationOption func(*RevocationRegistry)

func WithRevocationSweepEvery(d time.Duration) RevocationOption {
	return func(r *RevocationRegistry) { r.sweepEvery = d }
}

func NewRevocationRegistry(opts ...RevocationOption) *RevocationRegistry {
	r := &RevocationRegistry{
		blacklist:  make(map[string]domain.RevokedToken),
		markers:    make(map[string]time.Time),
		sessions:   make(map[string]*domain.SessionRecord),
		byUser:     make(map[string]map[string]struct{}),
		sweepEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RevocationRegistry) BlacklistToken(tokenHash, userID, reason string, naturalExpiry time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blacklist[tokenHash] = domain.RevokedToken{
		TokenHash:        tokenHash,
		UserID:           userID,
		Reason:           reason,
		BlacklistedAt:    time.Now(),
		NaturalExpiresAt: naturalExpiry,
	}
}

// IsBlacklisted consulta a blacklist individual. Entrada já vencida pela
// expiração natural é removida na hora (expiração preguiçosa) e responde
// false: o token já é inválido por conta própria.
func (r *RevocationRegistry) IsBlacklisted(tokenHash string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	tok, ok := r.blacklist[tokenHash]
	if !ok {
		return false
	}
	if !now.Before(tok.NaturalExpiresAt) {
		delete(r.blacklist, tokenHash)
		return false
	}
	return true
}

// RevokeAllForUser grava revokeIssuedBefore = agora para o usuário e derruba
// as sessões registradas dele. Credenciais emitidas depois da chamada
// continuam válidas.
func (r *RevocationRegistry) RevokeAllForUser(userID string) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.markers[userID] = now
	for sid := range r.byUser[userID] {
		delete(r.sessions, sid)
	}
	delete(r.byUser, userID)
}

func (r *RevocationRegistry) IsRevokedByMarker(userID string, issuedAt time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	marker, ok := r.markers[userID]
	if !ok {
		return false
	}
	return issuedAt.Before(marker)
}

func (r *RevocationRegistry) RegisterSession(userID, clientMeta string) domain.SessionRecord {
	now := time.Now()
	rec := domain.SessionRecord{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastUsedAt: now,
		ClientMeta: clientMeta,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[rec.SessionID] = &rec
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[string]struct{})
	}
	r.byUser[userID][rec.SessionID] = struct{}{}
	return rec
}

// TouchSession marca uso da sessão (LastUsedAt). Retorna false se a sessão
// não existe mais.
func (r *RevocationRegistry) TouchSession(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	rec.LastUsedAt = time.Now()
	return true
}

func (r *RevocationRegistry) ListSessions(userID string) []domain.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.SessionRecord
	for sid := range r.byUser[userID] {
		if rec, ok := r.sessions[sid]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

func (r *RevocationRegistry) RevokeSession(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	delete(r.sessions, sessionID)
	if set, ok := r.byUser[rec.UserID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.byUser, rec.UserID)
		}
	}
	return true
}

// Tokens retorna cópias das entradas vivas da blacklist (leitura admin).
func (r *RevocationRegistry) Tokens() []domain.RevokedToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.RevokedToken, 0, len(r.blacklist))
	for _, tok := range r.blacklist {
		out = append(out, tok)
	}
	return out
}

// Sweep remove da blacklist entradas cuja expiração natural já passou.
func (r *RevocationRegistry) Sweep() int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for hash, tok := range r.blacklist {
		if !now.Before(tok.NaturalExpiresAt) {
			delete(r.blacklist, hash)
			removed++
		}
	}
	return removed
}

// StartJanitor varre a blacklist periodicamente.
// Pare cancelando o contexto.
func (r *RevocationRegistry) StartJanitor(ctx DoneContext) {
	if r.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(r.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Sweep()
			}
		}
	}()
}
