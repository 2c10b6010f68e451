package domain

import "time"

// RevokedToken é uma entrada da blacklist individual de credenciais.
//
// A vida útil é limitada pela expiração natural do próprio token: passado
// NaturalExpiresAt a entrada pode ser varrida, porque um token expirado já é
// inválido por assinatura e não precisa de revogação explícita.
type RevokedToken struct {
	TokenHash        string
	UserID           string
	Reason           string
	BlacklistedAt    time.Time
	NaturalExpiresAt time.Time
}

// SessionRecord é escrituração para introspecção e revogação seletiva por id
// de sessão. NÃO é autoritativo para autorização.
type SessionRecord struct {
	SessionID  string
	UserID     string
	CreatedAt  time.Time
	LastUsedAt time.Time
	ClientMeta string
}

// RevocationChecker é a visão mínima que a verificação de credencial precisa.
//
// Uma credencial é rejeitada se QUALQUER um valer: o hash está na blacklist
// individual, OU o issued-at é estritamente anterior ao marcador de revogação
// do usuário.
type RevocationChecker interface {
	IsBlacklisted(tokenHash string) bool
	IsRevokedByMarker(userID string, issuedAt time.Time) bool
}

// RevocationRegistry combina blacklist por token, marcador por usuário
// ("invalide tudo emitido antes de T") e escrituração de sessões.
//
// O design em duas camadas permite "deslogar este aparelho" (token/sessão) e
// "deslogar em todo lugar" (marcador) no mesmo registro, sem enumerar todos
// os tokens emitidos.
type RevocationRegistry interface {
	RevocationChecker
	BlacklistToken(tokenHash, userID, reason string, naturalExpiry time.Time)
	RevokeAllForUser(userID string)
	RegisterSession(userID, clientMeta string) SessionRecord
	ListSessions(userID string) []SessionRecord
	RevokeSession(sessionID string) bool
}
